package main

import (
	"os"
	"time"

	"go.uber.org/zap"

	"aiusage/internal/config"
	"aiusage/internal/event"
	"aiusage/internal/ingest"
	"aiusage/internal/monitor"
	"aiusage/internal/record"
	"aiusage/internal/store"
)

// pipeline wires the capture components. The bus is the only coupling
// point: the monitor and ingestor publish, the store subscribes.
type pipeline struct {
	cfg *config.Config
	st  *store.Store
	bus *event.Bus[record.Interaction]
	ing *ingest.Ingestor
	mon *monitor.Monitor
}

func newPipeline(log *zap.SugaredLogger) (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return buildPipeline(cfg, log), nil
}

func buildPipeline(cfg *config.Config, log *zap.SugaredLogger) *pipeline {
	st := store.Open(cfg.StorePath, cfg.MaxInteractions, log)

	bus := event.New[record.Interaction](log)
	bus.Subscribe(st.Append)

	ing := ingest.New(bus, ingest.Config{
		Dir:            cfg.TranscriptDir,
		RescanInterval: time.Duration(cfg.Ingest.RescanSeconds) * time.Second,
		ProcessedCap:   cfg.Ingest.ProcessedCap,
	}, log)

	mon := monitor.New(bus, monitor.Config{
		MultiLineMinChars:  cfg.Heuristic.MultiLineMinChars,
		SingleLineMinChars: cfg.Heuristic.SingleLineMinChars,
		PendingTTL:         time.Duration(cfg.Heuristic.PendingTTLSeconds) * time.Second,
		ContextLines:       cfg.Heuristic.ContextLines,
		ModelName:          cfg.ModelName,
		AssistantPresent: func() bool {
			info, err := os.Stat(cfg.TranscriptDir)
			return err == nil && info.IsDir()
		},
	}, log)

	return &pipeline{cfg: cfg, st: st, bus: bus, ing: ing, mon: mon}
}

func newLogger(verbose bool) *zap.SugaredLogger {
	if !verbose {
		return zap.NewNop().Sugar()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return log.Sugar()
}
