// Package ingest treats the assistant's chat transcript directory as an
// append-mostly event source, emitting one interaction per new turn.
// Transcript files are read-only from this side; the ingestor never
// mutates their contents.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"aiusage/internal/event"
	"aiusage/internal/record"
)

const (
	// DefaultRescanInterval is the periodic full-scan fallback against
	// missed or coalesced filesystem notifications.
	DefaultRescanInterval = 15 * time.Second

	// DefaultProcessedCap bounds the dedup set under long-running
	// sessions with many transcript files.
	DefaultProcessedCap = 5000

	transcriptExt = ".json"
)

type Config struct {
	Dir            string
	RescanInterval time.Duration
	ProcessedCap   int
}

func (c *Config) applyDefaults() {
	if c.RescanInterval <= 0 {
		c.RescanInterval = DefaultRescanInterval
	}
	if c.ProcessedCap <= 0 {
		c.ProcessedCap = DefaultProcessedCap
	}
}

// Stats summarizes one scan pass.
type Stats struct {
	Files   int
	Emitted int
	Skipped int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("files=%d emitted=%d skipped=%d errors=%d",
		s.Files, s.Emitted, s.Skipped, s.Errors)
}

type Ingestor struct {
	mu        sync.Mutex
	cfg       Config
	bus       *event.Bus[record.Interaction]
	log       *zap.SugaredLogger
	processed *keySet
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
	now       func() time.Time
}

func New(bus *event.Bus[record.Interaction], cfg Config, log *zap.SugaredLogger) *Ingestor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cfg.applyDefaults()
	return &Ingestor{
		cfg:       cfg,
		bus:       bus,
		log:       log,
		processed: newKeySet(cfg.ProcessedCap),
		now:       time.Now,
	}
}

// Start ensures the transcript directory exists, runs an initial full
// scan, then converges filesystem notifications and a periodic rescan
// onto the same scan routine. Idempotent while running.
func (ing *Ingestor) Start() error {
	ing.mu.Lock()
	if ing.running {
		ing.mu.Unlock()
		return nil
	}
	ing.running = true
	ing.stopCh = make(chan struct{})
	ing.doneCh = make(chan struct{})
	ing.mu.Unlock()

	if err := os.MkdirAll(ing.cfg.Dir, 0o755); err != nil {
		ing.log.Warnw("create transcript dir", "dir", ing.cfg.Dir, "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		ing.log.Warnw("fsnotify unavailable, relying on periodic rescan", "error", err)
		watcher = nil
	} else if werr := watcher.Add(ing.cfg.Dir); werr != nil {
		ing.log.Warnw("watch transcript dir", "dir", ing.cfg.Dir, "error", werr)
	}
	ing.mu.Lock()
	ing.watcher = watcher
	ing.mu.Unlock()

	stats := ing.ScanOnce()
	ing.log.Infow("initial transcript scan", "stats", stats.String())

	go ing.run(watcher)
	return nil
}

// Stop cancels the watcher and the rescan timer, blocking until the
// loop exits. The processed-key set is kept so a later Start in the
// same process does not re-emit turns already seen. Idempotent.
func (ing *Ingestor) Stop() {
	ing.mu.Lock()
	if !ing.running {
		ing.mu.Unlock()
		return
	}
	ing.running = false
	watcher := ing.watcher
	ing.watcher = nil
	ing.mu.Unlock()

	close(ing.stopCh)
	<-ing.doneCh
	if watcher != nil {
		watcher.Close()
	}
}

func (ing *Ingestor) run(watcher *fsnotify.Watcher) {
	defer close(ing.doneCh)

	ticker := time.NewTicker(ing.cfg.RescanInterval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	if watcher != nil {
		events = watcher.Events
		errs = watcher.Errors
	}

	for {
		select {
		case <-ing.stopCh:
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if strings.HasSuffix(ev.Name, transcriptExt) &&
				ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				ing.ScanOnce()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			ing.log.Warnw("transcript watcher error", "error", err)
		case <-ticker.C:
			ing.ScanOnce()
		}
	}
}

// ScanOnce processes every transcript file in the directory. Files that
// fail to parse are skipped silently; an in-progress write is expected,
// not an error.
func (ing *Ingestor) ScanOnce() Stats {
	var stats Stats
	entries, err := os.ReadDir(ing.cfg.Dir)
	if err != nil {
		ing.log.Debugw("list transcript dir", "dir", ing.cfg.Dir, "error", err)
		return stats
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), transcriptExt) {
			continue
		}
		stats.Files++
		ing.processFile(filepath.Join(ing.cfg.Dir, entry.Name()), &stats)
	}
	return stats
}

func (ing *Ingestor) Running() bool {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	return ing.running
}

// ProcessedCount reports the dedup set size, for diagnostics.
func (ing *Ingestor) ProcessedCount() int {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	return ing.processed.len()
}
