// Package monitor infers AI-authored completions from editor signals.
// The assistant exposes no acceptance event, so the monitor correlates
// two independently arriving signals: a positional cursor-settle signal
// ("a suggestion may appear here") and a text-mutation signal
// ("something appeared"). The correlation window is short and the
// classification is heuristic; misclassification is an accepted
// tradeoff, not an error.
package monitor

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aiusage/internal/event"
	"aiusage/internal/record"
)

// Heuristic defaults. Deliberately unchanged from the observed
// behavior; there is no ground-truth accuracy data to tune against.
const (
	DefaultMultiLineMinChars  = 20
	DefaultSingleLineMinChars = 50
	DefaultPendingTTL         = 30 * time.Second
	DefaultContextLines       = 50
)

type Config struct {
	MultiLineMinChars  int
	SingleLineMinChars int
	PendingTTL         time.Duration
	ContextLines       int
	ModelName          string

	// AssistantPresent reports whether the assistant integration is
	// available. When it returns false, Start warns and stays stopped.
	// nil means present.
	AssistantPresent func() bool
}

func (c *Config) applyDefaults() {
	if c.MultiLineMinChars <= 0 {
		c.MultiLineMinChars = DefaultMultiLineMinChars
	}
	if c.SingleLineMinChars <= 0 {
		c.SingleLineMinChars = DefaultSingleLineMinChars
	}
	if c.PendingTTL <= 0 {
		c.PendingTTL = DefaultPendingTTL
	}
	if c.ContextLines <= 0 {
		c.ContextLines = DefaultContextLines
	}
}

// CursorEvent is a cursor/selection settle signal in an open document.
// Lines carries the document content, one entry per line.
type CursorEvent struct {
	Document string   `json:"document"`
	Language string   `json:"language"`
	Line     int      `json:"line"`
	Lines    []string `json:"lines"`
}

// Span is one contiguous inserted run of text within a change signal.
type Span struct {
	StartLine int    `json:"startLine"`
	Text      string `json:"text"`
}

// ChangeEvent is a text-mutation signal.
type ChangeEvent struct {
	Document string `json:"document"`
	Language string `json:"language"`
	Spans    []Span `json:"spans"`
}

type pendingKey struct {
	document string
	line     int
}

type pendingSuggestion struct {
	id            string
	startTime     time.Time
	contextBefore string
}

// Stats is a diagnostic snapshot.
type Stats struct {
	Running bool `json:"running"`
	Pending int  `json:"pendingCount"`
}

type Monitor struct {
	mu      sync.Mutex
	cfg     Config
	bus     *event.Bus[record.Interaction]
	log     *zap.SugaredLogger
	pending map[pendingKey]pendingSuggestion
	running bool
	now     func() time.Time
}

func New(bus *event.Bus[record.Interaction], cfg Config, log *zap.SugaredLogger) *Monitor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cfg.applyDefaults()
	return &Monitor{
		cfg:     cfg,
		bus:     bus,
		log:     log,
		pending: make(map[pendingKey]pendingSuggestion),
		now:     time.Now,
	}
}

// Start arms the monitor. It is a no-op when already running, and warns
// without arming when the assistant integration is not detected.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	if m.cfg.AssistantPresent != nil && !m.cfg.AssistantPresent() {
		m.log.Warn("assistant integration not detected; completion capture disabled")
		return
	}
	m.running = true
}

// Stop detaches the monitor and drops all pending suggestions.
// Safe to call at any time, including when never started.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.pending = make(map[pendingKey]pendingSuggestion)
}

// HandleCursor models "the assistant may now show a suggestion here":
// it snapshots the preceding context and arms a pending suggestion for
// the document and line, then sweeps entries older than the TTL.
func (m *Monitor) HandleCursor(ev CursorEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	now := m.now()
	m.sweepLocked(now)
	m.pending[pendingKey{ev.Document, ev.Line}] = pendingSuggestion{
		id:            uuid.NewString(),
		startTime:     now,
		contextBefore: contextBefore(ev.Lines, ev.Line, m.cfg.ContextLines),
	}
}

// HandleChange classifies each inserted span and resolves it against
// the pending map. A bulk insertion with no matching pending entry is
// still captured, with no prompt context, rather than silently dropped.
func (m *Monitor) HandleChange(ev ChangeEvent) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	now := m.now()
	m.sweepLocked(now)

	var out []record.Interaction
	for _, span := range ev.Spans {
		if !classify(span.Text, m.cfg.MultiLineMinChars, m.cfg.SingleLineMinChars) {
			continue
		}
		in := record.Interaction{
			ID:             uuid.NewString(),
			Timestamp:      now.UnixMilli(),
			Kind:           record.KindCompletion,
			Response:       span.Text,
			Language:       ev.Language,
			SourceLocator:  ev.Document,
			Accepted:       true,
			ModelName:      m.cfg.ModelName,
			LineNumber:     span.StartLine,
			CharacterCount: len(span.Text),
		}
		key := pendingKey{ev.Document, span.StartLine}
		if p, ok := m.pending[key]; ok {
			in.Prompt = p.contextBefore
			in.LatencyMs = now.Sub(p.startTime).Milliseconds()
			delete(m.pending, key)
		}
		out = append(out, in)
	}
	m.mu.Unlock()

	for _, in := range out {
		m.bus.Publish(in)
	}
}

// HandleEditorSwitch clears every pending suggestion; a pending entry's
// relevance is scoped to the editor it was armed in.
func (m *Monitor) HandleEditorSwitch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) > 0 {
		m.pending = make(map[pendingKey]pendingSuggestion)
	}
}

func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked(m.now())
	return Stats{Running: m.running, Pending: len(m.pending)}
}

// sweepLocked drops pending entries older than the TTL; they are
// presumed abandoned and will never match. Callers hold m.mu.
func (m *Monitor) sweepLocked(now time.Time) {
	for k, p := range m.pending {
		if now.Sub(p.startTime) > m.cfg.PendingTTL {
			delete(m.pending, k)
		}
	}
}

// classify reports whether an inserted span looks assistant-originated.
// Multi-line insertions longer than multiMin characters, or single-line
// insertions longer than singleMin, are too large for keystroke typing.
func classify(text string, multiMin, singleMin int) bool {
	if strings.Contains(text, "\n") {
		return len(text) > multiMin
	}
	return len(text) > singleMin
}

// contextBefore snapshots up to max lines preceding line, newline
// terminated, for use as the interaction prompt.
func contextBefore(lines []string, line, max int) string {
	if line <= 0 || len(lines) == 0 {
		return ""
	}
	end := line
	if end > len(lines) {
		end = len(lines)
	}
	start := end - max
	if start < 0 {
		start = 0
	}
	if start >= end {
		return ""
	}
	return strings.Join(lines[start:end], "\n") + "\n"
}
