package ingest

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiusage/internal/event"
	"aiusage/internal/record"
)

type capture struct {
	mu  sync.Mutex
	got []record.Interaction
}

func (c *capture) append(in record.Interaction) {
	c.mu.Lock()
	c.got = append(c.got, in)
	c.mu.Unlock()
}

func (c *capture) all() []record.Interaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]record.Interaction(nil), c.got...)
}

func newTestIngestor(t *testing.T) (*Ingestor, *capture, string) {
	t.Helper()
	dir := t.TempDir()
	bus := event.New[record.Interaction](nil)
	sink := &capture{}
	bus.Subscribe(sink.append)
	ing := New(bus, Config{Dir: dir}, nil)
	return ing, sink, dir
}

func writeSession(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const sessionFixture = `{
  "sessionId": "sess-1",
  "creationDate": "2026-02-01T09:00:00Z",
  "lastMessageDate": "2026-02-01T10:30:00Z",
  "requests": [
    {
      "requestId": "req-1",
      "message": {"text": "how do I sort a slice?"},
      "response": [{"value": "Use sort.Slice with a less function."}],
      "timestamp": 1769940000000,
      "modelId": "gpt-4"
    },
    {
      "requestId": "req-2",
      "message": {"text": ""},
      "response": []
    }
  ]
}`

func TestScanEmitsChatInteractions(t *testing.T) {
	ing, sink, dir := newTestIngestor(t)
	writeSession(t, dir, "session.json", sessionFixture)

	stats := ing.ScanOnce()
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 1, stats.Emitted)

	got := sink.all()
	require.Len(t, got, 1)
	in := got[0]
	assert.Equal(t, record.KindChat, in.Kind)
	assert.Equal(t, "how do I sort a slice?", in.Prompt)
	assert.Equal(t, "Use sort.Slice with a less function.", in.Response)
	assert.Equal(t, record.LanguageChat, in.Language)
	assert.Equal(t, record.SourceChat, in.SourceLocator)
	assert.True(t, in.Accepted)
	assert.Equal(t, int64(1769940000000), in.Timestamp)
	assert.Equal(t, "gpt-4", in.ModelName)
	assert.Equal(t, len(in.Response), in.CharacterCount)
	assert.Equal(t, "req-1", in.Metadata["requestId"])
	assert.Equal(t, "sess-1", in.Metadata["sessionId"])
	assert.Equal(t, filepath.Join(dir, "session.json"), in.Metadata["sourceFile"])
}

func TestRescanIsIdempotent(t *testing.T) {
	ing, sink, dir := newTestIngestor(t)
	writeSession(t, dir, "session.json", sessionFixture)

	ing.ScanOnce()
	stats := ing.ScanOnce()
	assert.Equal(t, 0, stats.Emitted)
	assert.Len(t, sink.all(), 1)
}

func TestScanPicksUpNewTurns(t *testing.T) {
	ing, sink, dir := newTestIngestor(t)
	writeSession(t, dir, "session.json", sessionFixture)
	ing.ScanOnce()

	grown := sessionFixture[:len(sessionFixture)-3] + `,
    {
      "requestId": "req-3",
      "message": {"text": "and in reverse?"},
      "response": [{"value": "Flip the comparison."}]
    }
  ]
}`
	writeSession(t, dir, "session.json", grown)

	stats := ing.ScanOnce()
	assert.Equal(t, 1, stats.Emitted)
	got := sink.all()
	require.Len(t, got, 2)
	assert.Equal(t, "and in reverse?", got[1].Prompt)
}

func TestMalformedFilesAreSkipped(t *testing.T) {
	ing, sink, dir := newTestIngestor(t)
	writeSession(t, dir, "partial.json", `{"sessionId": "x", "requ`)
	writeSession(t, dir, "foreign.json", `{"something": "else"}`)
	writeSession(t, dir, "notes.txt", "not a transcript")

	stats := ing.ScanOnce()
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 0, stats.Emitted)
	assert.Empty(t, sink.all())
}

func TestEmptyTurnsAreMarkedNotEmitted(t *testing.T) {
	ing, sink, dir := newTestIngestor(t)
	writeSession(t, dir, "session.json", `{
  "sessionId": "s",
  "requests": [{"requestId": "r1", "message": {"text": "  "}, "response": []}]
}`)

	stats := ing.ScanOnce()
	assert.Equal(t, 0, stats.Emitted)
	assert.Empty(t, sink.all())
	// marked processed so later scans skip it outright
	assert.Equal(t, 1, ing.ProcessedCount())
}

func TestTimestampFallbackChain(t *testing.T) {
	t.Run("session last-message date", func(t *testing.T) {
		ing, sink, dir := newTestIngestor(t)
		writeSession(t, dir, "s.json", `{
  "lastMessageDate": "2026-02-01T10:30:00Z",
  "creationDate": "2026-02-01T09:00:00Z",
  "requests": [{"requestId": "r", "message": {"text": "hi"}, "response": []}]
}`)
		ing.ScanOnce()
		got := sink.all()
		require.Len(t, got, 1)
		want := time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC).UnixMilli()
		assert.Equal(t, want, got[0].Timestamp)
	})

	t.Run("creation date", func(t *testing.T) {
		ing, sink, dir := newTestIngestor(t)
		writeSession(t, dir, "s.json", `{
  "creationDate": "2026-02-01T09:00:00",
  "requests": [{"requestId": "r", "message": {"text": "hi"}, "response": []}]
}`)
		ing.ScanOnce()
		got := sink.all()
		require.Len(t, got, 1)
		want := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC).UnixMilli()
		assert.Equal(t, want, got[0].Timestamp)
	})

	t.Run("scan time when nothing usable", func(t *testing.T) {
		ing, sink, dir := newTestIngestor(t)
		fixed := time.Date(2026, 5, 5, 12, 0, 0, 0, time.UTC)
		ing.now = func() time.Time { return fixed }
		writeSession(t, dir, "s.json", `{
  "creationDate": "garbage",
  "requests": [{"requestId": "r", "message": {"text": "hi"}, "response": [], "timestamp": -5}]
}`)
		ing.ScanOnce()
		got := sink.all()
		require.Len(t, got, 1)
		assert.Equal(t, fixed.UnixMilli(), got[0].Timestamp)
	})
}

func TestStartStopLifecycle(t *testing.T) {
	ing, sink, dir := newTestIngestor(t)
	writeSession(t, dir, "session.json", sessionFixture)

	require.NoError(t, ing.Start())
	assert.True(t, ing.Running())
	// initial scan runs synchronously inside Start
	assert.Len(t, sink.all(), 1)

	require.NoError(t, ing.Start()) // idempotent

	ing.Stop()
	assert.False(t, ing.Running())
	ing.Stop() // idempotent

	// dedup state survives a restart within the process
	require.NoError(t, ing.Start())
	defer ing.Stop()
	assert.Len(t, sink.all(), 1)
}

func TestStartCreatesTranscriptDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transcripts")
	bus := event.New[record.Interaction](nil)
	ing := New(bus, Config{Dir: dir}, nil)

	require.NoError(t, ing.Start())
	defer ing.Stop()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
