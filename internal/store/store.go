// Package store keeps a bounded, crash-tolerant log of captured
// interactions in a single indented JSON file, mirrored in memory so
// queries never touch the filesystem.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"aiusage/internal/record"
)

// DefaultCap bounds the retained interactions when the configuration
// does not say otherwise.
const DefaultCap = 1000

type Store struct {
	mu    sync.Mutex
	path  string
	cap   int
	items []record.Interaction
	log   *zap.SugaredLogger
	now   func() time.Time
}

// Open loads the backing file. A missing file is an empty store, not an
// error; a file that does not parse as an interaction array is logged
// and reset to empty, so a corrupted log never blocks future capture.
func Open(path string, capacity int, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if capacity <= 0 {
		capacity = DefaultCap
	}
	s := &Store{path: path, cap: capacity, log: log, now: time.Now}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warnw("read interaction log, starting empty", "path", s.path, "error", err)
		}
		return
	}
	var items []record.Interaction
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warnw("interaction log unparsable, resetting", "path", s.path, "error", err)
		return
	}
	// keep the most recent entries if the file outgrew the cap
	if len(items) > s.cap {
		items = items[len(items)-s.cap:]
	}
	s.items = items
}

// Append records one interaction, evicting from the front once the cap
// is exceeded, and rewrites the backing file. A failed write is logged;
// the in-memory list stays authoritative for this process.
func (s *Store) Append(in record.Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, in)
	if over := len(s.items) - s.cap; over > 0 {
		s.items = append([]record.Interaction(nil), s.items[over:]...)
	}
	s.persist()
}

// persist rewrites the whole document; callers hold s.mu.
func (s *Store) persist() {
	items := s.items
	if items == nil {
		items = []record.Interaction{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		s.log.Errorw("marshal interaction log", "error", err)
		return
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		s.log.Warnw("persist interaction log", "path", s.path, "error", err)
	}
}

// writeFileAtomic writes via a temp file in the target directory
// followed by a rename, so a crash mid-write leaves either the old
// file or the complete new one.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".interactions-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Filter narrows Query results. Zero values mean no constraint. Since
// is inclusive and Until exclusive, both in epoch milliseconds.
type Filter struct {
	Since    int64
	Until    int64
	Language string
	Model    string
}

func (f Filter) matches(in record.Interaction) bool {
	if f.Since != 0 && in.Timestamp < f.Since {
		return false
	}
	if f.Until != 0 && in.Timestamp >= f.Until {
		return false
	}
	if f.Language != "" && in.Language != f.Language {
		return false
	}
	if f.Model != "" && in.ModelName != f.Model {
		return false
	}
	return true
}

// Query returns matching interactions in insertion order. The result is
// a copy; callers never see the backing slice.
func (s *Store) Query(f Filter) []record.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]record.Interaction, 0, len(s.items))
	for _, in := range s.items {
		if f.matches(in) {
			out = append(out, in)
		}
	}
	return out
}

// Get returns the interaction with the given id.
func (s *Store) Get(id string) (record.Interaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range s.items {
		if in.ID == id {
			return in, true
		}
	}
	return record.Interaction{}, false
}

// Clear empties the list and persists the empty state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist()
}

// SetCap changes the bound enforced by future appends; it does not
// retroactively trim.
func (s *Store) SetCap(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cap = n
}

func (s *Store) Cap() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cap
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}
