package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"aiusage/internal/record"
)

// ExportTo writes the interaction list as JSON or CSV depending on the
// destination extension. CSV fields are comma-joined without quoting;
// an embedded comma in a free-text field shifts columns, which is a
// documented limitation of the format, not a bug. An unsupported
// extension is a logged no-op.
func (s *Store) ExportTo(path string) error {
	s.mu.Lock()
	items := append([]record.Interaction(nil), s.items...)
	s.mu.Unlock()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if items == nil {
			items = []record.Interaction{}
		}
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal export: %w", err)
		}
		return writeFileAtomic(path, data)
	case ".csv":
		var b strings.Builder
		b.WriteString("ID,Timestamp,Type,Language,Accepted,Latency,Model\n")
		for _, in := range items {
			fmt.Fprintf(&b, "%s,%d,%s,%s,%t,%d,%s\n",
				in.ID, in.Timestamp, in.Kind, in.Language, in.Accepted, in.LatencyMs, in.ModelName)
		}
		return writeFileAtomic(path, []byte(b.String()))
	default:
		s.log.Warnw("unsupported export extension, nothing written", "path", path)
		return nil
	}
}
