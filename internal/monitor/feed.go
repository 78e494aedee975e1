package monitor

import (
	"bufio"
	"encoding/json"
	"io"
)

const maxSignalSize = 1 * 1024 * 1024 // 1MB per signal line

// ReadSignals decodes newline-delimited editor signals from r and feeds
// them to the monitor until EOF. Each line is a JSON object with a
// "type" of "cursor", "change" or "editorSwitch" plus the event fields.
// Undecodable lines are skipped; an editor that writes garbage must not
// stop capture.
func ReadSignals(r io.Reader, m *Monitor) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxSignalSize)

	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(line, &env); err != nil {
			continue
		}

		switch env.Type {
		case "cursor":
			var ev CursorEvent
			if err := json.Unmarshal(line, &ev); err == nil {
				m.HandleCursor(ev)
			}
		case "change":
			var ev ChangeEvent
			if err := json.Unmarshal(line, &ev); err == nil {
				m.HandleChange(ev)
			}
		case "editorSwitch":
			m.HandleEditorSwitch()
		}
	}
	return sc.Err()
}
