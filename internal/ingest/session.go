package ingest

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"aiusage/internal/record"
)

// sessionDoc mirrors the assistant's on-disk chat session shape. Every
// field is optional; transcripts are parsed leniently.
type sessionDoc struct {
	SessionID       string           `json:"sessionId"`
	CreationDate    string           `json:"creationDate"`
	LastMessageDate string           `json:"lastMessageDate"`
	Requests        []sessionRequest `json:"requests"`
}

type sessionRequest struct {
	RequestID string          `json:"requestId"`
	Message   requestMessage  `json:"message"`
	Response  json.RawMessage `json:"response"`
	Timestamp *float64        `json:"timestamp"`
	ModelID   string          `json:"modelId"`
}

type requestMessage struct {
	Text string `json:"text"`
}

// processFile parses one session document and emits an interaction per
// request not seen before. Unparsable content or a missing requests
// array means a write in progress or a foreign file; both are skipped.
func (ing *Ingestor) processFile(path string, stats *Stats) {
	data, err := os.ReadFile(path)
	if err != nil {
		stats.Errors++
		return
	}
	var doc sessionDoc
	if err := json.Unmarshal(data, &doc); err != nil || doc.Requests == nil {
		stats.Skipped++
		return
	}

	base := filepath.Base(path)
	for _, req := range doc.Requests {
		id := req.RequestID
		if id == "" {
			id = uuid.NewString()
		}
		key := base + ":" + id

		ing.mu.Lock()
		seen := ing.processed.contains(key)
		ing.mu.Unlock()
		if seen {
			continue
		}

		prompt := strings.TrimSpace(req.Message.Text)
		response := extractResponse(req.Response)
		if prompt == "" && response == "" {
			// nothing meaningful to record
			ing.markProcessed(key)
			continue
		}

		in := record.Interaction{
			ID:             uuid.NewString(),
			Timestamp:      ing.resolveTimestamp(req, doc),
			Kind:           record.KindChat,
			Prompt:         prompt,
			Response:       response,
			Language:       record.LanguageChat,
			SourceLocator:  record.SourceChat,
			Accepted:       true,
			ModelName:      req.ModelID,
			CharacterCount: len(response),
			Metadata: map[string]string{
				"requestId":  id,
				"sessionId":  doc.SessionID,
				"sourceFile": path,
			},
		}
		ing.bus.Publish(in)
		ing.markProcessed(key)
		stats.Emitted++
	}
}

func (ing *Ingestor) markProcessed(key string) {
	ing.mu.Lock()
	ing.processed.add(key)
	ing.mu.Unlock()
}

// resolveTimestamp picks the first usable time: the request's own
// numeric timestamp, the session's last-message date, its creation
// date, then now.
func (ing *Ingestor) resolveTimestamp(req sessionRequest, doc sessionDoc) int64 {
	if req.Timestamp != nil && !math.IsInf(*req.Timestamp, 0) && !math.IsNaN(*req.Timestamp) && *req.Timestamp > 0 {
		return int64(*req.Timestamp)
	}
	if t := parseDate(doc.LastMessageDate); !t.IsZero() {
		return t.UnixMilli()
	}
	if t := parseDate(doc.CreationDate); !t.IsZero() {
		return t.UnixMilli()
	}
	return ing.now().UnixMilli()
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// responsePart is a shape probe over the heterogeneous content entries
// found in the response array.
type responsePart struct {
	Kind             string          `json:"kind"`
	Value            string          `json:"value"`
	Text             string          `json:"text"`
	PastTenseMessage *nestedValue    `json:"pastTenseMessage"`
	Content          json.RawMessage `json:"content"`
}

type nestedValue struct {
	Value string `json:"value"`
}

// extractResponse concatenates the recoverable text of the response
// entries, in order: tool invocations contribute their past-tense
// summary, markdown parts contribute every nested content value, and
// anything else falls back to a value or text field. Parts are joined
// with a blank line.
func extractResponse(raw json.RawMessage) string {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	var out []string
	for _, rawPart := range parts {
		var part responsePart
		if err := json.Unmarshal(rawPart, &part); err != nil {
			continue
		}
		var text string
		switch {
		case part.PastTenseMessage != nil:
			text = part.PastTenseMessage.Value
		case len(part.Content) > 0:
			text = strings.Join(nestedValues(part.Content), "\n")
		case part.Value != "":
			text = part.Value
		default:
			text = part.Text
		}
		text = strings.TrimSpace(text)
		if text != "" {
			out = append(out, text)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n\n"))
}

// nestedValues walks an arbitrary content payload collecting value
// fields from strings, arrays and objects.
func nestedValues(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		var out []string
		for _, el := range arr {
			out = append(out, nestedValues(el)...)
		}
		return out
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if v, ok := obj["value"]; ok {
			return nestedValues(v)
		}
	}
	return nil
}
