package record

// Interaction kinds.
const (
	KindCompletion = "completion"
	KindChat       = "chat"
)

// Sentinels used for chat interactions, which have no source document.
const (
	LanguageChat = "markdown"
	SourceChat   = "chat"
)

// Interaction is one normalized AI-assisted completion or chat turn.
// The JSON field names are the on-disk contract; the store persists
// them verbatim.
type Interaction struct {
	ID             string            `json:"id"`
	Timestamp      int64             `json:"timestamp"` // milliseconds since epoch
	Kind           string            `json:"kind"`
	Prompt         string            `json:"prompt"`
	Response       string            `json:"response"`
	Language       string            `json:"language"`
	SourceLocator  string            `json:"sourceLocator"`
	Accepted       bool              `json:"accepted"`
	LatencyMs      int64             `json:"latencyMs"`
	ModelName      string            `json:"modelName"`
	LineNumber     int               `json:"lineNumber"`
	CharacterCount int               `json:"characterCount"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}
