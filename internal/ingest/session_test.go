package ingest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractResponse(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain value parts",
			raw:  `[{"value": "first"}, {"value": "second"}]`,
			want: "first\n\nsecond",
		},
		{
			name: "tool invocation past-tense summary wins",
			raw:  `[{"pastTenseMessage": {"value": "Ran the tests"}, "value": "ignored"}]`,
			want: "Ran the tests",
		},
		{
			name: "markdown content as string",
			raw:  `[{"content": "inline text"}]`,
			want: "inline text",
		},
		{
			name: "markdown content as nested array of objects",
			raw:  `[{"content": [{"value": "para one"}, {"value": "para two"}]}]`,
			want: "para one\npara two",
		},
		{
			name: "deeply nested value objects",
			raw:  `[{"content": {"value": {"value": "deep"}}}]`,
			want: "deep",
		},
		{
			name: "text fallback",
			raw:  `[{"text": "fallback text"}]`,
			want: "fallback text",
		},
		{
			name: "empty and whitespace parts dropped",
			raw:  `[{"value": "  "}, {"value": "kept"}, {}]`,
			want: "kept",
		},
		{
			name: "not an array",
			raw:  `{"value": "x"}`,
			want: "",
		},
		{
			name: "null",
			raw:  `null`,
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractResponse(json.RawMessage(tc.raw)))
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		assert.False(t, parseDate("2026-02-01T10:30:00Z").IsZero())
	})
	t.Run("rfc3339 nano", func(t *testing.T) {
		assert.False(t, parseDate("2026-02-01T10:30:00.123456Z").IsZero())
	})
	t.Run("no zone", func(t *testing.T) {
		assert.False(t, parseDate("2026-02-01T10:30:00").IsZero())
	})
	t.Run("empty", func(t *testing.T) {
		assert.True(t, parseDate("").IsZero())
	})
	t.Run("garbage", func(t *testing.T) {
		assert.True(t, parseDate("yesterday").IsZero())
	})
}
