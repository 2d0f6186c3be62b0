package chatbot

import (
	"encoding/json"
	"strings"
)

// Normalize unwraps model output that arrives as a serialized structured
// value instead of plain text. Some responses come back as a JSON list of
// objects with a "text" field; those unwrap to the first text value. This is
// best-effort cosmetic normalization: any parse failure returns the input
// unchanged, and no error ever escapes.
func Normalize(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return content
	}

	var parsed []map[string]any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return content
	}
	if len(parsed) == 0 {
		return content
	}
	text, ok := parsed[0]["text"].(string)
	if !ok {
		return content
	}
	return text
}
