// Package decode parses raw transformer responses into structured
// per-page payloads. It is a pure function of its input and never
// returns an error: malformed input degrades to an empty result and
// the transformer's fallback guarantees page coverage downstream.
package decode

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RecallPayload is the wire shape of a recall check.
type RecallPayload struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Hint         string   `json:"hint"`
}

// ChunkPayload is the wire shape of one content unit.
type ChunkPayload struct {
	Text          string         `json:"text"`
	Kind          string         `json:"kind"`
	ImaginePrompt string         `json:"imaginePrompt"`
	RecallCheck   *RecallPayload `json:"recallCheck"`
}

// PagePayload is the wire shape of one page's transformation result.
type PagePayload struct {
	PageIndex *int           `json:"pageIndex"`
	PageTitle string         `json:"pageTitle"`
	Chunks    []ChunkPayload `json:"chunks"`
}

// pageSchema is the loose acceptance test for a decoded item: it must
// carry a chunks array. Everything else is sanitized downstream.
const pageSchema = `{
	"type": "object",
	"required": ["chunks"],
	"properties": {
		"chunks": {"type": "array"}
	}
}`

var pageValidator = jsonschema.MustCompileString("page.json", pageSchema)

// Pages parses a raw response into zero or more page payloads.
//
// It strips markdown code fences, attempts a direct parse (array or
// single object), then a repair parse that splices commas between
// adjacent top-level objects. Items that fail the loose shape check
// are dropped silently. Total failure yields an empty slice.
func Pages(raw string) []PagePayload {
	payloads := make([]PagePayload, 0)
	for _, item := range Items(raw) {
		if !acceptItem(item) {
			continue
		}
		var p PagePayload
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		payloads = append(payloads, p)
	}
	return payloads
}

// Items parses a raw response into top-level JSON objects without any
// shape filtering. Returns nil on total parse failure.
func Items(raw string) []json.RawMessage {
	text := StripFences(raw)
	if text == "" {
		return nil
	}

	for _, candidate := range []string{
		text,
		"[" + text + "]",
		"[" + spliceObjects(text) + "]",
	} {
		if items, ok := tryParse(candidate); ok {
			return items
		}
	}
	return nil
}

// tryParse attempts to decode candidate as a JSON array of objects,
// accepting a bare object as a one-element array.
func tryParse(candidate string) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &items); err != nil {
		var single json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &single); err != nil {
			return nil, false
		}
		if !bytes.HasPrefix(bytes.TrimSpace(single), []byte("{")) {
			return nil, false
		}
		items = []json.RawMessage{single}
	}
	return items, true
}

// acceptItem applies the loose schema check to a decoded item.
func acceptItem(item json.RawMessage) bool {
	var doc any
	if err := json.Unmarshal(item, &doc); err != nil {
		return false
	}
	return pageValidator.Validate(doc) == nil
}

// StripFences removes surrounding markdown code-fence markers, with or
// without a language tag, and trims whitespace.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return strings.TrimSpace(strings.TrimPrefix(text, "```"))
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// spliceObjects inserts a comma between adjacent }{ boundaries outside
// string literals, repairing concatenated JSON objects.
func spliceObjects(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)

	inString := false
	escaped := false
	var prev rune // last non-whitespace rune outside string literals

	for _, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			b.WriteRune(r)
			continue
		}

		if r == '{' && prev == '}' {
			b.WriteRune(',')
		}
		if r == '"' {
			inString = true
		}
		if !isJSONSpace(r) {
			prev = r
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isJSONSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
