// Package extract pulls a JSON analysis out of a language model's free-text
// reply.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/models"
)

// Analysis parses the first JSON object in text into an Analysis. Markdown
// code fences and surrounding prose are tolerated, and so are fields of the
// wrong type (see models.Analysis). ok is false only when no syntactically
// valid object can be located; it never panics on arbitrary input.
func Analysis(text string) (*models.Analysis, bool) {
	obj, ok := Object(text)
	if !ok || !json.Valid([]byte(obj)) {
		return nil, false
	}
	var a models.Analysis
	if err := json.Unmarshal([]byte(obj), &a); err != nil {
		return nil, false
	}
	return &a, true
}

// Object returns the JSON object region of text: from the first '{' to its
// matching '}'. When braces never balance, the region ends at the last '}'
// instead, which lets the decoder report the real error.
func Object(text string) (string, bool) {
	text = StripFences(text)

	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}
	if end := matchBrace(text, start); end != -1 {
		return text[start : end+1], true
	}
	end := strings.LastIndexByte(text, '}')
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// StripFences removes markdown code-fence markers (``` and ```json) while
// keeping the fenced content.
func StripFences(text string) string {
	if !strings.Contains(text, "```") {
		return strings.TrimSpace(text)
	}
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			// A fence line may carry a language tag or, on one-line
			// replies, the payload itself.
			rest := strings.TrimPrefix(trimmed, "```")
			rest = strings.TrimPrefix(rest, "json")
			rest = strings.TrimSuffix(strings.TrimSpace(rest), "```")
			if rest != "" {
				b.WriteString(rest)
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// matchBrace returns the index of the '}' closing the '{' at start, skipping
// braces inside JSON strings. It returns -1 if the object never closes.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
