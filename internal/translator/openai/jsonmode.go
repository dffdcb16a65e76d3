package openai

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")

// RepairJSON coerces CLI output into a valid JSON document for JSON-mode
// responses. It tries, in order: the text as-is, fenced code blocks, the
// first balanced raw JSON object or array, and finally wraps the text in a
// fallback object.
func RepairJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if gjson.Valid(trimmed) {
		return trimmed
	}

	for _, match := range fencedBlockRe.FindAllStringSubmatch(trimmed, -1) {
		candidate := strings.TrimSpace(match[1])
		if gjson.Valid(candidate) {
			return candidate
		}
	}

	if candidate := firstBalancedJSON(trimmed); candidate != "" {
		return candidate
	}

	out := `{"response":"","_note":"Original response was not valid JSON"}`
	out, _ = sjson.Set(out, "response", text)
	return out
}

// firstBalancedJSON scans for the first balanced {...} or [...] span that
// parses as JSON. Brace counting is string-aware so braces inside string
// literals do not confuse it.
func firstBalancedJSON(text string) string {
	for start := 0; start < len(text); start++ {
		open := text[start]
		if open != '{' && open != '[' {
			continue
		}
		closing := byte('}')
		if open == '[' {
			closing = ']'
		}

		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			ch := text[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inString = false
				}
				continue
			}
			switch ch {
			case '"':
				inString = true
			case open:
				depth++
			case closing:
				depth--
				if depth == 0 {
					candidate := text[start : i+1]
					if gjson.Valid(candidate) {
						return candidate
					}
					i = len(text) // unbalanced garbage, try the next opener
				}
			}
		}
	}
	return ""
}
