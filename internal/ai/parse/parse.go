// Package parse extracts structured values from free-form model output.
//
// Model text is treated as adversarial by default: it may wrap JSON in
// markdown fences, omit the requested envelope, or emit a string where a
// list was asked for. Every extraction here returns a best-effort value and
// never an error; emptiness is the worst case.
package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	percentageRe = regexp.MustCompile(`(?i)match[_ ]?pct["'\s:]*\s*(-?\d+)`)
	reasoningRe  = regexp.MustCompile(`(?i)reasoning["'\s:]+\s*"([^"]+)"`)
	quotedRe     = regexp.MustCompile(`"([^"]{3,60})"`)
	numberingRe  = regexp.MustCompile(`^\d+[.)\-]\s*`)
)

// StripCodeFences removes markdown code-fence markers, both language-tagged
// (```json) and bare (```).
func StripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// BracketedJSON locates the outermost [...] or {...} span in text and
// returns it if it is valid JSON. Returns nil when no valid span exists.
func BracketedJSON(text string) json.RawMessage {
	text = StripCodeFences(text)

	for _, pair := range [][2]string{{"[", "]"}, {"{", "}"}} {
		start := strings.Index(text, pair[0])
		end := strings.LastIndex(text, pair[1])
		if start < 0 || end <= start {
			continue
		}
		span := []byte(text[start : end+1])
		if json.Valid(span) {
			return json.RawMessage(span)
		}
	}
	return nil
}

// StringList parses the bracketed JSON span of text as a list of strings.
// Non-string elements are stringified. Returns an empty slice when no list
// can be recovered.
func StringList(text string) []string {
	raw := BracketedJSON(text)
	if raw == nil {
		return []string{}
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err == nil {
		return items
	}

	var loose []any
	if err := json.Unmarshal(raw, &loose); err != nil {
		return []string{}
	}
	items = make([]string, 0, len(loose))
	for _, v := range loose {
		items = append(items, fmt.Sprint(v))
	}
	return items
}

// Object unmarshals the bracketed JSON object span of text into v. Returns
// false when no valid object could be parsed; v is left untouched in that
// case.
func Object(text string, v any) bool {
	raw := BracketedJSON(text)
	if raw == nil || len(raw) == 0 || raw[0] != '{' {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// LabeledSection returns the text between "=== LABEL ===" and the next
// "===" marker (or end of text). Returns "" when the label is absent.
func LabeledSection(text, label string) string {
	marker := "=== " + label + " ==="
	idx := strings.Index(text, marker)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(marker):]
	if next := strings.Index(rest, "==="); next >= 0 {
		rest = rest[:next]
	}
	return strings.TrimSpace(rest)
}

// BulletLines returns the lines of text whose trimmed content starts with a
// bullet marker ("-" or "•"), with the marker stripped.
func BulletLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range []string{"- ", "-", "• ", "•"} {
			if strings.HasPrefix(line, marker) && len(line) > len(marker) {
				lines = append(lines, strings.TrimSpace(line[len(marker):]))
				break
			}
		}
	}
	return lines
}

// Percentage extracts a match_pct-style integer from text. Used as the
// regex fallback when JSON parsing of a scoring response fails.
func Percentage(text string) (int, bool) {
	m := percentageRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// QuotedReasoning extracts a quoted reasoning phrase from text. Returns ""
// when none is found.
func QuotedReasoning(text string) string {
	m := reasoningRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// QuotedStrings returns every quoted 3-60 character span in text. Used as
// the fallback for candidate-list responses that are not valid JSON.
func QuotedStrings(text string) []string {
	var out []string
	for _, m := range quotedRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// StripQuotes trims whitespace and any wrapping quote characters. Models
// sometimes wrap short answers in quotes.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// StripNumbering removes a leading "1." / "2)" / "3-" style prefix from a
// suggestion line.
func StripNumbering(line string) string {
	return numberingRe.ReplaceAllString(strings.TrimSpace(line), "")
}
