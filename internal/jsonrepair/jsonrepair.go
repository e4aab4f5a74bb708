// Package jsonrepair recovers a JSON object from free-form model output.
//
// Models wrap JSON in prose, markdown fences or typographic quotes. Each
// Strategy handles one of those shapes; Parse tries them in order.
package jsonrepair

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy is a named, pure recovery function.
type Strategy struct {
	Name  string
	Parse func(text string) (map[string]any, bool)
}

var (
	// Direct parses the whole trimmed text as a JSON object.
	Direct = Strategy{Name: "direct", Parse: parseDirect}
	// Fenced parses the body of the first markdown code fence that holds an object.
	Fenced = Strategy{Name: "fenced", Parse: parseFenced}
	// BalancedBraces parses the first balanced {...} block that is valid JSON.
	BalancedBraces = Strategy{Name: "balanced_braces", Parse: parseBalanced}
	// QuoteRepair normalizes quotes and trailing commas, then retries the others.
	QuoteRepair = Strategy{Name: "quote_repair", Parse: parseRepaired}
)

// DefaultStrategies is the order Parse uses.
var DefaultStrategies = []Strategy{Direct, Fenced, BalancedBraces, QuoteRepair}

// Parse tries DefaultStrategies in order and reports which one succeeded.
func Parse(text string) (map[string]any, string, bool) {
	return ParseWith(text, DefaultStrategies)
}

// ParseWith is Parse with an explicit strategy list.
func ParseWith(text string, strategies []Strategy) (map[string]any, string, bool) {
	for _, s := range strategies {
		if obj, ok := s.Parse(text); ok {
			return obj, s.Name, true
		}
	}
	return nil, "", false
}

func parseDirect(text string) (map[string]any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case string:
		// Double-encoded payloads: "{\"title\": ...}".
		inner := strings.TrimSpace(t)
		if strings.HasPrefix(inner, "{") {
			var obj map[string]any
			if json.Unmarshal([]byte(inner), &obj) == nil {
				return obj, true
			}
		}
	}
	return nil, false
}

var fenceRe = regexp.MustCompile("(?s)```[ \\t]*(?:json|JSON)?[ \\t]*\\r?\\n?(.*?)```")

func parseFenced(text string) (map[string]any, bool) {
	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		if obj, ok := parseDirect(m[1]); ok {
			return obj, true
		}
	}
	return nil, false
}

// parseBalanced returns the first non-empty balanced object in text. A bare
// "{}" in the surrounding prose is only used when nothing else parses.
func parseBalanced(text string) (map[string]any, bool) {
	var empty map[string]any
	for start := strings.IndexByte(text, '{'); start >= 0; {
		end := matchBrace(text, start)
		if end > start {
			if obj, ok := parseDirect(text[start : end+1]); ok {
				if len(obj) > 0 {
					return obj, true
				}
				if empty == nil {
					empty = obj
				}
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return empty, empty != nil
}

// matchBrace returns the index of the brace closing the one at start,
// ignoring braces inside string literals, or -1.
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

func parseRepaired(text string) (map[string]any, bool) {
	repaired := Repair(text)
	if repaired == text {
		return nil, false
	}
	for _, s := range []Strategy{Direct, Fenced, BalancedBraces} {
		if obj, ok := s.Parse(repaired); ok {
			return obj, true
		}
	}
	return nil, false
}

var (
	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
		"‘", "'", "’", "'", "‚", "'", "‛", "'",
	)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
)

// Repair maps typographic quotes to ASCII, turns single-quoted strings
// inside the outermost {...} region into double-quoted ones, and drops
// trailing commas before a closing bracket.
func Repair(text string) string {
	text = quoteReplacer.Replace(text)

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return text
	}
	body := singleToDouble(text[start : end+1])
	body = trailingCommaRe.ReplaceAllString(body, "$1")
	return text[:start] + body + text[end+1:]
}

// singleToDouble rewrites 'quoted' strings as "quoted" strings. Apostrophes
// inside double-quoted strings are left alone.
func singleToDouble(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inDouble := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inDouble {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inDouble = false
			}
			continue
		}
		switch c {
		case '"':
			inDouble = true
			b.WriteByte(c)
		case '\'':
			j := closingSingle(s, i+1)
			if j < 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteByte('"')
			for k := i + 1; k < j; k++ {
				switch {
				case s[k] == '\\' && k+1 < j && s[k+1] == '\'':
					b.WriteByte('\'')
					k++
				case s[k] == '"':
					b.WriteString(`\"`)
				default:
					b.WriteByte(s[k])
				}
			}
			b.WriteByte('"')
			i = j
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// closingSingle finds the quote ending a single-quoted string that opened
// before from. A quote followed by a letter is an apostrophe, not a closer.
func closingSingle(s string, from int) int {
	for k := from; k < len(s); k++ {
		switch s[k] {
		case '\\':
			k++
		case '\'':
			if k+1 < len(s) && isLetter(s[k+1]) {
				continue
			}
			return k
		}
	}
	return -1
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
