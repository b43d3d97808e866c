package gateway

import (
	"encoding/json"
	"regexp"
	"strings"
)

var jsonFenceRe = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)```")

// ExtractJSON pulls a JSON object out of free text. It prefers a fenced
// ```json block, then falls back to the largest balanced {...} span.
// Returns "" when the text contains no candidate object.
func ExtractJSON(text string) string {
	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		if strings.HasPrefix(candidate, "{") {
			return candidate
		}
	}
	return largestBalancedObject(text)
}

func largestBalancedObject(text string) string {
	best := ""
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					candidate := text[start : i+1]
					if len(candidate) > len(best) {
						best = candidate
					}
				}
			}
		}
	}
	return best
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	singleQuoteRe   = regexp.MustCompile(`([{,]\s*)'([^']*)'\s*:`)
)

// RepairJSON applies regex fixes to common model JSON mistakes: trailing
// commas, unquoted or single-quoted keys, and raw newlines inside string
// values. Returns the repaired text and whether it now parses.
func RepairJSON(text string) (string, bool) {
	repaired := trailingCommaRe.ReplaceAllString(text, "$1")
	repaired = singleQuoteRe.ReplaceAllString(repaired, `$1"$2":`)
	repaired = bareKeyRe.ReplaceAllString(repaired, `$1"$2":`)
	repaired = escapeNewlinesInStrings(repaired)

	var probe map[string]interface{}
	if err := json.Unmarshal([]byte(repaired), &probe); err != nil {
		return repaired, false
	}
	return repaired, true
}

// escapeNewlinesInStrings rewrites literal newlines occurring inside string
// values as \n escapes. Models routinely emit multi-line code fields raw.
func escapeNewlinesInStrings(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inString := false
	escaped := false
	for _, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r == '\n':
				b.WriteString(`\n`)
				continue
			case r == '\t':
				b.WriteString(`\t`)
				continue
			case r == '\r':
				continue
			}
		} else if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}
