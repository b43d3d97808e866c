package agents

import (
	"fmt"
	"regexp"
	"strings"
)

// Helpers for lifting gateway map output into typed fields. The gateway
// guarantees required keys exist but not their dynamic types, so every read
// tolerates wrong shapes.

func strField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func strSliceField(data map[string]interface{}, key string) []string {
	raw, ok := data[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]interface{}:
			if name, ok := v["name"].(string); ok {
				out = append(out, name)
			}
		}
	}
	return out
}

func mapSliceField(data map[string]interface{}, key string) []map[string]interface{} {
	raw, ok := data[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

var fenceRe = regexp.MustCompile("```(?:[a-zA-Z0-9_+-]*)?\\s*\\n([\\s\\S]*?)```")

// stripFences unwraps markdown code fencing from model output. Content
// outside the first fenced block is discarded; unfenced text passes through
// trimmed.
func stripFences(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// bulleted renders a list as prompt-embeddable bullet lines.
func bulleted(items []string) string {
	if len(items) == 0 {
		return "- (none)"
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}
