package gateway

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFillDefaults(t *testing.T) {
	count := 0
	schema := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"name":  Str("a name"),
			"items": Array(Str("entry")),
			"count": {Type: "integer"},
			"ready": {Type: "boolean"},
			"meta": Object(map[string]*Schema{
				"version": Str("version"),
			}),
		},
		Required: []string{"name", "items", "count", "ready", "meta"},
		MinItems: &count,
	}

	t.Run("empty input gains every required field", func(t *testing.T) {
		data := schema.FillDefaults(map[string]interface{}{})

		if data["name"] != "" {
			t.Errorf("name = %v", data["name"])
		}
		if _, ok := data["items"].([]interface{}); !ok {
			t.Errorf("items = %T", data["items"])
		}
		if data["count"] != 0 {
			t.Errorf("count = %v", data["count"])
		}
		if data["ready"] != false {
			t.Errorf("ready = %v", data["ready"])
		}
		meta, ok := data["meta"].(map[string]interface{})
		if !ok {
			t.Fatalf("meta = %T", data["meta"])
		}
		if meta["version"] != "" {
			t.Errorf("meta.version = %v", meta["version"])
		}
	})

	t.Run("present values survive", func(t *testing.T) {
		data := schema.FillDefaults(map[string]interface{}{
			"name": "kept",
			"meta": map[string]interface{}{},
		})
		if data["name"] != "kept" {
			t.Errorf("name = %v", data["name"])
		}
		meta := data["meta"].(map[string]interface{})
		if meta["version"] != "" {
			t.Errorf("nested required field not filled: %v", meta)
		}
	})

	t.Run("nil map allowed", func(t *testing.T) {
		data := schema.FillDefaults(nil)
		if len(data) != len(schema.Required) {
			t.Errorf("got %d fields, want %d", len(data), len(schema.Required))
		}
	})
}

func TestRelaxedStripsConstraints(t *testing.T) {
	one := 1
	schema := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"tags": {Type: "array", Items: Str("tag"), MinItems: &one},
			"id":   {Type: "string", Pattern: "^[a-z]+$", MinLength: &one},
		},
		Required:             []string{"tags", "id"},
		AdditionalProperties: new(bool),
	}

	raw, err := json.Marshal(schema.Relaxed())
	if err != nil {
		t.Fatal(err)
	}
	for _, forbidden := range []string{"minItems", "pattern", "minLength", "additionalProperties"} {
		if strings.Contains(string(raw), forbidden) {
			t.Errorf("relaxed schema still carries %q: %s", forbidden, raw)
		}
	}
	for _, kept := range []string{"tags", "id", "required"} {
		if !strings.Contains(string(raw), kept) {
			t.Errorf("relaxed schema lost %q: %s", kept, raw)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"prose wrapped", `answer: {"a":1} thanks`, `{"a":1}`},
		{"picks largest", `{"a":1} and {"b":{"c":2}}`, `{"b":{"c":2}}`},
		{"braces inside strings ignored", `{"a":"}{"}`, `{"a":"}{"}`},
		{"nothing", "no objects here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRepairJSON(t *testing.T) {
	in := "{name: \"x\", 'code': \"line1\nline2\", \"tags\": [\"a\",],}"
	repaired, ok := RepairJSON(in)
	if !ok {
		t.Fatalf("repair failed: %s", repaired)
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(repaired), &data); err != nil {
		t.Fatal(err)
	}
	if data["code"] != "line1\nline2" {
		t.Errorf("code = %q", data["code"])
	}
}
