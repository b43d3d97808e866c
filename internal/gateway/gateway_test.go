package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func planLikeSchema() *Schema {
	return Object(map[string]*Schema{
		"analysis": Str("problem analysis"),
		"steps":    Array(Str("one step")),
	})
}

func TestGenerateTextNeverErrors(t *testing.T) {
	client := NewMockClient().FailWith(errors.New("connection refused"))
	gw := New(client, nil)

	got := gw.GenerateText(context.Background(), "hello")
	if got == "" {
		t.Fatal("expected a non-empty degraded message")
	}
	if !strings.HasPrefix(got, "Error") {
		t.Errorf("expected degraded error text, got %q", got)
	}
}

func TestGenerateTextPassesThrough(t *testing.T) {
	gw := New(NewMockClient("plain answer"), nil)
	if got := gw.GenerateText(context.Background(), "q"); got != "plain answer" {
		t.Errorf("got %q", got)
	}
}

func TestGenerateStructured(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"clean JSON", `{"analysis":"sorting problem","steps":["parse","sort"]}`},
		{"fenced JSON", "Here you go:\n```json\n{\"analysis\":\"sorting problem\",\"steps\":[\"parse\",\"sort\"]}\n```\nDone."},
		{"embedded in prose", `Sure! The plan is {"analysis":"sorting problem","steps":["parse","sort"]} as requested.`},
		{"trailing comma", `{"analysis":"sorting problem","steps":["parse","sort",],}`},
		{"unquoted keys", `{analysis:"sorting problem",steps:["parse","sort"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := New(NewMockClient(tt.response), nil)
			data := gw.GenerateStructured(context.Background(), "plan it", planLikeSchema())

			if data["analysis"] != "sorting problem" {
				t.Errorf("analysis = %v", data["analysis"])
			}
			steps, ok := data["steps"].([]interface{})
			if !ok || len(steps) != 2 {
				t.Errorf("steps = %v", data["steps"])
			}
		})
	}
}

func TestGenerateStructuredFillsMissingFields(t *testing.T) {
	gw := New(NewMockClient(`{"analysis":"only one field"}`), nil)
	data := gw.GenerateStructured(context.Background(), "plan it", planLikeSchema())

	if data["analysis"] != "only one field" {
		t.Errorf("analysis = %v", data["analysis"])
	}
	steps, ok := data["steps"].([]interface{})
	if !ok {
		t.Fatalf("steps should be a synthesized empty array, got %T", data["steps"])
	}
	if len(steps) != 0 {
		t.Errorf("steps = %v", steps)
	}
}

func TestGenerateStructuredRetriesThenSucceeds(t *testing.T) {
	client := NewMockClient(`{"analysis":"ok","steps":[]}`).
		FailWith(errors.New("schema not supported"))
	gw := New(client, nil)

	data := gw.GenerateStructured(context.Background(), "plan it", planLikeSchema())
	if data["analysis"] != "ok" {
		t.Errorf("analysis = %v", data["analysis"])
	}
	if client.Calls() != 2 {
		t.Errorf("calls = %d, want 2", client.Calls())
	}
}

func TestGenerateStructuredExhaustionReturnsEmptyMap(t *testing.T) {
	client := NewMockClient("not json at all, no braces anywhere")
	gw := New(client, nil)

	data := gw.GenerateStructured(context.Background(), "plan it", planLikeSchema())
	if data == nil {
		t.Fatal("must return an empty map, not nil")
	}
	if len(data) != 0 {
		t.Errorf("data = %v", data)
	}
	if client.Calls() != 1+structuredRetries {
		t.Errorf("calls = %d, want %d", client.Calls(), 1+structuredRetries)
	}
}

func TestGenerateStructuredStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewMockClient(`{"analysis":"ok","steps":[]}`)
	gw := New(client, nil)

	data := gw.GenerateStructured(ctx, "plan it", planLikeSchema())
	if len(data) != 0 {
		t.Errorf("expected empty map on cancelled context, got %v", data)
	}
}
