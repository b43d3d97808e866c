package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestClientAnthropicRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("anthropic-version header missing")
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "test-model" {
			t.Errorf("model = %v", body["model"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"text": "hello back"}},
		})
	}))
	defer server.Close()

	client := NewClient("test-key",
		WithAPIConfig(server.URL, "test-model"),
		WithRateLimit(600, 10),
	)

	got, err := client.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello back" {
		t.Errorf("got %q", got)
	}
}

func TestClientOpenAIRequest(t *testing.T) {
	var sawJSONMode atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["response_format"]; ok {
			sawJSONMode.Store(true)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": `{"ok":true}`}},
			},
		})
	}))
	defer server.Close()

	// A base URL containing "openai" selects the OpenAI wire format.
	client := NewClient("test-key",
		WithAPIConfig(server.URL+"/openai/v1", "gpt-4o-mini"),
		WithRateLimit(600, 10),
	)

	got, err := client.CompleteJSON(context.Background(), "give me json")
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"ok":true}` {
		t.Errorf("got %q", got)
	}
	if !sawJSONMode.Load() {
		t.Error("response_format not requested in JSON mode")
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"text": "recovered"}},
		})
	}))
	defer server.Close()

	client := NewClient("test-key",
		WithAPIConfig(server.URL, "test-model"),
		WithRetry(2),
		WithRateLimit(600, 10),
	)

	got, err := client.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if got != "recovered" {
		t.Errorf("got %q", got)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d", calls.Load())
	}
}

func TestClientExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-key",
		WithAPIConfig(server.URL, "test-model"),
		WithRetry(1),
		WithRateLimit(600, 10),
	)

	if _, err := client.Complete(context.Background(), "hello"); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}
