// Package search provides web search for the research phase through a
// Serper-style JSON API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client retrieves search results for a query. The research phase treats a
// failed search as an empty topic, so implementations may error freely.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// HTTPClient talks to a Serper-compatible search endpoint.
type HTTPClient struct {
	apiKey     string
	endpoint   string
	maxResults int
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*HTTPClient)

func WithEndpoint(endpoint string) Option {
	return func(c *HTTPClient) {
		c.endpoint = endpoint
	}
}

func WithMaxResults(n int) Option {
	return func(c *HTTPClient) {
		c.maxResults = n
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

func NewHTTPClient(apiKey string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		apiKey:     apiKey,
		endpoint:   "https://google.serper.dev/search",
		maxResults: 5,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Search(ctx context.Context, query string) ([]Result, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"q":   query,
		"num": c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Organic []Result `json:"organic"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	results := parsed.Organic
	if len(results) > c.maxResults {
		results = results[:c.maxResults]
	}

	c.logger.Debug("search completed",
		"query", query,
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds())

	return results, nil
}

// FormatResults renders hits as bulleted context for a model prompt.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", r.Title, r.Snippet, r.Link)
	}
	return b.String()
}
