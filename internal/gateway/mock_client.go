package gateway

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a scripted TextCompleter for tests. Responses are consumed in
// order; when the script runs out the last entry repeats. Safe for concurrent
// use so researcher fan-out tests can share one instance.
type MockClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

// NewMockClient scripts the given responses in order.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{responses: responses}
}

// FailWith makes the next len(errs) calls return the given errors before the
// scripted responses resume.
func (m *MockClient) FailWith(errs ...error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, errs...)
	return m
}

func (m *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	return m.next(ctx, prompt)
}

func (m *MockClient) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	return m.next(ctx, prompt)
}

func (m *MockClient) next(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)

	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return "", err
	}
	if len(m.responses) == 0 {
		return "", fmt.Errorf("mock client has no scripted responses")
	}
	if len(m.responses) == 1 {
		return m.responses[0], nil
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

// Calls reports how many completions were requested.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns a copy of every prompt received, in order.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
