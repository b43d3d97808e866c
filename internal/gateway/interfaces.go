package gateway

import "context"

// TextCompleter is the transport-level contract for a backing language model.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}
