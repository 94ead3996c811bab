// Package llm provides completion-model clients for the question pipeline.
package llm

import "context"

// Completer sends one fully rendered prompt to a hosted model and returns the
// raw completion text. Implementations do not retry.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
