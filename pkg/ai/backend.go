package ai

import "context"

// Backend is a single generation backend capable of producing text from a
// prompt. Implementations are stateless between calls; connection reuse is a
// performance detail, not a correctness requirement.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
