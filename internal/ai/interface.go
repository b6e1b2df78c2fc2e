package ai

import (
	"context"
	"errors"
)

// ErrGeneration wraps transport, quota, or empty-response failures from any backend.
var ErrGeneration = errors.New("ai: generation failed")

// Generator defines the contract for text-completion backends.
// This interface allows swapping providers (Gemini, OpenAI, fakes in tests).
type Generator interface {
	// Complete submits prompt and returns the raw completion text.
	// maxTokens <= 0 leaves the backend default in place. No structure is
	// guaranteed on the returned text; callers repair/parse it themselves.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}
