package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestRouterPreferredProviderWins(t *testing.T) {
	gemini := &fakeGenerator{text: "from gemini"}
	oai := &fakeGenerator{text: "from openai"}
	r := NewRouter(map[string]Generator{"gemini": gemini, "openai": oai}, "openai")

	text, err := r.Complete(context.Background(), "hi", 100)
	require.NoError(t, err)
	assert.Equal(t, "from openai", text)
	assert.Zero(t, gemini.calls)
}

func TestRouterFallsBackOnFailure(t *testing.T) {
	gemini := &fakeGenerator{err: errors.New("quota exceeded")}
	oai := &fakeGenerator{text: "from openai"}
	r := NewRouter(map[string]Generator{"gemini": gemini, "openai": oai}, "gemini")

	text, err := r.Complete(context.Background(), "hi", 100)
	require.NoError(t, err)
	assert.Equal(t, "from openai", text)
	assert.Equal(t, 1, gemini.calls)
}

func TestRouterAllProvidersFail(t *testing.T) {
	boom := &fakeGenerator{err: ErrGeneration}
	r := NewRouter(map[string]Generator{"gemini": boom}, "gemini")

	_, err := r.Complete(context.Background(), "hi", 100)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestRouterNoProviders(t *testing.T) {
	r := NewRouter(nil, "gemini")
	_, err := r.Complete(context.Background(), "hi", 100)
	assert.ErrorIs(t, err, ErrGeneration)
}
