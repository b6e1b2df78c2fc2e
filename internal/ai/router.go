package ai

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// Router selects one provider per call by an explicit preference value and
// falls back to the remaining providers when the preferred one fails.
type Router struct {
	providers map[string]Generator
	preferred string
}

// NewRouter builds a Router over named providers. preferred names the backend
// tried first; an unknown name simply means no provider is promoted.
func NewRouter(providers map[string]Generator, preferred string) *Router {
	return &Router{providers: providers, preferred: preferred}
}

func (r *Router) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if len(r.providers) == 0 {
		return "", fmt.Errorf("%w: no providers configured", ErrGeneration)
	}

	var lastErr error
	for _, name := range r.order() {
		text, err := r.providers[name].Complete(ctx, prompt, maxTokens)
		if err == nil {
			return text, nil
		}
		log.Printf("ai: provider %s failed: %v", name, err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

// order returns provider names with the preferred one first; the remainder is
// sorted so fallback order is deterministic.
func (r *Router) order() []string {
	rest := make([]string, 0, len(r.providers))
	for name := range r.providers {
		if name != r.preferred {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	if _, ok := r.providers[r.preferred]; ok {
		return append([]string{r.preferred}, rest...)
	}
	return rest
}
