// README: Turns trip context into per-category search queries via the language model.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wayfare/internal/ai"
	"wayfare/internal/textrepair"
)

const (
	strategyMaxTokens = 1200
	strategyTimeout   = 60 * time.Second

	// Only the most recent names steer the model; the full history would
	// blow up the prompt for well-cached cities.
	maxExclusionNames = 10
)

// Planner produces a SearchStrategy for a recommendation request.
type Planner struct {
	generator ai.Generator
}

func NewPlanner(generator ai.Generator) *Planner {
	return &Planner{generator: generator}
}

// strategyPayload is the shape the model is instructed to answer with.
type strategyPayload struct {
	Status    string            `json:"status"`
	MainTheme string            `json:"main_theme"`
	Queries   map[string]string `json:"queries"`
}

// Plan asks the model for one search query per category. Every canonical
// category must be present in the answer (after alias normalization) or the
// whole request fails; a present-but-blank query falls back to the default.
func (p *Planner) Plan(ctx context.Context, req Request, existingNames []string) (*SearchStrategy, error) {
	prompt := buildStrategyPrompt(req, existingNames)

	callCtx, cancel := context.WithTimeout(ctx, strategyTimeout)
	defer cancel()

	text, err := p.generator.Complete(callCtx, prompt, strategyMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStrategyGeneration, err)
	}

	var payload strategyPayload
	if err := textrepair.Decode(text, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStrategyGeneration, err)
	}

	strategy := &SearchStrategy{
		MainTheme: strings.TrimSpace(payload.MainTheme),
		Queries:   make(map[Category][]string, len(Categories())),
		// Caller-confirmed identity always wins over the model's judgment.
		Ambiguous: strings.EqualFold(payload.Status, "ambiguous") && req.Hint == "",
	}

	normalized := make(map[Category]string, len(payload.Queries))
	for label, query := range payload.Queries {
		cat, ok := ParseCategory(label)
		if !ok {
			continue
		}
		normalized[cat] = strings.TrimSpace(query)
	}

	for _, cat := range Categories() {
		query, ok := normalized[cat]
		if !ok {
			return nil, fmt.Errorf("%w: category %s missing from model answer", ErrStrategyGeneration, cat)
		}
		if query == "" {
			query = defaultQueries[cat]
		}
		primary := substituteCity(query, req.City)
		variants := []string{primary}
		if backfill := substituteCity(defaultQueries[cat], req.City); backfill != primary {
			variants = append(variants, backfill)
		}
		strategy.Queries[cat] = variants
	}
	return strategy, nil
}

func substituteCity(query, city string) string {
	return strings.ReplaceAll(query, "{city}", city)
}

func buildStrategyPrompt(req Request, existingNames []string) string {
	if len(existingNames) > maxExclusionNames {
		existingNames = existingNames[:maxExclusionNames]
	}
	exclusions := "none"
	if len(existingNames) > 0 {
		exclusions = strings.Join(existingNames, "; ")
	}
	styles := "none"
	if len(req.TravelStyles) > 0 {
		styles = strings.Join(req.TravelStyles, ", ")
	}
	special := req.SpecialRequests
	if special == "" {
		special = "none"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Role: You are a travel search strategist. Design one place-search query per category for the trip below.

Trip:
- Destination: %s, %s
- Duration: %d days
- Travelers: %d
- Budget: %s
- Styles: %s
- Special requests: %s

Already recommended places (avoid surfacing these again; steer queries toward fresh results): %s

Rules:
1. First judge the destination. If the city name could refer to more than one distinct real-world area, set "status" to "ambiguous"; otherwise "ok".
2. Produce exactly one search query for each category: sights, food, activities, lodging. Queries are for a place text-search API, so keep them short and concrete. You may use the literal placeholder {city} for the city name.
3. Pick a short "main_theme" capturing the trip's angle.

Answer with JSON only:
{"status": "ok" | "ambiguous", "main_theme": "string", "queries": {"sights": "string", "food": "string", "activities": "string", "lodging": "string"}}
`,
		req.City, req.Country, req.DurationDays, req.TravelersCount,
		req.BudgetRange, styles, special, exclusions)
	return b.String()
}
