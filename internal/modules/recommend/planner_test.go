package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *scriptedGenerator) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	s.lastPrompt = prompt
	return s.response, s.err
}

func plannerRequest() Request {
	return Request{
		Country:        "South Korea",
		City:           "Seoul",
		DurationDays:   3,
		TravelersCount: 2,
		BudgetRange:    "mid",
		TravelStyles:   []string{"culture"},
	}
}

func TestPlanParsesFencedAnswer(t *testing.T) {
	gen := &scriptedGenerator{response: "```json\n" + `{
		"status": "ok",
		"main_theme": "royal heritage",
		"queries": {
			"sights": "palaces in {city}",
			"food": "traditional restaurants in {city}",
			"activities": "hanbok experiences in {city}",
			"lodging": "boutique hotels in {city}"
		}
	}` + "\n```"}

	strategy, err := NewPlanner(gen).Plan(context.Background(), plannerRequest(), nil)
	require.NoError(t, err)
	assert.Equal(t, "royal heritage", strategy.MainTheme)
	assert.False(t, strategy.Ambiguous)
	require.Len(t, strategy.Queries, 4)
	assert.Equal(t, "palaces in Seoul", strategy.Queries[CategorySights][0])
	// The default query rides along as a backfill variant.
	assert.Contains(t, strategy.Queries[CategorySights], "tourist attractions in Seoul")
}

func TestPlanNormalizesAliasLabels(t *testing.T) {
	gen := &scriptedGenerator{response: `{
		"status": "ok",
		"main_theme": "t",
		"queries": {
			"볼거리": "landmarks in {city}",
			"restaurants": "street food in {city}",
			"things to do": "markets in {city}",
			"hotels": "hostels in {city}"
		}
	}`}

	strategy, err := NewPlanner(gen).Plan(context.Background(), plannerRequest(), nil)
	require.NoError(t, err)
	assert.Equal(t, "landmarks in Seoul", strategy.Queries[CategorySights][0])
	assert.Equal(t, "hostels in Seoul", strategy.Queries[CategoryLodging][0])
}

func TestPlanMissingCategoryFails(t *testing.T) {
	gen := &scriptedGenerator{response: `{
		"status": "ok",
		"queries": {"sights": "a", "food": "b", "activities": "c"}
	}`}

	_, err := NewPlanner(gen).Plan(context.Background(), plannerRequest(), nil)
	assert.ErrorIs(t, err, ErrStrategyGeneration)
}

func TestPlanBlankQueryFallsBackToDefault(t *testing.T) {
	gen := &scriptedGenerator{response: `{
		"status": "ok",
		"queries": {"sights": "", "food": "b", "activities": "c", "lodging": "d"}
	}`}

	strategy, err := NewPlanner(gen).Plan(context.Background(), plannerRequest(), nil)
	require.NoError(t, err)
	assert.Equal(t, "tourist attractions in Seoul", strategy.Queries[CategorySights][0])
}

func TestPlanUnparseableAnswerFails(t *testing.T) {
	gen := &scriptedGenerator{response: "I would love to help but cannot."}
	_, err := NewPlanner(gen).Plan(context.Background(), plannerRequest(), nil)
	assert.ErrorIs(t, err, ErrStrategyGeneration)
}

func TestPlanGeneratorFailureFails(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("quota")}
	_, err := NewPlanner(gen).Plan(context.Background(), plannerRequest(), nil)
	assert.ErrorIs(t, err, ErrStrategyGeneration)
}

func TestPlanAmbiguousVerdictOverriddenByHint(t *testing.T) {
	response := `{
		"status": "ambiguous",
		"queries": {"sights": "a", "food": "b", "activities": "c", "lodging": "d"}
	}`

	gen := &scriptedGenerator{response: response}
	strategy, err := NewPlanner(gen).Plan(context.Background(), plannerRequest(), nil)
	require.NoError(t, err)
	assert.True(t, strategy.Ambiguous)

	req := plannerRequest()
	req.Hint = "place-gwangju-metro"
	gen = &scriptedGenerator{response: response}
	strategy, err = NewPlanner(gen).Plan(context.Background(), req, nil)
	require.NoError(t, err)
	assert.False(t, strategy.Ambiguous)
}

func TestPlanPromptEmbedsExclusions(t *testing.T) {
	gen := &scriptedGenerator{response: `{
		"status": "ok",
		"queries": {"sights": "a", "food": "b", "activities": "c", "lodging": "d"}
	}`}

	names := []string{"Gyeongbokgung Palace", "Bukchon Hanok Village"}
	_, err := NewPlanner(gen).Plan(context.Background(), plannerRequest(), names)
	require.NoError(t, err)
	assert.Contains(t, gen.lastPrompt, "Gyeongbokgung Palace")
	assert.Contains(t, gen.lastPrompt, "Bukchon Hanok Village")
}

func TestPlanPromptCapsExclusionList(t *testing.T) {
	gen := &scriptedGenerator{response: `{
		"status": "ok",
		"queries": {"sights": "a", "food": "b", "activities": "c", "lodging": "d"}
	}`}

	names := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		names = append(names, "Place-"+strings.Repeat("x", i+1))
	}
	_, err := NewPlanner(gen).Plan(context.Background(), plannerRequest(), names)
	require.NoError(t, err)
	assert.NotContains(t, gen.lastPrompt, names[10])
}
