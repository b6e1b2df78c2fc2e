package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gmaps "wayfare/internal/maps"
)

type fakeSearcher struct {
	results map[string][]gmaps.Place
	errs    map[string]error
}

func (f *fakeSearcher) SearchText(ctx context.Context, query, language string) ([]gmaps.Place, error) {
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.results[query], nil
}

type memoryCache struct {
	places    []CachedPlace
	saveErr   error
	saveCalls int
}

func (m *memoryCache) ExistingPlaceNames(ctx context.Context, cityID int64) ([]string, error) {
	names := make([]string, 0, len(m.places))
	for _, p := range m.places {
		names = append(names, p.Name)
	}
	return names, nil
}

func (m *memoryCache) CachedPlaces(ctx context.Context, cityID int64) ([]CachedPlace, error) {
	return m.places, nil
}

func (m *memoryCache) SavePlaces(ctx context.Context, cityID int64, places []CachedPlace) (int, int, error) {
	m.saveCalls++
	if m.saveErr != nil {
		return 0, 0, m.saveErr
	}
	known := make(map[string]bool, len(m.places))
	for _, p := range m.places {
		known[p.PlaceID] = true
	}
	newCount, existingCount := 0, 0
	for _, p := range places {
		if known[p.PlaceID] {
			existingCount++
			continue
		}
		known[p.PlaceID] = true
		m.places = append(m.places, p)
		newCount++
	}
	return newCount, existingCount, nil
}

func place(id string, rating float32) gmaps.Place {
	return gmaps.Place{PlaceID: id, Name: "name-" + id, Rating: rating}
}

func singleVariantStrategy(queries map[Category]string) *SearchStrategy {
	s := &SearchStrategy{Queries: make(map[Category][]string)}
	for cat, q := range queries {
		s.Queries[cat] = []string{q}
	}
	return s
}

func TestExecuteRanksAndCaps(t *testing.T) {
	var sights []gmaps.Place
	for i := 0; i < 14; i++ {
		sights = append(sights, place(fmt.Sprintf("s%d", i), float32(i%5)))
	}
	searcher := &fakeSearcher{results: map[string][]gmaps.Place{"sq": sights}}
	store := &memoryCache{}
	engine := NewEngine(searcher, store, "en")

	result, err := engine.Execute(context.Background(), 1, singleVariantStrategy(map[Category]string{
		CategorySights: "sq",
	}))
	require.NoError(t, err)

	got := result.Recommendations[CategorySights]
	require.Len(t, got, categoryCap)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Rating, got[i].Rating)
	}
	assert.Equal(t, 14, result.NewlyRecommendedCount)
}

func TestExecutePersistsBeyondDisplayCap(t *testing.T) {
	var sights []gmaps.Place
	for i := 0; i < 13; i++ {
		sights = append(sights, place(fmt.Sprintf("s%d", i), 4.0))
	}
	searcher := &fakeSearcher{results: map[string][]gmaps.Place{"sq": sights}}
	store := &memoryCache{}
	engine := NewEngine(searcher, store, "en")

	result, err := engine.Execute(context.Background(), 1, singleVariantStrategy(map[Category]string{
		CategorySights: "sq",
	}))
	require.NoError(t, err)

	// The response trims to the cap, but every discovery reaches the store.
	assert.Len(t, result.Recommendations[CategorySights], categoryCap)
	assert.Len(t, store.places, 13)
	assert.Equal(t, 13, result.NewlyRecommendedCount)
	assert.Zero(t, result.PreviouslyRecommendedCount)
}

func TestExecuteDedupesWithinAndAcrossCategories(t *testing.T) {
	dup := place("shared", 4.5)
	searcher := &fakeSearcher{results: map[string][]gmaps.Place{
		"sq": {dup, dup, place("s1", 4.0)},
		"fq": {dup, place("f1", 4.2)},
	}}
	engine := NewEngine(searcher, &memoryCache{}, "en")

	result, err := engine.Execute(context.Background(), 1, singleVariantStrategy(map[Category]string{
		CategorySights: "sq",
		CategoryFood:   "fq",
	}))
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, cat := range Categories() {
		for _, p := range result.Recommendations[cat] {
			seen[p.PlaceID]++
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "place %s duplicated", id)
	}
}

func TestExecuteMergesVariants(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]gmaps.Place{
		"primary":  {place("a", 4.0)},
		"backfill": {place("b", 4.8), place("a", 4.0)},
	}}
	engine := NewEngine(searcher, &memoryCache{}, "en")

	strategy := &SearchStrategy{Queries: map[Category][]string{
		CategoryFood: {"primary", "backfill"},
	}}
	result, err := engine.Execute(context.Background(), 1, strategy)
	require.NoError(t, err)
	assert.Len(t, result.Recommendations[CategoryFood], 2)
}

func TestExecuteFailedVariantKeepsPartialResults(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]gmaps.Place{"ok": {place("a", 4.0)}},
		errs:    map[string]error{"boom": errors.New("transport")},
	}
	engine := NewEngine(searcher, &memoryCache{}, "en")

	strategy := &SearchStrategy{Queries: map[Category][]string{
		CategorySights: {"boom", "ok"},
	}}
	result, err := engine.Execute(context.Background(), 1, strategy)
	require.NoError(t, err)
	assert.Len(t, result.Recommendations[CategorySights], 1)
}

func TestExecuteEmptyCategoryIsNotAnError(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]gmaps.Place{"fq": {place("f1", 4.0)}}}
	engine := NewEngine(searcher, &memoryCache{}, "en")

	result, err := engine.Execute(context.Background(), 1, singleVariantStrategy(map[Category]string{
		CategorySights: "empty",
		CategoryFood:   "fq",
	}))
	require.NoError(t, err)
	assert.Empty(t, result.Recommendations[CategorySights])
	assert.Len(t, result.Recommendations[CategoryFood], 1)
}

func TestExecuteAllCategoriesEmptyFails(t *testing.T) {
	engine := NewEngine(&fakeSearcher{}, &memoryCache{}, "en")

	_, err := engine.Execute(context.Background(), 1, singleVariantStrategy(map[Category]string{
		CategorySights: "nothing",
		CategoryFood:   "nada",
	}))
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestExecuteBackfillsFromCache(t *testing.T) {
	store := &memoryCache{places: []CachedPlace{
		{PlaceID: "cached-1", Name: "Old Palace", Category: CategorySights, Rating: 4.6},
		{PlaceID: "cached-2", Name: "Old Market", Category: CategoryFood, Rating: 4.1},
	}}
	searcher := &fakeSearcher{results: map[string][]gmaps.Place{"sq": {place("fresh", 4.9)}}}
	engine := NewEngine(searcher, store, "en")

	result, err := engine.Execute(context.Background(), 1, singleVariantStrategy(map[Category]string{
		CategorySights: "sq",
	}))
	require.NoError(t, err)

	got := result.Recommendations[CategorySights]
	require.Len(t, got, 2)
	assert.Equal(t, "fresh", got[0].PlaceID)
	assert.Equal(t, "cached-1", got[1].PlaceID)
	assert.Equal(t, 1, result.NewlyRecommendedCount)
	assert.Equal(t, 1, result.PreviouslyRecommendedCount)
}

func TestExecuteStoreFailureIsSwallowed(t *testing.T) {
	store := &memoryCache{saveErr: errors.New("db down")}
	searcher := &fakeSearcher{results: map[string][]gmaps.Place{"sq": {place("a", 4.0)}}}
	engine := NewEngine(searcher, store, "en")

	result, err := engine.Execute(context.Background(), 1, singleVariantStrategy(map[Category]string{
		CategorySights: "sq",
	}))
	require.NoError(t, err)
	assert.Len(t, result.Recommendations[CategorySights], 1)
	assert.Zero(t, result.NewlyRecommendedCount)
}

func TestExecuteIdenticalRequestsNeverDoubleCount(t *testing.T) {
	store := &memoryCache{}
	searcher := &fakeSearcher{results: map[string][]gmaps.Place{"sq": {place("a", 4.0), place("b", 3.5)}}}
	engine := NewEngine(searcher, store, "en")
	strategy := singleVariantStrategy(map[Category]string{CategorySights: "sq"})

	first, err := engine.Execute(context.Background(), 1, strategy)
	require.NoError(t, err)
	assert.Equal(t, 2, first.NewlyRecommendedCount)
	assert.Equal(t, 0, first.PreviouslyRecommendedCount)

	second, err := engine.Execute(context.Background(), 1, strategy)
	require.NoError(t, err)
	assert.Equal(t, 0, second.NewlyRecommendedCount)
	assert.Equal(t, 2, second.PreviouslyRecommendedCount)
}
