// README: Executes search strategies: concurrent fan-out, dedupe, rank, cap, persist.
package recommend

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	gmaps "wayfare/internal/maps"
)

const (
	categoryCap   = 10
	searchTimeout = 30 * time.Second
)

// Searcher is the slice of the maps gateway the engine needs.
type Searcher interface {
	SearchText(ctx context.Context, query, language string) ([]gmaps.Place, error)
}

// PlaceCache is the store surface shared by the engine and the service.
type PlaceCache interface {
	ExistingPlaceNames(ctx context.Context, cityID int64) ([]string, error)
	CachedPlaces(ctx context.Context, cityID int64) ([]CachedPlace, error)
	SavePlaces(ctx context.Context, cityID int64, places []CachedPlace) (newCount, existingCount int, err error)
}

type Engine struct {
	searcher Searcher
	store    PlaceCache
	language string
}

func NewEngine(searcher Searcher, store PlaceCache, language string) *Engine {
	return &Engine{searcher: searcher, store: store, language: language}
}

// Execute fans out one search per query variant, each with its own timeout so
// a slow category never blocks completed ones. A failed variant degrades to
// partial results; only a fully empty request is an error.
func (e *Engine) Execute(ctx context.Context, cityID int64, strategy *SearchStrategy) (*Result, error) {
	found := make(map[Category][]gmaps.Place)
	var mu sync.Mutex
	var g errgroup.Group

	for cat, variants := range strategy.Queries {
		for _, query := range variants {
			cat, query := cat, query
			g.Go(func() error {
				callCtx, cancel := context.WithTimeout(ctx, searchTimeout)
				defer cancel()

				places, err := e.searcher.SearchText(callCtx, query, e.language)
				if err != nil {
					log.Printf("recommend: search %q failed: %v", query, err)
					return nil
				}
				mu.Lock()
				found[cat] = append(found[cat], places...)
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	recommendations := make(map[Category][]CachedPlace, len(Categories()))
	seen := make(map[string]bool)
	var discovered []CachedPlace
	backfillPool := e.backfillPool(ctx, cityID)

	total := 0
	backfilled := 0
	for _, cat := range Categories() {
		if _, planned := strategy.Queries[cat]; !planned {
			continue
		}
		merged := mergeCategory(found[cat], cityID, cat, seen)
		discovered = append(discovered, merged...)
		display := merged
		if len(display) > categoryCap {
			display = display[:categoryCap]
		}
		if len(display) < categoryCap {
			extra := backfill(backfillPool, cat, seen, categoryCap-len(display))
			backfilled += len(extra)
			display = append(display, extra...)
		}
		recommendations[cat] = display
		total += len(display)
	}

	if total == 0 {
		return nil, ErrNoResults
	}

	// Best-effort persistence; a store failure must not block the response.
	// Every discovery is saved, including those trimmed from the displayed
	// slices, so they count toward future freshness checks.
	newCount, existingCount, err := e.store.SavePlaces(ctx, cityID, discovered)
	if err != nil {
		log.Printf("recommend: save places for city %d: %v", cityID, err)
		newCount, existingCount = 0, 0
	}

	return &Result{
		CityID:                     cityID,
		Recommendations:            recommendations,
		NewlyRecommendedCount:      newCount,
		PreviouslyRecommendedCount: existingCount + backfilled,
	}, nil
}

// mergeCategory dedupes a category's raw results (within the category and
// against every earlier category) and ranks by rating descending with a
// stable sort so provider order breaks ties. The caller caps what it shows.
func mergeCategory(places []gmaps.Place, cityID int64, cat Category, seen map[string]bool) []CachedPlace {
	merged := make([]CachedPlace, 0, len(places))
	for _, p := range places {
		if p.PlaceID == "" || seen[p.PlaceID] {
			continue
		}
		seen[p.PlaceID] = true
		merged = append(merged, CachedPlace{
			CityID:           cityID,
			PlaceID:          p.PlaceID,
			Name:             p.Name,
			Category:         cat,
			Address:          p.Address,
			Location:         p.Location,
			Rating:           float64(p.Rating),
			UserRatingsTotal: p.UserRatingsTotal,
			PriceLevel:       p.PriceLevel,
			Raw:              p.Raw,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Rating > merged[j].Rating
	})
	return merged
}

func (e *Engine) backfillPool(ctx context.Context, cityID int64) map[Category][]CachedPlace {
	cached, err := e.store.CachedPlaces(ctx, cityID)
	if err != nil {
		log.Printf("recommend: load cache for city %d: %v", cityID, err)
		return nil
	}
	pool := make(map[Category][]CachedPlace)
	for _, p := range cached {
		pool[p.Category] = append(pool[p.Category], p)
	}
	return pool
}

func backfill(pool map[Category][]CachedPlace, cat Category, seen map[string]bool, n int) []CachedPlace {
	var out []CachedPlace
	for _, p := range pool[cat] {
		if n == 0 {
			break
		}
		if seen[p.PlaceID] {
			continue
		}
		seen[p.PlaceID] = true
		out = append(out, p)
		n--
	}
	return out
}
