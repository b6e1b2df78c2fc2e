// README: Recommendation pipeline: resolve location -> cache check -> plan -> search.
package recommend

import (
	"context"
	"fmt"
	"log"
	"sort"

	"wayfare/internal/modules/location"
)

// Resolver is the slice of the location module the pipeline needs.
type Resolver interface {
	Resolve(ctx context.Context, cmd location.ResolveCommand) (*location.Resolution, error)
}

// Strategist produces the per-category search strategy.
type Strategist interface {
	Plan(ctx context.Context, req Request, existingNames []string) (*SearchStrategy, error)
}

// Executor runs a strategy against the place-search provider.
type Executor interface {
	Execute(ctx context.Context, cityID int64, strategy *SearchStrategy) (*Result, error)
}

type Service struct {
	resolver       Resolver
	planner        Strategist
	engine         Executor
	store          PlaceCache
	cacheThreshold int
}

func NewService(resolver Resolver, planner Strategist, engine Executor, store PlaceCache, cacheThreshold int) *Service {
	return &Service{
		resolver:       resolver,
		planner:        planner,
		engine:         engine,
		store:          store,
		cacheThreshold: cacheThreshold,
	}
}

// Recommend runs the full pipeline. Error outcomes the caller must branch on:
// *location.AmbiguousError (choose-one), location.ErrNotFound, ErrBadRequest,
// ErrStrategyGeneration, ErrNoResults.
func (s *Service) Recommend(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	res, err := s.resolver.Resolve(ctx, location.ResolveCommand{
		Country: req.Country,
		Region:  req.Region,
		City:    req.City,
		Hint:    req.Hint,
	})
	if err != nil {
		return nil, err
	}

	// A well-stocked cache short-circuits the whole generation round.
	cached, err := s.store.CachedPlaces(ctx, res.CityID)
	if err != nil {
		log.Printf("recommend: cache check for city %d: %v", res.CityID, err)
	} else if len(cached) >= s.cacheThreshold {
		return resultFromCache(res.CityID, cached), nil
	}

	names, err := s.store.ExistingPlaceNames(ctx, res.CityID)
	if err != nil {
		log.Printf("recommend: existing names for city %d: %v", res.CityID, err)
		names = nil
	}

	strategy, err := s.planner.Plan(ctx, req, names)
	if err != nil {
		return nil, err
	}
	if strategy.Ambiguous {
		// The model flagged the destination as ambiguous on its own; hand the
		// resolved identity back to the caller for confirmation.
		return nil, &location.AmbiguousError{Candidates: []location.Candidate{{
			PlaceID:     res.PlaceID,
			DisplayName: fmt.Sprintf("%s, %s", res.City, res.Country),
			Lat:         res.Location.Lat,
			Lng:         res.Location.Lng,
			Country:     res.Country,
			Region:      res.Region,
			City:        res.City,
		}}}
	}

	result, err := s.engine.Execute(ctx, res.CityID, strategy)
	if err != nil {
		return nil, err
	}
	result.MainTheme = strategy.MainTheme
	return result, nil
}

// resultFromCache groups the snapshot by category, ranks by rating, and caps.
// Every place served this way counts as previously recommended.
func resultFromCache(cityID int64, cached []CachedPlace) *Result {
	byCategory := make(map[Category][]CachedPlace)
	for _, p := range cached {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	recommendations := make(map[Category][]CachedPlace, len(Categories()))
	total := 0
	for _, cat := range Categories() {
		list := byCategory[cat]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Rating > list[j].Rating })
		if len(list) > categoryCap {
			list = list[:categoryCap]
		}
		recommendations[cat] = list
		total += len(list)
	}

	return &Result{
		CityID:                     cityID,
		Recommendations:            recommendations,
		PreviouslyRecommendedCount: total,
	}
}
