// README: Resolves free-text locations to canonical city identities, surfacing ambiguity.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	gmaps "wayfare/internal/maps"
	"wayfare/internal/types"
)

const (
	geocodeTimeout = 30 * time.Second
	retryBackoff   = 500 * time.Millisecond
	candidateTTL   = 30 * time.Minute
	maxCandidates  = 10

	candidateKeyPrefix = "wayfare:loc:candidate:"
)

// administrativeTypes marks geocode result types that count as a distinct
// administrative area for ambiguity detection.
var administrativeTypes = map[string]bool{
	"locality":                    true,
	"sublocality":                 true,
	"administrative_area_level_1": true,
	"administrative_area_level_2": true,
	"administrative_area_level_3": true,
}

// Geocoder is the slice of the maps gateway the resolver needs.
type Geocoder interface {
	Geocode(ctx context.Context, address, language string) ([]gmaps.GeocodeCandidate, error)
	GeocodeByPlaceID(ctx context.Context, placeID, language string) (*gmaps.GeocodeCandidate, error)
}

// Hierarchy persists the country/region/city identity rows.
type Hierarchy interface {
	GetOrCreateLocation(ctx context.Context, country, region, city string) (int64, error)
}

type Service struct {
	geocoder Geocoder
	store    Hierarchy
	redis    *redis.Client
	language string
}

func NewService(geocoder Geocoder, store Hierarchy, rdb *redis.Client, language string) *Service {
	return &Service{geocoder: geocoder, store: store, redis: rdb, language: language}
}

type ResolveCommand struct {
	Country string
	// Region is an optional administrative-area hint narrowing the geocode
	// when the city name alone is ambiguous within the country.
	Region string
	City   string
	// Hint is the opaque candidate id from a previous Ambiguous outcome.
	// When set, resolution trusts it and skips the ambiguity check.
	Hint string
}

// Resolve turns a (country, city) pair into a canonical city identity.
// Outcomes: (*Resolution, nil), (nil, *AmbiguousError), or (nil, ErrNotFound).
func (s *Service) Resolve(ctx context.Context, cmd ResolveCommand) (*Resolution, error) {
	if cmd.Hint != "" {
		return s.resolveHint(ctx, cmd)
	}

	address := geocodeAddress(cmd)
	results, err := s.geocodeWithRetry(ctx, address)
	if err != nil {
		log.Printf("location: geocode %q failed after retry: %v", address, err)
		return nil, ErrNotFound
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	admin := filterAdministrative(results)
	if len(admin) == 0 {
		// A single non-administrative match is still a usable identity.
		admin = results[:1]
	}
	admin = dedupeByPlaceID(admin)

	if len(admin) > 1 {
		candidates := toCandidates(admin)
		s.cacheCandidates(ctx, candidates)
		return nil, &AmbiguousError{Candidates: candidates}
	}
	return s.materialize(ctx, toCandidate(admin[0]), cmd)
}

// resolveHint short-circuits to the candidate the caller confirmed. The
// candidate cache is tried first; an expired entry falls back to a direct
// place-id geocode. A hint matching nothing degrades to ErrNotFound.
func (s *Service) resolveHint(ctx context.Context, cmd ResolveCommand) (*Resolution, error) {
	if c, ok := s.cachedCandidate(ctx, cmd.Hint); ok {
		return s.materialize(ctx, c, cmd)
	}

	geocoded, err := s.geocoder.GeocodeByPlaceID(ctx, cmd.Hint, s.language)
	if err != nil {
		log.Printf("location: geocode hint %s failed: %v", cmd.Hint, err)
		return nil, ErrNotFound
	}
	if geocoded == nil {
		return nil, ErrNotFound
	}
	return s.materialize(ctx, toCandidate(*geocoded), cmd)
}

func (s *Service) materialize(ctx context.Context, c Candidate, cmd ResolveCommand) (*Resolution, error) {
	country := c.Country
	if country == "" {
		country = cmd.Country
	}
	region := c.Region
	if region == "" {
		region = DefaultRegion
	}
	city := c.City
	if city == "" {
		city = cmd.City
	}

	cityID, err := s.store.GetOrCreateLocation(ctx, country, region, city)
	if err != nil {
		return nil, fmt.Errorf("location: materialize %s/%s/%s: %w", country, region, city, err)
	}
	return &Resolution{
		CityID:   cityID,
		Country:  country,
		Region:   region,
		City:     city,
		PlaceID:  c.PlaceID,
		Location: types.Point{Lat: c.Lat, Lng: c.Lng},
	}, nil
}

func geocodeAddress(cmd ResolveCommand) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{cmd.City, cmd.Region, cmd.Country} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// geocodeWithRetry retries a failed geocode once after a short backoff.
// Each attempt gets its own timeout so one stalled call cannot eat both tries.
func (s *Service) geocodeWithRetry(ctx context.Context, address string) ([]gmaps.GeocodeCandidate, error) {
	attempt := func() ([]gmaps.GeocodeCandidate, error) {
		callCtx, cancel := context.WithTimeout(ctx, geocodeTimeout)
		defer cancel()
		return s.geocoder.Geocode(callCtx, address, s.language)
	}

	results, err := attempt()
	if err == nil {
		return results, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryBackoff):
	}
	return attempt()
}

func (s *Service) cacheCandidates(ctx context.Context, candidates []Candidate) {
	if s.redis == nil {
		return
	}
	for _, c := range candidates {
		payload, err := json.Marshal(c)
		if err != nil {
			continue
		}
		if err := s.redis.Set(ctx, candidateKeyPrefix+c.PlaceID, payload, candidateTTL).Err(); err != nil {
			log.Printf("location: cache candidate %s: %v", c.PlaceID, err)
		}
	}
}

func (s *Service) cachedCandidate(ctx context.Context, placeID string) (Candidate, bool) {
	if s.redis == nil {
		return Candidate{}, false
	}
	payload, err := s.redis.Get(ctx, candidateKeyPrefix+placeID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("location: candidate lookup %s: %v", placeID, err)
		}
		return Candidate{}, false
	}
	var c Candidate
	if err := json.Unmarshal(payload, &c); err != nil {
		return Candidate{}, false
	}
	return c, true
}

func filterAdministrative(results []gmaps.GeocodeCandidate) []gmaps.GeocodeCandidate {
	var out []gmaps.GeocodeCandidate
	for _, r := range results {
		for _, t := range r.Types {
			if administrativeTypes[t] {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func dedupeByPlaceID(results []gmaps.GeocodeCandidate) []gmaps.GeocodeCandidate {
	seen := make(map[string]bool, len(results))
	out := results[:0:0]
	for _, r := range results {
		if r.PlaceID == "" || seen[r.PlaceID] {
			continue
		}
		seen[r.PlaceID] = true
		out = append(out, r)
	}
	return out
}

func toCandidates(results []gmaps.GeocodeCandidate) []Candidate {
	if len(results) > maxCandidates {
		results = results[:maxCandidates]
	}
	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		out = append(out, toCandidate(r))
	}
	return out
}

func toCandidate(r gmaps.GeocodeCandidate) Candidate {
	return Candidate{
		PlaceID:          r.PlaceID,
		DisplayName:      displayName(r),
		FormattedAddress: r.FormattedAddress,
		Lat:              r.Location.Lat,
		Lng:              r.Location.Lng,
		Country:          r.Country,
		Region:           r.Region,
		City:             r.City,
	}
}

func displayName(r gmaps.GeocodeCandidate) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.City, r.Region, r.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return r.FormattedAddress
	}
	return strings.Join(parts, ", ")
}
