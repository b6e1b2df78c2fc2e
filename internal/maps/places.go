package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"wayfare/internal/types"
)

// ErrProvider wraps transport-level failures from the Google Maps APIs so
// callers can classify them without inspecting provider internals.
var ErrProvider = errors.New("maps: provider error")

// Place is the provider-neutral place record used across the pipeline.
type Place struct {
	PlaceID          string          `json:"place_id"`
	Name             string          `json:"name"`
	Address          string          `json:"address,omitempty"`
	Location         types.Point     `json:"coordinates"`
	Rating           float32         `json:"rating,omitempty"`
	UserRatingsTotal int             `json:"total_ratings,omitempty"`
	PriceLevel       int             `json:"price_level,omitempty"`
	Types            []string        `json:"types,omitempty"`
	PhotoRefs        []string        `json:"photos,omitempty"`
	Raw              json.RawMessage `json:"-"`
}

// PlaceDetails extends Place with the extra fields only the details call returns.
type PlaceDetails struct {
	Place
	Phone        string   `json:"phone,omitempty"`
	Website      string   `json:"website,omitempty"`
	OpeningHours []string `json:"opening_hours,omitempty"`
}

// PlacesService handles interactions with the Google Places API.
type PlacesService struct {
	client *maps.Client
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// SearchText runs a free-text place search. Results are deduplicated by
// place id; provider relevance order is preserved.
func (s *PlacesService) SearchText(ctx context.Context, query, language string) ([]Place, error) {
	r := &maps.TextSearchRequest{
		Query:    query,
		Language: language,
	}

	resp, err := s.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%w: text search %q: %v", ErrProvider, query, err)
	}

	seen := make(map[string]bool, len(resp.Results))
	results := make([]Place, 0, len(resp.Results))
	for _, result := range resp.Results {
		if result.PlaceID == "" || seen[result.PlaceID] {
			continue
		}
		seen[result.PlaceID] = true
		results = append(results, fromSearchResult(result))
	}
	return results, nil
}

// Details fetches the full record for a known place id.
// A place the provider no longer knows yields (nil, nil).
func (s *PlacesService) Details(ctx context.Context, placeID, language string) (*PlaceDetails, error) {
	r := &maps.PlaceDetailsRequest{
		PlaceID:  placeID,
		Language: language,
	}

	resp, err := s.client.PlaceDetails(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%w: place details %s: %v", ErrProvider, placeID, err)
	}
	if resp.PlaceID == "" {
		return nil, nil
	}

	d := &PlaceDetails{
		Place: Place{
			PlaceID:          resp.PlaceID,
			Name:             resp.Name,
			Address:          resp.FormattedAddress,
			Location:         types.Point{Lat: resp.Geometry.Location.Lat, Lng: resp.Geometry.Location.Lng},
			Rating:           resp.Rating,
			UserRatingsTotal: resp.UserRatingsTotal,
			PriceLevel:       resp.PriceLevel,
			Types:            resp.Types,
			PhotoRefs:        photoRefs(resp.Photos),
		},
		Phone:   resp.FormattedPhoneNumber,
		Website: resp.Website,
	}
	if resp.OpeningHours != nil {
		d.OpeningHours = resp.OpeningHours.WeekdayText
	}
	if raw, err := json.Marshal(resp); err == nil {
		d.Raw = raw
	}
	return d, nil
}

func fromSearchResult(result maps.PlacesSearchResult) Place {
	p := Place{
		PlaceID:          result.PlaceID,
		Name:             result.Name,
		Address:          result.FormattedAddress,
		Location:         types.Point{Lat: result.Geometry.Location.Lat, Lng: result.Geometry.Location.Lng},
		Rating:           result.Rating,
		UserRatingsTotal: result.UserRatingsTotal,
		PriceLevel:       result.PriceLevel,
		Types:            result.Types,
		PhotoRefs:        photoRefs(result.Photos),
	}
	if raw, err := json.Marshal(result); err == nil {
		p.Raw = raw
	}
	return p
}

func photoRefs(photos []maps.Photo) []string {
	if len(photos) == 0 {
		return nil
	}
	refs := make([]string, 0, len(photos))
	for _, ph := range photos {
		if ph.PhotoReference != "" {
			refs = append(refs, ph.PhotoReference)
		}
	}
	return refs
}
