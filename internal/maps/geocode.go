package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"wayfare/internal/types"
)

// GeocodeCandidate is one geocoding match with its administrative components
// already broken out.
type GeocodeCandidate struct {
	PlaceID          string      `json:"place_id"`
	FormattedAddress string      `json:"formatted_address"`
	Country          string      `json:"country,omitempty"`
	Region           string      `json:"region,omitempty"`
	City             string      `json:"city,omitempty"`
	Location         types.Point `json:"coordinates"`
	Types            []string    `json:"types,omitempty"`
}

// GeocodeService handles interactions with the Google Geocoding API.
type GeocodeService struct {
	client *maps.Client
}

func NewGeocodeService(apiKey string) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client}, nil
}

// Geocode resolves a free-text address into candidates, in provider relevance order.
func (s *GeocodeService) Geocode(ctx context.Context, address, language string) ([]GeocodeCandidate, error) {
	r := &maps.GeocodingRequest{
		Address:  address,
		Language: language,
	}
	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%w: geocode %q: %v", ErrProvider, address, err)
	}
	candidates := make([]GeocodeCandidate, 0, len(results))
	for _, result := range results {
		candidates = append(candidates, fromGeocodingResult(result))
	}
	return candidates, nil
}

// GeocodeByPlaceID resolves a known place id directly.
// An id the provider cannot resolve yields (nil, nil).
func (s *GeocodeService) GeocodeByPlaceID(ctx context.Context, placeID, language string) (*GeocodeCandidate, error) {
	r := &maps.GeocodingRequest{
		PlaceID:  placeID,
		Language: language,
	}
	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%w: geocode place %s: %v", ErrProvider, placeID, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	c := fromGeocodingResult(results[0])
	return &c, nil
}

func fromGeocodingResult(result maps.GeocodingResult) GeocodeCandidate {
	c := GeocodeCandidate{
		PlaceID:          result.PlaceID,
		FormattedAddress: result.FormattedAddress,
		Location:         types.Point{Lat: result.Geometry.Location.Lat, Lng: result.Geometry.Location.Lng},
		Types:            result.Types,
	}
	for _, comp := range result.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "country":
				c.Country = comp.LongName
			case "administrative_area_level_1":
				c.Region = comp.LongName
			case "locality":
				c.City = comp.LongName
			case "administrative_area_level_2":
				// Weaker city signal; only used when no locality was present.
				if c.City == "" {
					c.City = comp.LongName
				}
			}
		}
	}
	return c
}
