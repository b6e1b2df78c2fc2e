// README: Location identity models: geocode candidates, resolution outcome, errors.
package location

import (
	"errors"
	"fmt"

	"wayfare/internal/types"
)

// DefaultRegion is the placeholder region name used when the provider gives
// no administrative_area_level_1 component for a resolved city.
const DefaultRegion = "_DEFAULT_"

// ErrNotFound covers both zero geocoding matches and exhausted retries on
// transient provider failures; the request is user-correctable either way.
var ErrNotFound = errors.New("location: not found")

// Candidate is one possible match for an ambiguous location input. PlaceID is
// the opaque identifier a caller resubmits to confirm a choice.
type Candidate struct {
	PlaceID          string  `json:"place_id"`
	DisplayName      string  `json:"display_name"`
	FormattedAddress string  `json:"formatted_address"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	Country          string  `json:"country,omitempty"`
	Region           string  `json:"region,omitempty"`
	City             string  `json:"city,omitempty"`
}

// AmbiguousError reports that the input matched several distinct
// administrative areas. It is a recoverable outcome, not a failure.
type AmbiguousError struct {
	Candidates []Candidate
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("location: ambiguous input, %d candidates", len(e.Candidates))
}

// Resolution is the canonical identity of a successfully resolved city.
type Resolution struct {
	CityID   int64
	Country  string
	Region   string
	City     string
	PlaceID  string
	Location types.Point
}
