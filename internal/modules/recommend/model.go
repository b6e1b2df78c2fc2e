// README: Recommendation domain models: category enum + alias table, cached places, request/result shapes.
package recommend

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"wayfare/internal/types"
)

// Category is one of the fixed recommendation types.
type Category string

const (
	CategorySights     Category = "sights"
	CategoryFood       Category = "food"
	CategoryActivities Category = "activities"
	CategoryLodging    Category = "lodging"
)

// Categories returns the canonical set in fixed order. Response assembly and
// cross-category deduplication iterate in this order so output is deterministic.
func Categories() []Category {
	return []Category{CategorySights, CategoryFood, CategoryActivities, CategoryLodging}
}

// categoryAliases is the single declared table mapping free-text labels the
// model (or legacy clients) may use onto the canonical categories.
var categoryAliases = map[string]Category{
	"sights":              CategorySights,
	"sightseeing":         CategorySights,
	"attractions":         CategorySights,
	"tourist attractions": CategorySights,
	"landmarks":           CategorySights,
	"볼거리":                 CategorySights,
	"관광지":                 CategorySights,

	"food":        CategoryFood,
	"restaurants": CategoryFood,
	"dining":      CategoryFood,
	"eat":         CategoryFood,
	"먹거리":         CategoryFood,
	"맛집":          CategoryFood,

	"activities":   CategoryActivities,
	"activity":     CategoryActivities,
	"things to do": CategoryActivities,
	"experiences":  CategoryActivities,
	"즐길거리":         CategoryActivities,
	"액티비티":         CategoryActivities,

	"lodging":        CategoryLodging,
	"accommodation":  CategoryLodging,
	"accommodations": CategoryLodging,
	"hotels":         CategoryLodging,
	"hotel":          CategoryLodging,
	"stay":           CategoryLodging,
	"숙소":             CategoryLodging,
	"호텔":             CategoryLodging,
}

// ParseCategory normalizes a free-text label onto the canonical set.
func ParseCategory(label string) (Category, bool) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(label))]
	return c, ok
}

// defaultQueries back a category whose generated query came back blank, and
// double as backfill search variants. "{city}" is substituted per request.
var defaultQueries = map[Category]string{
	CategorySights:     "tourist attractions in {city}",
	CategoryFood:       "restaurants in {city}",
	CategoryActivities: "activities in {city}",
	CategoryLodging:    "hotels in {city}",
}

var (
	// ErrBadRequest marks caller-side validation failures.
	ErrBadRequest = errors.New("recommend: invalid request")
	// ErrStrategyGeneration means the model produced no usable search strategy.
	ErrStrategyGeneration = errors.New("recommend: no usable search strategy")
	// ErrNoResults means every category search came back empty.
	ErrNoResults = errors.New("recommend: no recommendations produced")
)

// Request is the immutable recommendation input.
type Request struct {
	Country         string
	Region          string // optional administrative-area hint for the geocoder
	City            string
	Hint            string // disambiguation place id from a prior ambiguous response
	DurationDays    int
	TravelersCount  int
	BudgetRange     string
	TravelStyles    []string
	SpecialRequests string
	Language        string
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Country) == "" || strings.TrimSpace(r.City) == "" {
		return errors.New("country and city are required")
	}
	if r.DurationDays < 1 || r.DurationDays > 90 {
		return errors.New("duration must be between 1 and 90 days")
	}
	if r.TravelersCount < 1 {
		return errors.New("travelers_count must be at least 1")
	}
	return nil
}

// SearchStrategy maps each category to its search query variants, primary first.
type SearchStrategy struct {
	MainTheme string
	Queries   map[Category][]string
	// Ambiguous carries the model's own judgment that the destination is
	// geographically ambiguous. Overridden when the caller supplied a hint.
	Ambiguous bool
}

// CachedPlace is one persisted recommendation belonging to a city.
type CachedPlace struct {
	ID               int64           `json:"id,omitempty"`
	CityID           int64           `json:"city_id"`
	PlaceID          string          `json:"place_id"`
	Name             string          `json:"name"`
	Category         Category        `json:"category"`
	Address          string          `json:"address,omitempty"`
	Location         types.Point     `json:"coordinates"`
	Rating           float64         `json:"rating,omitempty"`
	UserRatingsTotal int             `json:"total_ratings,omitempty"`
	PriceLevel       int             `json:"price_level,omitempty"`
	Raw              json.RawMessage `json:"-"`
	CreatedAt        time.Time       `json:"-"`
}

// Result is the successful recommendation outcome.
type Result struct {
	CityID                     int64
	MainTheme                  string
	Recommendations            map[Category][]CachedPlace
	PreviouslyRecommendedCount int
	NewlyRecommendedCount      int
}
