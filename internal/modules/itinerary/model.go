// README: Itinerary domain models: chosen places, scheduled activities, day plans.
package itinerary

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"wayfare/internal/modules/recommend"
	"wayfare/internal/types"
)

var (
	// ErrBadRequest marks caller-side validation failures.
	ErrBadRequest = errors.New("itinerary: invalid request")
	// ErrResponseMalformed means the model output could not be repaired into a
	// usable plan. It never reaches callers; it routes the request onto the
	// deterministic assembly path.
	ErrResponseMalformed = errors.New("itinerary: model response could not be repaired")
)

// Place is one caller-chosen stop to schedule.
type Place struct {
	PlaceID  string             `json:"place_id,omitempty"`
	Name     string             `json:"name"`
	Category recommend.Category `json:"category"`
	Address  string             `json:"address,omitempty"`
	Location types.Point        `json:"coordinates"`
}

// Request is the immutable itinerary input. DayStart and DayEnd are optional
// "HH:MM" clock strings.
type Request struct {
	City         string  `json:"city"`
	Places       []Place `json:"places"`
	DurationDays int     `json:"duration_days"`
	DayStart     string  `json:"day_start,omitempty"`
	DayEnd       string  `json:"day_end,omitempty"`
	Language     string  `json:"language,omitempty"`
}

func (r Request) validate() error {
	if len(r.Places) == 0 {
		return errors.New("at least one place is required")
	}
	if r.DurationDays < 1 || r.DurationDays > 90 {
		return errors.New("duration must be between 1 and 90 days")
	}
	start, err := parseClock(r.DayStart)
	if err != nil {
		return fmt.Errorf("day_start: %v", err)
	}
	end, err := parseClock(r.DayEnd)
	if err != nil {
		return fmt.Errorf("day_end: %v", err)
	}
	if end <= start {
		return errors.New("day_end must be after day_start")
	}
	return nil
}

// Activity labels. Lunch and dinner placement is asserted against these.
const (
	LabelActivity       = "activity"
	LabelLunch          = "lunch"
	LabelAfternoonBreak = "afternoon break"
	LabelDinner         = "dinner"
	LabelLodging        = "lodging"
)

// ScheduledActivity is one line item in a day. Note carries the transition
// into the next activity when one exists.
type ScheduledActivity struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Name      string `json:"name"`
	Label     string `json:"label"`
	Note      string `json:"note,omitempty"`
}

// DayPlan is one day's ordered schedule.
type DayPlan struct {
	Day        int                 `json:"day"`
	Theme      string              `json:"theme,omitempty"`
	Activities []ScheduledActivity `json:"activities"`
}

// RouteSummary is the best-effort travel total across the plan's legs.
type RouteSummary struct {
	TotalMinutes int `json:"total_minutes"`
	TotalMeters  int `json:"total_meters"`
}

// TravelPlan is the assembled multi-day schedule. Unplaced lists places that
// did not fit the available daily time; their presence is not an error.
type TravelPlan struct {
	Days        []DayPlan     `json:"days"`
	Unplaced    []string      `json:"unplaced,omitempty"`
	Route       *RouteSummary `json:"route_summary,omitempty"`
	GeneratedBy string        `json:"generated_by"`
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
