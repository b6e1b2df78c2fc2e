// README: Itinerary assembly: model-guided planning with a deterministic fallback.
package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"wayfare/internal/ai"
	"wayfare/internal/textrepair"
)

const (
	planMaxTokens = 3000
	planTimeout   = 60 * time.Second
)

// planKeys are the top-level keys the model is known to put the schedule
// under. The first present key wins.
var planKeys = []string{"travel_plan", "itinerary", "daily_plans", "days", "plan"}

// RoutePlanner estimates travel between two stops. Optional collaborator.
type RoutePlanner interface {
	GetTravelEstimate(ctx context.Context, origin, destination, language string) (time.Duration, int, error)
}

type Service struct {
	gen    ai.Generator
	routes RoutePlanner
}

// NewService builds the assembler. routes may be nil; the route summary is
// then omitted from every plan.
func NewService(gen ai.Generator, routes RoutePlanner) *Service {
	return &Service{gen: gen, routes: routes}
}

// Assemble produces a multi-day schedule for the chosen places. The model
// path is tried first; any generation or parsing failure degrades to the
// deterministic packer, never to an error.
func (s *Service) Assemble(ctx context.Context, req Request) (*TravelPlan, error) {
	if req.DayStart == "" {
		req.DayStart = defaultDayStart
	}
	if req.DayEnd == "" {
		req.DayEnd = defaultDayEnd
	}
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	plan, err := s.assembleWithModel(ctx, req)
	if err != nil {
		log.Printf("itinerary: model path failed, using deterministic assembly: %v", err)
		plan = assembleFallback(req)
	}

	s.attachRouteSummary(ctx, req, plan)
	return plan, nil
}

func (s *Service) assembleWithModel(ctx context.Context, req Request) (*TravelPlan, error) {
	callCtx, cancel := context.WithTimeout(ctx, planTimeout)
	defer cancel()

	answer, err := s.gen.Complete(callCtx, buildPlanPrompt(req), planMaxTokens)
	if err != nil {
		return nil, err
	}

	days, err := decodePlanBody(answer)
	if err != nil {
		return nil, err
	}
	if len(days) != req.DurationDays {
		return nil, fmt.Errorf("%w: got %d days, want %d", ErrResponseMalformed, len(days), req.DurationDays)
	}
	return &TravelPlan{Days: days, GeneratedBy: "model"}, nil
}

// modelDay and modelActivity absorb the field-name drift seen across model
// outputs before normalization into the canonical shapes.
type modelDay struct {
	Day        int             `json:"day"`
	Theme      string          `json:"theme"`
	Activities []modelActivity `json:"activities"`
}

type modelActivity struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Time      string `json:"time"`
	Name      string `json:"name"`
	Activity  string `json:"activity"`
	Place     string `json:"place"`
	Label     string `json:"label"`
	Note      string `json:"note"`
}

func decodePlanBody(answer string) ([]DayPlan, error) {
	// The model sometimes returns the day list bare, without a wrapper object.
	var bare []modelDay
	if err := textrepair.Decode(answer, &bare); err == nil && len(bare) > 0 {
		return normalizeDays(bare)
	}

	var wrapper map[string]json.RawMessage
	if err := textrepair.Decode(answer, &wrapper); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseMalformed, err)
	}
	for _, key := range planKeys {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		var days []modelDay
		if err := json.Unmarshal(raw, &days); err != nil {
			// Some outputs nest the day list one level deeper.
			var inner map[string]json.RawMessage
			if err := json.Unmarshal(raw, &inner); err != nil {
				return nil, fmt.Errorf("%w: key %q: %v", ErrResponseMalformed, key, err)
			}
			for _, innerKey := range planKeys {
				if innerRaw, ok := inner[innerKey]; ok {
					if err := json.Unmarshal(innerRaw, &days); err == nil {
						break
					}
				}
			}
		}
		if len(days) > 0 {
			return normalizeDays(days)
		}
	}
	return nil, fmt.Errorf("%w: no schedule body under known keys", ErrResponseMalformed)
}

func normalizeDays(raw []modelDay) ([]DayPlan, error) {
	days := make([]DayPlan, 0, len(raw))
	for i, d := range raw {
		day := DayPlan{Day: d.Day, Theme: d.Theme}
		if day.Day == 0 {
			day.Day = i + 1
		}
		for _, a := range d.Activities {
			act, err := normalizeActivity(a)
			if err != nil {
				return nil, err
			}
			day.Activities = append(day.Activities, act)
		}
		if len(day.Activities) == 0 {
			return nil, fmt.Errorf("%w: day %d has no activities", ErrResponseMalformed, day.Day)
		}
		days = append(days, day)
	}
	return days, nil
}

func normalizeActivity(a modelActivity) (ScheduledActivity, error) {
	name := firstNonEmpty(a.Name, a.Activity, a.Place)
	if name == "" {
		return ScheduledActivity{}, fmt.Errorf("%w: activity without a name", ErrResponseMalformed)
	}

	start, end := a.StartTime, a.EndTime
	if start == "" && a.Time != "" {
		// "10:00 - 12:00" style combined ranges.
		parts := strings.SplitN(a.Time, "-", 2)
		start = strings.TrimSpace(parts[0])
		if len(parts) == 2 && end == "" {
			end = strings.TrimSpace(parts[1])
		}
	}
	if _, err := parseClock(start); err != nil {
		return ScheduledActivity{}, fmt.Errorf("%w: activity %q: %v", ErrResponseMalformed, name, err)
	}

	label := strings.ToLower(strings.TrimSpace(a.Label))
	if label == "" {
		label = LabelActivity
	}
	return ScheduledActivity{
		StartTime: start,
		EndTime:   end,
		Name:      name,
		Label:     label,
		Note:      a.Note,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func buildPlanPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a travel scheduler. Build a %d-day itinerary for %s.\n", req.DurationDays, req.City)
	fmt.Fprintf(&b, "Each day runs from %s to %s.\n\n", req.DayStart, req.DayEnd)

	b.WriteString("Places to schedule (name | category):\n")
	for _, p := range req.Places {
		fmt.Fprintf(&b, "- %s | %s\n", p.Name, p.Category)
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Place lunch between 12:00 and 14:00 and dinner between 18:00 and 20:00, using food places.\n")
	b.WriteString("- End each day at a lodging place; the next day starts near the previous night's lodging.\n")
	b.WriteString("- Leave a short break between consecutive activities.\n")
	b.WriteString("- Use only the places listed above.\n")

	b.WriteString("\nRespond with JSON only, shaped exactly as:\n")
	b.WriteString(`{"days": [{"day": 1, "theme": "...", "activities": [{"start_time": "09:00", "end_time": "11:00", "name": "...", "label": "activity|lunch|dinner|lodging", "note": "..."}]}]}`)
	b.WriteString("\n")
	if req.Language != "" {
		fmt.Fprintf(&b, "Write names and notes in language code %q.\n", req.Language)
	}
	return b.String()
}

// attachRouteSummary sums travel legs between consecutive scheduled places
// that can be located in the request. Any provider failure just drops the leg.
func (s *Service) attachRouteSummary(ctx context.Context, req Request, plan *TravelPlan) {
	if s.routes == nil {
		return
	}

	locations := make(map[string]string, len(req.Places))
	for _, p := range req.Places {
		// A zero-value point means the caller never located the place.
		if p.Location.Lat == 0 && p.Location.Lng == 0 {
			continue
		}
		locations[strings.ToLower(p.Name)] = fmt.Sprintf("%f,%f", p.Location.Lat, p.Location.Lng)
	}

	var totalDuration time.Duration
	var totalMeters, legs int
	for _, day := range plan.Days {
		var prev string
		for _, act := range day.Activities {
			loc, ok := locations[strings.ToLower(act.Name)]
			if !ok {
				continue
			}
			if prev != "" {
				d, meters, err := s.routes.GetTravelEstimate(ctx, prev, loc, req.Language)
				if err != nil {
					log.Printf("itinerary: travel estimate %s -> %s: %v", prev, loc, err)
				} else {
					totalDuration += d
					totalMeters += meters
					legs++
				}
			}
			prev = loc
		}
	}
	if legs > 0 {
		plan.Route = &RouteSummary{
			TotalMinutes: int(totalDuration.Minutes()),
			TotalMeters:  totalMeters,
		}
	}
}
