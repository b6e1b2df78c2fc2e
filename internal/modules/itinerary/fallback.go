// README: Deterministic schedule assembly used when model-guided planning fails.
package itinerary

import (
	"fmt"

	"wayfare/internal/modules/recommend"
)

const (
	defaultDayStart = "09:00"
	defaultDayEnd   = "21:00"

	activityMinutes = 120
	bufferMinutes   = 30
	mealMinutes     = 90
	breakMinutes    = 60

	lunchOpen   = 12 * 60
	lunchClose  = 14 * 60
	breakOpen   = 15 * 60
	breakClose  = 17 * 60
	dinnerOpen  = 18 * 60
	dinnerClose = 20 * 60
)

// assembleFallback packs the chosen places into day schedules with a greedy
// clock walk. Places are consumed FIFO and roll over between days; whatever
// does not fit the total available time is reported unplaced, never an error.
func assembleFallback(req Request) *TravelPlan {
	start, _ := parseClock(req.DayStart)
	end, _ := parseClock(req.DayEnd)

	q := classify(req.Places)
	placed := make(map[string]bool)

	plan := &TravelPlan{GeneratedBy: "fallback"}
	for day := 1; day <= req.DurationDays; day++ {
		dp := buildDay(day, q, start, end, placed)
		if len(dp.Activities) == 0 {
			break
		}
		plan.Days = append(plan.Days, dp)
	}

	for _, p := range req.Places {
		if !placed[placeKey(p)] {
			plan.Unplaced = append(plan.Unplaced, p.Name)
		}
	}
	return plan
}

// queues hold the unscheduled places by coarse role. The last food and
// lodging entries are served without being consumed, so dinner is never
// starved by lunch and a single hotel hosts every night.
type queues struct {
	food    []Place
	lodging []Place
	other   []Place
}

func classify(places []Place) *queues {
	q := &queues{}
	for _, p := range places {
		switch p.Category {
		case recommend.CategoryFood:
			q.food = append(q.food, p)
		case recommend.CategoryLodging:
			q.lodging = append(q.lodging, p)
		default:
			q.other = append(q.other, p)
		}
	}
	return q
}

func (q *queues) takeFood() (Place, bool) {
	if len(q.food) == 0 {
		return Place{}, false
	}
	p := q.food[0]
	if len(q.food) > 1 {
		q.food = q.food[1:]
	}
	return p, true
}

func (q *queues) takeLodging() (Place, bool) {
	if len(q.lodging) == 0 {
		return Place{}, false
	}
	p := q.lodging[0]
	if len(q.lodging) > 1 {
		q.lodging = q.lodging[1:]
	}
	return p, true
}

func (q *queues) takeOther() (Place, bool) {
	if len(q.other) == 0 {
		return Place{}, false
	}
	p := q.other[0]
	q.other = q.other[1:]
	return p, true
}

func buildDay(day int, q *queues, start, end int, placed map[string]bool) DayPlan {
	dp := DayPlan{Day: day, Theme: fmt.Sprintf("Day %d", day)}
	clock := start
	lunchDone, breakDone, dinnerDone := false, false, false

	record := func(p Place, duration int, label, note string) {
		dp.Activities = append(dp.Activities, ScheduledActivity{
			StartTime: formatClock(clock),
			EndTime:   formatClock(clock + duration),
			Name:      p.Name,
			Label:     label,
			Note:      note,
		})
		placed[placeKey(p)] = true
	}

	for clock < end {
		if !lunchDone && clock > lunchClose {
			lunchDone = true
		}
		if !breakDone && clock > breakClose {
			breakDone = true
		}
		if !dinnerDone && clock > dinnerClose {
			dinnerDone = true
		}

		if !lunchDone && clock >= lunchOpen {
			if clock+mealMinutes <= end {
				if p, ok := q.takeFood(); ok {
					record(p, mealMinutes, LabelLunch, "")
					clock += mealMinutes + bufferMinutes
				}
			}
			lunchDone = true
			continue
		}
		if !breakDone && lunchDone && clock >= breakOpen {
			// A break draws from the food queue only when dinner stays covered.
			if len(q.food) >= 2 && clock+breakMinutes <= end {
				p, _ := q.takeFood()
				record(p, breakMinutes, LabelAfternoonBreak, "")
				clock += breakMinutes + bufferMinutes
			}
			breakDone = true
			continue
		}
		if !dinnerDone && clock >= dinnerOpen {
			if clock+mealMinutes <= end {
				if p, ok := q.takeFood(); ok {
					record(p, mealMinutes, LabelDinner, "")
					clock += mealMinutes + bufferMinutes
				}
			}
			dinnerDone = true
			continue
		}

		// Earliest pending meal window still ahead of the clock. Activities
		// must not run into it.
		boundary := end
		if !dinnerDone && len(q.food) > 0 && clock < dinnerOpen {
			boundary = dinnerOpen
		}
		if !breakDone && lunchDone && len(q.food) >= 2 && clock < breakOpen {
			boundary = breakOpen
		}
		if !lunchDone && len(q.food) > 0 && clock < lunchOpen {
			boundary = lunchOpen
		}
		// A meal window opening after the day ends never extends the day.
		if boundary > end {
			boundary = end
		}

		if len(q.other) > 0 && clock+activityMinutes <= boundary {
			p, _ := q.takeOther()
			record(p, activityMinutes, LabelActivity, "")
			clock += activityMinutes + bufferMinutes
			continue
		}
		if boundary < end {
			clock = boundary
			continue
		}
		break
	}

	if clock < end {
		if p, ok := q.takeLodging(); ok {
			record(p, end-clock, LabelLodging, "check in and rest")
		}
	}
	return dp
}

func placeKey(p Place) string {
	if p.PlaceID != "" {
		return p.PlaceID
	}
	return p.Name
}
