package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "sponsorcal/internal/log"
	"sponsorcal/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// DisplayLocation is the timezone every occurrence is converted to.
	// If nil, time.Local is used.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd define the inclusive window for occurrences.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps expansion of runaway rules. Zero means
	// defaultMaxOccurrencesPerEvent.
	MaxOccurrencesPerEvent int
}

// Expand turns parsed VEVENTs into concrete model.Events within the
// given window:
//
//   - single non-recurring events pass through if they intersect the range
//   - RRULE recurrences are expanded, EXDATEs removed
//   - all-day occurrences span the civil day; their End backs off one
//     second so date-only math does not bleed into the next day
//   - results are normalized into the display timezone and sorted by
//     start instant (ties by ID) for a deterministic feed
func Expand(events []ParsedEvent, cfg ExpandConfig) ([]model.Event, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.RawRRule == "" {
			if rangesOverlap(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
				out = append(out, makeEvent(ev, ev.Start, ev.End, cfg.DisplayLocation))
			}
			continue
		}
		out = append(out, expandRecurring(ev, cfg)...)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func expandRecurring(ev ParsedEvent, cfg ExpandConfig) []model.Event {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		// Best effort: align EXDATE location with the event's start.
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Query the rule in the event's own location.
	rangeStart := cfg.RangeStart.In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())
	occTimes := set.Between(rangeStart, rangeEnd, true)

	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		appLog.Warn("expand: occurrence cap hit, truncating", "uid", ev.UID, "cap", cfg.MaxOccurrencesPerEvent)
	}

	out := make([]model.Event, 0, len(occTimes))
	for _, start := range occTimes {
		var end time.Time
		if ev.AllDay {
			start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			end = start.Add(24 * time.Hour)
		} else {
			end = start.Add(ev.End.Sub(ev.Start))
		}
		out = append(out, makeEvent(ev, start, end, cfg.DisplayLocation))
	}
	return out
}

// makeEvent converts one concrete occurrence into a model.Event
// normalized into the display timezone.
func makeEvent(ev ParsedEvent, start, end time.Time, loc *time.Location) model.Event {
	start = start.In(loc)
	end = end.In(loc)
	if ev.AllDay && end.After(start) {
		// All-day occupancy is [00:00, next 00:00); back End off so the
		// grid does not grow a zero-width segment on the following day.
		end = end.Add(-time.Second)
	}

	return model.Event{
		ID:     ev.UID + "/" + start.Format(time.RFC3339),
		Name:   ev.Summary,
		AllDay: ev.AllDay,
		Start:  start,
		End:    end,
	}
}

func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
