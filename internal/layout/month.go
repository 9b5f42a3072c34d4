package layout

import "time"

// MonthContext describes the visible grid of one month: LeadingCells
// empty cells (previous-month padding) followed by DaysInMonth day
// cells, flattened into a single cell sequence of 7 columns per row.
type MonthContext struct {
	Year        int        `json:"year"`
	Month       time.Month `json:"month"`
	DaysInMonth int        `json:"days_in_month"`

	// LeadingCells is the column index of day 1, i.e. how many empty
	// cells precede it on the first grid row.
	LeadingCells int `json:"leading_cells"`
}

// NewMonthContext derives the grid geometry for a month. weekStart is
// "sunday" or "monday" and decides which weekday column 0 holds.
func NewMonthContext(year int, month time.Month, weekStart string, loc *time.Location) MonthContext {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)

	lead := int(first.Weekday())
	if weekStart == "monday" {
		lead = (lead + 6) % 7
	}

	return MonthContext{
		Year:         year,
		Month:        month,
		DaysInMonth:  first.AddDate(0, 1, -1).Day(),
		LeadingCells: lead,
	}
}

// Cell returns the flattened grid index for a day of this month.
func (mc MonthContext) Cell(day int) int {
	return mc.LeadingCells + day - 1
}

// CellCount is the number of cells up to and including the last day.
func (mc MonthContext) CellCount() int {
	return mc.LeadingCells + mc.DaysInMonth
}

// dayKey collapses an instant to a comparable date-only key (yyyymmdd)
// in the display timezone.
func dayKey(t time.Time, loc *time.Location) int {
	t = t.In(loc)
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// spanEvent is a colored event clipped to the visible month.
type spanEvent struct {
	coloredEvent

	// startDay / endDay are the inclusive day-of-month range the event
	// occupies on this grid.
	startDay, endDay int

	// startsBefore / endsAfter record that the true start/end date lies
	// outside the visible month, so no visible day carries a
	// time-of-day edge on that side.
	startsBefore, endsAfter bool
}

// clipToMonth keeps the events intersecting the visible month and
// resolves their day-of-month spans. Events entirely outside the month
// are dropped; events crossing a month boundary are clipped with no
// continuation affordance.
func clipToMonth(events []coloredEvent, mc MonthContext, loc *time.Location) []spanEvent {
	firstKey := mc.Year*10000 + int(mc.Month)*100 + 1
	lastKey := mc.Year*10000 + int(mc.Month)*100 + mc.DaysInMonth

	out := make([]spanEvent, 0, len(events))
	for _, ev := range events {
		sk := dayKey(ev.Start, loc)
		ek := dayKey(ev.End, loc)
		if ek < firstKey || sk > lastKey {
			continue
		}

		se := spanEvent{coloredEvent: ev, startDay: 1, endDay: mc.DaysInMonth}
		if sk < firstKey {
			se.startsBefore = true
		} else {
			se.startDay = sk % 100
		}
		if ek > lastKey {
			se.endsAfter = true
		} else {
			se.endDay = ek % 100
		}
		out = append(out, se)
	}
	return out
}
