// Package layout computes a month-grid layout for calendar events: each
// event gets a stable display row, per-day segments positioned by
// time-of-day, merged horizontal runs that break at week boundaries, and
// aggregated "+N" overflow indicators where more events are active than
// the grid has visible rows.
//
// The whole package is a pure computation. It performs no I/O, keeps no
// state between calls, and is safe to invoke concurrently; callers that
// want memoization key it on (event ids+instants, year, month, rows).
package layout

import (
	"time"

	"sponsorcal/internal/model"
)

// DefaultVisibleRows is the row capacity used when Options.VisibleRows
// is left unset.
const DefaultVisibleRows = 2

// defaultPaletteSize matches the length of config.DefaultPalette.
const defaultPaletteSize = 6

// Options controls a single Compute call.
type Options struct {
	// VisibleRows is the number of event rows a day cell can display.
	// Zero means unset and falls back to DefaultVisibleRows; negative
	// values are legal and route every event into overflow.
	VisibleRows int

	// PaletteSize is the number of colors the renderer cycles through.
	// Zero falls back to a six-color default.
	PaletteSize int

	// WeekStart names the weekday in the first grid column: "sunday"
	// (default) or "monday".
	WeekStart string

	// Location is the display timezone for all date-only math. Nil uses
	// time.Local.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.VisibleRows == 0 {
		o.VisibleRows = DefaultVisibleRows
	}
	if o.PaletteSize <= 0 {
		o.PaletteSize = defaultPaletteSize
	}
	if o.WeekStart != "monday" {
		o.WeekStart = "sunday"
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// Result is the full layout description for one visible month. It is
// plain data, freshly allocated per call, and serializes byte-identically
// for identical inputs.
type Result struct {
	Month MonthContext `json:"month"`

	// Rows maps event IDs to their assigned display row (>= 1). Two
	// events sharing a row never overlap in date-only terms.
	Rows map[string]int `json:"rows"`

	// Runs are the bars to draw for events within the visible row
	// capacity, ordered by event start then cell.
	Runs []Run `json:"runs"`

	// Overflow aggregates the events whose row exceeds the capacity, one
	// group per maximal contiguous cell span. The renderer labels each
	// group "+len(Members)".
	Overflow []OverflowGroup `json:"overflow"`
}

// Compute lays out events on the grid of the given month. The input
// slice is read-only to the engine; events missing a start or end
// instant, or ending before they start, are dropped silently.
func Compute(events []model.Event, year int, month time.Month, opts Options) Result {
	opts = opts.withDefaults()

	mc := NewMonthContext(year, month, opts.WeekStart, opts.Location)

	colored := normalize(events, opts.PaletteSize)
	spans := clipToMonth(colored, mc, opts.Location)
	rows := allocateRows(spans, mc)
	segments := buildSegments(spans, rows, mc, opts.Location)

	visible := segments[:0:0]
	overflowed := segments[:0:0]
	for _, s := range segments {
		if s.Row <= opts.VisibleRows {
			visible = append(visible, s)
		} else {
			overflowed = append(overflowed, s)
		}
	}

	colors := make(map[string]int, len(spans))
	for _, ev := range spans {
		colors[ev.ID] = ev.ColorIndex
	}

	return Result{
		Month:    mc,
		Rows:     rows,
		Runs:     mergeRuns(visible, colors),
		Overflow: aggregateOverflow(overflowed),
	}
}
