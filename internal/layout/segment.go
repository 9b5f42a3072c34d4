package layout

import "time"

// Edge padding for first/last-day segments: time-of-day maps into the
// 10–90 band so a bar never quite touches the cell border, except where
// a week wrap forces full bleed.
const (
	edgePad  = 10.0
	edgeSpan = 80.0
)

// Segment is one event's horizontal occupancy within a single day cell,
// as a percentage of the cell width.
type Segment struct {
	EventID      string  `json:"event_id"`
	Cell         int     `json:"cell"`
	StartPercent float64 `json:"start_percent"`
	EndPercent   float64 `json:"end_percent"`
	Row          int     `json:"row"`
}

// buildSegments emits one segment per (event, visible day) pair. Interior
// days fill the whole cell; the true first and last days are positioned
// by time-of-day; cells at display-row edges are forced to full bleed
// when the event continues across the wrap.
func buildSegments(events []spanEvent, rows map[string]int, mc MonthContext, loc *time.Location) []Segment {
	var out []Segment
	for _, ev := range events {
		row, ok := rows[ev.ID]
		if !ok {
			continue
		}

		for day := ev.startDay; day <= ev.endDay; day++ {
			cell := mc.Cell(day)
			start, end := 0.0, 100.0

			if day == ev.startDay && !ev.startsBefore {
				start = edgePad + dayFraction(ev.Start, loc)*edgeSpan
			}
			if day == ev.endDay && !ev.endsAfter {
				end = edgePad + dayFraction(ev.End, loc)*edgeSpan
			}

			continuesPast := day < ev.endDay || ev.endsAfter
			startedEarlier := day > ev.startDay || ev.startsBefore
			if cell%7 == 6 && continuesPast {
				// Last column: the bar must touch the row's right edge.
				end = 100
			}
			if cell%7 == 0 && startedEarlier {
				start = 0
			}

			out = append(out, Segment{
				EventID:      ev.ID,
				Cell:         cell,
				StartPercent: start,
				EndPercent:   end,
				Row:          row,
			})
		}
	}
	return out
}

// dayFraction is the fraction of the civil day elapsed at t in the
// display timezone, in [0, 1).
func dayFraction(t time.Time, loc *time.Location) float64 {
	t = t.In(loc)
	secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return float64(secs) / 86400.0
}
