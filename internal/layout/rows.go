package layout

// activeSpan tracks one event currently occupying a row during the
// allocation walk.
type activeSpan struct {
	endDay int
	row    int
}

// allocateRows walks the visible month day by day and hands each newly
// starting event the lowest row not occupied by a still-active event
// (first-fit interval coloring). The active set is scratch state local
// to one call.
//
// Events are expected in normalized order with clipped day spans, so
// their startDay values are non-decreasing; ties among same-day starters
// resolve in that order, first getting the lowest free row.
func allocateRows(events []spanEvent, mc MonthContext) map[string]int {
	rows := make(map[string]int, len(events))
	actives := make([]activeSpan, 0, len(events))

	next := 0
	for d := 1; d <= mc.DaysInMonth; d++ {
		// Retire spans that ended before today. An event running past
		// month-end keeps its clipped endDay and so holds its row for the
		// rest of the visible range.
		keep := actives[:0]
		for _, a := range actives {
			if a.endDay >= d {
				keep = append(keep, a)
			}
		}
		actives = keep

		for next < len(events) && events[next].startDay <= d {
			ev := events[next]
			next++

			row := lowestFreeRow(actives)
			rows[ev.ID] = row
			actives = append(actives, activeSpan{endDay: ev.endDay, row: row})
		}
	}

	return rows
}

// lowestFreeRow finds the smallest row >= 1 absent from the active set.
// The linear scan is O(active rows) per assignment, which is fine for
// calendar-sized inputs; a free-row min-heap would be a drop-in
// replacement with the same contract.
func lowestFreeRow(actives []activeSpan) int {
	for row := 1; ; row++ {
		taken := false
		for _, a := range actives {
			if a.row == row {
				taken = true
				break
			}
		}
		if !taken {
			return row
		}
	}
}
