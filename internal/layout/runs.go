package layout

// Run is a maximal horizontal merge of consecutive same-row segments for
// one event. A continuous event still splits into one run per display
// row it touches, because runs never cross the week wrap.
type Run struct {
	EventID  string    `json:"event_id"`
	Segments []Segment `json:"segments"`

	StartCell    int     `json:"start_cell"`
	EndCell      int     `json:"end_cell"`
	StartPercent float64 `json:"start_percent"`
	EndPercent   float64 `json:"end_percent"`

	Row        int `json:"row"`
	ColorIndex int `json:"color_index"`

	// RoundLeft / RoundRight tell the renderer which bar ends to round:
	// the first run of an event rounds left, the last rounds right, a
	// lone run rounds both, interior runs neither.
	RoundLeft  bool `json:"round_left"`
	RoundRight bool `json:"round_right"`
}

// cellsContiguous reports whether cell b directly follows cell a within
// the same display row. The last column never joins the first column of
// the next row even though the cells are numerically adjacent.
func cellsContiguous(a, b int) bool {
	return b == a+1 && a%7 != 6
}

// contiguousSpans splits n ordered items into maximal half-open index
// ranges [lo, hi) within which joined(i) holds between items i and i+1.
// Both the run merger and the overflow aggregator group through this so
// their wrap behavior cannot diverge.
func contiguousSpans(n int, joined func(i int) bool) [][2]int {
	var spans [][2]int
	lo := 0
	for i := 0; i < n; i++ {
		if i+1 == n || !joined(i) {
			spans = append(spans, [2]int{lo, i + 1})
			lo = i + 1
		}
	}
	return spans
}

// mergeRuns coalesces the visible segments of each event into runs. The
// input is ordered per event by ascending cell, with each event's
// segments adjacent, as produced by buildSegments.
func mergeRuns(segments []Segment, colors map[string]int) []Run {
	var runs []Run
	for lo := 0; lo < len(segments); {
		hi := lo + 1
		for hi < len(segments) && segments[hi].EventID == segments[lo].EventID {
			hi++
		}
		runs = append(runs, eventRuns(segments[lo:hi], colors[segments[lo].EventID])...)
		lo = hi
	}
	return runs
}

func eventRuns(segs []Segment, color int) []Run {
	spans := contiguousSpans(len(segs), func(i int) bool {
		return cellsContiguous(segs[i].Cell, segs[i+1].Cell)
	})

	runs := make([]Run, 0, len(spans))
	for i, sp := range spans {
		member := segs[sp[0]:sp[1]]
		first, last := member[0], member[len(member)-1]
		runs = append(runs, Run{
			EventID:      first.EventID,
			Segments:     member,
			StartCell:    first.Cell,
			EndCell:      last.Cell,
			StartPercent: first.StartPercent,
			EndPercent:   last.EndPercent,
			Row:          first.Row,
			ColorIndex:   color,
			RoundLeft:    i == 0,
			RoundRight:   i == len(spans)-1,
		})
	}
	return runs
}
