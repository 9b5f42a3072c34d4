package layout

import "sort"

// OverflowGroup replaces the bars of all over-capacity events touching
// one contiguous cell span with a single aggregate indicator. Members is
// sorted so results serialize deterministically; the renderer's label is
// "+len(Members)".
type OverflowGroup struct {
	StartCell    int      `json:"start_cell"`
	EndCell      int      `json:"end_cell"`
	Members      []string `json:"members"`
	StartPercent float64  `json:"start_percent"`
	EndPercent   float64  `json:"end_percent"`
}

// aggregateOverflow groups the over-capacity segments by contiguous cell
// span, ignoring individual event identity: one group per maximal span,
// breaking at week wraps exactly like run merging. Group bounds are the
// min start and max end percents across the segments in the boundary
// cells.
func aggregateOverflow(segments []Segment) []OverflowGroup {
	if len(segments) == 0 {
		return nil
	}

	byCell := make(map[int][]Segment)
	for _, s := range segments {
		byCell[s.Cell] = append(byCell[s.Cell], s)
	}

	cells := make([]int, 0, len(byCell))
	for c := range byCell {
		cells = append(cells, c)
	}
	sort.Ints(cells)

	spans := contiguousSpans(len(cells), func(i int) bool {
		return cellsContiguous(cells[i], cells[i+1])
	})

	groups := make([]OverflowGroup, 0, len(spans))
	for _, sp := range spans {
		spanCells := cells[sp[0]:sp[1]]
		firstCell, lastCell := spanCells[0], spanCells[len(spanCells)-1]

		memberSet := make(map[string]struct{})
		for _, c := range spanCells {
			for _, s := range byCell[c] {
				memberSet[s.EventID] = struct{}{}
			}
		}
		members := make([]string, 0, len(memberSet))
		for id := range memberSet {
			members = append(members, id)
		}
		sort.Strings(members)

		start := byCell[firstCell][0].StartPercent
		for _, s := range byCell[firstCell][1:] {
			if s.StartPercent < start {
				start = s.StartPercent
			}
		}
		end := byCell[lastCell][0].EndPercent
		for _, s := range byCell[lastCell][1:] {
			if s.EndPercent > end {
				end = s.EndPercent
			}
		}

		groups = append(groups, OverflowGroup{
			StartCell:    firstCell,
			EndCell:      lastCell,
			Members:      members,
			StartPercent: start,
			EndPercent:   end,
		})
	}
	return groups
}
