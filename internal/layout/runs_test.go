package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sponsorcal/internal/model"
)

func TestCellsContiguous(t *testing.T) {
	assert.True(t, cellsContiguous(0, 1))
	assert.True(t, cellsContiguous(5, 6))
	assert.False(t, cellsContiguous(6, 7), "week wrap breaks continuity")
	assert.False(t, cellsContiguous(13, 14), "week wrap on later rows too")
	assert.True(t, cellsContiguous(7, 8))
	assert.False(t, cellsContiguous(3, 5), "gap breaks continuity")
	assert.False(t, cellsContiguous(4, 4))
}

func TestContiguousSpans(t *testing.T) {
	cells := []int{4, 5, 6, 7, 8, 12, 13}
	spans := contiguousSpans(len(cells), func(i int) bool {
		return cellsContiguous(cells[i], cells[i+1])
	})

	// 4-6 (wrap after 6), 7-8 (gap after 8), 12-13.
	assert.Equal(t, [][2]int{{0, 3}, {3, 5}, {5, 7}}, spans)

	assert.Nil(t, contiguousSpans(0, func(int) bool { return true }))
	assert.Equal(t, [][2]int{{0, 1}}, contiguousSpans(1, func(int) bool { return true }))
}

// A contiguous multi-day event within one display row is exactly one run.
func TestMergeRuns_SingleRowEvent(t *testing.T) {
	events := []model.Event{ev(t, "a", "2023-01-02 06:00", "2023-01-05 18:00")}

	res := Compute(events, testYear, testMonth, utcOpts())

	require.Len(t, res.Runs, 1)
	run := res.Runs[0]
	assert.Equal(t, 1, run.StartCell)
	assert.Equal(t, 4, run.EndCell)
	require.Len(t, run.Segments, 4)
	assert.InDelta(t, 30.0, run.StartPercent, 1e-9) // 06:00
	assert.InDelta(t, 70.0, run.EndPercent, 1e-9)   // 18:00
	assert.True(t, run.RoundLeft)
	assert.True(t, run.RoundRight)
}

// An event spanning three display rows yields three runs with rounding
// only on the outermost ends.
func TestMergeRuns_MultiWeekRounding(t *testing.T) {
	events := []model.Event{ev(t, "a", "2023-01-04 12:00", "2023-01-18 12:00")}

	res := Compute(events, testYear, testMonth, utcOpts())

	require.Len(t, res.Runs, 3)

	assert.True(t, res.Runs[0].RoundLeft)
	assert.False(t, res.Runs[0].RoundRight)
	assert.False(t, res.Runs[1].RoundLeft)
	assert.False(t, res.Runs[1].RoundRight)
	assert.False(t, res.Runs[2].RoundLeft)
	assert.True(t, res.Runs[2].RoundRight)

	// The interior run covers a full display row, edge to edge.
	mid := res.Runs[1]
	assert.Equal(t, 7, mid.StartCell)
	assert.Equal(t, 13, mid.EndCell)
	assert.InDelta(t, 0.0, mid.StartPercent, 1e-9)
	assert.InDelta(t, 100.0, mid.EndPercent, 1e-9)
}

// Runs preserve the per-event row so stacked events render in place.
func TestMergeRuns_KeepsRows(t *testing.T) {
	events := []model.Event{
		ev(t, "under", "2023-01-02 08:00", "2023-01-04 17:00"),
		ev(t, "over", "2023-01-03 08:00", "2023-01-03 17:00"),
	}

	res := Compute(events, testYear, testMonth, utcOpts())

	rowsByEvent := make(map[string]int)
	for _, run := range res.Runs {
		rowsByEvent[run.EventID] = run.Row
	}
	assert.Equal(t, map[string]int{"under": 1, "over": 2}, rowsByEvent)
}
