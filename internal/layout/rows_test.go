package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sponsorcal/internal/model"
)

func allocate(t *testing.T, events []model.Event) (map[string]int, []spanEvent, MonthContext) {
	t.Helper()
	mc := NewMonthContext(testYear, testMonth, "sunday", time.UTC)
	spans := clipToMonth(normalize(events, defaultPaletteSize), mc, time.UTC)
	return allocateRows(spans, mc), spans, mc
}

func TestAllocateRows_FirstFit(t *testing.T) {
	rows, _, _ := allocate(t, []model.Event{
		ev(t, "a", "2023-01-01 08:00", "2023-01-05 17:00"),
		ev(t, "b", "2023-01-02 08:00", "2023-01-03 17:00"),
		ev(t, "c", "2023-01-02 09:00", "2023-01-06 17:00"),
		ev(t, "d", "2023-01-04 08:00", "2023-01-04 17:00"),
	})

	// d starts after b expired: row 2 is the lowest free slot again.
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3, "d": 2}, rows)
}

func TestAllocateRows_SameDayTieBreak(t *testing.T) {
	// Equal start instants resolve by input order (stable sort).
	rows, _, _ := allocate(t, []model.Event{
		ev(t, "second", "2023-01-10 09:00", "2023-01-10 10:00"),
		ev(t, "first", "2023-01-10 08:00", "2023-01-10 10:00"),
		ev(t, "third", "2023-01-10 09:00", "2023-01-10 11:00"),
	})

	assert.Equal(t, map[string]int{"first": 1, "second": 2, "third": 3}, rows)
}

// The core invariant: events active on the same day never share a row.
func TestAllocateRows_NoOverlapOnAnyDay(t *testing.T) {
	events := []model.Event{
		ev(t, "a", "2023-01-01 08:00", "2023-01-09 17:00"),
		ev(t, "b", "2023-01-02 08:00", "2023-01-02 17:00"),
		ev(t, "c", "2023-01-02 09:00", "2023-01-05 17:00"),
		ev(t, "d", "2023-01-03 08:00", "2023-01-12 17:00"),
		ev(t, "e", "2023-01-05 08:00", "2023-01-06 17:00"),
		ev(t, "f", "2023-01-06 08:00", "2023-01-06 09:00"),
		ev(t, "g", "2023-01-20 08:00", "2023-01-28 17:00"),
	}

	rows, spans, mc := allocate(t, events)
	require.Len(t, rows, len(events))

	for d := 1; d <= mc.DaysInMonth; d++ {
		seen := make(map[int]string)
		for _, se := range spans {
			if se.startDay > d || se.endDay < d {
				continue
			}
			row := rows[se.ID]
			if other, taken := seen[row]; taken {
				t.Fatalf("day %d: events %q and %q share row %d", d, other, se.ID, row)
			}
			seen[row] = se.ID
		}
	}
}

// An event spilling past month-end holds its row for the rest of the
// visible range.
func TestAllocateRows_MonthSpillHoldsRow(t *testing.T) {
	rows, _, _ := allocate(t, []model.Event{
		ev(t, "spill", "2023-01-28 08:00", "2023-02-10 17:00"),
		ev(t, "late", "2023-01-31 08:00", "2023-01-31 17:00"),
	})

	assert.Equal(t, map[string]int{"spill": 1, "late": 2}, rows)
}
