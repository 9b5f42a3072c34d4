package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(t *testing.T) ExpandConfig {
	t.Helper()
	return ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:        time.Date(2023, time.January, 31, 23, 59, 59, 0, time.UTC),
	}
}

func TestExpand_SingleEvent(t *testing.T) {
	events := []ParsedEvent{
		{
			UID:     "inside",
			Summary: "Kickoff",
			Start:   time.Date(2023, time.January, 10, 9, 0, 0, 0, time.UTC),
			End:     time.Date(2023, time.January, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			UID:   "outside",
			Start: time.Date(2023, time.March, 1, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2023, time.March, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	out, err := Expand(events, window(t))
	require.NoError(t, err)
	require.Len(t, out, 1)

	ev := out[0]
	assert.Equal(t, "Kickoff", ev.Name)
	assert.Contains(t, ev.ID, "inside/")
	assert.Equal(t, time.Date(2023, time.January, 10, 9, 0, 0, 0, time.UTC), ev.Start)
}

func TestExpand_Recurring(t *testing.T) {
	events := []ParsedEvent{{
		UID:      "standup",
		Summary:  "Standup",
		Start:    time.Date(2023, time.January, 2, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2023, time.January, 2, 9, 30, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY;COUNT=5",
	}}

	out, err := Expand(events, window(t))
	require.NoError(t, err)
	require.Len(t, out, 5)

	// Each occurrence keeps its own identity and the original duration.
	seen := make(map[string]bool)
	for i, ev := range out {
		assert.False(t, seen[ev.ID], "duplicate occurrence id %s", ev.ID)
		seen[ev.ID] = true
		assert.Equal(t, time.Date(2023, time.January, 2+i, 9, 0, 0, 0, time.UTC), ev.Start)
		assert.Equal(t, 30*time.Minute, ev.End.Sub(ev.Start))
	}
}

func TestExpand_RecurringWithExDate(t *testing.T) {
	events := []ParsedEvent{{
		UID:      "standup",
		Summary:  "Standup",
		Start:    time.Date(2023, time.January, 2, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2023, time.January, 2, 9, 30, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY;COUNT=5",
		ExDates:  []time.Time{time.Date(2023, time.January, 4, 9, 0, 0, 0, time.UTC)},
	}}

	out, err := Expand(events, window(t))
	require.NoError(t, err)
	require.Len(t, out, 4)
	for _, ev := range out {
		assert.NotEqual(t, 4, ev.Start.Day(), "excluded occurrence must not appear")
	}
}

func TestExpand_AllDayBacksOffEnd(t *testing.T) {
	events := []ParsedEvent{{
		UID:     "holiday",
		Summary: "Holiday",
		AllDay:  true,
		Start:   time.Date(2023, time.January, 16, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2023, time.January, 17, 0, 0, 0, 0, time.UTC),
	}}

	out, err := Expand(events, window(t))
	require.NoError(t, err)
	require.Len(t, out, 1)

	// The end stays on the event's own day for date-only math.
	assert.Equal(t, 16, out[0].End.Day())
	assert.True(t, out[0].AllDay)
}

func TestExpand_InvertedRange(t *testing.T) {
	cfg := window(t)
	cfg.RangeStart, cfg.RangeEnd = cfg.RangeEnd, cfg.RangeStart

	_, err := Expand(nil, cfg)
	assert.Error(t, err)
}

func TestExpand_SortedOutput(t *testing.T) {
	events := []ParsedEvent{
		{
			UID:   "later",
			Start: time.Date(2023, time.January, 20, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2023, time.January, 20, 10, 0, 0, 0, time.UTC),
		},
		{
			UID:   "earlier",
			Start: time.Date(2023, time.January, 5, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2023, time.January, 5, 10, 0, 0, 0, time.UTC),
		},
	}

	out, err := Expand(events, window(t))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].Start.Before(out[1].Start))
}
