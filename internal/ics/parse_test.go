package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//sponsorcal//test//EN
BEGIN:VEVENT
UID:evt-1
SUMMARY:Board meeting
DTSTART:20230102T090000Z
DTEND:20230102T100000Z
RRULE:FREQ=WEEKLY;COUNT=3
EXDATE:20230109T090000Z
END:VEVENT
BEGIN:VEVENT
UID:evt-2
SUMMARY:Conference
DTSTART;VALUE=DATE:20230105
DTEND;VALUE=DATE:20230107
END:VEVENT
BEGIN:VEVENT
SUMMARY:No UID, skipped
DTSTART:20230110T090000Z
DTEND:20230110T100000Z
END:VEVENT
END:VCALENDAR
`

func feedBody() []byte {
	// ICS lines are CRLF-terminated.
	return []byte(strings.ReplaceAll(testFeed, "\n", "\r\n"))
}

func TestParse(t *testing.T) {
	src := Source{ID: "test", URL: "https://example.com/feed.ics"}

	events, err := Parse(src, feedBody())
	require.NoError(t, err)
	require.Len(t, events, 2, "the UID-less VEVENT is skipped")

	meeting := events[0]
	assert.Equal(t, "evt-1", meeting.UID)
	assert.Equal(t, "Board meeting", meeting.Summary)
	assert.False(t, meeting.AllDay)
	assert.Equal(t, "FREQ=WEEKLY;COUNT=3", meeting.RawRRule)
	require.Len(t, meeting.ExDates, 1)
	assert.Equal(t, time.Date(2023, time.January, 9, 9, 0, 0, 0, time.UTC), meeting.ExDates[0].UTC())
	assert.Equal(t, src, meeting.Source)

	conf := events[1]
	assert.Equal(t, "evt-2", conf.UID)
	assert.True(t, conf.AllDay)
	assert.Equal(t, 5, conf.Start.Day())
}

func TestParse_EmptyBody(t *testing.T) {
	_, err := Parse(Source{ID: "test"}, nil)
	assert.Error(t, err)
}

func TestParseICSTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"20230101T090000Z", time.Date(2023, 1, 1, 9, 0, 0, 0, time.UTC)},
		{"20230101T090000", time.Date(2023, 1, 1, 9, 0, 0, 0, time.Local)},
		{"20230101", time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		got, err := parseICSTime(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(tt.want), "parse %s: got %v want %v", tt.in, got, tt.want)
	}

	_, err := parseICSTime("")
	assert.Error(t, err)
}
