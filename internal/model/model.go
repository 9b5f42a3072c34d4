package model

import "time"

// Event is a single concrete calendar entry as consumed by the layout
// engine. Recurring ICS events are expanded into one Event per
// occurrence before they reach this type.
type Event struct {
	// ID uniquely identifies the event within one layout call. For ICS
	// sources this is "<uid>/<occurrence start>" so every occurrence of a
	// recurring event keeps its own identity.
	ID   string
	Name string

	AllDay bool

	// Start / End are in the configured display timezone. The layout
	// engine drops events where either is the zero time.
	Start time.Time
	End   time.Time
}
