package layout

import (
	"sort"

	"sponsorcal/internal/model"
)

// coloredEvent is an input event after normalization, with the palette
// slot it was dealt.
type coloredEvent struct {
	model.Event
	ColorIndex int
}

// normalize filters and orders the raw event list:
//
//   - events missing a start or end instant are dropped (partial data is
//     expected from upstream, not an error)
//   - events ending before they start are dropped the same way
//   - survivors are sorted by start instant, ties keeping input order,
//     so equal-start events lay out deterministically
//   - each event is assigned color i mod paletteSize in sorted order
func normalize(events []model.Event, paletteSize int) []coloredEvent {
	kept := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Start.IsZero() || ev.End.IsZero() {
			continue
		}
		if ev.End.Before(ev.Start) {
			continue
		}
		kept = append(kept, ev)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start.Before(kept[j].Start)
	})

	out := make([]coloredEvent, len(kept))
	for i, ev := range kept {
		out[i] = coloredEvent{Event: ev, ColorIndex: i % paletteSize}
	}
	return out
}
