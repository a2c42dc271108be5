// Package collision turns one tick of gatherer motion into time-ordered
// pickup and deposit events.
package collision

import (
	"sort"

	"github.com/scavenge/server/internal/geom"
)

// Default half-widths of the moving and stationary bodies.
const (
	DogRadius    = 0.3
	LootRadius   = 0.0
	OfficeRadius = 0.25
)

// Gatherer is a moving collector: the segment it covered this tick plus
// its collision radius.
type Gatherer struct {
	Start  geom.Point
	End    geom.Point
	Radius float64
}

// Item is a stationary collectable disk.
type Item struct {
	Pos    geom.Point
	Radius float64
}

// Event records that a gatherer came within collection range of an item.
// Time is the fractional position along the gatherer's segment at closest
// approach.
type Event struct {
	Gatherer   int
	Item       int
	SqDistance float64
	Time       float64
}

// FindGatherEvents examines every gatherer/item pair and returns the
// events in ascending time. Ties on time are broken by (gatherer, item)
// so resolution order is deterministic.
func FindGatherEvents(gatherers []Gatherer, items []Item) []Event {
	var events []Event
	for gi, g := range gatherers {
		for ii, it := range items {
			a := geom.Approach(g.Start, g.End, it.Pos)
			if !a.Reached(g.Radius + it.Radius) {
				continue
			}
			events = append(events, Event{
				Gatherer:   gi,
				Item:       ii,
				SqDistance: a.SqDistance,
				Time:       a.Ratio,
			})
		}
	}
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.Gatherer != b.Gatherer {
			return a.Gatherer < b.Gatherer
		}
		return a.Item < b.Item
	})
	return events
}
