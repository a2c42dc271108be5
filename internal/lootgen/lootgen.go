// Package lootgen decides how many loot instances to spawn each tick.
//
// The model is a Bernoulli draw per base period for every "missing" loot
// item (one per player without a matching item on the map). Elapsed time
// is accumulated across ticks, so short ticks compound the per-period
// probability instead of losing it.
package lootgen

import (
	"math"
	"time"
)

type Generator struct {
	basePeriod  time.Duration
	probability float64

	accumulated time.Duration
}

// New creates a generator. probability is clamped to [0,1].
func New(basePeriod time.Duration, probability float64) *Generator {
	if probability < 0 {
		probability = 0
	} else if probability > 1 {
		probability = 1
	}
	return &Generator{basePeriod: basePeriod, probability: probability}
}

// Generate returns how many loot instances to spawn after dt has passed,
// given the map's current loot and player counts. The result never
// exceeds the shortage max(0, players-loot); zero players spawn nothing.
// Spawning anything resets the time accumulator.
func (g *Generator) Generate(dt time.Duration, lootCount, playerCount int) int {
	if g.basePeriod <= 0 {
		return 0
	}
	g.accumulated += dt

	shortage := playerCount - lootCount
	if shortage <= 0 {
		return 0
	}

	ratio := g.accumulated.Seconds() / g.basePeriod.Seconds()
	p := 1.0 - math.Pow(1.0-g.probability, ratio)
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}

	n := int(math.Round(float64(shortage) * p))
	if n > 0 {
		g.accumulated = 0
	}
	return n
}
