package model

import (
	"math"

	"github.com/scavenge/server/internal/geom"
)

// Movement directions. The y axis grows downward, matching the client's
// screen coordinates: U decreases y, D increases it.
const (
	DirUp    byte = 'U'
	DirDown  byte = 'D'
	DirLeft  byte = 'L'
	DirRight byte = 'R'
)

func ValidDirection(d byte) bool {
	return d == DirUp || d == DirDown || d == DirLeft || d == DirRight
}

func unit(dir byte) geom.Vec {
	switch dir {
	case DirLeft:
		return geom.Vec{X: -1}
	case DirRight:
		return geom.Vec{X: 1}
	case DirUp:
		return geom.Vec{Y: -1}
	case DirDown:
		return geom.Vec{Y: 1}
	}
	return geom.Vec{}
}

// Dog is a player's avatar. Mutated only on the coordinator strand.
type Dog struct {
	LastPos geom.Point
	Pos     geom.Point
	Speed   geom.Vec
	Dir     byte

	Bag         []Loot
	BagCapacity int
	Score       int

	PlayTimeMS int64
	IdleTimeMS int64
	Retired    bool
}

func NewDog() *Dog {
	return &Dog{Dir: DirUp, BagCapacity: DefaultBagCapacity}
}

// SetStart places the dog, resetting the motion history.
func (d *Dog) SetStart(p geom.Point) {
	d.Pos = p
	d.LastPos = p
}

// SetMove applies a player command. dir 0 means stop: the velocity is
// zeroed and the facing direction kept.
func (d *Dog) SetMove(speed float64, dir byte) {
	if dir == 0 {
		d.Speed = geom.Vec{}
		return
	}
	d.Dir = dir
	d.Speed = unit(dir).Scale(speed)
}

// Move advances the dog by dtMS along its velocity, constrained to the
// map's road corridors. Among the corridors containing the current
// position, the dog travels the full distance if any of them allows it;
// otherwise it is clamped to the farthest reachable corridor edge and
// stopped.
func (d *Dog) Move(m *Map, dtMS int64) {
	d.LastPos = d.Pos
	if d.Speed.IsZero() {
		return
	}

	target := math.Abs(d.Speed.X+d.Speed.Y) * float64(dtMS) / 1000
	hw := m.CorridorHalfWidth

	maxDist := 0.0
	for _, r := range m.Roads {
		if !r.Contains(d.Pos, hw) {
			continue
		}
		min, max := r.Min(), r.Max()
		var dist float64
		switch d.Dir {
		case DirLeft:
			dist = d.Pos.X - (float64(min.X) - hw)
		case DirRight:
			dist = (float64(max.X) + hw) - d.Pos.X
		case DirUp:
			dist = d.Pos.Y - (float64(min.Y) - hw)
		case DirDown:
			dist = (float64(max.Y) + hw) - d.Pos.Y
		}
		if dist >= target {
			d.Pos = d.Pos.Add(unit(d.Dir).Scale(target))
			return
		}
		if dist > maxDist {
			maxDist = dist
		}
	}

	d.Pos = d.Pos.Add(unit(d.Dir).Scale(maxDist))
	d.Speed = geom.Vec{}
}

// PickUp appends loot to the bag if there is room.
func (d *Dog) PickUp(l Loot) bool {
	if len(d.Bag) >= d.BagCapacity {
		return false
	}
	d.Bag = append(d.Bag, l)
	return true
}

// Deposit empties the bag into an office, crediting its total value.
// Returns the score gained.
func (d *Dog) Deposit() int {
	gained := 0
	for _, l := range d.Bag {
		gained += l.Value
	}
	d.Bag = d.Bag[:0]
	d.Score += gained
	return gained
}

// Account adds a tick's elapsed time to the play clock and either grows
// or resets the continuous-idle clock depending on the current velocity.
func (d *Dog) Account(dtMS int64) {
	d.PlayTimeMS += dtMS
	if d.Speed.IsZero() {
		d.IdleTimeMS += dtMS
	} else {
		d.IdleTimeMS = 0
	}
}
