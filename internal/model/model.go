package model

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/scavenge/server/internal/geom"
)

// Tunable defaults applied when the game config omits them.
const (
	DefaultDogSpeed          = 1.0
	DefaultBagCapacity       = 3
	DefaultRetirementTimeSec = 60.0
	DefaultCorridorHalfWidth = 0.4
)

// containment uses a small epsilon so corridor-boundary points survive
// float rounding after repeated moves.
const eps = 1e-6

var ErrDuplicateOffice = errors.New("duplicate office id")

// GridPoint is an integer map coordinate (road endpoints, office anchors).
type GridPoint struct {
	X, Y int
}

type Size struct {
	W, H int
}

// Road is an axis-aligned segment between two integer points. Dogs may
// occupy the road widened by the map's corridor half-width on all sides.
type Road struct {
	Start, End GridPoint
}

func HorizontalRoad(start GridPoint, endX int) Road {
	return Road{Start: start, End: GridPoint{X: endX, Y: start.Y}}
}

func VerticalRoad(start GridPoint, endY int) Road {
	return Road{Start: start, End: GridPoint{X: start.X, Y: endY}}
}

func (r Road) IsHorizontal() bool { return r.Start.Y == r.End.Y }
func (r Road) IsVertical() bool   { return r.Start.X == r.End.X }

func (r Road) Min() GridPoint {
	min := r.Start
	if r.End.X < min.X {
		min.X = r.End.X
	}
	if r.End.Y < min.Y {
		min.Y = r.End.Y
	}
	return min
}

func (r Road) Max() GridPoint {
	max := r.Start
	if r.End.X > max.X {
		max.X = r.End.X
	}
	if r.End.Y > max.Y {
		max.Y = r.End.Y
	}
	return max
}

// Contains reports whether p lies inside the road's travel corridor.
func (r Road) Contains(p geom.Point, halfWidth float64) bool {
	min, max := r.Min(), r.Max()
	return p.X >= float64(min.X)-halfWidth-eps && p.X <= float64(max.X)+halfWidth+eps &&
		p.Y >= float64(min.Y)-halfWidth-eps && p.Y <= float64(max.Y)+halfWidth+eps
}

// Building is a decorative rectangle; it does not constrain movement.
type Building struct {
	Pos  GridPoint
	Size Size
}

// Office is a deposit target anchored at an integer point. The offset is
// a rendering hint carried through to the map JSON.
type Office struct {
	ID     string
	Pos    GridPoint
	Offset GridPoint
}

// Loot is one collectable instance lying on a road.
type Loot struct {
	ID    int
	Type  int
	Pos   geom.Point
	Value int
}

// Map is one game world: immutable layout plus the mutable loot list.
// Mutated only on the coordinator strand.
type Map struct {
	ID   string
	Name string

	Roads     []Road
	Buildings []Building
	Offices   []Office

	// Per-kind deposit values, ordered as in the config's lootTypes array.
	LootValues []int
	// Raw lootTypes config array, echoed verbatim by the map endpoint.
	LootTypesJSON []byte

	DogSpeed          float64
	BagCapacity       int
	RetirementTimeSec float64
	CorridorHalfWidth float64

	Loots []Loot

	officeIndex map[string]int
}

func NewMap(id, name string) *Map {
	return &Map{
		ID:                id,
		Name:              name,
		DogSpeed:          DefaultDogSpeed,
		BagCapacity:       DefaultBagCapacity,
		RetirementTimeSec: DefaultRetirementTimeSec,
		CorridorHalfWidth: DefaultCorridorHalfWidth,
		officeIndex:       make(map[string]int),
	}
}

func (m *Map) AddRoad(r Road) {
	m.Roads = append(m.Roads, r)
}

func (m *Map) AddBuilding(b Building) {
	m.Buildings = append(m.Buildings, b)
}

func (m *Map) AddOffice(o Office) error {
	if _, ok := m.officeIndex[o.ID]; ok {
		return fmt.Errorf("office %q on map %q: %w", o.ID, m.ID, ErrDuplicateOffice)
	}
	m.officeIndex[o.ID] = len(m.Offices)
	m.Offices = append(m.Offices, o)
	return nil
}

// ContainingRoads appends to dst the roads whose corridor contains p.
func (m *Map) ContainingRoads(dst []Road, p geom.Point) []Road {
	for _, r := range m.Roads {
		if r.Contains(p, m.CorridorHalfWidth) {
			dst = append(dst, r)
		}
	}
	return dst
}

// OnRoad reports whether p lies inside any road corridor of the map.
func (m *Map) OnRoad(p geom.Point) bool {
	for _, r := range m.Roads {
		if r.Contains(p, m.CorridorHalfWidth) {
			return true
		}
	}
	return false
}

// InitialPoint is the deterministic spawn point: the first road's start.
func (m *Map) InitialPoint() geom.Point {
	r := m.Roads[0]
	return geom.Point{X: float64(r.Start.X), Y: float64(r.Start.Y)}
}

// RandomPoint picks a uniform road, then a uniform point along its axis.
func (m *Map) RandomPoint(rng *rand.Rand) geom.Point {
	r := m.Roads[rng.Intn(len(m.Roads))]
	min, max := r.Min(), r.Max()
	if r.IsHorizontal() {
		x := float64(min.X) + rng.Float64()*float64(max.X-min.X)
		return geom.Point{X: x, Y: float64(r.Start.Y)}
	}
	y := float64(min.Y) + rng.Float64()*float64(max.Y-min.Y)
	return geom.Point{X: float64(r.Start.X), Y: y}
}

// TakeLootAt removes and returns the loot at exactly pos. The collision
// resolver has already established exact equality before calling this.
func (m *Map) TakeLootAt(pos geom.Point) (Loot, bool) {
	for i, l := range m.Loots {
		if l.Pos == pos {
			m.Loots = append(m.Loots[:i], m.Loots[i+1:]...)
			return l, true
		}
	}
	return Loot{}, false
}

// IsOfficeAt reports whether pos coincides with an office anchor.
func (m *Map) IsOfficeAt(pos geom.Point) bool {
	for _, o := range m.Offices {
		if float64(o.Pos.X) == pos.X && float64(o.Pos.Y) == pos.Y {
			return true
		}
	}
	return false
}

// Game is the immutable map catalog plus the process-wide loot id counter.
type Game struct {
	maps   []*Map
	byID   map[string]*Map
	nextID int
}

func NewGame() *Game {
	return &Game{byID: make(map[string]*Map)}
}

func (g *Game) AddMap(m *Map) error {
	if _, ok := g.byID[m.ID]; ok {
		return fmt.Errorf("map %q already exists", m.ID)
	}
	g.byID[m.ID] = m
	g.maps = append(g.maps, m)
	return nil
}

func (g *Game) Maps() []*Map {
	return g.maps
}

func (g *Game) Find(id string) *Map {
	return g.byID[id]
}

// SpawnLoot creates a loot instance with a fresh monotonic id, a random
// road point and a uniformly chosen kind, and adds it to the map.
func (g *Game) SpawnLoot(m *Map, rng *rand.Rand) Loot {
	l := Loot{
		ID:   g.nextID,
		Type: rng.Intn(len(m.LootValues)),
		Pos:  m.RandomPoint(rng),
	}
	l.Value = m.LootValues[l.Type]
	g.nextID++
	m.Loots = append(m.Loots, l)
	return l
}

// RestoreLoots replaces a map's loot list from a snapshot and keeps the
// id counter above every restored id so future spawns never collide.
func (g *Game) RestoreLoots(m *Map, loots []Loot) {
	m.Loots = loots
	for _, l := range loots {
		if l.ID >= g.nextID {
			g.nextID = l.ID + 1
		}
	}
}
