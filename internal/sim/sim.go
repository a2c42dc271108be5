// Package sim advances the game by one tick: movement, loot spawning,
// collision resolution, retirement and snapshot accounting. Every entry
// point runs on the coordinator strand.
package sim

import (
	"time"

	"go.uber.org/zap"

	"github.com/scavenge/server/internal/collision"
	"github.com/scavenge/server/internal/geom"
	"github.com/scavenge/server/internal/lootgen"
	"github.com/scavenge/server/internal/model"
	"github.com/scavenge/server/internal/world"
)

// Record is one retired player's final line for the relational store.
type Record struct {
	Name       string
	Score      int
	PlayTimeMS int64
}

// Sink receives retirement records. Implementations must not block: the
// simulator calls Enqueue from the strand.
type Sink interface {
	Enqueue(records []Record)
}

// Saver is notified of elapsed game time and decides when to snapshot.
type Saver interface {
	Autosave(dtMS int64)
}

// Tuning carries the collision half-widths, configurable per the server
// tuning file.
type Tuning struct {
	DogRadius    float64
	LootRadius   float64
	OfficeRadius float64
}

func DefaultTuning() Tuning {
	return Tuning{
		DogRadius:    collision.DogRadius,
		LootRadius:   collision.LootRadius,
		OfficeRadius: collision.OfficeRadius,
	}
}

type Simulator struct {
	game    *model.Game
	players *world.State
	gen     *lootgen.Generator
	sink    Sink
	saver   Saver
	tuning  Tuning
	log     *zap.Logger
}

func New(game *model.Game, players *world.State, gen *lootgen.Generator, sink Sink, saver Saver, tuning Tuning, log *zap.Logger) *Simulator {
	return &Simulator{
		game:    game,
		players: players,
		gen:     gen,
		sink:    sink,
		saver:   saver,
		tuning:  tuning,
		log:     log,
	}
}

// Tick advances the world by dtMS milliseconds.
func (s *Simulator) Tick(dtMS int64) {
	s.move(dtMS)
	s.spawnLoot(dtMS)
	s.resolveCollisions()
	s.retire()
	if s.saver != nil {
		s.saver.Autosave(dtMS)
	}
}

func (s *Simulator) move(dtMS int64) {
	s.players.All(func(_ string, p *world.Player) {
		p.Dog.Move(p.Map, dtMS)
		p.Dog.Account(dtMS)
	})
}

func (s *Simulator) spawnLoot(dtMS int64) {
	dt := time.Duration(dtMS) * time.Millisecond
	for _, m := range s.game.Maps() {
		n := s.gen.Generate(dt, len(m.Loots), len(s.players.PlayersOnMap(m.ID)))
		if n == 0 || len(m.LootValues) == 0 {
			continue
		}
		rng := s.players.Rand()
		for i := 0; i < n; i++ {
			s.game.SpawnLoot(m, rng)
		}
	}
}

func (s *Simulator) resolveCollisions() {
	for _, m := range s.game.Maps() {
		players := s.players.PlayersOnMap(m.ID)
		if len(players) == 0 {
			continue
		}

		gatherers := make([]collision.Gatherer, len(players))
		for i, p := range players {
			gatherers[i] = collision.Gatherer{
				Start:  p.Dog.LastPos,
				End:    p.Dog.Pos,
				Radius: s.tuning.DogRadius,
			}
		}

		// Items are the map's loot followed by its offices; positions are
		// captured before resolution so TakeLootAt sees a stable key.
		items := make([]collision.Item, 0, len(m.Loots)+len(m.Offices))
		for _, l := range m.Loots {
			items = append(items, collision.Item{Pos: l.Pos, Radius: s.tuning.LootRadius})
		}
		lootCount := len(items)
		for _, o := range m.Offices {
			items = append(items, collision.Item{
				Pos:    geom.Point{X: float64(o.Pos.X), Y: float64(o.Pos.Y)},
				Radius: s.tuning.OfficeRadius,
			})
		}

		for _, ev := range collision.FindGatherEvents(gatherers, items) {
			dog := players[ev.Gatherer].Dog
			pos := items[ev.Item].Pos
			if ev.Item < lootCount {
				// Leave the loot on the map when the bag is full.
				if len(dog.Bag) >= dog.BagCapacity {
					continue
				}
				if l, ok := m.TakeLootAt(pos); ok {
					dog.PickUp(l)
				}
			} else if m.IsOfficeAt(pos) {
				dog.Deposit()
			}
		}
	}
}

func (s *Simulator) retire() {
	s.players.All(func(_ string, p *world.Player) {
		limit := int64(p.Map.RetirementTimeSec * 1000)
		if limit > 0 && p.Dog.IdleTimeMS >= limit {
			p.Dog.Retired = true
		}
	})

	retired := s.players.RemoveRetired()
	if len(retired) == 0 {
		return
	}

	records := make([]Record, len(retired))
	for i, p := range retired {
		records[i] = Record{Name: p.Name, Score: p.Dog.Score, PlayTimeMS: p.Dog.PlayTimeMS}
		s.log.Info("player retired",
			zap.String("name", p.Name),
			zap.Int("score", p.Dog.Score),
			zap.Int64("play_time_ms", p.Dog.PlayTimeMS))
	}
	if s.sink != nil {
		s.sink.Enqueue(records)
	}
}
