// Package world tracks the live players of the server: identity, map
// binding and the bearer tokens that authorize requests.
package world

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"

	"github.com/scavenge/server/internal/model"
)

// Player binds a joined client to its dog on one map. Identity is the
// process-wide monotonic id; the map is referenced, never owned.
type Player struct {
	ID   int
	Name string
	Map  *model.Map
	Dog  *model.Dog
}

// State is the registry of live players. Accessed only on the
// coordinator strand — no locks needed.
type State struct {
	byToken map[string]*Player
	byMap   map[string][]*Player

	nextID    int
	randomize bool
	rng       *mrand.Rand
}

// NewState creates an empty registry. When randomize is set, joined dogs
// spawn at a random road point instead of the map's initial point.
func NewState(randomize bool) *State {
	return &State{
		byToken:   make(map[string]*Player),
		byMap:     make(map[string][]*Player),
		randomize: randomize,
		rng:       mrand.New(mrand.NewSource(osSeed())),
	}
}

// osSeed draws the per-process token seed from OS randomness.
func osSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("seed token generator: %v", err))
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// newToken returns two 64-bit draws as 32 lowercase hex characters.
func (s *State) newToken() string {
	return fmt.Sprintf("%016x%016x", s.rng.Uint64(), s.rng.Uint64())
}

// Rand exposes the registry's rng for spawn-point and loot placement so
// the whole simulation can be made deterministic in tests.
func (s *State) Rand() *mrand.Rand {
	return s.rng
}

// Join allocates a player with a fresh id and token and binds it to m.
func (s *State) Join(name string, m *model.Map) (token string, p *Player) {
	dog := model.NewDog()
	dog.BagCapacity = m.BagCapacity
	if s.randomize {
		dog.SetStart(m.RandomPoint(s.rng))
	} else {
		dog.SetStart(m.InitialPoint())
	}

	p = &Player{ID: s.nextID, Name: name, Map: m, Dog: dog}
	s.nextID++

	token = s.newToken()
	s.byToken[token] = p
	s.byMap[m.ID] = append(s.byMap[m.ID], p)
	return token, p
}

// Lookup resolves a bearer token to its live player, or nil.
func (s *State) Lookup(token string) *Player {
	return s.byToken[token]
}

// PlayersOnMap returns the live players bound to the given map id.
func (s *State) PlayersOnMap(mapID string) []*Player {
	return s.byMap[mapID]
}

// Count returns the number of live players.
func (s *State) Count() int {
	return len(s.byToken)
}

// All iterates every live player.
func (s *State) All(fn func(token string, p *Player)) {
	for t, p := range s.byToken {
		fn(t, p)
	}
}

// Reinsert restores a player under its original token after a snapshot
// load, bumping the id counter above every restored id so fresh joins
// never collide.
func (s *State) Reinsert(token string, p *Player) {
	if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	s.byToken[token] = p
	s.byMap[p.Map.ID] = append(s.byMap[p.Map.ID], p)
}

// RemoveRetired drops every player whose dog has retired, invalidating
// their tokens, and returns the removed players.
func (s *State) RemoveRetired() []*Player {
	var retired []*Player
	for token, p := range s.byToken {
		if !p.Dog.Retired {
			continue
		}
		retired = append(retired, p)
		delete(s.byToken, token)
	}
	if len(retired) == 0 {
		return nil
	}
	for mapID, players := range s.byMap {
		kept := players[:0]
		for _, p := range players {
			if !p.Dog.Retired {
				kept = append(kept, p)
			}
		}
		s.byMap[mapID] = kept
	}
	return retired
}
