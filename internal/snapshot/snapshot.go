// Package snapshot persists the live game state to a versioned binary
// file and restores it on startup. Writes go to a sibling temp file that
// is renamed over the target, so readers never see a torn snapshot.
package snapshot

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/scavenge/server/internal/geom"
	"github.com/scavenge/server/internal/model"
	"github.com/scavenge/server/internal/world"
)

const (
	fileMagic   = "SCVS"
	fileVersion = 1
)

type header struct {
	Magic   string
	Version int
}

type mapLoot struct {
	MapID string
	Loots []model.Loot
}

type playerState struct {
	Token       string
	ID          int
	Name        string
	MapID       string
	LastPos     geom.Point
	Pos         geom.Point
	Speed       geom.Vec
	Dir         byte
	Bag         []model.Loot
	BagCapacity int
	Score       int
	PlayTimeMS  int64
	IdleTimeMS  int64
}

// Store serializes loot lists and players. Write and Restore run on the
// coordinator strand, which serializes concurrent snapshot attempts.
type Store struct {
	path     string
	periodMS int64
	accMS    int64

	game    *model.Game
	players *world.State
	log     *zap.Logger
}

func New(path string, periodMS int64, game *model.Game, players *world.State, log *zap.Logger) *Store {
	return &Store{path: path, periodMS: periodMS, game: game, players: players, log: log}
}

func (s *Store) Enabled() bool {
	return s.path != ""
}

// Autosave accumulates elapsed game time and writes a snapshot once the
// configured period is reached. Failures are logged and the server keeps
// running on live state.
func (s *Store) Autosave(dtMS int64) {
	if !s.Enabled() || s.periodMS <= 0 {
		return
	}
	s.accMS += dtMS
	if s.accMS < s.periodMS {
		return
	}
	s.accMS = 0
	if err := s.Write(); err != nil {
		s.log.Warn("snapshot write failed", zap.String("path", s.path), zap.Error(err))
	}
}

// Write dumps every map's loot list and every live player to the state
// file atomically.
func (s *Store) Write() error {
	if !s.Enabled() {
		return nil
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}

	err = s.encode(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

func (s *Store) encode(f *os.File) error {
	enc := gob.NewEncoder(f)
	if err := enc.Encode(header{Magic: fileMagic, Version: fileVersion}); err != nil {
		return err
	}

	loots := make([]mapLoot, 0, len(s.game.Maps()))
	for _, m := range s.game.Maps() {
		loots = append(loots, mapLoot{MapID: m.ID, Loots: m.Loots})
	}
	if err := enc.Encode(loots); err != nil {
		return err
	}

	var states []playerState
	s.players.All(func(token string, p *world.Player) {
		states = append(states, playerState{
			Token:       token,
			ID:          p.ID,
			Name:        p.Name,
			MapID:       p.Map.ID,
			LastPos:     p.Dog.LastPos,
			Pos:         p.Dog.Pos,
			Speed:       p.Dog.Speed,
			Dir:         p.Dog.Dir,
			Bag:         p.Dog.Bag,
			BagCapacity: p.Dog.BagCapacity,
			Score:       p.Dog.Score,
			PlayTimeMS:  p.Dog.PlayTimeMS,
			IdleTimeMS:  p.Dog.IdleTimeMS,
		})
	})
	return enc.Encode(states)
}

// Restore loads the state file if it exists. Players bound to maps that
// no longer exist are discarded.
func (s *Store) Restore() error {
	if !s.Enabled() {
		return nil
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	dec := gob.NewDecoder(f)

	var h header
	if err := dec.Decode(&h); err != nil {
		return fmt.Errorf("decode snapshot header: %w", err)
	}
	if h.Magic != fileMagic {
		return fmt.Errorf("snapshot %s: not a state file", s.path)
	}
	if h.Version != fileVersion {
		return fmt.Errorf("snapshot %s: unsupported version %d", s.path, h.Version)
	}

	var loots []mapLoot
	if err := dec.Decode(&loots); err != nil {
		return fmt.Errorf("decode snapshot loot: %w", err)
	}
	for _, ml := range loots {
		if m := s.game.Find(ml.MapID); m != nil {
			s.game.RestoreLoots(m, ml.Loots)
		}
	}

	var states []playerState
	if err := dec.Decode(&states); err != nil {
		return fmt.Errorf("decode snapshot players: %w", err)
	}
	for _, ps := range states {
		m := s.game.Find(ps.MapID)
		if m == nil {
			s.log.Warn("snapshot player dropped: unknown map",
				zap.String("name", ps.Name), zap.String("map_id", ps.MapID))
			continue
		}
		dog := model.NewDog()
		dog.LastPos = ps.LastPos
		dog.Pos = ps.Pos
		dog.Speed = ps.Speed
		dog.Dir = ps.Dir
		dog.Bag = ps.Bag
		dog.BagCapacity = ps.BagCapacity
		dog.Score = ps.Score
		dog.PlayTimeMS = ps.PlayTimeMS
		dog.IdleTimeMS = ps.IdleTimeMS

		s.players.Reinsert(ps.Token, &world.Player{
			ID:   ps.ID,
			Name: ps.Name,
			Map:  m,
			Dog:  dog,
		})
	}
	return nil
}
