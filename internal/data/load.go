// Package data loads the JSON game-config document into the world model
// and the loot generator.
package data

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/scavenge/server/internal/lootgen"
	"github.com/scavenge/server/internal/model"
)

type jsonRoad struct {
	X0 int  `json:"x0"`
	Y0 int  `json:"y0"`
	X1 *int `json:"x1"`
	Y1 *int `json:"y1"`
}

type jsonBuilding struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonOffice struct {
	ID      *string `json:"id"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	OffsetX int     `json:"offsetX"`
	OffsetY int     `json:"offsetY"`
}

type jsonLootType struct {
	Value *int `json:"value"`
}

type jsonMap struct {
	ID                *string         `json:"id"`
	Name              *string         `json:"name"`
	Roads             []jsonRoad      `json:"roads"`
	Buildings         []jsonBuilding  `json:"buildings"`
	Offices           []jsonOffice    `json:"offices"`
	LootTypes         json.RawMessage `json:"lootTypes"`
	DogSpeed          *float64        `json:"dogSpeed"`
	BagCapacity       *int            `json:"bagCapacity"`
	DogRetirementTime *float64        `json:"dogRetirementTime"`
}

type jsonLootGenerator struct {
	Period      float64 `json:"period"`
	Probability float64 `json:"probability"`
}

type jsonRoot struct {
	DefaultDogSpeed          *float64           `json:"defaultDogSpeed"`
	DefaultBagCapacity       *int               `json:"defaultBagCapacity"`
	DefaultDogRetirementTime *float64           `json:"defaultDogRetirementTime"`
	LootGeneratorConfig      *jsonLootGenerator `json:"lootGeneratorConfig"`
	Maps                     []jsonMap          `json:"maps"`
}

// LoadGame reads the game config document and builds the map catalog and
// loot generator. corridorHalfWidth is the server-tuned road widening
// applied to every map.
func LoadGame(path string, corridorHalfWidth float64) (*model.Game, *lootgen.Generator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read game config %s: %w", path, err)
	}

	var root jsonRoot
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, nil, fmt.Errorf("parse game config %s: %w", path, err)
	}
	if len(root.Maps) == 0 {
		return nil, nil, fmt.Errorf("game config %s: no maps defined", path)
	}

	defaultSpeed := model.DefaultDogSpeed
	if root.DefaultDogSpeed != nil {
		defaultSpeed = *root.DefaultDogSpeed
	}
	defaultBag := model.DefaultBagCapacity
	if root.DefaultBagCapacity != nil {
		defaultBag = *root.DefaultBagCapacity
	}
	defaultRetirement := model.DefaultRetirementTimeSec
	if root.DefaultDogRetirementTime != nil {
		defaultRetirement = *root.DefaultDogRetirementTime
	}

	game := model.NewGame()
	for i, jm := range root.Maps {
		m, err := buildMap(jm, defaultSpeed, defaultBag, defaultRetirement, corridorHalfWidth)
		if err != nil {
			return nil, nil, fmt.Errorf("map #%d: %w", i, err)
		}
		if err := game.AddMap(m); err != nil {
			return nil, nil, err
		}
	}

	var gen *lootgen.Generator
	if lg := root.LootGeneratorConfig; lg != nil {
		period := time.Duration(lg.Period * float64(time.Second))
		gen = lootgen.New(period, lg.Probability)
	} else {
		gen = lootgen.New(0, 0)
	}

	return game, gen, nil
}

func buildMap(jm jsonMap, defaultSpeed float64, defaultBag int, defaultRetirement, corridorHalfWidth float64) (*model.Map, error) {
	if jm.ID == nil || *jm.ID == "" {
		return nil, fmt.Errorf("missing map id")
	}
	if jm.Name == nil {
		return nil, fmt.Errorf("map %q: missing name", *jm.ID)
	}
	if len(jm.Roads) == 0 {
		return nil, fmt.Errorf("map %q: no roads", *jm.ID)
	}

	m := model.NewMap(*jm.ID, *jm.Name)
	m.CorridorHalfWidth = corridorHalfWidth

	m.DogSpeed = defaultSpeed
	if jm.DogSpeed != nil {
		m.DogSpeed = *jm.DogSpeed
	}
	m.BagCapacity = defaultBag
	if jm.BagCapacity != nil {
		if *jm.BagCapacity <= 0 {
			return nil, fmt.Errorf("map %q: bagCapacity must be positive", m.ID)
		}
		m.BagCapacity = *jm.BagCapacity
	}
	m.RetirementTimeSec = defaultRetirement
	if jm.DogRetirementTime != nil {
		m.RetirementTimeSec = *jm.DogRetirementTime
	}

	for i, jr := range jm.Roads {
		switch {
		case jr.X1 != nil:
			m.AddRoad(model.HorizontalRoad(model.GridPoint{X: jr.X0, Y: jr.Y0}, *jr.X1))
		case jr.Y1 != nil:
			m.AddRoad(model.VerticalRoad(model.GridPoint{X: jr.X0, Y: jr.Y0}, *jr.Y1))
		default:
			return nil, fmt.Errorf("map %q: road #%d has neither x1 nor y1", m.ID, i)
		}
	}

	for _, jb := range jm.Buildings {
		m.AddBuilding(model.Building{
			Pos:  model.GridPoint{X: jb.X, Y: jb.Y},
			Size: model.Size{W: jb.W, H: jb.H},
		})
	}

	for i, jo := range jm.Offices {
		if jo.ID == nil || *jo.ID == "" {
			return nil, fmt.Errorf("map %q: office #%d has no id", m.ID, i)
		}
		err := m.AddOffice(model.Office{
			ID:     *jo.ID,
			Pos:    model.GridPoint{X: jo.X, Y: jo.Y},
			Offset: model.GridPoint{X: jo.OffsetX, Y: jo.OffsetY},
		})
		if err != nil {
			return nil, err
		}
	}

	if len(jm.LootTypes) > 0 {
		var kinds []jsonLootType
		if err := json.Unmarshal(jm.LootTypes, &kinds); err != nil {
			return nil, fmt.Errorf("map %q: lootTypes: %w", m.ID, err)
		}
		values := make([]int, len(kinds))
		for i, k := range kinds {
			if k.Value != nil {
				values[i] = *k.Value
			}
		}
		m.LootValues = values
		m.LootTypesJSON = append([]byte(nil), jm.LootTypes...)
	} else {
		m.LootTypesJSON = []byte("[]")
	}

	return m, nil
}
