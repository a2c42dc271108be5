package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scavenge/server/internal/model"
)

const sampleConfig = `{
  "defaultDogSpeed": 2.5,
  "defaultBagCapacity": 4,
  "defaultDogRetirementTime": 15.5,
  "lootGeneratorConfig": {
    "period": 5.0,
    "probability": 0.5
  },
  "maps": [
    {
      "id": "map1",
      "name": "Map 1",
      "dogSpeed": 4.0,
      "roads": [
        {"x0": 0, "y0": 0, "x1": 40},
        {"x0": 40, "y0": 0, "y1": 30}
      ],
      "buildings": [
        {"x": 5, "y": 5, "w": 30, "h": 20}
      ],
      "offices": [
        {"id": "o0", "x": 40, "y": 30, "offsetX": 5, "offsetY": 0}
      ],
      "lootTypes": [
        {"name": "key", "file": "key.obj", "type": "obj", "scale": 0.03, "value": 10},
        {"name": "wallet", "file": "wallet.obj", "type": "obj", "scale": 0.01, "value": 30}
      ]
    },
    {
      "id": "map2",
      "name": "Map 2",
      "roads": [
        {"x0": 0, "y0": 0, "y1": 20}
      ]
    }
  ]
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGame(t *testing.T) {
	game, gen, err := LoadGame(writeConfig(t, sampleConfig), 0.4)
	if err != nil {
		t.Fatal(err)
	}
	if gen == nil {
		t.Fatal("nil generator")
	}
	if len(game.Maps()) != 2 {
		t.Fatalf("got %d maps", len(game.Maps()))
	}

	m1 := game.Find("map1")
	if m1 == nil {
		t.Fatal("map1 missing")
	}
	if m1.Name != "Map 1" || m1.DogSpeed != 4.0 || m1.BagCapacity != 4 {
		t.Fatalf("map1 = %+v", m1)
	}
	if m1.RetirementTimeSec != 15.5 {
		t.Fatalf("map1 retirement %v", m1.RetirementTimeSec)
	}
	if m1.CorridorHalfWidth != 0.4 {
		t.Fatalf("map1 corridor %v", m1.CorridorHalfWidth)
	}
	if len(m1.Roads) != 2 || !m1.Roads[0].IsHorizontal() || !m1.Roads[1].IsVertical() {
		t.Fatalf("map1 roads = %+v", m1.Roads)
	}
	if len(m1.Buildings) != 1 || len(m1.Offices) != 1 {
		t.Fatalf("map1 buildings=%d offices=%d", len(m1.Buildings), len(m1.Offices))
	}
	if got := m1.LootValues; len(got) != 2 || got[0] != 10 || got[1] != 30 {
		t.Fatalf("map1 loot values = %v", got)
	}
	// The raw lootTypes array is echoed by the map endpoint; extra
	// attributes like scale must survive.
	if !strings.Contains(string(m1.LootTypesJSON), `"scale"`) {
		t.Fatalf("lootTypes lost attributes: %s", m1.LootTypesJSON)
	}

	// map2 falls back to the document defaults.
	m2 := game.Find("map2")
	if m2.DogSpeed != 2.5 || m2.BagCapacity != 4 {
		t.Fatalf("map2 defaults = speed %v bag %d", m2.DogSpeed, m2.BagCapacity)
	}
	if string(m2.LootTypesJSON) != "[]" {
		t.Fatalf("map2 lootTypes = %s", m2.LootTypesJSON)
	}
}

func TestLoadGameBuiltinDefaults(t *testing.T) {
	cfg := `{"maps":[{"id":"m","name":"M","roads":[{"x0":0,"y0":0,"x1":5}]}]}`
	game, gen, err := LoadGame(writeConfig(t, cfg), 0.4)
	if err != nil {
		t.Fatal(err)
	}
	m := game.Find("m")
	if m.DogSpeed != model.DefaultDogSpeed {
		t.Fatalf("speed %v", m.DogSpeed)
	}
	if m.BagCapacity != model.DefaultBagCapacity {
		t.Fatalf("bag %d", m.BagCapacity)
	}
	if m.RetirementTimeSec != model.DefaultRetirementTimeSec {
		t.Fatalf("retirement %v", m.RetirementTimeSec)
	}
	// Without lootGeneratorConfig the generator is inert.
	if n := gen.Generate(time.Hour, 0, 5); n != 0 {
		t.Fatalf("inert generator spawned %d", n)
	}
}

func TestLoadGameErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
	}{
		{"invalid json", `{`},
		{"no maps", `{"maps":[]}`},
		{"missing map id", `{"maps":[{"name":"M","roads":[{"x0":0,"y0":0,"x1":5}]}]}`},
		{"missing map name", `{"maps":[{"id":"m","roads":[{"x0":0,"y0":0,"x1":5}]}]}`},
		{"no roads", `{"maps":[{"id":"m","name":"M","roads":[]}]}`},
		{"road without endpoint", `{"maps":[{"id":"m","name":"M","roads":[{"x0":0,"y0":0}]}]}`},
		{"office without id", `{"maps":[{"id":"m","name":"M","roads":[{"x0":0,"y0":0,"x1":5}],"offices":[{"x":0,"y":0}]}]}`},
		{"duplicate office id", `{"maps":[{"id":"m","name":"M","roads":[{"x0":0,"y0":0,"x1":5}],"offices":[{"id":"o","x":0,"y":0},{"id":"o","x":5,"y":0}]}]}`},
		{"zero bag capacity", `{"maps":[{"id":"m","name":"M","bagCapacity":0,"roads":[{"x0":0,"y0":0,"x1":5}]}]}`},
		{"duplicate map id", `{"maps":[{"id":"m","name":"M","roads":[{"x0":0,"y0":0,"x1":5}]},{"id":"m","name":"M2","roads":[{"x0":0,"y0":0,"x1":5}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := LoadGame(writeConfig(t, tt.cfg), 0.4); err == nil {
				t.Error("no error")
			}
		})
	}
}

func TestLoadGameMissingFile(t *testing.T) {
	if _, _, err := LoadGame(filepath.Join(t.TempDir(), "absent.json"), 0.4); err == nil {
		t.Fatal("no error for missing file")
	}
}
