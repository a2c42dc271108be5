// Package config holds the optional server tuning file. Gameplay is
// described by the JSON game config (package data); this file carries
// operational knobs only.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/scavenge/server/internal/persist"
)

type Tuning struct {
	HTTP     HTTPConfig         `toml:"http"`
	Database DatabaseConfig     `toml:"database"`
	Sink     persist.SinkConfig `toml:"retirement"`
	Game     GameTuning         `toml:"game"`
	Logging  LoggingConfig      `toml:"logging"`
}

type HTTPConfig struct {
	BindAddress  string        `toml:"bind_address"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	IdleTimeout  time.Duration `toml:"idle_timeout"`
}

type DatabaseConfig struct {
	Pool persist.PoolConfig `toml:"pool"`
}

// GameTuning exposes the corridor width and collision radii, constants
// in spirit but configurable by request.
type GameTuning struct {
	CorridorHalfWidth float64 `toml:"corridor_half_width"`
	DogRadius         float64 `toml:"dog_radius"`
	LootRadius        float64 `toml:"loot_radius"`
	OfficeRadius      float64 `toml:"office_radius"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the tuning file, overlaying it on defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Tuning, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read server config %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse server config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Tuning {
	return &Tuning{
		HTTP: HTTPConfig{
			BindAddress:  "0.0.0.0:8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Pool: persist.PoolConfig{
				MaxOpenConns:    10,
				MinIdleConns:    2,
				ConnMaxLifetime: 30 * time.Minute,
			},
		},
		Sink: persist.DefaultSinkConfig(),
		Game: GameTuning{
			CorridorHalfWidth: 0.4,
			DogRadius:         0.3,
			LootRadius:        0.0,
			OfficeRadius:      0.25,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
