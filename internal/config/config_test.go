package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.BindAddress != "0.0.0.0:8080" {
		t.Errorf("bind address %q", cfg.HTTP.BindAddress)
	}
	if cfg.Game.CorridorHalfWidth != 0.4 || cfg.Game.DogRadius != 0.3 || cfg.Game.OfficeRadius != 0.25 {
		t.Errorf("game tuning %+v", cfg.Game)
	}
	if cfg.Database.Pool.MaxOpenConns != 10 {
		t.Errorf("pool %+v", cfg.Database.Pool)
	}
	if cfg.Sink.RetryCap != 5 || cfg.Sink.BaseBackoff != 250*time.Millisecond {
		t.Errorf("sink %+v", cfg.Sink)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging %+v", cfg.Logging)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	content := `
[http]
bind_address = "127.0.0.1:9090"

[game]
dog_radius = 0.5

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.BindAddress != "127.0.0.1:9090" {
		t.Errorf("bind address %q", cfg.HTTP.BindAddress)
	}
	if cfg.Game.DogRadius != 0.5 {
		t.Errorf("dog radius %v", cfg.Game.DogRadius)
	}
	// Untouched sections keep their defaults.
	if cfg.Game.CorridorHalfWidth != 0.4 {
		t.Errorf("corridor %v", cfg.Game.CorridorHalfWidth)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging %+v", cfg.Logging)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("missing file accepted")
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("[http\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("malformed TOML accepted")
	}
}
