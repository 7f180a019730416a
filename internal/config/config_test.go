package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Simulation.ReplayInterval != 2*time.Second || cfg.Simulation.LiveInterval != time.Second {
		t.Fatalf("cadence defaults wrong: %+v", cfg.Simulation)
	}
	if cfg.Simulation.HistoryCapacity != 240 {
		t.Fatalf("history capacity default %d", cfg.Simulation.HistoryCapacity)
	}
	if cfg.LOD.HighCutoff != 50 || cfg.LOD.MediumCutoff != 100 || cfg.LOD.ThrottleTicks != 30 {
		t.Fatalf("lod defaults wrong: %+v", cfg.LOD)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	// Durations are int64 nanoseconds on the wire, as in encoding/json.
	content := "log_level: debug\nsimulation:\n  replay_interval: 500000000\nlod:\n  throttle_ticks: 10\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level %q", cfg.LogLevel)
	}
	if cfg.Simulation.ReplayInterval != 500*time.Millisecond {
		t.Fatalf("replay interval %v", cfg.Simulation.ReplayInterval)
	}
	if cfg.LOD.ThrottleTicks != 10 {
		t.Fatalf("throttle ticks %d", cfg.LOD.ThrottleTicks)
	}
	// Untouched sections keep their defaults.
	if cfg.Simulation.LiveInterval != time.Second {
		t.Fatalf("live interval %v", cfg.Simulation.LiveInterval)
	}
}

func TestValidateRejectsInvertedCutoffs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LOD.HighCutoff = 200
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for high >= medium cutoff")
	}
}

func TestValidateRejectsUnorderedCapacities(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Particles.Capacities = map[string]TierCapacities{
		"heat-shimmer": {High: 5, Medium: 10, Low: 1},
	}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for medium > high capacity")
	}
}
