package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel   string           `json:"log_level" yaml:"log_level"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	LOD        LODConfig        `json:"lod" yaml:"lod"`
	Particles  ParticlesConfig  `json:"particles" yaml:"particles"`
	Dataset    DatasetConfig    `json:"dataset" yaml:"dataset"`
	Export     ExportConfig     `json:"export" yaml:"export"`
	API        APIConfig        `json:"api" yaml:"api"`
}

type SimulationConfig struct {
	ReplayInterval  time.Duration `json:"replay_interval" yaml:"replay_interval"`
	LiveInterval    time.Duration `json:"live_interval" yaml:"live_interval"`
	HistoryCapacity int           `json:"history_capacity" yaml:"history_capacity"`
}

type LODConfig struct {
	HighCutoff    float64 `json:"high_cutoff" yaml:"high_cutoff"`
	MediumCutoff  float64 `json:"medium_cutoff" yaml:"medium_cutoff"`
	ThrottleTicks int     `json:"throttle_ticks" yaml:"throttle_ticks"`
}

type TierCapacities struct {
	High   int `json:"high" yaml:"high"`
	Medium int `json:"medium" yaml:"medium"`
	Low    int `json:"low" yaml:"low"`
}

type ParticlesConfig struct {
	// Capacities overrides the built-in per-effect table when non-empty.
	Capacities  map[string]TierCapacities `json:"capacities" yaml:"capacities"`
	TravelBound float64                   `json:"travel_bound" yaml:"travel_bound"`
}

type DatasetConfig struct {
	Driver  string        `json:"driver" yaml:"driver"`
	DSN     string        `json:"dsn" yaml:"dsn"`
	Query   string        `json:"query" yaml:"query"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

type ExportConfig struct {
	Enabled       bool     `json:"enabled" yaml:"enabled"`
	Brokers       []string `json:"brokers" yaml:"brokers"`
	Topic         string   `json:"topic" yaml:"topic"`
	ChannelBuffer int      `json:"channel_buffer" yaml:"channel_buffer"`
}

type APIConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Simulation: SimulationConfig{
			ReplayInterval:  2 * time.Second,
			LiveInterval:    1 * time.Second,
			HistoryCapacity: 240,
		},
		LOD: LODConfig{
			HighCutoff:    50,
			MediumCutoff:  100,
			ThrottleTicks: 30,
		},
		Particles: ParticlesConfig{TravelBound: 12},
		Dataset: DatasetConfig{
			Driver:  "",
			DSN:     "",
			Query:   "",
			Timeout: 10 * time.Second,
		},
		Export: ExportConfig{Enabled: false, ChannelBuffer: 64},
		API:    APIConfig{Enabled: true, Addr: ":8080"},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if path == "" || cfg == nil {
		return errors.New("config path or config is empty")
	}
	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if cfg.Simulation.ReplayInterval <= 0 {
		cfg.Simulation.ReplayInterval = 2 * time.Second
	}
	if cfg.Simulation.LiveInterval <= 0 {
		cfg.Simulation.LiveInterval = 1 * time.Second
	}
	if cfg.Simulation.HistoryCapacity <= 0 {
		cfg.Simulation.HistoryCapacity = 240
	}
	if cfg.LOD.HighCutoff <= 0 {
		cfg.LOD.HighCutoff = 50
	}
	if cfg.LOD.MediumCutoff <= 0 {
		cfg.LOD.MediumCutoff = 100
	}
	if cfg.LOD.ThrottleTicks <= 0 {
		cfg.LOD.ThrottleTicks = 30
	}
	if cfg.Particles.TravelBound <= 0 {
		cfg.Particles.TravelBound = 12
	}
	if cfg.Dataset.Timeout <= 0 {
		cfg.Dataset.Timeout = 10 * time.Second
	}
	if cfg.Export.ChannelBuffer <= 0 {
		cfg.Export.ChannelBuffer = 64
	}
}

func Validate(cfg *Config) error {
	if cfg.LOD.HighCutoff >= cfg.LOD.MediumCutoff {
		return fmt.Errorf("lod.high_cutoff (%v) must be below lod.medium_cutoff (%v)",
			cfg.LOD.HighCutoff, cfg.LOD.MediumCutoff)
	}
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr required when api.enabled is true")
	}
	if cfg.Export.Enabled {
		if len(cfg.Export.Brokers) == 0 || cfg.Export.Topic == "" {
			return errors.New("export requires brokers and topic when enabled")
		}
	}
	if cfg.Dataset.Driver != "" {
		switch strings.ToLower(cfg.Dataset.Driver) {
		case "sqlite", "postgres", "postgresql":
		default:
			return fmt.Errorf("unsupported dataset driver: %s", cfg.Dataset.Driver)
		}
	}
	for effect, caps := range cfg.Particles.Capacities {
		if caps.High < caps.Medium || caps.Medium < caps.Low || caps.Low < 0 {
			return fmt.Errorf("particles.capacities[%s] must be ordered high >= medium >= low >= 0", effect)
		}
	}
	return nil
}

type Manager struct {
	path string
	cfg  atomic.Value
}

func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	m := &Manager{path: path}
	m.cfg.Store(cfg)
	return m, nil
}

// NewStaticManager wraps an in-memory config with no backing file.
func NewStaticManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	applyDefaults(cfg)
	m := &Manager{}
	m.cfg.Store(cfg)
	return m
}

func (m *Manager) Get() *Config {
	if v := m.cfg.Load(); v != nil {
		return v.(*Config)
	}
	return DefaultConfig()
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) Reload() (*Config, error) {
	if m.path == "" {
		return m.Get(), nil
	}
	cfg, err := Load(m.path)
	if err != nil {
		return nil, err
	}
	m.cfg.Store(cfg)
	return cfg, nil
}

func (m *Manager) Update(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if m.path != "" {
		if err := Save(m.path, cfg); err != nil {
			return err
		}
	}
	m.cfg.Store(cfg)
	return nil
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}
