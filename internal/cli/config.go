package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/veritick/veritick/internal/beat"
)

// EngineConfig is the YAML configuration surface for the engine. Zero
// values select the engine defaults.
type EngineConfig struct {
	Shards          int    `yaml:"shards"`
	RingCapacity    int    `yaml:"ring_capacity"`
	MaxParkAttempts int    `yaml:"max_park_attempts"`
	TickBudget      uint32 `yaml:"tick_budget"`
	DBPath          string `yaml:"db_path"`
}

// LoadConfig reads an engine configuration file. An empty path returns
// the defaults.
func LoadConfig(path string) (EngineConfig, error) {
	cfg := EngineConfig{Shards: 1}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Shards == 0 {
		cfg.Shards = 1
	}
	return cfg, nil
}

// BeatConfig converts the file form into the engine's construction policy.
func (c EngineConfig) BeatConfig() beat.Config {
	cfg := beat.DefaultConfig()
	cfg.Shards = c.Shards
	if c.RingCapacity > 0 {
		cfg.RingCapacity = c.RingCapacity
	}
	if c.MaxParkAttempts > 0 {
		cfg.MaxParkAttempts = c.MaxParkAttempts
	}
	if c.TickBudget > 0 {
		cfg.TickBudget = c.TickBudget
	}
	return cfg
}
