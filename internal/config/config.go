// Package config loads simulation configuration from YAML, layered over
// embedded defaults, with a few environment overrides for deployment.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/critter-world/internal/agents"
	"github.com/talgya/critter-world/internal/behavior"
	"github.com/talgya/critter-world/internal/engine"
	"github.com/talgya/critter-world/internal/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Environment variables read by ApplyEnv.
const (
	EnvConfig = "CRITTERWORLD_CONFIG"
	EnvDB     = "CRITTERWORLD_DB"
	EnvSeed   = "CRITTERWORLD_SEED"
)

// Brain kinds.
const (
	BrainRule   = "rule"
	BrainPolicy = "policy"
)

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Agents     agents.Params    `yaml:"agents"`
	Population PopulationConfig `yaml:"population"`
	Behavior   behavior.Params  `yaml:"behavior"`
	Engine     EngineConfig     `yaml:"engine"`
	Storage    StorageConfig    `yaml:"storage"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	API        APIConfig        `yaml:"api"`
}

// WorldConfig holds terrain generation and movement costs.
type WorldConfig struct {
	Generation        world.GenConfig `yaml:"generation"`
	Cost              world.CostModel `yaml:"cost"`
	MaxPathExpansions int             `yaml:"max_path_expansions"`
}

// PopulationConfig holds founding and inheritance settings.
type PopulationConfig struct {
	Spawn    agents.SpawnConfig    `yaml:"spawn"`
	Mutation agents.MutationConfig `yaml:"mutation"`
}

// EngineConfig holds the tick loop settings and the per-tick rates.
type EngineConfig struct {
	Brain       string        `yaml:"brain"`
	Interval    time.Duration `yaml:"interval"`
	Speed       float64       `yaml:"speed"`
	Ticks       uint64        `yaml:"ticks"`
	ReportEvery uint64        `yaml:"report_every"`

	engine.Params `yaml:",inline"`
}

// StorageConfig locates the database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// TelemetryConfig locates optional outputs. Empty paths disable them.
type TelemetryConfig struct {
	StatsCSV string `yaml:"stats_csv"`
	EventDir string `yaml:"event_dir"`
}

// APIConfig controls the read-only HTTP view. Port 0 disables it.
type APIConfig struct {
	Port      int `yaml:"port"`
	RateLimit int `yaml:"rate_limit"` // Requests per client per minute; 0 is unlimited
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides the database path and seed from the environment.
// lookup is normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDB); ok && v != "" {
		c.Storage.DBPath = v
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.World.Generation.Seed = seed
	}
	return nil
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	switch c.Engine.Brain {
	case BrainRule, BrainPolicy:
	default:
		return fmt.Errorf("engine.brain: unknown kind %q", c.Engine.Brain)
	}
	if c.Engine.SeasonLength == 0 {
		return fmt.Errorf("engine.season_length must be positive")
	}
	if c.World.Generation.ChunkSize <= 0 {
		return fmt.Errorf("world.generation.chunk_size must be positive")
	}
	if c.Population.Spawn.Progenitors < 0 || c.Population.Spawn.SpawnRadius < 0 {
		return fmt.Errorf("population.spawn: negative progenitors or radius")
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	rates := []struct {
		key string
		v   float64
	}{
		{"behavior.strategist_probability", c.Behavior.StrategistProbability},
		{"behavior.direction_change_probability", c.Behavior.DirectionChangeProbability},
		{"population.mutation.chance", c.Population.Mutation.Chance},
		{"engine.old_age_fraction", c.Engine.OldAgeFraction},
		{"engine.old_age_death_rate", c.Engine.OldAgeDeathRate},
		{"engine.escape_base", c.Engine.EscapeBase},
		{"engine.max_escape", c.Engine.MaxEscape},
	}
	for _, r := range rates {
		if r.v < 0 || r.v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %g", r.key, r.v)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
