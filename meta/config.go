package meta

import (
	"errors"
	"fmt"
	"io"
	"os"

	"uct/game"
	"uct/searcher"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

type SearchConfig struct {
	Iterations  int     `yaml:"iterations"`
	Exploration float64 `yaml:"exploration"`
	Cutoff      int     `yaml:"cutoff"`
	Strategy    string  `yaml:"strategy"`
	Expansion   string  `yaml:"expansion"`
	Rollout     string  `yaml:"rollout"`
}

type LakeConfig struct {
	Preset   string   `yaml:"preset"`
	Map      []string `yaml:"map"` // overrides Preset
	Slippery bool     `yaml:"slippery"`
}

type EpisodeConfig struct {
	MaxSteps    int     `yaml:"max_steps"`
	Temperature float64 `yaml:"temperature"` // 0 commits the greedy action
	Inference   bool    `yaml:"inference"`
}

type Config struct {
	Search   SearchConfig  `yaml:"search"`
	Lake     LakeConfig    `yaml:"lake"`
	Episode  EpisodeConfig `yaml:"episode"`
	Seed     uint64        `yaml:"seed"`
	LogLevel string        `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Search: SearchConfig{
			Iterations:  ITERATIONS,
			Exploration: EXPLORATION,
			Cutoff:      WITH_CUTOFF,
			Strategy:    STRATEGY,
			Expansion:   searcher.ExpandFirstUntried.String(),
			Rollout:     searcher.RolloutSum.String(),
		},
		Lake: LakeConfig{
			Preset: LAKE,
		},
		Episode: EpisodeConfig{
			MaxSteps: MAX_STEPS,
		},
		Seed:     SEED,
		LogLevel: zerolog.InfoLevel.String(),
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Search.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("search.iterations must be positive, got %d", c.Search.Iterations))
	}
	if c.Search.Exploration < 0 {
		errs = append(errs, fmt.Errorf("search.exploration must not be negative, got %g", c.Search.Exploration))
	}
	if c.Search.Cutoff < 0 {
		errs = append(errs, fmt.Errorf("search.cutoff must not be negative, got %d", c.Search.Cutoff))
	}
	if _, err := searcher.ParseStrategy(c.Search.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("search.strategy: %w", err))
	}
	if _, err := searcher.ParseExpansionPolicy(c.Search.Expansion); err != nil {
		errs = append(errs, fmt.Errorf("search.expansion: %w", err))
	}
	if _, err := searcher.ParseRolloutReturn(c.Search.Rollout); err != nil {
		errs = append(errs, fmt.Errorf("search.rollout: %w", err))
	}
	if _, err := c.BuildLake(); err != nil {
		errs = append(errs, fmt.Errorf("lake: %w", err))
	}
	if c.Episode.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("episode.max_steps must be positive, got %d", c.Episode.MaxSteps))
	}
	if c.Episode.Temperature < 0 {
		errs = append(errs, fmt.Errorf("episode.temperature must not be negative, got %g", c.Episode.Temperature))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// SearchOptions converts the search section to engine options. The engine's
// random source is seeded from Seed.
func (c Config) SearchOptions() ([]searcher.Option, error) {
	strategy, err := searcher.ParseStrategy(c.Search.Strategy)
	if err != nil {
		return nil, err
	}
	expansion, err := searcher.ParseExpansionPolicy(c.Search.Expansion)
	if err != nil {
		return nil, err
	}
	rollout, err := searcher.ParseRolloutReturn(c.Search.Rollout)
	if err != nil {
		return nil, err
	}
	return []searcher.Option{
		searcher.WithIterations(c.Search.Iterations),
		searcher.WithExploration(c.Search.Exploration),
		searcher.WithCutoff(c.Search.Cutoff),
		searcher.WithStrategy(strategy),
		searcher.WithExpansion(expansion),
		searcher.WithRollout(rollout),
		searcher.WithRand(rand.New(rand.NewSource(c.Seed))),
	}, nil
}

func (c Config) BuildLake() (*game.Lake, error) {
	if len(c.Lake.Map) > 0 {
		return game.ParseLake(c.Lake.Map)
	}
	return game.PresetLake(c.Lake.Preset)
}

// NewProcess builds the configured FrozenLake. Its random source is seeded
// apart from the engine's so slips and rollouts stay independent.
func (c Config) NewProcess() (*game.FrozenLake, error) {
	lake, err := c.BuildLake()
	if err != nil {
		return nil, err
	}
	return game.NewFrozenLake(lake,
		game.WithSlippery(c.Lake.Slippery),
		game.WithRand(rand.New(rand.NewSource(c.Seed+1))),
	), nil
}
