package experiments

import (
	"context"
	"fmt"

	"uct/engine"
	"uct/experiments/metrics"
	"uct/meta"
	"uct/searcher"
	"uct/searcher/agent"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const NumEpisodes = 10 // Per agent config

// Experiment plays NumEpisodes episodes for every agent config. Configs
// override the search and episode settings of Base.
type Experiment struct {
	Name     string
	Base     meta.Config
	Configs  []metrics.AgentConfig
	Episodes int
}

type Result struct {
	Episodes []metrics.EpisodeRecord
	Steps    []metrics.StepRecord
}

// baseline is the agent config described by cfg alone.
func baseline(cfg meta.Config) metrics.AgentConfig {
	return metrics.AgentConfig{
		Strategy:    cfg.Search.Strategy,
		Iterations:  cfg.Search.Iterations,
		Exploration: cfg.Search.Exploration,
		Cutoff:      cfg.Search.Cutoff,
		Temperature: cfg.Episode.Temperature,
	}
}

func sweep(name string, base meta.Config, n int, vary func(i int, config *metrics.AgentConfig)) Experiment {
	configs := make([]metrics.AgentConfig, n)
	for i := range configs {
		configs[i] = baseline(base)
		configs[i].ID = i + 1
		vary(i, &configs[i])
	}
	return Experiment{Name: name, Base: base, Configs: configs, Episodes: NumEpisodes}
}

func ExplorationSweep(base meta.Config, values []float64) Experiment {
	return sweep("exploration", base, len(values), func(i int, config *metrics.AgentConfig) {
		config.Exploration = values[i]
	})
}

func CutoffSweep(base meta.Config, values []int) Experiment {
	return sweep("cutoff", base, len(values), func(i int, config *metrics.AgentConfig) {
		config.Cutoff = values[i]
	})
}

func IterationSweep(base meta.Config, values []int) Experiment {
	return sweep("iterations", base, len(values), func(i int, config *metrics.AgentConfig) {
		config.Iterations = values[i]
	})
}

// StrategyComparison pits both search drivers against each other with the
// same budget.
func StrategyComparison(base meta.Config) Experiment {
	strategies := []searcher.Strategy{searcher.FixedBudget, searcher.Incremental}
	return sweep("strategy", base, len(strategies), func(i int, config *metrics.AgentConfig) {
		config.Strategy = strategies[i].String()
	})
}

// Run plays every episode of the experiment in turn.
func Run(ctx context.Context, exp Experiment) (Result, error) {
	var result Result
	log.Info().Msgf("starting %s experiment...", exp.Name)

	for ci, config := range exp.Configs {
		log.Info().Msgf("starting agent %d of %d with config=%+v...", ci+1, len(exp.Configs), config)

		for i := 0; i < exp.Episodes; i++ {
			episode, steps, err := runEpisode(ctx, exp.Base, config, i)
			if err != nil {
				return result, fmt.Errorf("agent %d episode %d: %w", config.ID, i+1, err)
			}
			result.Episodes = append(result.Episodes, metrics.EpisodeRecord{
				Agent:         config.ID,
				Run:           i,
				EpisodeMetric: episode,
			})
			for _, step := range steps {
				result.Steps = append(result.Steps, metrics.StepRecord{
					Episode:    episode.ID,
					StepMetric: step,
				})
			}
		}
		log.Info().Msgf("completed agent %d of %d", ci+1, len(exp.Configs))
	}

	log.Info().Msgf("completed %s experiment", exp.Name)
	return result, nil
}

// runEpisode plays one episode with its own process and engine. Seeds differ
// per run so repeated episodes are independent but reproducible.
func runEpisode(ctx context.Context, base meta.Config, config metrics.AgentConfig, run int) (metrics.EpisodeMetric, []metrics.StepMetric, error) {
	cfg := base
	cfg.Search.Strategy = config.Strategy
	cfg.Search.Iterations = config.Iterations
	cfg.Search.Exploration = config.Exploration
	cfg.Search.Cutoff = config.Cutoff
	cfg.Episode.Temperature = config.Temperature
	cfg.Seed = base.Seed + uint64(config.ID)*1000 + uint64(run)

	process, err := cfg.NewProcess()
	if err != nil {
		return metrics.EpisodeMetric{}, nil, err
	}
	options, err := cfg.SearchOptions()
	if err != nil {
		return metrics.EpisodeMetric{}, nil, err
	}
	quiet := log.Logger.Level(zerolog.WarnLevel)
	options = append(options, searcher.WithLogger(quiet), searcher.WithMetrics(metrics.NewCollector()))

	search, err := searcher.NewEngine(process, options...)
	if err != nil {
		return metrics.EpisodeMetric{}, nil, err
	}
	e := engine.LocalEngine(search, agent.New(cfg.Episode.Temperature, cfg.Seed),
		engine.WithMaxSteps(cfg.Episode.MaxSteps),
		engine.WithLogger(quiet))
	return e.Run(ctx)
}

// Write stores the configs and results of an experiment under dir.
func Write(dir string, exp Experiment, result Result) (string, error) {
	writer, err := metrics.NewWriter(dir)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(exp.Configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")
	if err := writer.WriteEpisodeRecords(result.Episodes); err != nil {
		return "", fmt.Errorf("failed to write episode records: %w", err)
	}
	log.Info().Msg("stored episode records")
	if err := writer.WriteStepRecords(result.Steps); err != nil {
		return "", fmt.Errorf("failed to write step records: %w", err)
	}
	log.Info().Msg("stored step records")
	return writer.Dir(), nil
}
