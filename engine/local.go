package engine

import (
	"context"
	"fmt"
	"time"

	"uct/experiments/metrics"
	"uct/searcher"
	"uct/searcher/agent"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type LocalOption func(l *Local)

func WithMaxSteps(steps int) LocalOption {
	return func(l *Local) {
		if steps > 0 {
			l.maxSteps = steps
		}
	}
}

// WithInference runs a greedy inference from the root before every step.
func WithInference(enabled bool) LocalOption {
	return func(l *Local) {
		l.inference = enabled
	}
}

// WithStepHook is called after every committed step.
func WithStepHook(hook func(StepRecord)) LocalOption {
	return func(l *Local) {
		l.onStep = hook
	}
}

func WithLogger(logger zerolog.Logger) LocalOption {
	return func(l *Local) {
		l.logger = logger
	}
}

// Local plays an episode on the decision process owned by a search engine,
// searching again from the current root before every step.
type Local struct {
	search    *searcher.Engine
	agent     agent.Agent
	maxSteps  int
	inference bool
	onStep    func(StepRecord)
	logger    zerolog.Logger
}

func LocalEngine(search *searcher.Engine, a agent.Agent, options ...LocalOption) *Local {
	if search == nil || a == nil {
		panic("local engine needs a search engine and an agent")
	}
	l := &Local{
		search:   search,
		agent:    a,
		maxSteps: MaxSteps,
		logger:   log.Logger,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Run executes the episode loop until the process terminates.
func (l *Local) Run(ctx context.Context) (metrics.EpisodeMetric, []metrics.StepMetric, error) {
	episode := metrics.EpisodeMetric{
		ID:        uuid.NewString(),
		StartTime: time.Now(),
	}
	logger := l.logger.With().Str("episode", episode.ID).Logger()

	tree := l.search.Tree()
	episode.Terminal = tree.Node(tree.Root()).Terminal
	logger.Info().
		Int("state", int(tree.Node(tree.Root()).State)).
		Str("agent", l.agent.Name()).
		Msg("starting episode")

	var steps []metrics.StepMetric
	for step := 1; step <= l.maxSteps && !episode.Terminal; step++ {
		searchMetric, err := l.search.Search(ctx)
		if err != nil {
			return l.complete(episode), steps, fmt.Errorf("search at step %d: %w", step, err)
		}
		action, err := l.agent.SelectAction(l.search)
		if err != nil {
			return l.complete(episode), steps, fmt.Errorf("select action at step %d: %w", step, err)
		}

		record := StepRecord{StepMetric: metrics.StepMetric{Step: step, SearchMetric: searchMetric}}
		if l.inference {
			report, err := l.search.Inference(l.search.Tree().Root())
			if err != nil {
				return l.complete(episode), steps, fmt.Errorf("inference at step %d: %w", step, err)
			}
			record.Inference = &report
		}

		transition, err := l.search.Advance(action)
		if err != nil {
			return l.complete(episode), steps, fmt.Errorf("advance at step %d: %w", step, err)
		}
		record.Transition = transition

		steps = append(steps, record.StepMetric)
		episode.TotalSteps = step
		episode.Return += transition.Reward
		episode.Terminal = transition.Terminal

		logger.Debug().
			Int("step", step).
			Int("action", int(action)).
			Int("state", int(transition.State)).
			Float64("reward", transition.Reward).
			Bool("reused", transition.TreeReused).
			Dur("search", searchMetric.Duration).
			Msg("committed step")

		if l.onStep != nil {
			l.onStep(record)
		}
	}

	episode = l.complete(episode)
	logger.Info().
		Int("steps", episode.TotalSteps).
		Float64("return", episode.Return).
		Bool("terminal", episode.Terminal).
		Dur("duration", episode.Duration).
		Msg("completed episode")
	return episode, steps, nil
}

func (l *Local) complete(episode metrics.EpisodeMetric) metrics.EpisodeMetric {
	episode.EndTime = time.Now()
	episode.Duration = episode.EndTime.Sub(episode.StartTime)
	return episode
}
