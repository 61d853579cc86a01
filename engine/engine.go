package engine

import (
	"context"

	"uct/experiments/metrics"
	"uct/searcher"
)

const MaxSteps = 100 // Per episode

// StepRecord describes one committed step of an episode.
type StepRecord struct {
	metrics.StepMetric
	Transition searcher.Transition
	Inference  *searcher.InferenceReport // nil when inference is disabled
}

type Engine interface {
	// Run plays one episode until the process terminates or the step limit is
	// reached.
	Run(ctx context.Context) (metrics.EpisodeMetric, []metrics.StepMetric, error)
}
