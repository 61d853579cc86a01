package agent

import (
	"fmt"
	"math"
	"slices"

	"uct/searcher"

	"golang.org/x/exp/rand"
)

type trainingAgent struct {
	temperature float64
	rand        *rand.Rand
}

// NewTrainingAgent returns an agent that samples root actions in proportion
// to visits^(1/temperature).
func NewTrainingAgent(temperature float64, seed uint64) Agent {
	return &trainingAgent{
		temperature: temperature,
		rand:        rand.New(rand.NewSource(seed)),
	}
}

func (a *trainingAgent) SelectAction(e *searcher.Engine) (searcher.Action, error) {
	policy := e.Policy()
	if len(policy) == 0 {
		return 0, searcher.ErrNotSearched
	}
	policy = adjustTemperature(policy, a.temperature)
	return sample(policy, a.rand.Float64()), nil
}

func (a *trainingAgent) Name() string {
	return fmt.Sprintf("temperature=%g", a.temperature)
}

func adjustTemperature(policy map[searcher.Action]float64, temperature float64) map[searcher.Action]float64 {
	// Compute temperature-adjusted action probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make(map[searcher.Action]float64, len(policy))
	for action, visits := range policy {
		prob := math.Pow(visits, exponent)
		sum += prob
		adjusted[action] = prob
	}
	if sum == 0 {
		// no visits at all, fall back to uniform
		for action := range adjusted {
			adjusted[action] = 1 / float64(len(adjusted))
		}
		return adjusted
	}
	// Normalize
	for action := range adjusted {
		adjusted[action] /= sum
	}
	return adjusted
}

// sample walks the actions in ascending order so a given draw always maps to
// the same action.
func sample(policy map[searcher.Action]float64, draw float64) searcher.Action {
	actions := make([]searcher.Action, 0, len(policy))
	for action := range policy {
		actions = append(actions, action)
	}
	slices.Sort(actions)
	cumulative := 0.0
	for _, action := range actions {
		cumulative += policy[action]
		if draw < cumulative {
			return action
		}
	}
	return actions[len(actions)-1] // Fallback in case of rounding errors
}
