package agent

import "uct/searcher"

type Agent interface {
	// SelectAction picks the action to commit from the engine's searched root.
	SelectAction(e *searcher.Engine) (searcher.Action, error)
	Name() string
}

// New returns the greedy agent for temperature 0 and a sampling agent
// otherwise.
func New(temperature float64, seed uint64) Agent {
	if temperature <= 0 {
		return NewEvaluationAgent()
	}
	return NewTrainingAgent(temperature, seed)
}
