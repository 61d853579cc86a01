package agent

import "uct/searcher"

type evaluationAgent struct{}

// NewEvaluationAgent returns an agent that always commits the root child with
// the highest mean reward.
func NewEvaluationAgent() Agent {
	return evaluationAgent{}
}

func (a evaluationAgent) SelectAction(e *searcher.Engine) (searcher.Action, error) {
	return e.BestAction()
}

func (a evaluationAgent) Name() string {
	return "greedy"
}
