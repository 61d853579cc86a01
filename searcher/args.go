package searcher

import "fmt"

// Hyperparameters for MCTS

const DefaultExploration = 1.4 // Exploration constant c

const DefaultIterations = 1000 // Iterations per search

const MaxCutoff = 0 // Rollouts run until a terminal state

// Strategy selects the iteration body shared by every search driver.
type Strategy int

const (
	// FixedBudget iterates select, then expand when possible, then simulate
	// and backpropagate. Selection descends through any node with children.
	FixedBudget Strategy = iota
	// Incremental iterates forward, which expands before it descends, then
	// simulate and backpropagate.
	Incremental
)

func (s Strategy) String() string {
	switch s {
	case FixedBudget:
		return "fixed"
	case Incremental:
		return "incremental"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "fixed", "fixed-budget":
		return FixedBudget, nil
	case "incremental":
		return Incremental, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

// ExpansionPolicy picks which untried action a node is expanded with.
type ExpansionPolicy int

const (
	ExpandFirstUntried ExpansionPolicy = iota // lowest untried action index
	ExpandRandomUntried
)

func (p ExpansionPolicy) String() string {
	switch p {
	case ExpandFirstUntried:
		return "first"
	case ExpandRandomUntried:
		return "random"
	}
	return fmt.Sprintf("ExpansionPolicy(%d)", int(p))
}

func ParseExpansionPolicy(s string) (ExpansionPolicy, error) {
	switch s {
	case "first":
		return ExpandFirstUntried, nil
	case "random":
		return ExpandRandomUntried, nil
	}
	return 0, fmt.Errorf("unknown expansion policy %q", s)
}

// RolloutReturn is the value a rollout reports.
type RolloutReturn int

const (
	RolloutSum      RolloutReturn = iota // sum of every reward received
	RolloutTerminal                      // reward of the last step only
)

func (r RolloutReturn) String() string {
	switch r {
	case RolloutSum:
		return "sum"
	case RolloutTerminal:
		return "terminal"
	}
	return fmt.Sprintf("RolloutReturn(%d)", int(r))
}

func ParseRolloutReturn(s string) (RolloutReturn, error) {
	switch s {
	case "sum":
		return RolloutSum, nil
	case "terminal":
		return RolloutTerminal, nil
	}
	return 0, fmt.Errorf("unknown rollout return %q", s)
}
