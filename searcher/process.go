package searcher

// State identifies a decision process state. The engine only compares states
// for equality and never interprets them.
type State int

// Action is an index into the decision process's discrete action set.
type Action int

// DecisionProcess is the stateful simulation the tree searches over. It is a
// single mutable resource shared by every phase of the search: the engine
// never clones it, so its live state must follow the tree path being worked on.
type DecisionProcess interface {
	// Reset returns the process to its initial state.
	Reset() (State, error)
	// Step advances the live state by one transition.
	Step(action Action) (next State, reward float64, terminal bool, err error)
	// SampleAction draws a random action, used by rollouts.
	SampleAction() Action
	// ActionCount is the number of actions available at every non-terminal state.
	ActionCount() int
}

// StateSetter is implemented by processes that can jump straight to a state.
// Without it the engine reaches a state by resetting and replaying actions.
type StateSetter interface {
	SetState(state State) error
}

// TerminalChecker is implemented by processes that can tell whether a state
// ends the episode without stepping into it. The engine uses it to flag a
// terminal root.
type TerminalChecker interface {
	IsTerminal(state State) bool
}
