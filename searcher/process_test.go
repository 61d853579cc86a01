package searcher

import (
	"errors"

	"golang.org/x/exp/rand"
)

var errMockStep = errors.New("mock step failure")

// mockProcess is a k-ary tree of states numbered like a heap: taking action a
// in state s leads to s*k+a+1. States at the given depth are terminal. It has
// no SetState, so the engine must replay actions to reach a state.
type mockProcess struct {
	actions  int
	depth    int
	rewards  map[State]float64 // reward for entering a state
	state    State
	steps    []Action
	resets   int
	failStep bool
	budget   int // steps allowed before every step fails, 0 for no limit
	rand     *rand.Rand
}

func newMockProcess(actions, depth int, rewards map[State]float64) *mockProcess {
	return &mockProcess{
		actions: actions,
		depth:   depth,
		rewards: rewards,
		rand:    rand.New(rand.NewSource(7)),
	}
}

func (m *mockProcess) level(s State) int {
	level := 0
	for s > 0 {
		s = (s - 1) / State(m.actions)
		level++
	}
	return level
}

func (m *mockProcess) Reset() (State, error) {
	m.state = 0
	m.resets++
	return m.state, nil
}

func (m *mockProcess) Step(action Action) (State, float64, bool, error) {
	if m.failStep || (m.budget > 0 && len(m.steps) >= m.budget) {
		return 0, 0, false, errMockStep
	}
	if action < 0 || int(action) >= m.actions {
		return 0, 0, false, errors.New("invalid action")
	}
	m.steps = append(m.steps, action)
	if m.level(m.state) >= m.depth {
		return m.state, 0, true, nil
	}
	m.state = m.state*State(m.actions) + State(action) + 1
	return m.state, m.rewards[m.state], m.level(m.state) >= m.depth, nil
}

func (m *mockProcess) SampleAction() Action {
	return Action(m.rand.Intn(m.actions))
}

func (m *mockProcess) ActionCount() int {
	return m.actions
}

// settableProcess adds the SetState capability.
type settableProcess struct {
	*mockProcess
	sets int
}

func (s *settableProcess) SetState(state State) error {
	s.state = state
	s.sets++
	return nil
}

// checkedProcess reports terminal states without stepping.
type checkedProcess struct {
	*settableProcess
}

func (c *checkedProcess) IsTerminal(state State) bool {
	return c.level(state) >= c.depth
}
