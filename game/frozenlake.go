package game

import (
	"errors"
	"fmt"

	"uct/searcher"

	"golang.org/x/exp/rand"
)

const (
	Left searcher.Action = iota
	Down
	Right
	Up
)

const actionCount = 4

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrInvalidState  = errors.New("invalid state")
)

func ActionName(a searcher.Action) string {
	switch a {
	case Left:
		return "Left"
	case Down:
		return "Down"
	case Right:
		return "Right"
	case Up:
		return "Up"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

type Option func(f *FrozenLake)

// WithSlippery makes every move slide to one of the two perpendicular
// directions with probability 2/3.
func WithSlippery(slippery bool) Option {
	return func(f *FrozenLake) {
		f.slippery = slippery
	}
}

func WithRand(r *rand.Rand) Option {
	return func(f *FrozenLake) {
		if r != nil {
			f.rand = r
		}
	}
}

// FrozenLake is a grid walk from the start cell to the goal. Entering the goal
// pays 1, every other transition pays 0, and holes and the goal end the
// episode. The state is the agent's cell index.
type FrozenLake struct {
	lake     *Lake
	slippery bool
	cell     int
	rand     *rand.Rand
}

func NewFrozenLake(lake *Lake, options ...Option) *FrozenLake {
	f := &FrozenLake{
		lake: lake,
		cell: lake.Start(),
		rand: rand.New(rand.NewSource(1)),
	}
	for _, option := range options {
		option(f)
	}
	return f
}

func (f *FrozenLake) Lake() *Lake {
	return f.lake
}

func (f *FrozenLake) Slippery() bool {
	return f.slippery
}

// State is the current cell.
func (f *FrozenLake) State() searcher.State {
	return searcher.State(f.cell)
}

func (f *FrozenLake) Reset() (searcher.State, error) {
	f.cell = f.lake.Start()
	return f.State(), nil
}

// Step moves the agent. Once a hole or the goal is reached the agent stays
// put and every further step pays 0.
func (f *FrozenLake) Step(action searcher.Action) (searcher.State, float64, bool, error) {
	if action < 0 || action >= actionCount {
		return f.State(), 0, false, fmt.Errorf("%w: %d", ErrInvalidAction, action)
	}
	if f.lake.IsTerminal(f.cell) {
		return f.State(), 0, true, nil
	}

	direction := action
	if f.slippery {
		// one of action-1, action, action+1 with equal probability
		direction = (action + searcher.Action(f.rand.Intn(3)) + actionCount - 1) % actionCount
	}
	f.cell = f.lake.move(f.cell, direction)

	reward := 0.0
	if f.lake.Tile(f.cell) == Goal {
		reward = 1
	}
	return f.State(), reward, f.lake.IsTerminal(f.cell), nil
}

func (f *FrozenLake) SampleAction() searcher.Action {
	return searcher.Action(f.rand.Intn(actionCount))
}

func (f *FrozenLake) ActionCount() int {
	return actionCount
}

// SetState places the agent on a cell directly.
func (f *FrozenLake) SetState(state searcher.State) error {
	if state < 0 || int(state) >= f.lake.Size() {
		return fmt.Errorf("%w: cell %d outside a lake of %d cells", ErrInvalidState, state, f.lake.Size())
	}
	f.cell = int(state)
	return nil
}

// IsTerminal reports whether the cell is a hole or the goal. Cells outside
// the lake are not terminal.
func (f *FrozenLake) IsTerminal(state searcher.State) bool {
	return state >= 0 && int(state) < f.lake.Size() && f.lake.IsTerminal(int(state))
}
