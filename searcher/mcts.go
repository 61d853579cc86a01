package searcher

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"uct/experiments/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(e *Engine)

// Engine builds a UCT search tree over a DecisionProcess it exclusively owns.
// It is not safe for concurrent use.
type Engine struct {
	process     DecisionProcess
	tree        *Tree
	history     []Action // actions committed on the live process since Reset
	exploration float64
	iterations  int
	cutoff      int
	strategy    Strategy
	expansion   ExpansionPolicy
	rollout     RolloutReturn
	rand        *rand.Rand
	logger      zerolog.Logger
	metrics     metrics.Collector
}

func WithIterations(iterations int) Option {
	return func(e *Engine) {
		if iterations > 0 {
			e.iterations = iterations
		}
	}
}

func WithExploration(c float64) Option {
	return func(e *Engine) {
		if c >= 0 {
			e.exploration = c
		}
	}
}

// WithCutoff bounds the number of steps of a rollout.
func WithCutoff(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.cutoff = depth
		}
	}
}

func WithStrategy(strategy Strategy) Option {
	return func(e *Engine) {
		e.strategy = strategy
	}
}

func WithExpansion(policy ExpansionPolicy) Option {
	return func(e *Engine) {
		e.expansion = policy
	}
}

func WithRollout(rollout RolloutReturn) Option {
	return func(e *Engine) {
		e.rollout = rollout
	}
}

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rand = r
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(e *Engine) {
		if collector != nil {
			e.metrics = collector
		}
	}
}

// NewEngine resets process and roots a new tree at its initial state.
func NewEngine(process DecisionProcess, options ...Option) (*Engine, error) {
	e := &Engine{ // Default values
		process:     process,
		exploration: DefaultExploration,
		iterations:  DefaultIterations,
		cutoff:      MaxCutoff,
		strategy:    FixedBudget,
		expansion:   ExpandFirstUntried,
		rollout:     RolloutSum,
		rand:        rand.New(rand.NewSource(1)),
		logger:      log.Logger,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(e)
	}
	if process.ActionCount() <= 0 {
		return nil, fmt.Errorf("decision process has %d actions", process.ActionCount())
	}

	state, err := process.Reset()
	if err != nil {
		return nil, fmt.Errorf("reset decision process: %w", err)
	}
	e.tree = NewTree(state, e.isTerminal(state))
	return e, nil
}

func (e *Engine) isTerminal(state State) bool {
	if checker, ok := e.process.(TerminalChecker); ok {
		return checker.IsTerminal(state)
	}
	return false
}

// Tree exposes the current search tree for reading.
func (e *Engine) Tree() *Tree {
	return e.tree
}

func (e *Engine) Exploration() float64 {
	return e.exploration
}

func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// History lists the actions committed with Advance since the tree was last
// rooted by Run or NewEngine.
func (e *Engine) History() []Action {
	return slices.Clone(e.history)
}

// Run discards the tree, roots a new one at initial, spends the iteration
// budget and returns the root's best action. A terminal initial state is only
// detected when the process implements TerminalChecker.
func (e *Engine) Run(initial State) (Action, error) {
	e.tree = NewTree(initial, e.isTerminal(initial))
	e.history = nil
	e.metrics.SetTreeReset(true)

	if _, err := e.Search(context.Background()); err != nil {
		return 0, err
	}
	return e.BestAction()
}

// Search spends the iteration budget on the current tree, rewinding the
// process to the root before every iteration.
func (e *Engine) Search(ctx context.Context) (metrics.SearchMetric, error) {
	root := e.tree.node(e.tree.Root())
	if root.Terminal {
		return metrics.SearchMetric{}, fmt.Errorf("search from state %d: %w", root.State, ErrTerminal)
	}

	e.metrics.Start(e.strategy.String(), e.iterations, e.cutoff)
	e.logger.Debug().
		Int("state", int(root.State)).
		Stringer("strategy", e.strategy).
		Int("iterations", e.iterations).
		Msg("starting search")

	for i := 0; i < e.iterations; i++ {
		if err := ctx.Err(); err != nil {
			return e.metrics.Complete(), err
		}
		if err := e.iterate(); err != nil {
			return e.metrics.Complete(), fmt.Errorf("iteration %d: %w", i+1, err)
		}
		e.metrics.AddEpisode()
	}

	metric := e.metrics.Complete()
	e.logger.Debug().
		Int("nodes", e.tree.Len()).
		Int("visits", e.tree.node(e.tree.Root()).Visits).
		Dur("duration", metric.Duration).
		Msg("completed search")
	return metric, nil
}

func (e *Engine) iterate() error {
	if err := e.Rewind(); err != nil {
		return err
	}
	size := e.tree.Len()

	var node NodeID
	var err error
	switch e.strategy {
	case Incremental:
		node, err = e.Forward()
		if err != nil {
			return err
		}
	default:
		node, err = e.Select(e.tree.Root())
		if err != nil {
			return err
		}
		if !e.tree.node(node).Terminal && !e.tree.IsFullyExpanded(node, e.process.ActionCount()) {
			node, err = e.Expand(node)
			if err != nil {
				return err
			}
		}
	}

	reward, err := e.Simulate(node)
	if err != nil {
		// an unbacked child would leave its parent unscorable
		if e.tree.Len() > size {
			e.tree.removeLast()
		}
		return err
	}
	e.Backpropagate(node, reward)
	return nil
}

// BestAction is the action of the root child with the highest mean reward.
func (e *Engine) BestAction() (Action, error) {
	root := e.tree.Root()
	if len(e.tree.node(root).Children) == 0 {
		return 0, ErrNotSearched
	}
	return e.tree.node(e.tree.BestChild(root, UCT(0))).Action, nil
}

// Policy maps each expanded root action to its visit count.
func (e *Engine) Policy() map[Action]float64 {
	root := e.tree.node(e.tree.Root())
	policy := make(map[Action]float64, len(root.Children))
	for _, child := range root.Children {
		n := e.tree.node(child)
		policy[n.Action] = float64(n.Visits)
	}
	return policy
}

// Transition is the outcome of a committed live step.
type Transition struct {
	Action     Action
	State      State
	Reward     float64
	Terminal   bool
	TreeReused bool
}

// Advance plays action on the live process from the root state and reroots
// the tree at the result. The matching subtree is kept when its recorded
// state is the state actually reached.
func (e *Engine) Advance(action Action) (Transition, error) {
	if err := e.Rewind(); err != nil {
		return Transition{}, err
	}
	state, reward, terminal, err := e.process.Step(action)
	if err != nil {
		return Transition{}, fmt.Errorf("step action %d: %w", action, err)
	}
	e.history = append(e.history, action)

	reused := false
	if child, ok := e.tree.Child(e.tree.Root(), action); ok && e.tree.node(child).State == state {
		e.tree = e.tree.Subtree(child)
		reused = true
	} else {
		e.tree = NewTree(state, terminal)
	}
	e.metrics.SetTreeReset(!reused)

	e.logger.Debug().
		Int("action", int(action)).
		Int("state", int(state)).
		Float64("reward", reward).
		Bool("terminal", terminal).
		Bool("reused", reused).
		Msg("advanced root")
	return Transition{
		Action:     action,
		State:      state,
		Reward:     reward,
		Terminal:   terminal,
		TreeReused: reused,
	}, nil
}

// Rewind brings the live process to the root state: a reset followed by a
// direct state restore when supported, or else a replay of the committed
// actions.
func (e *Engine) Rewind() error {
	err := e.syncTo(e.tree.Root())
	if errors.Is(err, errStateMismatch) {
		return fmt.Errorf("%w: %w", ErrUnreachableState, err)
	}
	return err
}

var errStateMismatch = errors.New("replayed state differs from tree")

func (e *Engine) syncTo(id NodeID) error {
	target := e.tree.node(id).State
	state, err := e.process.Reset()
	if err != nil {
		return fmt.Errorf("reset decision process: %w", err)
	}

	if setter, ok := e.process.(StateSetter); ok {
		if state == target {
			return nil
		}
		if err := setter.SetState(target); err != nil {
			return fmt.Errorf("restore state %d: %w", target, err)
		}
		return nil
	}

	replay := append(slices.Clone(e.history), e.tree.Path(id)...)
	for _, action := range replay {
		state, _, _, err = e.process.Step(action)
		if err != nil {
			return fmt.Errorf("replay action %d: %w", action, err)
		}
	}
	if state != target {
		return fmt.Errorf("%w: reached state %d, want %d", errStateMismatch, state, target)
	}
	return nil
}
