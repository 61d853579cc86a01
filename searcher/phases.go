package searcher

import (
	"errors"
	"fmt"
)

// Select descends from id through best children until it reaches a node
// without children, stepping the live process along the way. The process must
// be at id's state.
func (e *Engine) Select(id NodeID) (NodeID, error) {
	node := id
	for len(e.tree.node(node).Children) > 0 {
		e.logger.Trace().
			Int("state", int(e.tree.node(node).State)).
			Int("visits", e.tree.node(node).Visits).
			Float64("reward", e.tree.node(node).Cumulative).
			Msg("selecting best child")
		child := e.tree.BestChild(node, UCT(e.exploration))
		if err := e.descend(child); err != nil {
			return NoNode, err
		}
		node = child
	}
	return node, nil
}

// descend replays the child's incoming action on the live process.
func (e *Engine) descend(child NodeID) error {
	n := e.tree.node(child)
	state, _, _, err := e.process.Step(n.Action)
	if err != nil {
		return fmt.Errorf("step action %d: %w", n.Action, err)
	}
	if state != n.State {
		// stochastic transition, the tree keeps the first observed outcome
		e.logger.Trace().
			Int("action", int(n.Action)).
			Int("expected", int(n.State)).
			Int("state", int(state)).
			Msg("transition diverged from tree")
	}
	return nil
}

// Expand steps the live process with an untried action of id and adds the
// resulting child. The process must be at id's state.
func (e *Engine) Expand(id NodeID) (NodeID, error) {
	node := e.tree.node(id)
	if node.Terminal {
		return NoNode, fmt.Errorf("expand state %d: %w", node.State, ErrTerminal)
	}
	untried := e.untried(id)
	if len(untried) == 0 {
		return NoNode, fmt.Errorf("expand state %d: %w", node.State, ErrFullyExpanded)
	}

	action := untried[0]
	if e.expansion == ExpandRandomUntried {
		action = untried[e.rand.Intn(len(untried))]
	}

	state, reward, terminal, err := e.process.Step(action)
	if err != nil {
		return NoNode, fmt.Errorf("step action %d: %w", action, err)
	}
	e.logger.Trace().
		Int("state", int(node.State)).
		Int("action", int(action)).
		Int("new_state", int(state)).
		Msg("expanding node")
	return e.tree.Expand(id, state, action, reward, terminal), nil
}

// untried lists the actions without a child, in ascending order.
func (e *Engine) untried(id NodeID) []Action {
	count := e.process.ActionCount()
	tried := make([]bool, count)
	for _, child := range e.tree.node(id).Children {
		if a := int(e.tree.node(child).Action); a >= 0 && a < count {
			tried[a] = true
		}
	}

	untried := make([]Action, 0, count-len(e.tree.node(id).Children))
	for a := 0; a < count; a++ {
		if !tried[a] {
			untried = append(untried, Action(a))
		}
	}
	return untried
}

// Simulate estimates the value of id. A terminal node is worth its immediate
// reward; otherwise a random rollout runs from the live state until the
// process terminates or the cutoff is reached.
func (e *Engine) Simulate(id NodeID) (float64, error) {
	node := e.tree.node(id)
	if node.Terminal {
		return node.Reward, nil
	}

	total, last := 0.0, 0.0
	steps := 0
	done := false
	for !done && (e.cutoff <= 0 || steps < e.cutoff) {
		action := e.process.SampleAction()
		_, reward, terminal, err := e.process.Step(action)
		if err != nil {
			return 0, fmt.Errorf("rollout step %d: %w", steps+1, err)
		}
		total += reward
		last = reward
		done = terminal
		steps++
	}
	e.metrics.AddRollout(steps, done)

	e.logger.Trace().
		Int("state", int(node.State)).
		Int("steps", steps).
		Float64("total_reward", total).
		Msg("simulated rollout")

	if e.rollout == RolloutTerminal {
		return last, nil
	}
	return total, nil
}

// Backpropagate adds reward to id and every ancestor up to the root.
func (e *Engine) Backpropagate(id NodeID, reward float64) {
	for node := id; node != NoNode; node = e.tree.node(node).Parent {
		e.logger.Trace().
			Float64("reward", reward).
			Int("state", int(e.tree.node(node).State)).
			Int("visits", e.tree.node(node).Visits).
			Msg("backpropagating")
		e.tree.Update(node, reward)
	}
}

// Forward walks from the root to the node the next iteration should simulate:
// the first terminal node reached, or a freshly expanded child of the first
// node that still has untried actions. The process must be at the root state.
func (e *Engine) Forward() (NodeID, error) {
	node := e.tree.Root()
	for {
		if e.tree.node(node).Terminal {
			return node, nil
		}
		if !e.tree.IsFullyExpanded(node, e.process.ActionCount()) {
			return e.Expand(node)
		}
		child := e.tree.BestChild(node, UCT(e.exploration))
		if err := e.descend(child); err != nil {
			return NoNode, err
		}
		node = child
	}
}

type InferenceReport struct {
	From     NodeID
	Leaf     NodeID
	Path     []Action // actions from From to Leaf
	State    State    // state of Leaf
	Terminal bool
	Reward   float64 // simulated outcome of Leaf
}

// Inference follows the greedy (c = 0) path from id to a leaf and reports the
// leaf's simulated outcome. Tree statistics are left untouched and the
// exploration constant is restored before returning.
func (e *Engine) Inference(id NodeID) (InferenceReport, error) {
	saved := e.exploration
	e.exploration = 0
	defer func() { e.exploration = saved }()

	if err := e.syncTo(id); err != nil {
		if !errors.Is(err, errStateMismatch) {
			return InferenceReport{}, err
		}
		e.logger.Warn().Err(err).Int("node", int(id)).Msg("inference from diverged state")
	}

	leaf, err := e.Select(id)
	if err != nil {
		return InferenceReport{}, err
	}
	reward, err := e.Simulate(leaf)
	if err != nil {
		return InferenceReport{}, err
	}

	n := e.tree.node(leaf)
	report := InferenceReport{
		From:     id,
		Leaf:     leaf,
		Path:     e.tree.Path(leaf)[e.tree.Depth(id):],
		State:    n.State,
		Terminal: n.Terminal,
		Reward:   reward,
	}
	e.logger.Info().
		Int("from", int(e.tree.node(id).State)).
		Int("leaf", int(n.State)).
		Ints("path", actionInts(report.Path)).
		Bool("terminal", n.Terminal).
		Float64("reward", reward).
		Msg("inference")
	return report, nil
}

func actionInts(actions []Action) []int {
	ints := make([]int, len(actions))
	for i, a := range actions {
		ints[i] = int(a)
	}
	return ints
}
