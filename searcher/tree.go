package searcher

import (
	"fmt"
	"slices"
)

// Tree is an arena of nodes. Children are stored as ids in insertion order and
// parents as non-owning ids, so the whole tree is released together.
type Tree struct {
	nodes []Node
}

// NewTree returns a tree holding only a root for state.
func NewTree(state State, terminal bool) *Tree {
	return &Tree{
		nodes: []Node{{
			ID:       0,
			State:    state,
			Terminal: terminal,
			Parent:   NoNode,
		}},
	}
}

func (t *Tree) Root() NodeID {
	return 0
}

// Len is the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a copy of the node's fields.
func (t *Tree) Node(id NodeID) Node {
	return *t.node(id)
}

func (t *Tree) node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("node %d does not exist in a tree of %d nodes", id, len(t.nodes)))
	}
	return &t.nodes[id]
}

func (t *Tree) Children(id NodeID) []NodeID {
	return slices.Clone(t.node(id).Children)
}

// Child finds the child reached by action.
func (t *Tree) Child(id NodeID, action Action) (NodeID, bool) {
	for _, child := range t.node(id).Children {
		if t.nodes[child].Action == action {
			return child, true
		}
	}
	return NoNode, false
}

func (t *Tree) IsFullyExpanded(id NodeID, actionCount int) bool {
	return len(t.node(id).Children) == actionCount
}

// Expand appends a child reached by action and returns it. Expanding a
// terminal node or reusing an action is a logic error.
func (t *Tree) Expand(id NodeID, state State, action Action, reward float64, terminal bool) NodeID {
	parent := t.node(id)
	if parent.Terminal {
		panic(fmt.Sprintf("cannot expand terminal node %d", id))
	}
	if _, ok := t.Child(id, action); ok {
		panic(fmt.Sprintf("node %d already has a child for action %d", id, action))
	}

	child := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		ID:       child,
		State:    state,
		Action:   action,
		Reward:   reward,
		Terminal: terminal,
		Parent:   id,
	})
	// append may have moved the arena
	parent = t.node(id)
	parent.Children = append(parent.Children, child)
	return child
}

// removeLast drops the most recently expanded node. It must be an unvisited
// leaf.
func (t *Tree) removeLast() {
	id := NodeID(len(t.nodes) - 1)
	last := t.node(id)
	if !last.HasAction() || len(last.Children) > 0 || last.Visits > 0 {
		panic(fmt.Sprintf("node %d is not an unvisited leaf", id))
	}
	parent := t.node(last.Parent)
	parent.Children = slices.DeleteFunc(parent.Children, func(child NodeID) bool {
		return child == id
	})
	t.nodes = t.nodes[:id]
}

// Update records one backpropagation pass through the node.
func (t *Tree) Update(id NodeID, reward float64) {
	t.node(id).update(reward)
}

// BestChild returns the child with the highest score, preferring the earliest
// child on ties.
func (t *Tree) BestChild(id NodeID, score ScoringPolicy) NodeID {
	children := t.node(id).Children
	if len(children) == 0 {
		panic(fmt.Sprintf("node %d has no children", id))
	}

	scores := score(t, id)
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return children[best]
}

// Path lists the actions leading from the root to the node.
func (t *Tree) Path(id NodeID) []Action {
	var path []Action
	for node := t.node(id); node.HasAction(); node = t.node(node.Parent) {
		path = append(path, node.Action)
	}
	slices.Reverse(path)
	return path
}

func (t *Tree) Depth(id NodeID) int {
	depth := 0
	for node := t.node(id); node.HasAction(); node = t.node(node.Parent) {
		depth++
	}
	return depth
}

// Walk visits the tree depth-first from the root, parents before children.
// Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(node Node, depth int) bool) {
	t.walk(t.Root(), 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(Node, int) bool) {
	node := t.nodes[id]
	if !fn(node, depth) {
		return
	}
	for _, child := range node.Children {
		t.walk(child, depth+1, fn)
	}
}

// Subtree copies the subtree rooted at id into a new arena. The copied root
// loses its incoming action and reward.
func (t *Tree) Subtree(id NodeID) *Tree {
	src := t.node(id)
	sub := NewTree(src.State, src.Terminal)
	sub.nodes[0].Visits = src.Visits
	sub.nodes[0].Cumulative = src.Cumulative
	sub.nodes[0].performance = src.performance

	type pair struct{ from, to NodeID }
	queue := []pair{{id, sub.Root()}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, child := range t.nodes[p.from].Children {
			c := t.nodes[child]
			copied := sub.Expand(p.to, c.State, c.Action, c.Reward, c.Terminal)
			n := &sub.nodes[copied]
			n.Visits = c.Visits
			n.Cumulative = c.Cumulative
			n.performance = c.performance
			queue = append(queue, pair{child, copied})
		}
	}
	return sub
}
