package searcher

import "fmt"

// NodeID addresses a node inside its Tree.
type NodeID int

// NoNode marks the absent parent of a root.
const NoNode NodeID = -1

// Node is a vertex of the search tree. Nodes are created by Tree.Expand and
// mutated only through their Tree.
type Node struct {
	ID       NodeID
	State    State
	Action   Action  // incoming action, meaningless for the root
	Reward   float64 // immediate reward of the incoming transition
	Terminal bool

	Visits     int
	Cumulative float64

	Parent   NodeID
	Children []NodeID

	performance float64
}

// HasAction reports whether the node was reached through an action, which is
// true for every node but the root.
func (n Node) HasAction() bool {
	return n.Parent != NoNode
}

// Performance is the mean backpropagated reward. It is undefined until the
// node has been visited.
func (n Node) Performance() (float64, bool) {
	if n.Visits == 0 {
		return 0, false
	}
	return n.performance, true
}

func (n *Node) update(reward float64) {
	n.Visits++
	n.Cumulative += reward
	n.performance = n.Cumulative / float64(n.Visits)
}

func (n Node) String() string {
	action := "-"
	if n.HasAction() {
		action = fmt.Sprint(n.Action)
	}
	performance, _ := n.Performance()
	return fmt.Sprintf("%d: (action=%s, visits=%d, reward=%.2f, ratio=%.4f)",
		n.State, action, n.Visits, n.Cumulative, performance)
}
