// Package export renders search trees as Graphviz DOT or Mermaid flowcharts.
package export

import (
	"fmt"
	"io"
	"strings"

	"uct/searcher"
)

// Options prune and annotate the exported tree.
type Options struct {
	MaxDepth  int                          // 0 exports every level
	MinVisits int                          // children with fewer visits are left out
	Highlight []searcher.NodeID            // nodes drawn with the "current" style
	Action    func(searcher.Action) string // edge labels, defaults to the action number
}

type edge struct {
	from, to searcher.NodeID
	action   searcher.Action
}

// collect walks the tree in pre-order and returns the kept nodes and edges.
func collect(t *searcher.Tree, opts Options) ([]searcher.Node, []edge) {
	var nodes []searcher.Node
	var edges []edge
	t.Walk(func(node searcher.Node, depth int) bool {
		if node.HasAction() && node.Visits < opts.MinVisits {
			return false
		}
		nodes = append(nodes, node)
		if node.HasAction() {
			edges = append(edges, edge{from: node.Parent, to: node.ID, action: node.Action})
		}
		return opts.MaxDepth <= 0 || depth < opts.MaxDepth
	})
	return nodes, edges
}

func (o Options) actionLabel(a searcher.Action) string {
	if o.Action != nil {
		return o.Action(a)
	}
	return fmt.Sprint(a)
}

func (o Options) highlighted() map[searcher.NodeID]bool {
	set := make(map[searcher.NodeID]bool, len(o.Highlight))
	for _, id := range o.Highlight {
		set[id] = true
	}
	return set
}

func nodeID(id searcher.NodeID) string {
	return fmt.Sprintf("node_%d", id)
}

func nodeLabel(node searcher.Node, sep string) string {
	return strings.Join([]string{
		fmt.Sprintf("State: %d", node.State),
		fmt.Sprintf("Visits: %d", node.Visits),
		fmt.Sprintf("Reward: %.2f", node.Cumulative),
	}, sep)
}

// WriteDOT writes a Graphviz digraph with one box per node and the incoming
// action on every edge.
func WriteDOT(w io.Writer, t *searcher.Tree, opts Options) error {
	nodes, edges := collect(t, opts)
	highlight := opts.highlighted()

	var sb strings.Builder
	sb.WriteString("digraph MCTS {\n")
	sb.WriteString("    node [shape=box];\n")
	for _, node := range nodes {
		attrs := fmt.Sprintf("label=%q", nodeLabel(node, "\n"))
		if node.Terminal {
			attrs += ", peripheries=2"
		}
		if highlight[node.ID] {
			attrs += ", style=filled, fillcolor=\"#ffeb3b\""
		}
		fmt.Fprintf(&sb, "    %s [%s];\n", nodeID(node.ID), attrs)
	}
	for _, e := range edges {
		fmt.Fprintf(&sb, "    %s -> %s [label=%q];\n",
			nodeID(e.from), nodeID(e.to), "Action: "+opts.actionLabel(e.action))
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteMermaid writes a top-down Mermaid flowchart. Terminal nodes are drawn
// as stadiums.
func WriteMermaid(w io.Writer, t *searcher.Tree, opts Options) error {
	nodes, edges := collect(t, opts)

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, node := range nodes {
		opener, closer := "[", "]"
		if node.Terminal {
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(node.ID), opener, nodeLabel(node, " <br/> "), closer)
	}
	for _, e := range edges {
		label := strings.ReplaceAll(opts.actionLabel(e.action), "\"", "'")
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", nodeID(e.from), label, nodeID(e.to))
	}

	if len(opts.Highlight) > 0 {
		highlight := opts.highlighted()
		sb.WriteString("\n    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:2px,color:#000;\n")
		for _, node := range nodes {
			if highlight[node.ID] {
				fmt.Fprintf(&sb, "    class %s current;\n", nodeID(node.ID))
			}
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// GreedyPath follows the children with the highest mean reward from the root
// down to a leaf, skipping unvisited nodes.
func GreedyPath(t *searcher.Tree) []searcher.NodeID {
	path := []searcher.NodeID{t.Root()}
	for node := t.Root(); len(t.Children(node)) > 0 && t.Node(node).Visits > 0; {
		node = t.BestChild(node, searcher.UCT(0))
		if t.Node(node).Visits == 0 {
			break
		}
		path = append(path, node)
	}
	return path
}
