package searcher

import "math"

// ScoringPolicy maps the children of a node to one score per child, in
// child order.
type ScoringPolicy func(t *Tree, id NodeID) []float64

// UCT scores children by mean reward plus c*sqrt(2*ln(N)/n). Unvisited
// children score -Inf. The parent must have been visited.
func UCT(c float64) ScoringPolicy {
	return func(t *Tree, id NodeID) []float64 {
		parent := t.node(id)
		policy := newUCT(c, parent.Visits)

		scores := make([]float64, len(parent.Children))
		for i, child := range parent.Children {
			n := t.node(child)
			scores[i] = policy.evaluate(n.Cumulative, n.Visits)
		}
		return scores
	}
}

type uct struct {
	c         float64
	numerator float64
}

func newUCT(c float64, N int) uct {
	if N == 0 {
		panic("cannot compute UCT: parent has 0 visits")
	}
	return uct{c: c, numerator: 2 * math.Log(float64(N))}
}

func (u uct) evaluate(q float64, n int) float64 {
	if n == 0 {
		return math.Inf(-1)
	}
	// UCT = q/n + c*sqrt(2*ln(N)/n)
	return q/float64(n) + u.c*math.Sqrt(u.numerator/float64(n))
}
