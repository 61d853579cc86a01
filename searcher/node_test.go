package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeUpdate(t *testing.T) {
	t.Run("performance follows cumulative reward over visits", func(t *testing.T) {
		tree := NewTree(0, false)
		root := tree.Root()

		_, ok := tree.Node(root).Performance()
		require.False(t, ok, "Performance should be undefined before the first visit")

		for _, reward := range []float64{1, 2, 4} {
			tree.Update(root, reward)
			node := tree.Node(root)
			performance, ok := node.Performance()
			require.True(t, ok)
			require.InDelta(t, node.Cumulative/float64(node.Visits), performance, 1e-12,
				"Performance should equal cumulative reward over visits")
		}

		node := tree.Node(root)
		require.Equal(t, 3, node.Visits)
		require.Equal(t, 7.0, node.Cumulative)
	})

	t.Run("negative rewards", func(t *testing.T) {
		tree := NewTree(0, false)
		tree.Update(tree.Root(), -2)
		tree.Update(tree.Root(), 1)

		performance, ok := tree.Node(tree.Root()).Performance()
		require.True(t, ok)
		require.Equal(t, -0.5, performance)
	})
}

func TestTreeExpand(t *testing.T) {
	t.Run("adding children with fresh statistics", func(t *testing.T) {
		tree := NewTree(0, false)
		root := tree.Root()

		child := tree.Expand(root, 5, 2, 0.5, true)

		node := tree.Node(child)
		require.Equal(t, State(5), node.State)
		require.Equal(t, Action(2), node.Action)
		require.Equal(t, 0.5, node.Reward)
		require.True(t, node.Terminal)
		require.Equal(t, root, node.Parent)
		require.True(t, node.HasAction())
		require.Zero(t, node.Visits)
		require.Zero(t, node.Cumulative)
		require.Equal(t, []NodeID{child}, tree.Children(root))
		require.False(t, tree.Node(root).HasAction(), "Root should have no incoming action")
	})

	t.Run("panics on a duplicate action", func(t *testing.T) {
		tree := NewTree(0, false)
		tree.Expand(tree.Root(), 1, 0, 0, false)

		require.Panics(t, func() {
			tree.Expand(tree.Root(), 2, 0, 0, false)
		}, "Siblings must not share an action")
	})

	t.Run("panics on a terminal node", func(t *testing.T) {
		tree := NewTree(0, false)
		leaf := tree.Expand(tree.Root(), 1, 0, 1, true)

		require.Panics(t, func() {
			tree.Expand(leaf, 2, 0, 0, false)
		}, "Terminal nodes must never be expanded")
	})

	t.Run("full expansion after every action", func(t *testing.T) {
		tree := NewTree(0, false)
		root := tree.Root()
		for a := 0; a < 4; a++ {
			require.False(t, tree.IsFullyExpanded(root, 4))
			tree.Expand(root, State(a+1), Action(a), 0, false)
		}
		require.True(t, tree.IsFullyExpanded(root, 4))

		child, ok := tree.Child(root, 3)
		require.True(t, ok)
		require.Equal(t, Action(3), tree.Node(child).Action)
		_, ok = tree.Child(root, 4)
		require.False(t, ok)
	})

	t.Run("removing the newest leaf", func(t *testing.T) {
		tree := NewTree(0, false)
		root := tree.Root()
		a := tree.Expand(root, 1, 0, 0, false)
		tree.Update(a, 1)
		tree.Expand(root, 2, 1, 0, false)

		tree.removeLast()
		require.Equal(t, 2, tree.Len())
		require.Equal(t, []NodeID{a}, tree.Children(root))
		_, ok := tree.Child(root, 1)
		require.False(t, ok)

		require.Panics(t, func() {
			tree.removeLast()
		}, "Visited nodes must be kept")
	})
}

func TestTreeBestChild(t *testing.T) {
	t.Run("greedy choice picks the highest mean reward", func(t *testing.T) {
		tree := NewTree(0, false)
		root := tree.Root()
		low := tree.Expand(root, 1, 0, 0, false)
		high := tree.Expand(root, 2, 1, 0, false)
		tree.Update(low, 1)
		tree.Update(low, 0)
		tree.Update(high, 3)
		tree.Update(high, 1)
		for i := 0; i < 4; i++ {
			tree.Update(root, 0)
		}

		require.Equal(t, high, tree.BestChild(root, UCT(0)))
	})

	t.Run("ties resolve to the earliest child", func(t *testing.T) {
		tree := NewTree(0, false)
		root := tree.Root()
		first := tree.Expand(root, 1, 3, 0, false)
		second := tree.Expand(root, 2, 0, 0, false)
		tree.Update(first, 1)
		tree.Update(second, 1)
		tree.Update(root, 1)
		tree.Update(root, 1)

		require.Equal(t, first, tree.BestChild(root, UCT(0)))
	})

	t.Run("panics on a leaf", func(t *testing.T) {
		tree := NewTree(0, false)

		require.Panics(t, func() {
			tree.BestChild(tree.Root(), UCT(0))
		})
	})
}

func TestTreeTraversal(t *testing.T) {
	tree := NewTree(0, false)
	root := tree.Root()
	a := tree.Expand(root, 1, 0, 0, false)
	b := tree.Expand(root, 2, 1, 0, false)
	aa := tree.Expand(a, 3, 1, 0, false)
	aaa := tree.Expand(aa, 4, 0, 1, true)
	tree.Update(aaa, 1)
	tree.Update(aa, 1)
	tree.Update(a, 1)
	tree.Update(b, 0)

	t.Run("path and depth", func(t *testing.T) {
		require.Equal(t, []Action{0, 1, 0}, tree.Path(aaa))
		require.Equal(t, 3, tree.Depth(aaa))
		require.Empty(t, tree.Path(root))
		require.Zero(t, tree.Depth(root))
	})

	t.Run("walk visits parents before children", func(t *testing.T) {
		var order []NodeID
		var depths []int
		tree.Walk(func(node Node, depth int) bool {
			order = append(order, node.ID)
			depths = append(depths, depth)
			return true
		})
		require.Equal(t, []NodeID{root, a, aa, aaa, b}, order)
		require.Equal(t, []int{0, 1, 2, 3, 1}, depths)
	})

	t.Run("walk skips pruned subtrees", func(t *testing.T) {
		count := 0
		tree.Walk(func(node Node, depth int) bool {
			count++
			return depth < 1
		})
		require.Equal(t, 3, count, "Should visit the root and its two children only")
	})

	t.Run("subtree copies statistics and drops the root action", func(t *testing.T) {
		sub := tree.Subtree(a)

		require.Equal(t, 3, sub.Len())
		newRoot := sub.Node(sub.Root())
		require.False(t, newRoot.HasAction())
		require.Equal(t, State(1), newRoot.State)
		require.Equal(t, 1, newRoot.Visits)
		require.Equal(t, 1.0, newRoot.Cumulative)

		child, ok := sub.Child(sub.Root(), 1)
		require.True(t, ok)
		require.Equal(t, State(3), sub.Node(child).State)
		require.Equal(t, []Action{1, 0}, sub.Path(sub.Children(child)[0]))

		sub.Update(sub.Root(), 5)
		require.Equal(t, 1, tree.Node(a).Visits, "Subtree should not share storage with the original")
	})
}
