package game

import (
	"bytes"
	"strings"
	"testing"

	"uct/searcher"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newLake(t *testing.T) *Lake {
	t.Helper()
	lake, err := PresetLake("4x4")
	require.NoError(t, err)
	return lake
}

func TestParseLake(t *testing.T) {
	t.Run("presets", func(t *testing.T) {
		for _, name := range PresetNames() {
			lake, err := PresetLake(name)
			require.NoError(t, err, name)
			require.Equal(t, Presets[name], lake.Lines())
			require.Equal(t, 0, lake.Start())
			require.Equal(t, Goal, lake.Tile(lake.Size()-1))
		}
		require.Equal(t, []string{"4x4", "8x8"}, PresetNames())
	})

	t.Run("custom map", func(t *testing.T) {
		lake, err := ParseLake([]string{"FSG", "HFF"})
		require.NoError(t, err)
		require.Equal(t, 2, lake.Rows())
		require.Equal(t, 3, lake.Cols())
		require.Equal(t, 1, lake.Start())
		require.True(t, lake.IsTerminal(2))
		require.True(t, lake.IsTerminal(3))
		require.False(t, lake.IsTerminal(4))
	})

	t.Run("invalid maps", func(t *testing.T) {
		for name, rows := range map[string][]string{
			"empty":         nil,
			"no start":      {"FFG"},
			"two starts":    {"SSG"},
			"ragged rows":   {"SFG", "FF"},
			"unknown tiles": {"SXG"},
		} {
			_, err := ParseLake(rows)
			require.ErrorIs(t, err, ErrInvalidLake, name)
		}

		_, err := PresetLake("16x16")
		require.ErrorIs(t, err, ErrInvalidLake)
	})
}

func TestFrozenLakeStep(t *testing.T) {
	t.Run("deterministic moves", func(t *testing.T) {
		f := NewFrozenLake(newLake(t))
		state, err := f.Reset()
		require.NoError(t, err)
		require.Equal(t, searcher.State(0), state)

		state, reward, terminal, err := f.Step(Right)
		require.NoError(t, err)
		require.Equal(t, searcher.State(1), state)
		require.Zero(t, reward)
		require.False(t, terminal)

		state, _, _, err = f.Step(Down)
		require.NoError(t, err)
		require.Equal(t, searcher.State(5), state, "Cell 5 is a hole")

		state, reward, terminal, err = f.Step(Right)
		require.NoError(t, err)
		require.Equal(t, searcher.State(5), state, "Agent stays in the hole")
		require.Zero(t, reward)
		require.True(t, terminal)
	})

	t.Run("walls keep the agent in place", func(t *testing.T) {
		f := NewFrozenLake(newLake(t))
		_, _ = f.Reset()

		state, _, terminal, err := f.Step(Left)
		require.NoError(t, err)
		require.Equal(t, searcher.State(0), state)
		require.False(t, terminal)

		state, _, _, err = f.Step(Up)
		require.NoError(t, err)
		require.Equal(t, searcher.State(0), state)
	})

	t.Run("reaching the goal pays one", func(t *testing.T) {
		f := NewFrozenLake(newLake(t))
		_, _ = f.Reset()

		total := 0.0
		var terminal bool
		for _, a := range []searcher.Action{Down, Down, Right, Right, Down, Right} {
			var reward float64
			var err error
			_, reward, terminal, err = f.Step(a)
			require.NoError(t, err)
			total += reward
		}
		require.True(t, terminal)
		require.Equal(t, 1.0, total)
		require.Equal(t, searcher.State(15), f.State())
	})

	t.Run("rejects invalid actions", func(t *testing.T) {
		f := NewFrozenLake(newLake(t))
		_, _ = f.Reset()

		for _, a := range []searcher.Action{-1, 4} {
			_, _, _, err := f.Step(a)
			require.ErrorIs(t, err, ErrInvalidAction)
		}
		require.Equal(t, searcher.State(0), f.State())
	})

	t.Run("slippery moves never go backwards", func(t *testing.T) {
		lake, err := ParseLake([]string{"FFF", "FSF", "FFG"})
		require.NoError(t, err)
		f := NewFrozenLake(lake, WithSlippery(true), WithRand(rand.New(rand.NewSource(11))))
		require.True(t, f.Slippery())

		seen := map[searcher.State]int{}
		for i := 0; i < 300; i++ {
			_, _ = f.Reset()
			state, _, _, err := f.Step(Right)
			require.NoError(t, err)
			seen[state]++
		}
		// From the center, right slides up or down but never left.
		require.Len(t, seen, 3)
		require.Contains(t, seen, searcher.State(5))
		require.Contains(t, seen, searcher.State(1))
		require.Contains(t, seen, searcher.State(7))
		for _, count := range seen {
			require.Greater(t, count, 50)
		}
	})
}

func TestFrozenLakeProcess(t *testing.T) {
	t.Run("set state", func(t *testing.T) {
		f := NewFrozenLake(newLake(t))

		require.NoError(t, f.SetState(14))
		state, reward, terminal, err := f.Step(Right)
		require.NoError(t, err)
		require.Equal(t, searcher.State(15), state)
		require.Equal(t, 1.0, reward)
		require.True(t, terminal)

		require.ErrorIs(t, f.SetState(16), ErrInvalidState)
		require.ErrorIs(t, f.SetState(-1), ErrInvalidState)
	})

	t.Run("samples valid actions", func(t *testing.T) {
		f := NewFrozenLake(newLake(t))
		require.Equal(t, 4, f.ActionCount())
		for i := 0; i < 100; i++ {
			a := f.SampleAction()
			require.GreaterOrEqual(t, a, searcher.Action(0))
			require.Less(t, a, searcher.Action(4))
		}
	})

	t.Run("action names", func(t *testing.T) {
		require.Equal(t, "Left", ActionName(Left))
		require.Equal(t, "Up", ActionName(Up))
		require.Equal(t, "Action(9)", ActionName(9))
	})

	t.Run("search finds the way around the first hole", func(t *testing.T) {
		f := NewFrozenLake(newLake(t))
		e, err := searcher.NewEngine(f,
			searcher.WithStrategy(searcher.Incremental),
			searcher.WithIterations(2000),
			searcher.WithRand(rand.New(rand.NewSource(5))),
			searcher.WithLogger(zerolog.Nop()))
		require.NoError(t, err)

		action, err := e.Run(4)
		require.NoError(t, err)
		require.NotEqual(t, Right, action, "Cell 5 to the right of cell 4 is a hole")
	})

	t.Run("search refuses to start in a hole", func(t *testing.T) {
		f := NewFrozenLake(newLake(t))
		require.True(t, f.IsTerminal(5))
		require.True(t, f.IsTerminal(15))
		require.False(t, f.IsTerminal(0))
		require.False(t, f.IsTerminal(16))

		e, err := searcher.NewEngine(f,
			searcher.WithIterations(10),
			searcher.WithLogger(zerolog.Nop()))
		require.NoError(t, err)

		_, err = e.Run(5)
		require.ErrorIs(t, err, searcher.ErrTerminal)
		require.Equal(t, 1, e.Tree().Len())
	})
}

func TestRender(t *testing.T) {
	t.Run("plain map without colors", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, newLake(t), 0, termenv.Ascii))
		require.Equal(t, strings.Join(Presets["4x4"], "\n")+"\n", buf.String())
	})

	t.Run("highlights the agent", func(t *testing.T) {
		var plain, colored bytes.Buffer
		require.NoError(t, Render(&plain, newLake(t), 6, termenv.TrueColor))
		require.NoError(t, Render(&colored, newLake(t), 7, termenv.TrueColor))
		require.NotEqual(t, plain.String(), colored.String())
		require.Contains(t, colored.String(), "\x1b[")
	})
}
