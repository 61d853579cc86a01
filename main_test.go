package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uct/searcher"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag of cmd and its subcommands so executions
// do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if slice, ok := f.Value.(pflag.SliceValue); ok {
			_ = slice.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := executeErr(args...)
	require.NoError(t, err)
	return out
}

func executeErr(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "warn"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	out := execute(t, "run", "--iterations", "200", "--strategy", "fixed")

	require.Contains(t, out, "Initial state: 0\n")
	require.Contains(t, out, "Best action: ")
	require.Contains(t, out, "Done: ")
}

func TestRunCommandFromHole(t *testing.T) {
	out, err := executeErr("run", "--iterations", "20", "--state", "5")
	require.ErrorIs(t, err, searcher.ErrTerminal)
	require.NotContains(t, out, "Best action")
}

func TestPlayCommand(t *testing.T) {
	out := execute(t, "play", "--iterations", "100", "--cutoff", "20", "--episodes", "2", "--max-steps", "10")

	require.Contains(t, out, "Episode 1: steps=")
	require.Contains(t, out, "Episode 2: steps=")
	require.Contains(t, out, "Mean return: ")
}

func TestGraphCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.mmd")
	execute(t, "graph", "--iterations", "50", "--format", "mermaid", "--out", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "graph TD\n"))
	require.Contains(t, string(data), "class node_0 current;")
}

func TestSweepCommand(t *testing.T) {
	dir := t.TempDir()
	out := execute(t, "sweep", "--param", "cutoff", "--values", "5,10",
		"--episodes", "1", "--iterations", "30", "--out", dir)

	require.Contains(t, out, "agent")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestConfigFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uct.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  iterations: 5\nlake:\n  map: [\"SG\"]\n"), 0o644))

	out := execute(t, "run", "--config", path, "--strategy", "incremental")
	require.Contains(t, out, "Initial state: 0\n")
	require.Equal(t, 5, cfg.Search.Iterations)
	require.Equal(t, []string{"SG"}, cfg.Lake.Map)
	require.Equal(t, "incremental", cfg.Search.Strategy)

	_, err := buildExperiment("gamma", nil)
	require.Error(t, err)
	_, err = buildExperiment("exploration", []string{"x"})
	require.Error(t, err)
}
