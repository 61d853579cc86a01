package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"uct/game"
	"uct/meta"
	"uct/searcher"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// cfg is resolved from defaults, the config file and flags before any
// command runs.
var cfg meta.Config

var rootCmd = &cobra.Command{
	Use:           "uct",
	Short:         "UCT Monte Carlo Tree Search on FrozenLake",
	Long:          `Builds UCT search trees over a FrozenLake decision process, plays episodes with them and exports the trees.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = resolveConfig(cmd)
		if err != nil {
			return err
		}
		return setupLogger(cfg.LogLevel)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.Uint64("seed", meta.SEED, "Random seed")
	flags.Int("iterations", meta.ITERATIONS, "Iterations per search")
	flags.Float64("exploration", meta.EXPLORATION, "UCT exploration constant")
	flags.Int("cutoff", meta.WITH_CUTOFF, "Rollout step limit (0 plays out to termination)")
	flags.String("strategy", meta.STRATEGY, "Search driver (fixed, incremental)")
	flags.String("expansion", searcher.ExpandFirstUntried.String(), "Expansion policy (first, random)")
	flags.String("rollout", searcher.RolloutSum.String(), "Rollout return (sum, terminal)")
	flags.String("lake", meta.LAKE, fmt.Sprintf("Lake preset %v", game.PresetNames()))
	flags.Bool("slippery", false, "Slippery transitions")
}

// resolveConfig layers explicitly set flags over the config file over the
// defaults.
func resolveConfig(cmd *cobra.Command) (meta.Config, error) {
	flags := cmd.Flags()
	c := meta.Default()
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		c, err = meta.Load(path)
		if err != nil {
			return meta.Config{}, err
		}
	}

	if flags.Changed("log-level") {
		c.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("seed") {
		c.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("iterations") {
		c.Search.Iterations, _ = flags.GetInt("iterations")
	}
	if flags.Changed("exploration") {
		c.Search.Exploration, _ = flags.GetFloat64("exploration")
	}
	if flags.Changed("cutoff") {
		c.Search.Cutoff, _ = flags.GetInt("cutoff")
	}
	if flags.Changed("strategy") {
		c.Search.Strategy, _ = flags.GetString("strategy")
	}
	if flags.Changed("expansion") {
		c.Search.Expansion, _ = flags.GetString("expansion")
	}
	if flags.Changed("rollout") {
		c.Search.Rollout, _ = flags.GetString("rollout")
	}
	if flags.Changed("lake") {
		c.Lake.Preset, _ = flags.GetString("lake")
		c.Lake.Map = nil
	}
	if flags.Changed("slippery") {
		c.Lake.Slippery, _ = flags.GetBool("slippery")
	}
	return c, c.Validate()
}

func setupLogger(level string) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(l)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	return nil
}

// newSearch builds the configured process and an engine rooted at its
// initial state.
func newSearch(options ...searcher.Option) (*searcher.Engine, *game.FrozenLake, error) {
	process, err := cfg.NewProcess()
	if err != nil {
		return nil, nil, err
	}
	base, err := cfg.SearchOptions()
	if err != nil {
		return nil, nil, err
	}
	e, err := searcher.NewEngine(process, append(base, options...)...)
	if err != nil {
		return nil, nil, err
	}
	return e, process, nil
}
