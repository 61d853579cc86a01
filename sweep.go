package main

import (
	"fmt"
	"strconv"

	"uct/experiments"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare agent configurations over many episodes",
	Long:  `Varies one search parameter, plays a batch of episodes per value and writes the configs, episodes and steps as CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		param, _ := flags.GetString("param")
		values, _ := flags.GetStringSlice("values")
		episodes, _ := flags.GetInt("episodes")
		dir, _ := flags.GetString("out")

		exp, err := buildExperiment(param, values)
		if err != nil {
			return err
		}
		exp.Episodes = episodes

		result, err := experiments.Run(cmd.Context(), exp)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-6s %-10s %-8s %-8s %-8s %s\n", "agent", "episodes", "success", "return", "steps", "iter/s")
		for _, s := range experiments.Summarize(result) {
			fmt.Fprintf(out, "%-6d %-10d %-8.3f %-8.3f %-8.1f %.0f\n",
				s.Agent, s.Episodes, s.SuccessRate, s.MeanReturn, s.MeanSteps, s.Throughput)
		}

		if dir == "" {
			return nil
		}
		path, err := experiments.Write(dir, exp, result)
		if err != nil {
			return err
		}
		log.Info().Str("dir", path).Msg("stored experiment")
		return nil
	},
}

func buildExperiment(param string, values []string) (experiments.Experiment, error) {
	switch param {
	case "strategy":
		return experiments.StrategyComparison(cfg), nil
	case "exploration":
		floats := make([]float64, len(values))
		for i, v := range values {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return experiments.Experiment{}, fmt.Errorf("exploration value %q: %w", v, err)
			}
			floats[i] = f
		}
		return experiments.ExplorationSweep(cfg, floats), nil
	case "cutoff", "iterations":
		ints := make([]int, len(values))
		for i, v := range values {
			n, err := strconv.Atoi(v)
			if err != nil {
				return experiments.Experiment{}, fmt.Errorf("%s value %q: %w", param, v, err)
			}
			ints[i] = n
		}
		if param == "cutoff" {
			return experiments.CutoffSweep(cfg, ints), nil
		}
		return experiments.IterationSweep(cfg, ints), nil
	}
	return experiments.Experiment{}, fmt.Errorf("unknown parameter %q (strategy, exploration, cutoff, iterations)", param)
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().String("param", "strategy", "Parameter to vary (strategy, exploration, cutoff, iterations)")
	sweepCmd.Flags().StringSlice("values", nil, "Comma separated values of the parameter")
	sweepCmd.Flags().Int("episodes", experiments.NumEpisodes, "Episodes per value")
	sweepCmd.Flags().String("out", "", "Directory for the CSV results")
}
