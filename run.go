package main

import (
	"fmt"

	"uct/game"
	"uct/searcher"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search once and take the best action",
	Long:  `Spends the iteration budget from a single state, commits the best root action and prints the resulting transition.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, process, err := newSearch()
		if err != nil {
			return err
		}

		initial := process.State()
		if cmd.Flags().Changed("state") {
			state, _ := cmd.Flags().GetInt("state")
			initial = searcher.State(state)
		}

		best, err := e.Run(initial)
		if err != nil {
			return err
		}
		transition, err := e.Advance(best)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Initial state: %d\n", initial)
		fmt.Fprintf(out, "Best action: %d (%s)\n", best, game.ActionName(best))
		fmt.Fprintf(out, "New state: %d\n", transition.State)
		fmt.Fprintf(out, "Reward: %g\n", transition.Reward)
		fmt.Fprintf(out, "Done: %t\n", transition.Terminal)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("state", 0, "Cell to search from (defaults to the start cell)")
}
