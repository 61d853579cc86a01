package main

import (
	"fmt"
	"io"
	"os"

	"uct/export"
	"uct/game"
	"uct/searcher"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the search tree",
	Long:  `Searches from the start cell and writes the resulting tree as a Graphviz digraph or a Mermaid flowchart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		path, _ := cmd.Flags().GetString("out")
		maxDepth, _ := cmd.Flags().GetInt("max-depth")
		minVisits, _ := cmd.Flags().GetInt("min-visits")
		highlight, _ := cmd.Flags().GetBool("highlight")

		var write func(io.Writer, *searcher.Tree, export.Options) error
		switch format {
		case "dot":
			write = export.WriteDOT
		case "mermaid":
			write = export.WriteMermaid
		default:
			return fmt.Errorf("unknown format %q (dot, mermaid)", format)
		}

		e, _, err := newSearch()
		if err != nil {
			return err
		}
		if _, err := e.Search(cmd.Context()); err != nil {
			return err
		}

		opts := export.Options{
			MaxDepth:  maxDepth,
			MinVisits: minVisits,
			Action:    game.ActionName,
		}
		if highlight {
			opts.Highlight = export.GreedyPath(e.Tree())
		}

		out := cmd.OutOrStdout()
		if path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			defer f.Close()
			out = f
		}
		return write(out, e.Tree(), opts)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("format", "dot", "Output format (dot, mermaid)")
	graphCmd.Flags().StringP("out", "o", "", "Output file (defaults to stdout)")
	graphCmd.Flags().Int("max-depth", 3, "Levels below the root to export (0 exports all)")
	graphCmd.Flags().Int("min-visits", 1, "Leave out nodes with fewer visits")
	graphCmd.Flags().Bool("highlight", true, "Highlight the greedy path")
}
