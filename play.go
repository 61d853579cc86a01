package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"uct/engine"
	"uct/experiments/metrics"
	"uct/game"
	"uct/meta"
	"uct/searcher"
	"uct/searcher/agent"

	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play episodes, searching before every step",
	Long:  `Plays full episodes: before every real step the engine searches from the current state, commits an action and reuses the matching subtree.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		episodes, _ := flags.GetInt("episodes")
		render, _ := flags.GetBool("render")
		addr, _ := flags.GetString("metrics-addr")
		if flags.Changed("max-steps") {
			cfg.Episode.MaxSteps, _ = flags.GetInt("max-steps")
		}
		if flags.Changed("temperature") {
			cfg.Episode.Temperature, _ = flags.GetFloat64("temperature")
		}
		if flags.Changed("inference") {
			cfg.Episode.Inference, _ = flags.GetBool("inference")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		collector := metrics.NewCollector()
		if addr != "" {
			reg := prometheus.NewRegistry()
			collector = metrics.NewPrometheusCollector(reg)
			if err := serveMetrics(addr, reg); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		profile := termenv.NewOutput(out).Profile
		total := 0.0
		for i := 0; i < episodes; i++ {
			e, process, err := newSearch(searcher.WithMetrics(collector))
			if err != nil {
				return err
			}
			cfg.Seed++

			options := []engine.LocalOption{
				engine.WithMaxSteps(cfg.Episode.MaxSteps),
				engine.WithInference(cfg.Episode.Inference),
			}
			if render {
				fmt.Fprintf(out, "Episode %d\n", i+1)
				if err := game.Render(out, process.Lake(), process.State(), profile); err != nil {
					return err
				}
				options = append(options, engine.WithStepHook(func(r engine.StepRecord) {
					fmt.Fprintf(out, "\nStep %d: %s -> %d (reward %g)\n",
						r.Step, game.ActionName(r.Transition.Action), r.Transition.State, r.Transition.Reward)
					if err := game.Render(out, process.Lake(), r.Transition.State, profile); err != nil {
						log.Warn().Err(err).Msg("failed to render lake")
					}
				}))
			}

			a := agent.New(cfg.Episode.Temperature, cfg.Seed)
			episode, _, err := engine.LocalEngine(e, a, options...).Run(cmd.Context())
			if err != nil {
				return err
			}
			total += episode.Return
			fmt.Fprintf(out, "Episode %d: steps=%d return=%g terminal=%t duration=%s\n",
				i+1, episode.TotalSteps, episode.Return, episode.Terminal, episode.Duration)
		}
		if episodes > 0 {
			fmt.Fprintf(out, "Mean return: %.3f over %d episodes\n", total/float64(episodes), episodes)
		}
		return nil
	},
}

// serveMetrics exposes reg on addr/metrics until the process exits.
func serveMetrics(addr string, reg *prometheus.Registry) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	go func() {
		log.Info().Str("addr", listener.Addr().String()).Msg("serving metrics")
		if err := http.Serve(listener, mux); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return nil
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Int("episodes", 1, "Number of episodes")
	playCmd.Flags().Int("max-steps", meta.MAX_STEPS, "Step limit per episode")
	playCmd.Flags().Float64("temperature", 0, "Sample actions from visit counts (0 is greedy)")
	playCmd.Flags().Bool("inference", false, "Log a greedy inference from the root before every step")
	playCmd.Flags().Bool("render", false, "Draw the lake after every step")
	playCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :2112")
}
