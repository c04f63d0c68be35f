package main

import (
	"context"
	"fmt"
	"isolation/config"
	"isolation/engine"
	"isolation/experiments"
	"isolation/searcher/agent"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	seed       uint64
	players    []string
	name       string
	positions  int
	agentName  string
	port       string

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:          "isolation",
		Short:        "Minimax and MCTS agents for knight's Isolation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				loaded.LogLevel = logLevel
			}
			if cmd.Flags().Changed("seed") {
				loaded.Seed = seed
			}
			level, err := zerolog.ParseLevel(loaded.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			zerolog.SetGlobalLevel(level)
			cfg = loaded
			return nil
		},
	}

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play a single game between two configured agents",
		RunE:  runPlay,
	}

	experimentCmd = &cobra.Command{
		Use:   "experiment",
		Short: "Play a round robin between all configured agents and store the records",
		RunE:  runExperiment,
	}

	throughputCmd = &cobra.Command{
		Use:   "throughput",
		Short: "Measure the search speed of every configured agent",
		RunE:  runThroughput,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve a configured agent over HTTP",
		RunE:  runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Seed for all randomness")

	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringSliceVarP(&players, "players", "p", nil, "Names of the two agents, first to move first")

	rootCmd.AddCommand(experimentCmd)
	experimentCmd.Flags().StringVarP(&name, "name", "n", "round_robin", "Experiment name used for the output directory")

	rootCmd.AddCommand(throughputCmd)
	throughputCmd.Flags().IntVar(&positions, "positions", 50, "Number of random positions to search")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&agentName, "agent", "a", "", "Name of the agent to serve (first configured agent when empty)")
	serveCmd.Flags().StringVar(&port, "port", "8080", "Port to listen on")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if len(players) == 0 && len(cfg.Agents) >= 2 {
		players = []string{cfg.Agents[0].Name, cfg.Agents[1].Name}
	}
	if len(players) != 2 {
		return fmt.Errorf("need exactly two players, got %d", len(players))
	}

	agents := make([]agent.Agent, 2)
	for seat, player := range players {
		agentCfg, err := cfg.Agent(player)
		if err != nil {
			return err
		}
		agents[seat], err = engine.NewAgent(agentCfg, cfg.Seed+uint64(seat))
		if err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()
	e := engine.LocalEngine(players, agents, engine.WithTimeLimit(cfg.TimeLimit), engine.WithMaxTurns(cfg.MaxTurns))
	result, err := e.Run(ctx)
	if err != nil {
		return err
	}

	if n := len(result.History); n > 0 {
		fmt.Println(result.History[n-1].State)
	}
	if result.Winner < 0 {
		fmt.Printf("No winner after %d moves\n", result.Game.TotalMoves)
		return nil
	}
	fmt.Printf("%s wins after %d moves (forfeit: %t)\n", result.Names[result.Winner], result.Game.TotalMoves, result.Game.Forfeit)
	return nil
}

func runExperiment(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()
	report, err := experiments.Run(ctx, cfg, name)
	if err != nil {
		return err
	}
	for _, s := range report.Summaries {
		fmt.Printf("%-12s vs %-12s %6.3f ± %.3f (%d games)\n", s.First, s.Second, s.WinRate, s.StdErr, s.Games)
	}
	fmt.Printf("Records stored in %s\n", report.Dir)
	return nil
}

func runThroughput(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()
	results, err := experiments.RunThroughputExperiment(ctx, cfg, experiments.RandomPositions(positions, cfg.Seed))
	if err != nil {
		return err
	}
	for _, t := range results {
		fmt.Printf("%-12s %10.0f ± %.0f per second, %.1f nodes\n", t.Agent, t.Mean, t.StdDev, t.Nodes)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	agentCfg := cfg.Agents[0]
	if agentName != "" {
		var err error
		if agentCfg, err = cfg.Agent(agentName); err != nil {
			return err
		}
	}
	log.Info().Str("agent", agentCfg.Name).Msg("serving agent")
	return agent.StartAgentServer(port, agentCfg, cfg.Seed)
}
