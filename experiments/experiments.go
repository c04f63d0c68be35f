package experiments

import (
	"context"
	"fmt"
	"isolation/config"
	"isolation/engine"
	"isolation/experiments/metrics"
	"isolation/searcher/agent"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Matchup pairs two agents; First takes seat 0 in even games and seat 1 in
// odd ones.
type Matchup struct {
	First  config.AgentConfig
	Second config.AgentConfig
}

type Report struct {
	Dir       string
	Games     []metrics.GameRecord
	Moves     []metrics.MoveRecord
	Summaries []metrics.Summary
}

// NewAgentFn builds the agent for one seat of one game.
type NewAgentFn func(cfg config.AgentConfig, seed uint64) (agent.Agent, error)

// RoundRobin pairs every agent with every other agent once.
func RoundRobin(agents []config.AgentConfig) []Matchup {
	matchUps := []Matchup{}
	for i := range agents {
		for j := i + 1; j < len(agents); j++ {
			matchUps = append(matchUps, Matchup{First: agents[i], Second: agents[j]})
		}
	}
	return matchUps
}

type fixture struct {
	id      int
	matchup int
	seats   [2]config.AgentConfig
}

// Run plays cfg.Games games per round robin matchup, cfg.Concurrency games at
// a time, and stores the records under cfg.OutputDir/name.
func Run(ctx context.Context, cfg config.Config, name string) (Report, error) {
	matchUps := RoundRobin(cfg.Agents)
	if len(matchUps) == 0 {
		return Report{}, fmt.Errorf("experiment %s needs at least two agents", name)
	}

	log.Info().Msgf("starting %s experiment with %d matchups...", name, len(matchUps))
	report, err := play(ctx, cfg, matchUps, engine.NewAgent)
	if err != nil {
		return report, err
	}
	log.Info().Msgf("completed %s experiment", name)

	writer, err := metrics.NewWriter(cfg.OutputDir, name)
	if err != nil {
		return report, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	report.Dir = writer.Dir()
	if err := writer.WriteAgentConfigs(cfg.Agents); err != nil {
		return report, fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(report.Games); err != nil {
		return report, fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(report.Moves); err != nil {
		return report, fmt.Errorf("failed to write move records: %w", err)
	}
	if err := writer.WriteSummaries(report.Summaries); err != nil {
		return report, fmt.Errorf("failed to write summaries: %w", err)
	}
	log.Info().Str("dir", report.Dir).Msg("stored experiment records")
	return report, nil
}

func play(ctx context.Context, cfg config.Config, matchUps []Matchup, newAgent NewAgentFn) (Report, error) {
	games := []fixture{}
	for mi, m := range matchUps {
		for i := 0; i < cfg.Games; i++ {
			seats := [2]config.AgentConfig{m.First, m.Second}
			if i%2 == 1 { // Alternate the starting agent
				seats = [2]config.AgentConfig{m.Second, m.First}
			}
			games = append(games, fixture{id: len(games) + 1, matchup: mi, seats: seats})
		}
	}

	results := make([]engine.Result, len(games))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, gm := range games {
		i, gm := i, gm
		g.Go(func() error {
			result, err := runGame(gCtx, cfg, gm, newAgent)
			if err != nil {
				return fmt.Errorf("game %d: %w", gm.id, err)
			}
			results[i] = result
			log.Info().Msgf("completed game %d of %d (%s vs %s) with winner: %d",
				gm.id, len(games), gm.seats[0].Name, gm.seats[1].Name, result.Winner)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{}
	for i, gm := range games {
		report.Games = append(report.Games, metrics.GameRecord{
			ID:         gm.id,
			Agent1:     gm.seats[0].Name,
			Agent2:     gm.seats[1].Name,
			GameMetric: results[i].Game,
		})
		for _, mm := range results[i].Moves {
			report.Moves = append(report.Moves, metrics.MoveRecord{Game: gm.id, MoveMetric: mm})
		}
	}
	report.Summaries = summarize(matchUps, games, results)
	return report, nil
}

// runGame plays one game. Seeds are derived from the game id so a run is
// reproducible for a given cfg.Seed.
func runGame(ctx context.Context, cfg config.Config, gm fixture, newAgent NewAgentFn) (engine.Result, error) {
	agents := make([]agent.Agent, 2)
	names := make([]string, 2)
	for seat, seatCfg := range gm.seats {
		a, err := newAgent(seatCfg, cfg.Seed+uint64(gm.id)*2+uint64(seat))
		if err != nil {
			return engine.Result{}, err
		}
		agents[seat] = a
		names[seat] = seatCfg.Name
	}
	e := engine.LocalEngine(names, agents, engine.WithTimeLimit(cfg.TimeLimit), engine.WithMaxTurns(cfg.MaxTurns))
	return e.Run(ctx)
}

func summarize(matchUps []Matchup, games []fixture, results []engine.Result) []metrics.Summary {
	scores := make([][]float64, len(matchUps))
	for i, gm := range games {
		first := 0
		if gm.seats[0].Name != matchUps[gm.matchup].First.Name {
			first = 1
		}
		score := 0.5 // Draw
		switch results[i].Winner {
		case first:
			score = 1
		case 1 - first:
			score = 0
		}
		scores[gm.matchup] = append(scores[gm.matchup], score)
	}

	summaries := make([]metrics.Summary, 0, len(matchUps))
	for mi, m := range matchUps {
		s := metrics.Summary{First: m.First.Name, Second: m.Second.Name, Games: len(scores[mi])}
		if s.Games > 0 {
			s.WinRate = stat.Mean(scores[mi], nil)
			s.Wins = s.WinRate * float64(s.Games)
		}
		if s.Games > 1 {
			s.StdErr = stat.StdDev(scores[mi], nil) / math.Sqrt(float64(s.Games))
		}
		log.Info().Msgf("%s vs %s: win rate %.3f ± %.3f over %d games", s.First, s.Second, s.WinRate, s.StdErr, s.Games)
		summaries = append(summaries, s)
	}
	return summaries
}
