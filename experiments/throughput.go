package experiments

import (
	"context"
	"fmt"
	"isolation/config"
	"isolation/game"
	"isolation/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// Throughput is the search speed of one agent configuration over a set of
// positions.
type Throughput struct {
	Agent     string
	Positions int
	// Mean and standard deviation of iterations (MCTS) or root actions
	// (minimax) completed per second
	Mean   float64
	StdDev float64
	// Mean tree size for MCTS
	Nodes float64
}

// RandomPositions plays random games and keeps one non-terminal position from
// each, at least two plies in so the opening is over.
func RandomPositions(n int, seed uint64) []game.State {
	rng := rand.New(rand.NewSource(seed))
	positions := make([]game.State, 0, n)
	for len(positions) < n {
		var state game.State = game.NewIsolation()
		plies := 2 + rng.Intn(20)
		for state.PlyCount() < plies && !state.TerminalTest() {
			actions := state.Actions()
			state = state.Result(actions[rng.Intn(len(actions))])
		}
		if !state.TerminalTest() {
			positions = append(positions, state)
		}
	}
	return positions
}

// RunThroughputExperiment times a single search per position for every agent
// in cfg. Random agents report no iterations.
func RunThroughputExperiment(ctx context.Context, cfg config.Config, positions []game.State) ([]Throughput, error) {
	log.Info().Msg("starting throughput experiment...")
	results := []Throughput{}
	for _, agentCfg := range cfg.Agents {
		s, _, err := agent.NewSearcher(agentCfg, rand.New(rand.NewSource(cfg.Seed)))
		if err != nil {
			return results, err
		}

		rates := make([]float64, 0, len(positions))
		nodes := make([]float64, 0, len(positions))
		for _, state := range positions {
			searchCtx, cancel := context.WithTimeout(ctx, cfg.TimeLimit)
			_, err := s.ChooseAction(searchCtx, state)
			cancel()
			if err != nil {
				return results, fmt.Errorf("agent %s failed to search: %w", agentCfg.Name, err)
			}
			metric := s.LastMetric()
			if seconds := metric.Duration.Seconds(); seconds > 0 {
				rates = append(rates, float64(metric.Iterations)/seconds)
			}
			nodes = append(nodes, float64(metric.Nodes))
		}

		t := Throughput{Agent: agentCfg.Name, Positions: len(rates)}
		if len(rates) > 0 {
			t.Mean, t.StdDev = stat.MeanStdDev(rates, nil)
			t.Nodes = stat.Mean(nodes, nil)
		}
		log.Info().Msgf("agent %s: %.0f ± %.0f per second over %d positions", t.Agent, t.Mean, t.StdDev, t.Positions)
		results = append(results, t)
	}
	log.Info().Msg("completed throughput experiment")
	return results, nil
}
