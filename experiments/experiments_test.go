package experiments

import (
	"context"
	"errors"
	"isolation/config"
	"isolation/engine"
	"isolation/searcher/agent"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func randomAgents(names ...string) []config.AgentConfig {
	agents := []config.AgentConfig{}
	for _, name := range names {
		agents = append(agents, config.AgentConfig{Name: name, Strategy: "random"})
	}
	return agents
}

func testConfig(t *testing.T, agents []config.AgentConfig) config.Config {
	cfg := config.Default()
	cfg.Agents = agents
	cfg.Games = 4
	cfg.Concurrency = 2
	cfg.TimeLimit = time.Second
	cfg.OutputDir = t.TempDir()
	cfg.Seed = 7
	return cfg
}

func TestRoundRobin(t *testing.T) {
	matchUps := RoundRobin(randomAgents("a", "b", "c"))

	require.Len(t, matchUps, 3, "Every pair should meet once")
	require.Equal(t, "a", matchUps[0].First.Name)
	require.Equal(t, "b", matchUps[0].Second.Name)
	require.Equal(t, "c", matchUps[2].Second.Name)
	require.Empty(t, RoundRobin(randomAgents("alone")))
}

func TestRun(t *testing.T) {
	t.Run("records every game", func(t *testing.T) {
		cfg := testConfig(t, randomAgents("a", "b"))

		report, err := Run(context.Background(), cfg, "smoke")

		require.NoError(t, err)
		require.Len(t, report.Games, 4)
		require.NotEmpty(t, report.Moves)
		for i, record := range report.Games {
			require.Equal(t, i+1, record.ID)
			if i%2 == 0 {
				require.Equal(t, "a", record.Agent1, "First agent should start even games")
			} else {
				require.Equal(t, "b", record.Agent1, "Second agent should start odd games")
			}
			require.Contains(t, []int{0, 1}, record.Winner)
		}

		require.Len(t, report.Summaries, 1)
		require.Equal(t, 4, report.Summaries[0].Games)
		require.GreaterOrEqual(t, report.Summaries[0].WinRate, 0.0)
		require.LessOrEqual(t, report.Summaries[0].WinRate, 1.0)

		for _, file := range []string{"agent_configs.csv", "game_records.csv", "move_records.csv", "summary.csv"} {
			_, err := os.Stat(filepath.Join(report.Dir, file))
			require.NoError(t, err, "%s should be written", file)
		}
	})

	t.Run("needs two agents", func(t *testing.T) {
		_, err := Run(context.Background(), testConfig(t, randomAgents("alone")), "smoke")

		require.Error(t, err)
	})

	t.Run("agent construction failure", func(t *testing.T) {
		cfg := testConfig(t, randomAgents("a", "b"))
		failing := func(config.AgentConfig, uint64) (agent.Agent, error) {
			return nil, errors.New("no agent")
		}

		_, err := play(context.Background(), cfg, RoundRobin(cfg.Agents), failing)

		require.ErrorContains(t, err, "no agent")
	})
}

func TestSummarize(t *testing.T) {
	matchUps := RoundRobin(randomAgents("a", "b"))
	games := []fixture{
		{id: 1, seats: [2]config.AgentConfig{matchUps[0].First, matchUps[0].Second}},
		{id: 2, seats: [2]config.AgentConfig{matchUps[0].Second, matchUps[0].First}},
		{id: 3, seats: [2]config.AgentConfig{matchUps[0].First, matchUps[0].Second}},
		{id: 4, seats: [2]config.AgentConfig{matchUps[0].Second, matchUps[0].First}},
	}
	results := []engine.Result{
		{Winner: 0},  // a wins from seat 0
		{Winner: 1},  // a wins from seat 1
		{Winner: 1},  // b wins
		{Winner: -1}, // draw
	}

	summaries := summarize(matchUps, games, results)

	require.Len(t, summaries, 1)
	s := summaries[0]
	require.Equal(t, 4, s.Games)
	require.InDelta(t, 2.5, s.Wins, 1e-9)
	require.InDelta(t, 0.625, s.WinRate, 1e-9)
	// Sample standard deviation of {1, 1, 0, 0.5} is sqrt(0.2291666)
	require.InDelta(t, 0.239357, s.StdErr, 1e-5)
}

func TestThroughput(t *testing.T) {
	positions := RandomPositions(5, 3)
	require.Len(t, positions, 5)
	for _, state := range positions {
		require.False(t, state.TerminalTest())
		require.GreaterOrEqual(t, state.PlyCount(), 2)
	}

	cfg := testConfig(t, []config.AgentConfig{{Name: "mcts", Strategy: "mcts", Iterations: 50}})
	results, err := RunThroughputExperiment(context.Background(), cfg, positions)

	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "mcts", results[0].Agent)
	require.Positive(t, results[0].Mean)
	require.Greater(t, results[0].Nodes, 1.0)
}
