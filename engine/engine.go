package engine

import (
	"context"
	"isolation/config"
	"isolation/experiments/metrics"
	"isolation/gamemaster"
	"isolation/searcher/agent"
)

type Engine interface {
	// Run plays a game until there's a winner or the max number of turns is reached
	Run(ctx context.Context) (Result, error)
}

type Result struct {
	// Winner is the winning seat, -1 if the turn limit was reached
	Winner  int
	Names   [2]string
	Game    metrics.GameMetric
	Moves   []metrics.MoveMetric
	History []gamemaster.Update
}

// reporter is implemented by agents that expose the work behind their last
// action.
type reporter interface {
	LastMetric() metrics.SearchMetric
}

// NewAgent builds the agent for a seat: a remote agent when the configuration
// names a server, a local policy otherwise.
func NewAgent(cfg config.AgentConfig, seed uint64) (agent.Agent, error) {
	if cfg.Remote != "" {
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return NewRemoteAgent(cfg.Remote), nil
	}
	return agent.FromConfig(cfg, seed)
}
