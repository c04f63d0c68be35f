package searcher

import (
	"context"
	"errors"
	"isolation/experiments/metrics"
	"isolation/game"
)

const (
	StrategyMinimax = "minimax"
	StrategyMCTS    = "mcts"
)

var (
	ErrTerminalState = errors.New("cannot search from a terminal state")
	ErrNoActions     = errors.New("state has no legal actions")
)

// Searcher picks an action for the player to move in state. Implementations
// are single threaded and not safe for concurrent use.
type Searcher interface {
	ChooseAction(ctx context.Context, state game.State) (game.Action, error)
	// LastMetric reports the work done by the most recent ChooseAction
	LastMetric() metrics.SearchMetric
}
