package searcher

import (
	"context"
	"fmt"
	"isolation/experiments/metrics"
	"isolation/game"
	"math"
	"time"
)

type MinimaxOption func(m *Minimax)

// Minimax searches every line to a fixed depth and scores the cutoff with a
// static evaluation. Given the same state it always returns the same action.
type Minimax struct {
	depth    int
	evaluate game.Evaluate
	metrics  metrics.Collector
	last     metrics.SearchMetric
}

func WithEvaluationFn(evaluate game.Evaluate) MinimaxOption {
	return func(m *Minimax) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

func WithMinimaxMetrics() MinimaxOption {
	return func(m *Minimax) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMinimax(depth int, options ...MinimaxOption) *Minimax {
	if depth < 0 {
		panic("search depth cannot be negative")
	}
	m := &Minimax{
		depth:    depth,
		evaluate: game.EvaluateLiberties,
		metrics:  metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *Minimax) LastMetric() metrics.SearchMetric {
	return m.last
}

func (m *Minimax) ChooseAction(ctx context.Context, state game.State) (game.Action, error) {
	start := time.Now()
	m.metrics.Start(StrategyMinimax, m.depth)
	action, err := m.search(ctx, state)
	m.last = m.metrics.Complete()
	observeSearch(StrategyMinimax, start, err)
	return action, err
}

func (m *Minimax) search(ctx context.Context, state game.State) (game.Action, error) {
	if state.TerminalTest() {
		return 0, ErrTerminalState
	}
	actions := state.Actions()
	if len(actions) == 0 {
		return 0, ErrNoActions
	}

	// Values are always from the searching player's perspective
	player := state.Player()
	best := actions[0]
	bestValue := math.Inf(-1)
	for i, action := range actions {
		value := minValue(ctx, state.Result(action), player, m.depth-1, m.evaluate)
		// A value cut short by the deadline is not trusted
		if err := ctx.Err(); err != nil {
			return best, fmt.Errorf("minimax interrupted after %d of %d actions: %w", i, len(actions), err)
		}
		// Strict comparison keeps the first of equally valued actions
		if value > bestValue {
			best = action
			bestValue = value
		}
		m.metrics.AddIteration()
	}
	return best, nil
}

// maxValue and minValue stop descending once ctx is done and return the
// evaluation at that point.
func maxValue(ctx context.Context, state game.State, player int, depth int, evaluate game.Evaluate) float64 {
	if state.TerminalTest() {
		return state.Utility(player)
	}
	if depth <= 0 || ctx.Err() != nil {
		return evaluate(state, player)
	}
	value := math.Inf(-1)
	for _, action := range state.Actions() {
		value = math.Max(value, minValue(ctx, state.Result(action), player, depth-1, evaluate))
	}
	return value
}

func minValue(ctx context.Context, state game.State, player int, depth int, evaluate game.Evaluate) float64 {
	if state.TerminalTest() {
		return state.Utility(player)
	}
	if depth <= 0 || ctx.Err() != nil {
		return evaluate(state, player)
	}
	value := math.Inf(1)
	for _, action := range state.Actions() {
		value = math.Min(value, maxValue(ctx, state.Result(action), player, depth-1, evaluate))
	}
	return value
}
