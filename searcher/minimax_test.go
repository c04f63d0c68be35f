package searcher

import (
	"context"
	"isolation/game"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewMinimax(t *testing.T) {
	require.Panics(t, func() {
		NewMinimax(-1)
	}, "Negative depth should panic")
}

func TestMinimaxChooseAction(t *testing.T) {
	t.Run("choosing the immediate win", func(t *testing.T) {
		for depth := 1; depth <= 4; depth++ {
			m := NewMinimax(depth)

			got, err := m.ChooseAction(context.Background(), oneMoveFromEnd())

			require.NoError(t, err)
			require.Equal(t, game.Action(2), got, "Winning action should be chosen at depth %d", depth)
		}
	})

	t.Run("single legal action", func(t *testing.T) {
		for _, depth := range []int{0, 1, 3} {
			got, err := NewMinimax(depth).ChooseAction(context.Background(), singleMove())

			require.NoError(t, err)
			require.Equal(t, game.Action(7), got, "Only action should be returned at depth %d", depth)
		}
	})

	t.Run("deterministic on an isolation position", func(t *testing.T) {
		state := game.NewIsolation().Result(12).Result(80)
		m := NewMinimax(3)

		first, err := m.ChooseAction(context.Background(), state)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			got, err := m.ChooseAction(context.Background(), state)
			require.NoError(t, err)
			require.Equal(t, first, got, "Repeated searches should agree")
		}
		require.Contains(t, state.Actions(), first)
	})

	t.Run("ties go to the first action", func(t *testing.T) {
		flat := func(game.State, int) float64 { return 0 }
		state := game.NewIsolation().Result(12).Result(80)

		got, err := NewMinimax(1, WithEvaluationFn(flat)).ChooseAction(context.Background(), state)

		require.NoError(t, err)
		require.Equal(t, state.Actions()[0], got)
	})

	t.Run("evaluating at the depth cutoff", func(t *testing.T) {
		// Scores a position by the searching player's cell index
		highest := func(s game.State, player int) float64 {
			return float64(s.Location(player))
		}
		state := game.NewIsolation().Result(12).Result(80)
		want := state.Actions()[0]
		for _, action := range state.Actions() {
			if action > want {
				want = action
			}
		}

		got, err := NewMinimax(1, WithEvaluationFn(highest)).ChooseAction(context.Background(), state)

		require.NoError(t, err)
		require.Equal(t, want, got, "Highest destination should score best")
	})

	t.Run("terminal state", func(t *testing.T) {
		_, err := NewMinimax(3).ChooseAction(context.Background(), oneMoveFromEnd().next[1])

		require.ErrorIs(t, err, ErrTerminalState)
	})

	t.Run("cancelled search", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewMinimax(3).ChooseAction(ctx, oneMoveFromEnd())

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("deadline bounds a deep search", func(t *testing.T) {
		state := game.NewIsolation().Result(12).Result(80)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		got, err := NewMinimax(9).ChooseAction(ctx, state)

		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.True(t, game.Contains(state, got), "Best action so far should be legal")
		require.Less(t, time.Since(start), 500*time.Millisecond, "Search should stop soon after the deadline")
	})

	t.Run("collecting metrics", func(t *testing.T) {
		m := NewMinimax(2, WithMinimaxMetrics())

		_, err := m.ChooseAction(context.Background(), oneMoveFromEnd())
		require.NoError(t, err)

		metric := m.LastMetric()
		require.Equal(t, StrategyMinimax, metric.Strategy)
		require.Equal(t, 2, metric.Depth)
		require.Equal(t, 2, metric.Iterations, "Both root actions should be searched")
	})
}

func TestMinimaxValues(t *testing.T) {
	ctx := context.Background()
	state := oneMoveFromEnd()

	t.Run("terminal utility from the searching player's perspective", func(t *testing.T) {
		require.Equal(t, state.next[2].Utility(0), minValue(ctx, state.next[2], 0, 3, game.EvaluateLiberties))
		require.Equal(t, state.next[1].Utility(0), maxValue(ctx, state.next[1], 0, 3, game.EvaluateLiberties))
	})

	t.Run("max picks the best reply and min the worst", func(t *testing.T) {
		require.Equal(t, state.next[2].Utility(0), maxValue(ctx, state, 0, 1, game.EvaluateLiberties))
		require.Equal(t, state.next[1].Utility(0), minValue(ctx, state, 0, 1, game.EvaluateLiberties))
	})

	t.Run("done context cuts the search off at the evaluation", func(t *testing.T) {
		done, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		counting := func(s game.State, player int) float64 {
			calls++
			return game.EvaluateLiberties(s, player)
		}
		deep := game.NewIsolation().Result(12).Result(80)

		require.Equal(t, game.EvaluateLiberties(deep, 0), maxValue(done, deep, 0, 9, counting))
		require.Equal(t, 1, calls, "Nothing below the node should be searched")
	})

	t.Run("cutoff uses the evaluation", func(t *testing.T) {
		require.Equal(t, 0.0, maxValue(ctx, state, 0, 0, game.EvaluateLiberties), "Equal liberties should score 0")
	})
}
