package agent

import (
	"context"
	"isolation/experiments/metrics"
	"isolation/game"
	"isolation/searcher"
	"isolation/utils"
	"time"

	"golang.org/x/exp/rand"
)

// randomSearcher is the baseline strategy: a uniformly random legal action on
// every turn.
type randomSearcher struct {
	rng  *rand.Rand
	last metrics.SearchMetric
}

func newRandomSearcher(rng *rand.Rand) *randomSearcher {
	return &randomSearcher{rng: rng}
}

func (r *randomSearcher) ChooseAction(ctx context.Context, state game.State) (game.Action, error) {
	start := time.Now()
	action, ok := utils.Choice(r.rng, state.Actions())
	r.last = metrics.SearchMetric{Strategy: StrategyRandom.String(), Duration: time.Since(start)}
	if !ok {
		return 0, searcher.ErrNoActions
	}
	return action, nil
}

func (r *randomSearcher) LastMetric() metrics.SearchMetric {
	return r.last
}
