package agent

import (
	"context"
	"fmt"
	"isolation/config"
	"isolation/experiments/metrics"
	"isolation/game"
	"isolation/meta"
	"isolation/searcher"
	"isolation/utils"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type PolicyOption func(p *Policy)

// Policy plays uniformly random actions during the opening plies, then hands
// every decision to the searcher it was built with.
type Policy struct {
	strategy Strategy
	searcher searcher.Searcher
	rng      *rand.Rand
	memory   Memory
	last     metrics.SearchMetric
}

func WithRand(rng *rand.Rand) PolicyOption {
	return func(p *Policy) {
		if rng != nil {
			p.rng = rng
		}
	}
}

func WithMemory(memory Memory) PolicyOption {
	return func(p *Policy) {
		p.memory = memory
	}
}

func NewPolicy(strategy Strategy, s searcher.Searcher, options ...PolicyOption) *Policy {
	if s == nil {
		panic("policy needs a searcher")
	}
	p := &Policy{
		strategy: strategy,
		searcher: s,
		rng:      rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// FromConfig builds the policy described by an agent configuration. All of
// its randomness is derived from seed.
func FromConfig(cfg config.AgentConfig, seed uint64) (*Policy, error) {
	rng := rand.New(rand.NewSource(seed))
	s, strategy, err := NewSearcher(cfg, rng)
	if err != nil {
		return nil, err
	}
	return NewPolicy(strategy, s, WithRand(rng)), nil
}

// NewSearcher builds the searcher behind a policy.
func NewSearcher(cfg config.AgentConfig, rng *rand.Rand) (searcher.Searcher, Strategy, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}
	strategy, err := ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, 0, err
	}

	switch strategy {
	case StrategyMinimax:
		evaluate, ok := game.EvaluationFns[cfg.Evaluation]
		if !ok {
			return nil, 0, fmt.Errorf("unknown evaluation %q", cfg.Evaluation)
		}
		return searcher.NewMinimax(cfg.Depth, searcher.WithEvaluationFn(evaluate), searcher.WithMinimaxMetrics()), strategy, nil
	case StrategyMCTS:
		return searcher.NewMCTS(
			searcher.WithIterations(cfg.Iterations),
			searcher.WithExploration(cfg.Exploration),
			searcher.WithDuration(cfg.Duration),
			searcher.WithRand(rng),
			searcher.WithMetrics(),
		), strategy, nil
	}
	return newRandomSearcher(rng), strategy, nil
}

func (p *Policy) Strategy() Strategy {
	return p.strategy
}

func (p *Policy) GetAction(ctx context.Context, state game.State, sink Sink) error {
	actions := state.Actions()
	if len(actions) == 0 {
		return fmt.Errorf("no action at ply %d: %w", state.PlyCount(), searcher.ErrNoActions)
	}

	if state.PlyCount() < meta.OPENING_PLIES {
		action, _ := utils.Choice(p.rng, actions)
		p.last = metrics.SearchMetric{Strategy: Opening}
		sink.Put(action)
		return nil
	}

	// Something legal is on the sink before the search can run out of time
	sink.Put(actions[0])
	action, err := p.searcher.ChooseAction(ctx, state)
	p.last = p.searcher.LastMetric()
	if err != nil {
		if ctx.Err() == nil || !game.Contains(state, action) {
			return fmt.Errorf("%s search failed at ply %d: %w", p.strategy, state.PlyCount(), err)
		}
		log.Debug().
			Err(err).
			Str("strategy", p.strategy.String()).
			Int("ply", state.PlyCount()).
			Int("action", int(action)).
			Msg("search interrupted, keeping best action so far")
		sink.Put(action)
		return nil
	}
	log.Debug().
		Str("strategy", p.strategy.String()).
		Int("ply", state.PlyCount()).
		Int("action", int(action)).
		Msg("action chosen")
	sink.Put(action)
	return nil
}

// LastMetric reports the work behind the most recent action.
func (p *Policy) LastMetric() metrics.SearchMetric {
	return p.last
}

func (p *Policy) Context() Memory {
	return p.memory
}

func (p *Policy) SetContext(memory Memory) {
	p.memory = memory
}
