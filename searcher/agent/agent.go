package agent

import (
	"context"
	"fmt"
	"isolation/game"
)

// Sink receives the actions an agent delivers during a turn. The last action
// delivered before the turn ends is the one played.
type Sink interface {
	Put(action game.Action)
}

type Agent interface {
	// GetAction delivers at least one legal action for the player to move to
	// sink. Delivering again replaces the earlier choice.
	GetAction(ctx context.Context, state game.State, sink Sink) error
}

// Memory is an opaque payload an agent carries from one of its turns to the
// next. The engine stores it per seat and never inspects it.
type Memory []byte

// Contextual agents keep cross-turn memory.
type Contextual interface {
	Context() Memory
	SetContext(memory Memory)
}

type Strategy int

const (
	StrategyMinimax Strategy = iota
	StrategyMCTS
	StrategyRandom
)

// Opening is the strategy name reported for moves of the opening plies.
const Opening = "opening"

var strategyNames = map[Strategy]string{
	StrategyMinimax: "minimax",
	StrategyMCTS:    "mcts",
	StrategyRandom:  "random",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func ParseStrategy(name string) (Strategy, error) {
	for strategy, n := range strategyNames {
		if n == name {
			return strategy, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}
