package engine

import (
	"context"
	"errors"
	"fmt"
	"isolation/experiments/metrics"
	"isolation/game"
	"isolation/gamemaster"
	"isolation/meta"
	"isolation/searcher/agent"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrNoAction = errors.New("agent delivered no action")

type Option func(e *Local)

// Local runs both agents in process, one turn at a time.
type Local struct {
	names     [2]string
	agents    [2]agent.Agent
	timeLimit time.Duration
	maxTurns  int
	initial   game.State
	memory    [2]agent.Memory
}

func WithTimeLimit(limit time.Duration) Option {
	return func(e *Local) {
		if limit > 0 {
			e.timeLimit = limit
		}
	}
}

func WithMaxTurns(turns int) Option {
	return func(e *Local) {
		if turns > 0 {
			e.maxTurns = turns
		}
	}
}

// WithInitialState starts the game from state instead of an empty board.
func WithInitialState(state game.State) Option {
	return func(e *Local) {
		if state != nil {
			e.initial = state
		}
	}
}

func LocalEngine(names []string, agents []agent.Agent, options ...Option) *Local {
	if len(names) != len(agents) {
		panic("number of players does not match number of agents")
	}
	if len(agents) != 2 {
		panic("isolation needs exactly two players")
	}

	e := &Local{ // Default values
		names:     [2]string{names[0], names[1]},
		agents:    [2]agent.Agent{agents[0], agents[1]},
		timeLimit: meta.TIME_LIMIT,
		maxTurns:  meta.MAX_TURNS,
		initial:   game.NewIsolation(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Memory returns what the agent in seat carried out of its last turn.
func (e *Local) Memory(seat int) agent.Memory {
	return e.memory[seat]
}

// Run plays the game. A seat that delivers no action in time, or an illegal
// one, forfeits.
func (e *Local) Run(ctx context.Context) (Result, error) {
	referee := gamemaster.NewReferee(e.initial)
	state, getUpdate := referee.Init()
	result := Result{Winner: -1, Names: e.names}
	result.Game = metrics.GameMetric{StartingPlayer: state.Player(), Winner: -1, StartTime: time.Now()}

	log.Info().Msgf("%s is starting", e.names[state.Player()])

	for turn := 1; !referee.GameOver() && turn <= e.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("game interrupted at turn %d: %w", turn, err)
		}
		state := referee.State()
		seat := state.Player()

		action, timedOut, err := e.takeTurn(ctx, seat, state)
		move := metrics.MoveMetric{Step: turn, Player: seat, Action: int(action), TimedOut: timedOut}
		if r, ok := e.agents[seat].(reporter); ok {
			move.SearchMetric = r.LastMetric()
			move.Opening = move.Strategy == agent.Opening
		}
		if err == nil {
			err = referee.Play(action)
		}
		if err != nil {
			log.Warn().Err(err).Str("agent", e.names[seat]).Int("turn", turn).Msg("agent forfeits")
			if ferr := referee.Forfeit(); ferr != nil {
				return result, ferr
			}
			break
		}
		result.Moves = append(result.Moves, move)
		for u, ok := getUpdate(); ok; u, ok = getUpdate() {
			result.History = append(result.History, u)
		}
	}

	if loser, err := referee.Forfeited(); err == nil {
		result.Game.Forfeit = true
		log.Info().Msgf("%s forfeited at ply %d", e.names[loser], referee.State().PlyCount())
	}
	result.Game.TotalMoves = len(result.Moves)
	result.Game.EndTime = time.Now()
	result.Game.Duration = result.Game.EndTime.Sub(result.Game.StartTime)
	if winner, ok := referee.Winner(); ok {
		result.Winner = winner
		result.Game.Winner = winner
		log.Info().Msgf("%s won after %d moves", e.names[winner], result.Game.TotalMoves)
	} else {
		log.Info().Msgf("stopped after %d turns (no winner yet)", e.maxTurns)
	}
	return result, nil
}

// takeTurn gives the agent in seat its time budget and returns the last
// action it delivered before the deadline. The agent goroutine has always
// returned by the time takeTurn does.
func (e *Local) takeTurn(ctx context.Context, seat int, state game.State) (game.Action, bool, error) {
	a := e.agents[seat]
	contextual, hasMemory := a.(agent.Contextual)
	if hasMemory {
		contextual.SetContext(e.memory[seat])
	}

	turnCtx, cancel := context.WithTimeout(ctx, e.timeLimit)
	defer cancel()
	queue := agent.NewTurnQueue(turnCtx)
	done := make(chan error, 1)
	go func() {
		done <- a.GetAction(turnCtx, state, queue)
	}()

	var err error
	select {
	case err = <-done:
	case <-turnCtx.Done():
		cancel()
		err = <-done
	}
	timedOut := errors.Is(turnCtx.Err(), context.DeadlineExceeded)
	action, ok := queue.Last()

	if hasMemory {
		e.memory[seat] = contextual.Context()
	}
	if !ok {
		if err == nil {
			err = ErrNoAction
		}
		return 0, timedOut, fmt.Errorf("%s delivered nothing at ply %d: %w", e.names[seat], state.PlyCount(), err)
	}
	if err != nil {
		log.Debug().Err(err).Str("agent", e.names[seat]).Msg("using last delivered action")
	}
	return action, timedOut, nil
}
