package gamemaster

import (
	"errors"
	"fmt"
	"isolation/game"
	"isolation/meta"
)

var (
	ErrGameOver     = errors.New("game is over - no moves allowed")
	ErrIllegalMove  = errors.New("illegal move")
	ErrNotForfeited = errors.New("game was not forfeited")
)

// Update is a move as applied by the referee.
type Update struct {
	Ply    int
	Player int
	Action game.Action
	State  game.State
}

// UpdateGetter returns the next unread update without blocking; false means
// no update is pending.
type UpdateGetter func() (Update, bool)

// Referee holds the authoritative state of one game and applies only legal
// moves to it.
type Referee struct {
	state    game.State
	updateCh chan Update
	gameOver bool
	loser    int // forfeiting player, -1 if none
}

func NewReferee(initial game.State) *Referee {
	return &Referee{
		state:    initial,
		updateCh: make(chan Update, meta.MAX_TURNS+1),
		gameOver: initial.TerminalTest(),
		loser:    -1,
	}
}

// Init returns the starting state and a getter for the moves applied since.
// Updates stay buffered until read, so a reader that drains after every move
// sees the whole game.
func (r *Referee) Init() (game.State, UpdateGetter) {
	return r.state, func() (Update, bool) {
		select {
		case u, ok := <-r.updateCh:
			return u, ok
		default:
			return Update{}, false
		}
	}
}

func (r *Referee) Play(action game.Action) error {
	if r.gameOver {
		return ErrGameOver
	}
	next, err := game.Play(r.state, action)
	if err != nil {
		return fmt.Errorf("%w: player %d cannot play %d: %v", ErrIllegalMove, r.state.Player(), action, err)
	}

	u := Update{Ply: r.state.PlyCount(), Player: r.state.Player(), Action: action, State: next}
	r.state = next
	r.publish(u)
	if next.TerminalTest() {
		r.end()
	}
	return nil
}

// Forfeit ends the game as a loss for the player to move.
func (r *Referee) Forfeit() error {
	if r.gameOver {
		return ErrGameOver
	}
	r.loser = r.state.Player()
	r.end()
	return nil
}

func (r *Referee) publish(u Update) {
	select {
	case r.updateCh <- u:
	default: // Nobody is reading, drop
	}
}

func (r *Referee) end() {
	r.gameOver = true
	close(r.updateCh)
}

func (r *Referee) State() game.State {
	return r.state
}

func (r *Referee) GameOver() bool {
	return r.gameOver
}

// Forfeited reports the player who forfeited the game.
func (r *Referee) Forfeited() (int, error) {
	if r.loser < 0 {
		return -1, ErrNotForfeited
	}
	return r.loser, nil
}

// Winner reports the winner once the game is over.
func (r *Referee) Winner() (int, bool) {
	if !r.gameOver {
		return -1, false
	}
	if r.loser >= 0 {
		return game.Opponent(r.loser), true
	}
	return game.Winner(r.state)
}
