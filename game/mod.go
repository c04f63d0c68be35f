package game

import (
	"errors"
	"fmt"
)

// Action is a move for the player to move. For Isolation it is the
// destination cell of the player's knight.
type Action int

// Location is a board cell; NoLocation marks a player not yet placed.
type Location int

const NoLocation Location = -1

var ErrIllegalAction = errors.New("illegal action")

// State should be immutable - operations on State always return a new copy
type State interface {
	// Actions lists the legal actions of the player to move, empty iff terminal
	Actions() []Action
	// Result returns the state after action, the receiver is left unchanged
	Result(action Action) State
	TerminalTest() bool
	// Utility is defined only on terminal states
	Utility(player int) float64
	PlyCount() int
	Player() int
	Location(player int) Location
	// Liberties lists the open cells reachable from loc
	Liberties(loc Location) []Location
	HasLiberties(player int) bool
}

// Evaluate scores a non-terminal state from player's perspective; higher is
// better for player.
type Evaluate func(state State, player int) float64

func Opponent(player int) int {
	return 1 - player
}

// Contains reports whether action is legal in state.
func Contains(state State, action Action) bool {
	for _, a := range state.Actions() {
		if a == action {
			return true
		}
	}
	return false
}

// Play is the checked version of State.Result.
func Play(state State, action Action) (State, error) {
	if !Contains(state, action) {
		return nil, fmt.Errorf("cannot play action %d at ply %d: %w", action, state.PlyCount(), ErrIllegalAction)
	}
	return state.Result(action), nil
}

// Winner returns the winning player of a terminal state.
func Winner(state State) (int, bool) {
	if !state.TerminalTest() {
		return -1, false
	}
	if state.Utility(0) > 0 {
		return 0, true
	}
	return 1, true
}
