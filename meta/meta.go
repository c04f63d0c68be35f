// meta/meta.go
package meta

import "time"

// OPENING_PLIES is the number of plies played with a uniformly random action.
const OPENING_PLIES = 2

// DEPTH is the default minimax search depth.
const DEPTH = 3

// ITERATIONS is the default number of MCTS iterations per move.
const ITERATIONS = 100

// EXPLORATION is the default UCT exploration constant.
const EXPLORATION = 1.0

// TIME_LIMIT is the default per-turn time budget given to an agent.
const TIME_LIMIT = 150 * time.Millisecond

// MAX_TURNS bounds a game (an 11x9 board cannot last longer).
const MAX_TURNS = 99

// GAMES is the default number of games per matchup in experiments.
const GAMES = 20
