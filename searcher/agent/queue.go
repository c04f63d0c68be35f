package agent

import (
	"context"
	"isolation/game"
	"sync"
)

// ActionQueue is a Sink that keeps every delivered action. It is safe to
// write from the agent's goroutine while the engine reads.
type ActionQueue struct {
	mu      sync.Mutex
	actions []game.Action
	turn    context.Context
}

func NewActionQueue() *ActionQueue {
	return &ActionQueue{turn: context.Background()}
}

// NewTurnQueue returns a queue that ignores actions delivered after turn is
// done.
func NewTurnQueue(turn context.Context) *ActionQueue {
	return &ActionQueue{turn: turn}
}

func (q *ActionQueue) Put(action game.Action) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.turn.Err() != nil {
		return
	}
	q.actions = append(q.actions, action)
}

// Last returns the most recently delivered action.
func (q *ActionQueue) Last() (game.Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.actions) == 0 {
		return 0, false
	}
	return q.actions[len(q.actions)-1], true
}

func (q *ActionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}
