package searcher

import (
	"errors"
	"fmt"
	"isolation/game"
	"isolation/utils"
)

var ErrDuplicateAction = errors.New("action already has a child")

// nodeID indexes a node in its tree's arena. Parents are referenced by index
// only, so dropping the tree releases every node at once.
type nodeID int

const (
	noNode nodeID = -1
	root   nodeID = 0
)

type node struct {
	state    game.State
	legal    []game.Action // state.Actions(), cached
	terminal bool
	parent   nodeID
	children []nodeID      // index-aligned with actions
	actions  []game.Action // action that produced each child
	rewards  float64
	visits   int
}

func newNode(parent nodeID, state game.State) node {
	return node{
		state:    state,
		legal:    state.Actions(),
		terminal: state.TerminalTest(),
		parent:   parent,
		rewards:  0,
		visits:   1, // UCT never divides by zero or takes ln(0)
	}
}

type tree struct {
	nodes []node
}

func newTree(state game.State) *tree {
	return &tree{nodes: []node{newNode(noNode, state)}}
}

func (t *tree) size() int {
	return len(t.nodes)
}

// addChild records the state reached from parent by action.
func (t *tree) addChild(parent nodeID, state game.State, action game.Action) (nodeID, error) {
	if utils.FindIndex(t.nodes[parent].actions, action) >= 0 {
		return noNode, fmt.Errorf("cannot add child for action %d: %w", action, ErrDuplicateAction)
	}

	id := nodeID(len(t.nodes))
	t.nodes = append(t.nodes, newNode(parent, state))
	p := &t.nodes[parent]
	p.children = append(p.children, id)
	p.actions = append(p.actions, action)
	return id, nil
}

func (t *tree) update(id nodeID, reward float64) {
	n := &t.nodes[id]
	n.rewards += reward
	n.visits++
}

func (t *tree) isFullyExplored(id nodeID) bool {
	n := &t.nodes[id]
	return len(n.children) == len(n.legal)
}

// expand adds a child for the first legal action not tried yet.
func (t *tree) expand(id nodeID) (nodeID, bool) {
	n := &t.nodes[id]
	for _, action := range n.legal {
		if utils.FindIndex(n.actions, action) >= 0 {
			continue
		}
		child, err := t.addChild(id, n.state.Result(action), action)
		if err != nil {
			return noNode, false
		}
		return child, true
	}
	return noNode, false
}
