package searcher

import (
	"context"
	"isolation/experiments/metrics"
	"isolation/game"
	"isolation/meta"
	"isolation/utils"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(mcts *MCTS)

// MCTS is a single-threaded UCT search that rebuilds its tree on every
// decision.
type MCTS struct {
	iterations  int
	exploration float64
	duration    time.Duration
	rng         *rand.Rand
	metrics     metrics.Collector
	last        metrics.SearchMetric
}

func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		if iterations >= 0 {
			m.iterations = iterations
		}
	}
}

func WithExploration(exploration float64) Option {
	return func(m *MCTS) {
		if exploration >= 0 {
			m.exploration = exploration
		}
	}
}

// WithDuration additionally stops the search once duration has elapsed.
func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(m *MCTS) {
		if rng != nil {
			m.rng = rng
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		iterations:  meta.ITERATIONS,
		exploration: meta.EXPLORATION,
		rng:         rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *MCTS) LastMetric() metrics.SearchMetric {
	return m.last
}

func (m *MCTS) ChooseAction(ctx context.Context, state game.State) (game.Action, error) {
	start := time.Now()
	m.metrics.Start(StrategyMCTS, 0)
	action, err := m.search(ctx, state, start)
	m.last = m.metrics.Complete()
	observeSearch(StrategyMCTS, start, err)
	if err == nil {
		mctsIterationsTotal.Add(float64(m.last.Iterations))
	}
	return action, err
}

func (m *MCTS) search(ctx context.Context, state game.State, start time.Time) (game.Action, error) {
	if state.TerminalTest() {
		log.Warn().Int("ply", state.PlyCount()).Msg("mcts called on a terminal state")
		return m.randomAction(state.Actions())
	}

	t := newTree(state)
	for i := 0; i < m.iterations; i++ {
		if ctx.Err() != nil || (m.duration > 0 && time.Since(start) >= m.duration) {
			log.Debug().Int("iteration", i).Int("limit", m.iterations).Msg("mcts stopped early")
			break
		}
		m.simulate(t)
	}
	m.metrics.SetNodes(t.size())

	best := m.bestChild(t, root)
	if best == noNode { // Nothing expanded yet
		return m.randomAction(t.nodes[root].legal)
	}
	idx := utils.FindIndex(t.nodes[root].children, best)
	return t.nodes[root].actions[idx], nil
}

func (m *MCTS) randomAction(actions []game.Action) (game.Action, error) {
	action, ok := utils.Choice(m.rng, actions)
	if !ok {
		return 0, ErrNoActions
	}
	return action, nil
}

func (m *MCTS) simulate(t *tree) {
	newNode, ok := m.selectThenExpand(t)
	if !ok {
		m.metrics.AddSkipped()
		return
	}
	reward := rollout(t.nodes[newNode].state, m.rng)
	backup(t, newNode, reward)
	m.metrics.AddIteration()
}

// selectThenExpand descends through fully explored nodes by UCT and expands
// the first node that still has untried actions. A terminal node is returned
// as is.
func (m *MCTS) selectThenExpand(t *tree) (nodeID, bool) {
	id := root
	for !t.nodes[id].terminal {
		if !t.isFullyExplored(id) {
			return t.expand(id)
		}
		id = m.bestChild(t, id)
		if id == noNode {
			return noNode, false
		}
	}
	return id, true
}

// bestChild returns the child with the highest UCT score, breaking exact ties
// uniformly at random, or noNode if the node has no children.
func (m *MCTS) bestChild(t *tree, id nodeID) nodeID {
	parent := &t.nodes[id]
	policy := newUCT(m.exploration, float64(parent.visits))

	bestScore := math.Inf(-1)
	best := []nodeID{}
	for _, c := range parent.children {
		child := &t.nodes[c]
		score := policy.evaluate(child.rewards, float64(child.visits))
		if score == bestScore {
			best = append(best, c)
		} else if score > bestScore {
			best = []nodeID{c}
			bestScore = score
		}
	}

	choice, ok := utils.Choice(m.rng, best)
	if !ok {
		return noNode
	}
	return choice
}

// rollout plays uniformly random actions until the game ends. The reward is
// credited to the action that produced state: it is a LOSS when the player
// to move in state still has liberties at the end, a WIN otherwise.
func rollout(state game.State, rng *rand.Rand) float64 {
	mover := state.Player()
	for !state.TerminalTest() {
		actions := state.Actions()
		state = state.Result(actions[rng.Intn(len(actions))]) // Random rollout policy
	}

	if state.HasLiberties(mover) {
		return LOSS
	}
	return WIN
}

// backup credits reward to every node from newNode up to the root, switching
// perspective at every level.
func backup(t *tree, newNode nodeID, reward float64) {
	node := newNode
	for node != noNode {
		t.update(node, reward)
		node = t.nodes[node].parent
		reward = -reward
	}
}
