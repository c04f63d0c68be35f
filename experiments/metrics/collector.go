package metrics

import (
	"sync/atomic"
	"time"
)

// SearchMetric describes the work done for a single decision.
type SearchMetric struct {
	Strategy   string
	Duration   time.Duration
	Iterations int // completed MCTS iterations or minimax root actions
	Skipped    int // MCTS iterations that yielded no node
	Nodes      int // MCTS tree size
	Depth      int
}

type MoveMetric struct {
	Step     int
	Player   int
	Action   int
	Opening  bool // chosen by the random opening policy
	TimedOut bool // the engine took the last delivered action at the deadline
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int
	Winner         int
	Forfeit        bool
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(strategy string, depth int)
	AddIteration()
	AddSkipped()
	SetNodes(nodes int)
	Complete() SearchMetric
}

type collector struct {
	strategy   string
	depth      int
	startTime  time.Time
	iterations atomic.Int32
	skipped    atomic.Int32
	nodes      atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(strategy string, depth int) {
	m.strategy = strategy
	m.depth = depth
	m.startTime = time.Now()
	m.iterations.Store(0)
	m.skipped.Store(0)
	m.nodes.Store(0)
}

func (m *collector) AddIteration() {
	m.iterations.Add(1)
}

func (m *collector) AddSkipped() {
	m.skipped.Add(1)
}

func (m *collector) SetNodes(nodes int) {
	m.nodes.Store(int32(nodes))
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Strategy:   m.strategy,
		Duration:   time.Since(m.startTime),
		Iterations: int(m.iterations.Load()),
		Skipped:    int(m.skipped.Load()),
		Nodes:      int(m.nodes.Load()),
		Depth:      m.depth,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(strategy string, depth int) {}
func (m *dummyCollector) AddIteration()                    {}
func (m *dummyCollector) AddSkipped()                      {}
func (m *dummyCollector) SetNodes(nodes int)               {}
func (m *dummyCollector) Complete() SearchMetric           { return SearchMetric{} }
