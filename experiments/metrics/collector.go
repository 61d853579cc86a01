package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Strategy     string
	Iterations   int // Budget
	Cutoff       int
	Duration     time.Duration
	Episodes     int // Completed iterations
	Rollouts     int
	FullPlayouts int // Rollouts that reached a terminal state
	RolloutSteps int
	IsTreeReset  bool
}

type StepMetric struct {
	Step int
	SearchMetric
}

type EpisodeMetric struct {
	ID         string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalSteps int
	Return     float64
	Terminal   bool
}

type Collector interface {
	Start(strategy string, iterations, cutoff int)
	SetTreeReset(value bool)
	AddEpisode()
	AddRollout(steps int, full bool)
	Complete() SearchMetric
}

type collector struct {
	strategy     string
	iterations   int
	cutoff       int
	startTime    time.Time
	episodes     atomic.Int32
	rollouts     atomic.Int32
	fullPlayouts atomic.Int32
	rolloutSteps atomic.Int64
	isTreeReset  atomic.Bool
}

func NewCollector() Collector {
	c := &collector{}
	c.isTreeReset.Store(true)
	return c
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

func (m *collector) Start(strategy string, iterations, cutoff int) {
	m.startTime = time.Now()
	m.strategy = strategy
	m.iterations = iterations
	m.cutoff = cutoff
	m.episodes.Store(0)
	m.rollouts.Store(0)
	m.fullPlayouts.Store(0)
	m.rolloutSteps.Store(0)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddRollout(steps int, full bool) {
	m.rollouts.Add(1)
	m.rolloutSteps.Add(int64(steps))
	if full {
		m.fullPlayouts.Add(1)
	}
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Strategy:     m.strategy,
		Iterations:   m.iterations,
		Cutoff:       m.cutoff,
		Duration:     time.Since(m.startTime),
		Episodes:     int(m.episodes.Load()),
		Rollouts:     int(m.rollouts.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		RolloutSteps: int(m.rolloutSteps.Load()),
		IsTreeReset:  m.isTreeReset.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(strategy string, iterations, cutoff int) {}
func (m *dummyCollector) SetTreeReset(value bool)                      {}
func (m *dummyCollector) AddEpisode()                                  {}
func (m *dummyCollector) AddRollout(steps int, full bool)              {}
func (m *dummyCollector) Complete() SearchMetric                       { return SearchMetric{} }
