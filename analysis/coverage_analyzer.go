package analysis

import (
	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/util"
)

type CoverageDataset struct {
	Timesteps    []int
	UniqueStates []int
}

func (c *CoverageDataset) Copy() *CoverageDataset {
	return &CoverageDataset{
		Timesteps:    util.CopyIntSlice(c.Timesteps),
		UniqueStates: util.CopyIntSlice(c.UniqueStates),
	}
}

// CoverageAnalyzer counts the distinct states visited since the start of
// the run, sampled after every episode.
type CoverageAnalyzer[S comparable, A core.Action] struct {
	states  map[S]struct{}
	dataset *CoverageDataset
}

func NewCoverageAnalyzer[S comparable, A core.Action]() *CoverageAnalyzer[S, A] {
	c := &CoverageAnalyzer[S, A]{}
	c.Reset()
	return c
}

func (c *CoverageAnalyzer[S, A]) Reset() {
	c.states = make(map[S]struct{})
	c.dataset = &CoverageDataset{
		Timesteps:    make([]int, 0),
		UniqueStates: make([]int, 0),
	}
}

func (c *CoverageAnalyzer[S, A]) Analyze(eCtx *core.EpisodeContext[S, A]) {
	trajectory := eCtx.Trajectory
	for i := 0; i < trajectory.Len(); i++ {
		c.states[trajectory.Visit(i).State] = struct{}{}
	}
	lastTimeStep := 0
	if n := len(c.dataset.Timesteps); n > 0 {
		lastTimeStep = c.dataset.Timesteps[n-1]
	}
	c.dataset.Timesteps = append(c.dataset.Timesteps, lastTimeStep+trajectory.Len())
	c.dataset.UniqueStates = append(c.dataset.UniqueStates, len(c.states))
}

func (c *CoverageAnalyzer[S, A]) DataSet() core.DataSet {
	return c.dataset.Copy()
}

type CoverageAnalyzerConstructor[S comparable, A core.Action] struct{}

func NewCoverageAnalyzerConstructor[S comparable, A core.Action]() *CoverageAnalyzerConstructor[S, A] {
	return &CoverageAnalyzerConstructor[S, A]{}
}

func (c *CoverageAnalyzerConstructor[S, A]) NewAnalyzer(_ string, _ int) core.Analyzer[S, A] {
	return NewCoverageAnalyzer[S, A]()
}
