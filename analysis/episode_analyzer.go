package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/util"
)

// EpisodeDataset holds one entry per episode. Timesteps is cumulative.
type EpisodeDataset struct {
	Timesteps  []int
	Steps      []int
	Returns    []float64
	Terminated []bool
}

func (d *EpisodeDataset) Copy() *EpisodeDataset {
	return &EpisodeDataset{
		Timesteps:  util.CopyIntSlice(d.Timesteps),
		Steps:      util.CopyIntSlice(d.Steps),
		Returns:    util.CopyFloatSlice(d.Returns),
		Terminated: util.CopyBoolSlice(d.Terminated),
	}
}

func (d *EpisodeDataset) Len() int {
	return len(d.Steps)
}

type EpisodeSummary struct {
	Episodes   int
	Terminated int
	Truncated  int
	MeanSteps  float64
	MeanReturn float64
}

func (d *EpisodeDataset) Summary() EpisodeSummary {
	s := EpisodeSummary{Episodes: d.Len()}
	if s.Episodes == 0 {
		return s
	}
	steps := make([]float64, len(d.Steps))
	for i, n := range d.Steps {
		steps[i] = float64(n)
	}
	for _, t := range d.Terminated {
		if t {
			s.Terminated++
		} else {
			s.Truncated++
		}
	}
	s.MeanSteps = stat.Mean(steps, nil)
	s.MeanReturn = stat.Mean(d.Returns, nil)
	return s
}

// EpisodeAnalyzer records the length, return and outcome of every episode.
type EpisodeAnalyzer[S comparable, A core.Action] struct {
	dataset *EpisodeDataset
}

func NewEpisodeAnalyzer[S comparable, A core.Action]() *EpisodeAnalyzer[S, A] {
	e := &EpisodeAnalyzer[S, A]{}
	e.Reset()
	return e
}

func (e *EpisodeAnalyzer[S, A]) Reset() {
	e.dataset = &EpisodeDataset{
		Timesteps:  make([]int, 0),
		Steps:      make([]int, 0),
		Returns:    make([]float64, 0),
		Terminated: make([]bool, 0),
	}
}

func (e *EpisodeAnalyzer[S, A]) Analyze(eCtx *core.EpisodeContext[S, A]) {
	lastTimeStep := 0
	if n := len(e.dataset.Timesteps); n > 0 {
		lastTimeStep = e.dataset.Timesteps[n-1]
	}
	e.dataset.Timesteps = append(e.dataset.Timesteps, lastTimeStep+eCtx.Result.Steps)
	e.dataset.Steps = append(e.dataset.Steps, eCtx.Result.Steps)
	e.dataset.Returns = append(e.dataset.Returns, eCtx.Result.Return)
	e.dataset.Terminated = append(e.dataset.Terminated, eCtx.Result.Terminated)
}

func (e *EpisodeAnalyzer[S, A]) DataSet() core.DataSet {
	return e.dataset.Copy()
}

func (e *EpisodeAnalyzer[S, A]) Summary() EpisodeSummary {
	return e.dataset.Summary()
}

type EpisodeAnalyzerConstructor[S comparable, A core.Action] struct{}

func NewEpisodeAnalyzerConstructor[S comparable, A core.Action]() *EpisodeAnalyzerConstructor[S, A] {
	return &EpisodeAnalyzerConstructor[S, A]{}
}

func (c *EpisodeAnalyzerConstructor[S, A]) NewAnalyzer(_ string, _ int) core.Analyzer[S, A] {
	return NewEpisodeAnalyzer[S, A]()
}
