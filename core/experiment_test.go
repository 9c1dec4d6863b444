package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/policies"
)

type stepCounter struct {
	steps []int
}

func (s *stepCounter) Analyze(eCtx *core.EpisodeContext[string, testAction]) {
	s.steps = append(s.steps, eCtx.Result.Steps)
}

func (s *stepCounter) DataSet() core.DataSet {
	return append([]int(nil), s.steps...)
}

func (s *stepCounter) Reset() {
	s.steps = nil
}

type stepCounterConstructor struct{}

func (stepCounterConstructor) NewAnalyzer(_ string, _ int) core.Analyzer[string, testAction] {
	return &stepCounter{}
}

type recordingComparator struct {
	names    [][]string
	datasets [][]core.DataSet
}

func (r *recordingComparator) Compare(names []string, datasets []core.DataSet) {
	r.names = append(r.names, names)
	r.datasets = append(r.datasets, datasets)
}

func (r *recordingComparator) NewComparator(_ int) core.Comparator {
	return r
}

func newTestComparison(recorder *recordingComparator) *core.Comparison[string, testAction] {
	cmp := core.NewComparison[string, testAction]()
	cmp.AddAnalysis("steps", stepCounterConstructor{}, recorder)
	cmp.AddExperiment(&core.Experiment[string, testAction]{
		Name:        "mc",
		Environment: twoStateConstructor{},
		Learner:     &policies.MonteCarloConstructor[string, testAction]{Actions: onlyAction, Config: testConfig()},
	})
	cmp.AddExperiment(&core.Experiment[string, testAction]{
		Name:        "qlearning",
		Environment: twoStateConstructor{},
		Learner:     &policies.QLearningConstructor[string, testAction]{Actions: onlyAction, Config: testConfig()},
	})
	return cmp
}

func TestComparison_Run(t *testing.T) {
	recorder := &recordingComparator{}
	cmp := newTestComparison(recorder)

	results := cmp.Run(context.Background(), 2, &core.RunConfig{Episodes: 3, MaxSteps: 10})
	require.Len(t, results, 2)
	for _, name := range []string{"mc", "qlearning"} {
		result := results[name]
		require.NotNil(t, result)
		assert.False(t, result.IsError())
		assert.Equal(t, 3, result.CompletedEpisodes)
		assert.Equal(t, 3, result.TerminatedEpisodes)
		assert.Equal(t, 0, result.TruncatedEpisodes)
		assert.Equal(t, 3, result.TotalTimeSteps)
	}

	require.Len(t, recorder.names, 2, "one comparison per run")
	assert.Equal(t, []string{"mc", "qlearning"}, recorder.names[0])
	assert.Equal(t, []int{1, 1, 1}, recorder.datasets[0][0])
}

func TestComparison_Cancelled(t *testing.T) {
	recorder := &recordingComparator{}
	cmp := newTestComparison(recorder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := cmp.Run(ctx, 1, &core.RunConfig{Episodes: 3})
	assert.Nil(t, results)
	assert.Empty(t, recorder.names)
}
