package policies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/tabular-rl/core"
)

func TestAgent_ActionsForStateSorted(t *testing.T) {
	agent := newTestAgent(1, 0.1, 0.5)
	assert.Equal(t, []testAction{north, east, south}, agent.ActionsForState("s"))
}

func TestAgent_PolicyForIsLazyAndStable(t *testing.T) {
	agent := newTestAgent(1, 0.1, 0.5)

	_, ok := agent.Policy("s")
	assert.False(t, ok)

	first, err := agent.PolicyFor("s")
	require.NoError(t, err)
	second, err := agent.PolicyFor("s")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, []string{"s"}, agent.States())

	for _, a := range []testAction{north, east, south} {
		assert.InDelta(t, 1.0/3, first.Probability(a), 1e-9)
	}
}

func TestAgent_PolicyForNoActions(t *testing.T) {
	agent := NewAgent(noActions, AgentConfig{Seed: 1})
	_, err := agent.PolicyFor("s")
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)

	_, err = agent.SampleActionFromState("s")
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestAgent_EpsilonGreedyWeightsSumToOne(t *testing.T) {
	for _, epsilon := range []float64{0, 0.1, 0.5, 0.9, 1} {
		agent := newTestAgent(1, epsilon, 0.5)
		agent.Q().Set("s", east, 3)
		agent.Q().Set("s", south, 1)
		require.NoError(t, agent.makeEpsilonGreedy("s"))

		policy, ok := agent.Policy("s")
		require.True(t, ok)
		sum := 0.0
		for _, e := range policy.Events() {
			sum += e.Weight
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "epsilon %g", epsilon)

		greedy, _ := policy.Weight(east)
		assert.InDelta(t, 1-epsilon+epsilon/3, greedy, 1e-9)
		explore, _ := policy.Weight(north)
		assert.InDelta(t, epsilon/3, explore, 1e-9)
	}
}

func TestAgent_TieBreakLowestOrdinal(t *testing.T) {
	agent := newTestAgent(1, 0.3, 0.5)
	agent.Q().Set("s", south, 2)
	agent.Q().Set("s", east, 2)

	greedy, ok := agent.GreedyAction("s")
	require.True(t, ok)
	assert.Equal(t, east, greedy)

	require.NoError(t, agent.makeEpsilonGreedy("s"))
	policy, _ := agent.Policy("s")
	w, _ := policy.Weight(east)
	assert.InDelta(t, 0.8, w, 1e-9)
	w, _ = policy.Weight(south)
	assert.InDelta(t, 0.1, w, 1e-9)
}

func TestAgent_GreedyUnknownState(t *testing.T) {
	agent := newTestAgent(1, 0.3, 0.5)
	_, ok := agent.GreedyAction("nowhere")
	assert.False(t, ok)
	require.NoError(t, agent.makeEpsilonGreedy("nowhere"))
	_, ok = agent.Policy("nowhere")
	assert.False(t, ok)
}

func TestRuleFromAlpha(t *testing.T) {
	assert.Equal(t, HistoricalAverage, RuleFromAlpha(-1))
	assert.Equal(t, RecencyWeighted, RuleFromAlpha(0.1))
	assert.Equal(t, "average", HistoricalAverage.String())
}

func TestDecay(t *testing.T) {
	epsilon := Decay{From: 6400, Every: 50, Factor: 0.9}
	assert.Equal(t, 0.5, epsilon.Apply(100, 0.5))
	assert.InDelta(t, 0.45, epsilon.Apply(6400, 0.5), 1e-12)
	assert.Equal(t, 0.5, epsilon.Apply(6401, 0.5))
	assert.InDelta(t, 0.45, epsilon.Apply(6450, 0.5), 1e-12)

	alpha := Decay{Every: 1, Factor: 0.9995}
	assert.InDelta(t, 0.09995, alpha.Apply(3, 0.1), 1e-12)

	assert.Equal(t, 0.5, Decay{}.Apply(6400, 0.5))
}

func TestAgent_Anneal(t *testing.T) {
	agent := newTestAgent(1, 0.5, 0.1)
	agent.EpsilonDecay = Decay{From: 10, Every: 5, Factor: 0.5}
	agent.AlphaDecay = Decay{Every: 1, Factor: 0.5}

	agent.Anneal(3)
	assert.Equal(t, 0.5, agent.Epsilon)
	assert.InDelta(t, 0.05, agent.Alpha, 1e-12)

	agent.Anneal(10)
	assert.InDelta(t, 0.25, agent.Epsilon, 1e-12)
}

func TestQTable(t *testing.T) {
	q := NewQTable[string, testAction]()

	assert.Equal(t, 0.0, q.Peek("s", north, 0))
	assert.False(t, q.HasState("s"))

	assert.Equal(t, 1.5, q.Get("s", north, 1.5))
	assert.True(t, q.HasState("s"))
	val, ok := q.Lookup("s", north)
	require.True(t, ok)
	assert.Equal(t, 1.5, val)

	q.Set("s", south, 4)
	action, best, ok := q.Max("s")
	require.True(t, ok)
	assert.Equal(t, south, action)
	assert.Equal(t, 4.0, best)

	action, best, ok = q.MaxAmong("t", []testAction{north, east}, 0)
	require.True(t, ok)
	assert.Equal(t, north, action)
	assert.Equal(t, 0.0, best)
	assert.False(t, q.HasState("t"))

	all, ok := q.GetAll("s")
	require.True(t, ok)
	all[north] = 100
	assert.Equal(t, 1.5, q.Peek("s", north, 0))

	count := 0
	for range q.All() {
		count++
	}
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, q.Size())
}
