package policies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	erand "golang.org/x/exp/rand"

	"github.com/zeu5/tabular-rl/core"
)

func TestSarsa_UpdateStep(t *testing.T) {
	agent := newTestAgent(0.9, 0.1, 0.5)
	agent.Q().Set("s'", north, 4)
	sarsa := NewSarsa(agent)
	assert.Equal(t, core.LookaheadStepUpdate, sarsa.Mode())

	err := sarsa.UpdateStep(core.Transition[string, testAction]{
		State: "s", Action: north, Reward: 2, NextState: "s'", NextAction: north,
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.8, agent.Q().Peek("s", north, 0), 1e-9)

	policy, ok := agent.Policy("s")
	require.True(t, ok)
	w, _ := policy.Weight(north)
	assert.InDelta(t, 1-0.1+0.1/3, w, 1e-9)
}

func TestQLearning_UpdateStep(t *testing.T) {
	agent := newTestAgent(0.9, 0.1, 0.5)
	agent.Q().Set("s'", north, 4)
	agent.Q().Set("s'", east, 1)
	qlearning := NewQLearning(agent)
	assert.Equal(t, core.StepUpdate, qlearning.Mode())

	err := qlearning.UpdateStep(core.Transition[string, testAction]{
		State: "s", Action: north, Reward: 2, NextState: "s'",
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.8, agent.Q().Peek("s", north, 0), 1e-9)
}

func TestTD_DifferWhenNextActionIsNotGreedy(t *testing.T) {
	transition := core.Transition[string, testAction]{
		State: "s", Action: north, Reward: 2, NextState: "s'", NextAction: east,
	}

	sarsaAgent := newTestAgent(0.9, 0.1, 0.5)
	sarsaAgent.Q().Set("s'", north, 4)
	sarsaAgent.Q().Set("s'", east, 1)
	require.NoError(t, NewSarsa(sarsaAgent).UpdateStep(transition))

	qAgent := newTestAgent(0.9, 0.1, 0.5)
	qAgent.Q().Set("s'", north, 4)
	qAgent.Q().Set("s'", east, 1)
	require.NoError(t, NewQLearning(qAgent).UpdateStep(transition))

	// 0.5 * (2 + 0.9*1)
	assert.InDelta(t, 1.45, sarsaAgent.Q().Peek("s", north, 0), 1e-9)
	assert.InDelta(t, 2.8, qAgent.Q().Peek("s", north, 0), 1e-9)
}

func TestQLearning_UnseenNextState(t *testing.T) {
	agent := newTestAgent(0.9, 0.1, 0.5)
	err := NewQLearning(agent).UpdateStep(core.Transition[string, testAction]{
		State: "s", Action: east, Reward: 2, NextState: "new",
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, agent.Q().Peek("s", east, 0), 1e-9)
	assert.False(t, agent.Q().HasState("new"))
}

func TestTD_ResetEpisodeAnneals(t *testing.T) {
	agent := newTestAgent(0.9, 0.5, 0.5)
	agent.AlphaDecay = Decay{Every: 1, Factor: 0.5}
	NewQLearning(agent).ResetEpisode(&core.EpisodeContext[string, testAction]{Episode: 1})
	assert.InDelta(t, 0.25, agent.Alpha, 1e-12)
	NewSarsa(agent).ResetEpisode(&core.EpisodeContext[string, testAction]{Episode: 2})
	assert.InDelta(t, 0.125, agent.Alpha, 1e-12)
}

func TestRandom(t *testing.T) {
	random := NewRandom(threeActions, erand.NewSource(5))
	assert.Equal(t, core.StepUpdate, random.Mode())

	seen := make(map[testAction]bool)
	for i := 0; i < 300; i++ {
		a, err := random.SampleAction("s")
		require.NoError(t, err)
		seen[a] = true
	}
	assert.Len(t, seen, 3)

	_, err := NewRandom(noActions, nil).SampleAction("s")
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestConstructors_FreshAgents(t *testing.T) {
	config := AgentConfig{Gamma: 1, Epsilon: 0.1, Alpha: 0.5, Seed: 3}
	constructors := []core.LearnerConstructor[string, testAction]{
		&MonteCarloConstructor[string, testAction]{Actions: threeActions, Config: config},
		&SarsaConstructor[string, testAction]{Actions: threeActions, Config: config},
		&QLearningConstructor[string, testAction]{Actions: threeActions, Config: config},
		&RandomConstructor[string, testAction]{Actions: threeActions, Seed: 3},
	}
	for _, c := range constructors {
		first := c.NewLearner()
		second := c.NewLearner()
		assert.NotSame(t, first, second)
	}
}
