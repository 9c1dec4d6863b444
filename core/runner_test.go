package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/policies"
)

func testConfig() policies.AgentConfig {
	return policies.AgentConfig{
		Gamma:   1.0,
		Epsilon: 0.1,
		Alpha:   0.5,
		Rule:    policies.RecencyWeighted,
		Seed:    42,
	}
}

func TestRunner_MonteCarloEndToEnd(t *testing.T) {
	config := testConfig()
	config.Rule = policies.HistoricalAverage
	agent := policies.NewAgent(onlyAction, config)
	runner := core.NewRunner[string, testAction](&twoStateEnv{}, policies.NewMonteCarlo(agent))

	result, err := runner.RunOneEpisode()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Steps)
	assert.Equal(t, 1.0, result.Return)
	assert.True(t, result.Terminated)
	assert.False(t, result.Truncated)

	val, ok := agent.Q().Lookup("start", only)
	require.True(t, ok)
	assert.InDelta(t, 1.0, val, 1e-9)

	policy, ok := agent.Policy("start")
	require.True(t, ok)
	weight, ok := policy.Weight(only)
	require.True(t, ok)
	assert.InDelta(t, 1.0, weight, 1e-9)
	assert.InDelta(t, 1.0, policy.Probability(only), 1e-9)
}

func TestRunner_Truncation(t *testing.T) {
	agent := policies.NewAgent(onlyAction, testConfig())
	runner := core.NewRunner[string, testAction](loopEnv{}, policies.NewQLearning(agent))
	runner.MaxSteps = 5

	result, err := runner.RunOneEpisode()
	require.NoError(t, err)
	assert.Equal(t, 5, result.Steps)
	assert.True(t, result.Truncated)
	assert.False(t, result.Terminated)
	assert.Equal(t, 5, runner.Trajectory().Len())
}

func TestRunner_DefaultStepBudget(t *testing.T) {
	agent := policies.NewAgent(onlyAction, testConfig())
	runner := core.NewRunner[string, testAction](loopEnv{}, policies.NewMonteCarlo(agent))

	result, err := runner.RunOneEpisode()
	require.NoError(t, err)
	assert.Equal(t, core.DefaultMaxSteps, result.Steps)
	assert.True(t, result.Truncated)
}

func TestRunner_StepMode(t *testing.T) {
	agent := policies.NewAgent(onlyAction, testConfig())
	env := &twoStateEnv{}
	runner := core.NewRunner[string, testAction](env, policies.NewSarsa(agent))

	assert.True(t, runner.CanStillStep())
	require.NoError(t, runner.Start())
	assert.Equal(t, "start", runner.CurrentState())
	assert.True(t, runner.CanStillStep())

	require.NoError(t, runner.Step())
	assert.Equal(t, "end", runner.CurrentState())
	assert.False(t, runner.CanStillStep())
	require.NoError(t, runner.End())

	// 0 + 0.5 * (1 + 1*0 - 0)
	val, ok := agent.Q().Lookup("start", only)
	require.True(t, ok)
	assert.InDelta(t, 0.5, val, 1e-9)
	assert.False(t, agent.Q().HasState("end"))

	// The next episode is reset with the state the last one stopped in.
	require.NoError(t, runner.Start())
	require.Len(t, env.hints, 2)
	assert.Nil(t, env.hints[0])
	require.NotNil(t, env.hints[1])
	assert.Equal(t, "end", *env.hints[1])
	assert.Equal(t, 0, runner.Trajectory().Len())
}

func TestRunner_StepStartsEpisode(t *testing.T) {
	agent := policies.NewAgent(onlyAction, testConfig())
	env := &twoStateEnv{}
	runner := core.NewRunner[string, testAction](env, policies.NewQLearning(agent))

	require.NoError(t, runner.Step())
	assert.Equal(t, 1, env.resets)
	assert.Equal(t, 1, runner.Result().Steps)
	assert.True(t, runner.Result().Terminated)
}

func TestRunner_EndOnEmptyTrajectory(t *testing.T) {
	agent := policies.NewAgent(onlyAction, testConfig())
	runner := core.NewRunner[string, testAction](&twoStateEnv{}, policies.NewMonteCarlo(agent))

	require.NoError(t, runner.Start())
	assert.ErrorIs(t, runner.End(), core.ErrEmptyTrajectory)

	// Per-step learners have nothing to do at the end of an episode.
	td := core.NewRunner[string, testAction](&twoStateEnv{}, policies.NewQLearning(agent))
	require.NoError(t, td.Start())
	assert.NoError(t, td.End())
}

func TestRunner_MonteCarloLearnsOnlyAtEnd(t *testing.T) {
	agent := policies.NewAgent(onlyAction, testConfig())
	runner := core.NewRunner[string, testAction](&twoStateEnv{}, policies.NewMonteCarlo(agent))

	require.NoError(t, runner.Step())
	assert.Equal(t, 0, agent.Q().Size())

	require.NoError(t, runner.End())
	assert.Equal(t, 1, agent.Q().Size())
}

func bothActions(_ string) []testAction {
	return []testAction{only, other}
}

// recordingLearner keeps every transition handed to the wrapped learner.
type recordingLearner struct {
	core.Learner[string, testAction]
	transitions []core.Transition[string, testAction]
}

func (l *recordingLearner) UpdateStep(tr core.Transition[string, testAction]) error {
	l.transitions = append(l.transitions, tr)
	return l.Learner.UpdateStep(tr)
}

func TestRunner_SarsaTakesTheSampledNextAction(t *testing.T) {
	config := testConfig()
	config.Epsilon = 1.0
	agent := policies.NewAgent(bothActions, config)
	learner := &recordingLearner{Learner: policies.NewSarsa(agent)}
	runner := core.NewRunner[string, testAction](loopEnv{}, learner)
	runner.MaxSteps = 40

	result, err := runner.RunOneEpisode()
	require.NoError(t, err)
	require.True(t, result.Truncated)

	trajectory := runner.Trajectory()
	require.Len(t, learner.transitions, trajectory.Len())
	taken := make(map[testAction]bool)
	for i := 0; i < trajectory.Len(); i++ {
		visit := trajectory.Visit(i)
		taken[visit.Action] = true
		assert.Equal(t, visit.Action, learner.transitions[i].Action, "step %d", i)
		if i+1 < trajectory.Len() {
			assert.Equal(t, trajectory.Visit(i+1).Action, learner.transitions[i].NextAction, "step %d", i)
		}
	}
	assert.Len(t, taken, 2)
}

func TestRunner_ZeroValue(t *testing.T) {
	agent := policies.NewAgent(onlyAction, testConfig())
	runner := &core.Runner[string, testAction]{
		Environment: &twoStateEnv{},
		Learner:     policies.NewQLearning(agent),
	}

	result, err := runner.RunOneEpisode()
	require.NoError(t, err)
	assert.True(t, result.Terminated)
	assert.Equal(t, 1, runner.Trajectory().Len())

	empty := &core.Runner[string, testAction]{
		Environment: &twoStateEnv{},
		Learner:     policies.NewMonteCarlo(policies.NewAgent(onlyAction, testConfig())),
	}
	assert.Equal(t, 0, empty.Trajectory().Len())
	assert.ErrorIs(t, empty.End(), core.ErrEmptyTrajectory)
}
