package policies

import "github.com/zeu5/tabular-rl/core"

// QLearning is one-step off-policy TD control. The update bootstraps from
// the best action of the next state whatever the policy does next.
type QLearning[S comparable, A core.Action] struct {
	*Agent[S, A]
}

func NewQLearning[S comparable, A core.Action](agent *Agent[S, A]) *QLearning[S, A] {
	return &QLearning[S, A]{Agent: agent}
}

func (q *QLearning[S, A]) Mode() core.UpdateMode {
	return core.StepUpdate
}

func (q *QLearning[S, A]) SampleAction(state S) (A, error) {
	return q.SampleActionFromState(state)
}

func (q *QLearning[S, A]) ResetEpisode(eCtx *core.EpisodeContext[S, A]) {
	q.Anneal(eCtx.Episode)
}

// UpdateStep applies Q(s,a) += α(r + γ max_a' Q(s',a') - Q(s,a)). Unseen
// next pairs count as 0.
func (q *QLearning[S, A]) UpdateStep(t core.Transition[S, A]) error {
	cur := q.qTable.Get(t.State, t.Action, 0)
	_, maxNext, ok := q.qTable.MaxAmong(t.NextState, q.ActionsForState(t.NextState), 0)
	if !ok {
		maxNext = 0
	}
	delta := t.Reward + q.Gamma*maxNext - cur
	q.qTable.Set(t.State, t.Action, cur+q.Alpha*delta)
	return q.makeEpsilonGreedy(t.State)
}

func (q *QLearning[S, A]) UpdateEpisode(_ *core.Trajectory[S, A]) error {
	return nil
}

type QLearningConstructor[S comparable, A core.Action] struct {
	Actions ActionSetFunc[S, A]
	Config  AgentConfig

	instances int
}

func (c *QLearningConstructor[S, A]) NewLearner() core.Learner[S, A] {
	config := c.Config.forInstance(c.instances)
	c.instances++
	return NewQLearning(NewAgent(c.Actions, config))
}
