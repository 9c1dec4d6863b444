package policies

import "github.com/zeu5/tabular-rl/core"

// Sarsa is one-step on-policy TD control. The update bootstraps from the
// action the policy actually picked in the next state.
type Sarsa[S comparable, A core.Action] struct {
	*Agent[S, A]
}

func NewSarsa[S comparable, A core.Action](agent *Agent[S, A]) *Sarsa[S, A] {
	return &Sarsa[S, A]{Agent: agent}
}

func (s *Sarsa[S, A]) Mode() core.UpdateMode {
	return core.LookaheadStepUpdate
}

func (s *Sarsa[S, A]) SampleAction(state S) (A, error) {
	return s.SampleActionFromState(state)
}

func (s *Sarsa[S, A]) ResetEpisode(eCtx *core.EpisodeContext[S, A]) {
	s.Anneal(eCtx.Episode)
}

// UpdateStep applies Q(s,a) += α(r + γQ(s',a') - Q(s,a)).
func (s *Sarsa[S, A]) UpdateStep(t core.Transition[S, A]) error {
	cur := s.qTable.Get(t.State, t.Action, 0)
	next := s.qTable.Peek(t.NextState, t.NextAction, 0)
	delta := t.Reward + s.Gamma*next - cur
	s.qTable.Set(t.State, t.Action, cur+s.Alpha*delta)
	return s.makeEpsilonGreedy(t.State)
}

func (s *Sarsa[S, A]) UpdateEpisode(_ *core.Trajectory[S, A]) error {
	return nil
}

type SarsaConstructor[S comparable, A core.Action] struct {
	Actions ActionSetFunc[S, A]
	Config  AgentConfig

	instances int
}

func (c *SarsaConstructor[S, A]) NewLearner() core.Learner[S, A] {
	config := c.Config.forInstance(c.instances)
	c.instances++
	return NewSarsa(NewAgent(c.Actions, config))
}
