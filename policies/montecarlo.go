package policies

import (
	"gonum.org/v1/gonum/stat"

	"github.com/zeu5/tabular-rl/core"
)

// MonteCarlo is on-policy first-visit Monte Carlo control for ε-soft
// policies. It learns once per episode from the whole trajectory.
type MonteCarlo[S comparable, A core.Action] struct {
	*Agent[S, A]
}

func NewMonteCarlo[S comparable, A core.Action](agent *Agent[S, A]) *MonteCarlo[S, A] {
	return &MonteCarlo[S, A]{Agent: agent}
}

func (m *MonteCarlo[S, A]) Mode() core.UpdateMode {
	return core.EpisodeUpdate
}

func (m *MonteCarlo[S, A]) SampleAction(state S) (A, error) {
	return m.SampleActionFromState(state)
}

func (m *MonteCarlo[S, A]) UpdateStep(_ core.Transition[S, A]) error {
	return nil
}

func (m *MonteCarlo[S, A]) ResetEpisode(eCtx *core.EpisodeContext[S, A]) {
	m.Anneal(eCtx.Episode)
}

// UpdateEpisode walks the trajectory backwards accumulating the discounted
// return G. Only first visits update the value table; later visits still
// contribute to G. An empty trajectory is a no-op.
func (m *MonteCarlo[S, A]) UpdateEpisode(trajectory *core.Trajectory[S, A]) error {
	g := 0.0
	for _, visit := range trajectory.Reversed() {
		g = m.Gamma*g + visit.Reward
		if !visit.FirstVisit {
			continue
		}

		sa := core.StateAction[S, A]{State: visit.State, Action: visit.Action}
		m.returns[sa] = append(m.returns[sa], g)

		var val float64
		switch m.Rule {
		case HistoricalAverage:
			val = stat.Mean(m.returns[sa], nil)
		default:
			cur := m.qTable.Get(visit.State, visit.Action, 0)
			val = cur + m.Alpha*(g-cur)
		}
		m.qTable.Set(visit.State, visit.Action, val)

		if err := m.makeEpsilonGreedy(visit.State); err != nil {
			return err
		}
	}
	return nil
}

type MonteCarloConstructor[S comparable, A core.Action] struct {
	Actions ActionSetFunc[S, A]
	Config  AgentConfig

	instances int
}

func (c *MonteCarloConstructor[S, A]) NewLearner() core.Learner[S, A] {
	config := c.Config.forInstance(c.instances)
	c.instances++
	return NewMonteCarlo(NewAgent(c.Actions, config))
}
