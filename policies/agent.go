package policies

import (
	"slices"
	"time"

	"github.com/pkg/errors"
	erand "golang.org/x/exp/rand"

	"github.com/zeu5/tabular-rl/core"
)

// ActionSetFunc lists the legal actions of a state.
type ActionSetFunc[S comparable, A core.Action] func(S) []A

// UpdateRule selects how Monte Carlo control turns returns into values.
type UpdateRule int

const (
	// RecencyWeighted moves the value towards each new return by Alpha.
	RecencyWeighted UpdateRule = iota
	// HistoricalAverage sets the value to the mean of every return observed.
	HistoricalAverage
)

func (r UpdateRule) String() string {
	if r == HistoricalAverage {
		return "average"
	}
	return "recency"
}

// RuleFromAlpha maps the negative alpha convention onto HistoricalAverage.
func RuleFromAlpha(alpha float64) UpdateRule {
	if alpha < 0 {
		return HistoricalAverage
	}
	return RecencyWeighted
}

// Decay multiplies a parameter by Factor on every episode that is at least
// From and a multiple of Every. A zero Factor disables it.
type Decay struct {
	From   int
	Every  int
	Factor float64
}

func (d Decay) Apply(episode int, val float64) float64 {
	if d.Factor == 0 || episode < d.From {
		return val
	}
	if d.Every > 1 && episode%d.Every != 0 {
		return val
	}
	return val * d.Factor
}

type AgentConfig struct {
	Gamma   float64
	Epsilon float64
	Alpha   float64
	Rule    UpdateRule

	EpsilonDecay Decay
	AlphaDecay   Decay

	// Source drives every policy sampler of the agent. When nil a source
	// seeded with Seed is used.
	Source erand.Source
	Seed   uint64
}

// forInstance offsets the seed so learners built from one config do not
// replay each other's draws.
func (c AgentConfig) forInstance(i int) AgentConfig {
	if c.Source == nil {
		c.Seed += uint64(i)
	}
	return c
}

func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Gamma:   1.0,
		Epsilon: 0.5,
		Alpha:   0.1,
		Rule:    RecencyWeighted,
		Seed:    uint64(time.Now().UnixNano()),
	}
}

// Agent holds the value table, the policy and the Monte Carlo returns log.
// The improvement strategies (MonteCarlo, Sarsa, QLearning) share it.
//
// Gamma, Epsilon and Alpha may be changed between episodes by the driver.
type Agent[S comparable, A core.Action] struct {
	Gamma   float64
	Epsilon float64
	Alpha   float64
	Rule    UpdateRule

	EpsilonDecay Decay
	AlphaDecay   Decay

	actions ActionSetFunc[S, A]
	qTable  *QTable[S, A]
	policy  map[S]*WeightedSampler[A]
	returns map[core.StateAction[S, A]][]float64
	rand    *erand.Rand
}

func NewAgent[S comparable, A core.Action](actions ActionSetFunc[S, A], config AgentConfig) *Agent[S, A] {
	src := config.Source
	if src == nil {
		src = erand.NewSource(config.Seed)
	}
	return &Agent[S, A]{
		Gamma:        config.Gamma,
		Epsilon:      config.Epsilon,
		Alpha:        config.Alpha,
		Rule:         config.Rule,
		EpsilonDecay: config.EpsilonDecay,
		AlphaDecay:   config.AlphaDecay,

		actions: actions,
		qTable:  NewQTable[S, A](),
		policy:  make(map[S]*WeightedSampler[A]),
		returns: make(map[core.StateAction[S, A]][]float64),
		rand:    erand.New(src),
	}
}

// ActionsForState returns the legal actions of state in canonical order.
func (a *Agent[S, A]) ActionsForState(state S) []A {
	actions := slices.Clone(a.actions(state))
	slices.SortFunc(actions, func(x, y A) int {
		return x.Ordinal() - y.Ordinal()
	})
	return actions
}

// PolicyFor returns the policy of state, creating a uniform one the first
// time the state is seen.
func (a *Agent[S, A]) PolicyFor(state S) (*WeightedSampler[A], error) {
	if sampler, ok := a.policy[state]; ok {
		return sampler, nil
	}
	sampler := NewWeightedSampler[A](a.rand)
	if err := sampler.SetEvents(a.ActionsForState(state)); err != nil {
		return nil, errors.Wrapf(err, "policy for state %v", state)
	}
	sampler.Normalize()
	a.policy[state] = sampler
	return sampler, nil
}

func (a *Agent[S, A]) SampleActionFromState(state S) (A, error) {
	sampler, err := a.PolicyFor(state)
	if err != nil {
		var zero A
		return zero, err
	}
	return sampler.Sample(), nil
}

// Policy looks up the policy of state without creating it.
func (a *Agent[S, A]) Policy(state S) (*WeightedSampler[A], bool) {
	sampler, ok := a.policy[state]
	return sampler, ok
}

// States lists the states that have a policy.
func (a *Agent[S, A]) States() []S {
	out := make([]S, 0, len(a.policy))
	for s := range a.policy {
		out = append(out, s)
	}
	return out
}

func (a *Agent[S, A]) Q() *QTable[S, A] {
	return a.qTable
}

// Returns is a copy of the returns logged for (state, action).
func (a *Agent[S, A]) Returns(state S, action A) []float64 {
	return slices.Clone(a.returns[core.StateAction[S, A]{State: state, Action: action}])
}

// GreedyAction is the highest valued recorded action of state, ties going
// to the lowest ordinal.
func (a *Agent[S, A]) GreedyAction(state S) (A, bool) {
	action, _, ok := a.qTable.Max(state)
	return action, ok
}

// Anneal applies the decay schedules for the given episode.
func (a *Agent[S, A]) Anneal(episode int) {
	a.Epsilon = a.EpsilonDecay.Apply(episode, a.Epsilon)
	a.Alpha = a.AlphaDecay.Apply(episode, a.Alpha)
}

// makeEpsilonGreedy reweights the policy of state: the greedy action gets
// 1 - ε + ε/|A(s)| and every other action ε/|A(s)|.
func (a *Agent[S, A]) makeEpsilonGreedy(state S) error {
	greedy, ok := a.GreedyAction(state)
	if !ok {
		return nil
	}
	sampler, err := a.PolicyFor(state)
	if err != nil {
		return err
	}
	actions := a.ActionsForState(state)
	explore := a.Epsilon / float64(len(actions))
	for _, action := range actions {
		weight := explore
		if action == greedy {
			weight = 1 - a.Epsilon + explore
		}
		sampler.SetWeight(action, weight)
	}
	sampler.Normalize()
	return nil
}
