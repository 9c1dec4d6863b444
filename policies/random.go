package policies

import (
	"time"

	"github.com/pkg/errors"
	erand "golang.org/x/exp/rand"

	"github.com/zeu5/tabular-rl/core"
)

// Random picks a legal action uniformly and never learns. It is the
// baseline the learning strategies are compared against.
type Random[S comparable, A core.Action] struct {
	actions ActionSetFunc[S, A]
	rand    *erand.Rand
}

func NewRandom[S comparable, A core.Action](actions ActionSetFunc[S, A], src erand.Source) *Random[S, A] {
	if src == nil {
		src = erand.NewSource(uint64(time.Now().UnixNano()))
	}
	return &Random[S, A]{
		actions: actions,
		rand:    erand.New(src),
	}
}

func (r *Random[S, A]) Mode() core.UpdateMode {
	return core.StepUpdate
}

func (r *Random[S, A]) SampleAction(state S) (A, error) {
	actions := r.actions(state)
	if len(actions) == 0 {
		var zero A
		return zero, errors.Wrapf(core.ErrInvalidConfiguration, "no actions for state %v", state)
	}
	return actions[r.rand.Intn(len(actions))], nil
}

func (r *Random[S, A]) UpdateStep(_ core.Transition[S, A]) error {
	return nil
}

func (r *Random[S, A]) UpdateEpisode(_ *core.Trajectory[S, A]) error {
	return nil
}

type RandomConstructor[S comparable, A core.Action] struct {
	Actions ActionSetFunc[S, A]
	Seed    uint64

	instances int
}

func (c *RandomConstructor[S, A]) NewLearner() core.Learner[S, A] {
	src := erand.NewSource(c.Seed + uint64(c.instances))
	c.instances++
	return NewRandom(c.Actions, src)
}
