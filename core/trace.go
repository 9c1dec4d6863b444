package core

import (
	"fmt"
	"iter"
)

// Visit is one recorded step of an episode.
type Visit[S comparable, A Action] struct {
	State      S
	Action     A
	Reward     float64
	FirstVisit bool
}

// SameState reports whether both visits are to the same state. Visits are
// matched by state alone when detecting first visits.
func (v Visit[S, A]) SameState(o Visit[S, A]) bool {
	return v.State == o.State
}

func (v Visit[S, A]) String() string {
	return fmt.Sprintf("<(%v) %s R:%g first:%t>", v.State, v.Action, v.Reward, v.FirstVisit)
}

// Trajectory records the visits of the current episode in order. Exactly
// one visit per distinct state is stamped FirstVisit: the earliest one.
type Trajectory[S comparable, A Action] struct {
	visits []Visit[S, A]
	seen   map[S]struct{}
}

func NewTrajectory[S comparable, A Action]() *Trajectory[S, A] {
	return &Trajectory[S, A]{
		visits: make([]Visit[S, A], 0),
		seen:   make(map[S]struct{}),
	}
}

func (t *Trajectory[S, A]) Add(state S, action A, reward float64) {
	_, seen := t.seen[state]
	if !seen {
		t.seen[state] = struct{}{}
	}
	t.visits = append(t.visits, Visit[S, A]{
		State:      state,
		Action:     action,
		Reward:     reward,
		FirstVisit: !seen,
	})
}

// Clear must be called at the start of every episode.
func (t *Trajectory[S, A]) Clear() {
	t.visits = t.visits[:0]
	t.seen = make(map[S]struct{})
}

func (t *Trajectory[S, A]) Len() int {
	return len(t.visits)
}

func (t *Trajectory[S, A]) Visit(i int) Visit[S, A] {
	return t.visits[i]
}

func (t *Trajectory[S, A]) Last() (Visit[S, A], error) {
	if len(t.visits) == 0 {
		return Visit[S, A]{}, ErrEmptyTrajectory
	}
	return t.visits[len(t.visits)-1], nil
}

// Visits returns a copy of the recorded visits in chronological order.
func (t *Trajectory[S, A]) Visits() []Visit[S, A] {
	out := make([]Visit[S, A], len(t.visits))
	copy(out, t.visits)
	return out
}

// Reversed yields the visits from the most recent to the first. Each call
// returns a fresh sequence.
func (t *Trajectory[S, A]) Reversed() iter.Seq2[int, Visit[S, A]] {
	return func(yield func(int, Visit[S, A]) bool) {
		for i := len(t.visits) - 1; i >= 0; i-- {
			if !yield(i, t.visits[i]) {
				return
			}
		}
	}
}

// ReversedVisits materializes Reversed, for renderers.
func (t *Trajectory[S, A]) ReversedVisits() []Visit[S, A] {
	out := make([]Visit[S, A], 0, len(t.visits))
	for _, v := range t.Reversed() {
		out = append(out, v)
	}
	return out
}

// Return is the undiscounted sum of rewards collected so far.
func (t *Trajectory[S, A]) Return() float64 {
	sum := 0.0
	for _, v := range t.visits {
		sum += v.Reward
	}
	return sum
}

// DistinctStates is the number of states visited in this episode.
func (t *Trajectory[S, A]) DistinctStates() int {
	return len(t.seen)
}
