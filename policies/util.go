package policies

import (
	"iter"
	"math"

	"github.com/zeu5/tabular-rl/core"
)

// QTable maps state-action pairs to value estimates. Unseen pairs read as
// the supplied default; only Get and Set create entries.
type QTable[S comparable, A core.Action] struct {
	table map[S]map[A]float64
}

func NewQTable[S comparable, A core.Action]() *QTable[S, A] {
	return &QTable[S, A]{
		table: make(map[S]map[A]float64),
	}
}

// Get returns the value of (state, action), storing def first if the pair
// has no entry yet.
func (q *QTable[S, A]) Get(state S, action A, def float64) float64 {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[A]float64)
	}
	if _, ok := q.table[state][action]; !ok {
		q.table[state][action] = def
	}
	return q.table[state][action]
}

// Peek is Get without creating an entry.
func (q *QTable[S, A]) Peek(state S, action A, def float64) float64 {
	if val, ok := q.Lookup(state, action); ok {
		return val
	}
	return def
}

func (q *QTable[S, A]) Lookup(state S, action A) (float64, bool) {
	values, ok := q.table[state]
	if !ok {
		return 0, false
	}
	val, ok := values[action]
	return val, ok
}

func (q *QTable[S, A]) Set(state S, action A, val float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[A]float64)
	}
	q.table[state][action] = val
}

func (q *QTable[S, A]) HasState(state S) bool {
	_, ok := q.table[state]
	return ok
}

// GetAll returns a copy of the recorded action values of state.
func (q *QTable[S, A]) GetAll(state S) (map[A]float64, bool) {
	values, ok := q.table[state]
	if !ok {
		return nil, false
	}
	out := make(map[A]float64, len(values))
	for a, v := range values {
		out[a] = v
	}
	return out, true
}

// Max returns the best recorded action of state. Ties go to the action with
// the lowest ordinal. ok is false when nothing is recorded for state.
func (q *QTable[S, A]) Max(state S) (action A, val float64, ok bool) {
	val = math.Inf(-1)
	for a, v := range q.table[state] {
		if !ok || v > val || (v == val && a.Ordinal() < action.Ordinal()) {
			action, val, ok = a, v, true
		}
	}
	return action, val, ok
}

// MaxAmong returns the best of the given actions, reading unseen pairs as def.
// It creates no entries.
func (q *QTable[S, A]) MaxAmong(state S, actions []A, def float64) (action A, val float64, ok bool) {
	val = math.Inf(-1)
	for _, a := range actions {
		v := q.Peek(state, a, def)
		if !ok || v > val || (v == val && a.Ordinal() < action.Ordinal()) {
			action, val, ok = a, v, true
		}
	}
	return action, val, ok
}

// Size is the number of states with at least one entry.
func (q *QTable[S, A]) Size() int {
	return len(q.table)
}

// All yields every recorded entry. Order is unspecified.
func (q *QTable[S, A]) All() iter.Seq2[core.StateAction[S, A], float64] {
	return func(yield func(core.StateAction[S, A], float64) bool) {
		for s, values := range q.table {
			for a, v := range values {
				if !yield(core.StateAction[S, A]{State: s, Action: a}, v) {
					return
				}
			}
		}
	}
}
