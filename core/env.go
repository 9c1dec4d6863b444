package core

import "fmt"

// Action is the constraint satisfied by every environment's action enum.
// Ordinal returns the canonical position of the action in its enumeration;
// it is used wherever a deterministic iteration order is required.
type Action interface {
	comparable
	fmt.Stringer
	Ordinal() int
}

// StateAction indexes the value table.
type StateAction[S comparable, A Action] struct {
	State  S
	Action A
}

// NextStateSample is the outcome of one environment transition.
type NextStateSample[S comparable] struct {
	State  S
	Reward float64
}

// Environment is the collaborator the runner drives. States are plain
// comparable values, so there is no aliasing between two equal states.
type Environment[S comparable, A Action] interface {
	// Reset returns the starting state of the next episode. hint is the state
	// the previous episode stopped in, or nil.
	Reset(hint *S) S
	IsTerminal(S) bool
	SampleNext(S, A) NextStateSample[S]
	// DrawTrajectory renders visits for debugging. Callers never parse it.
	DrawTrajectory([]Visit[S, A]) string
}

type EnvironmentConstructor[S comparable, A Action] interface {
	// NewEnvironment creates a new environment with the given instance number.
	NewEnvironment(int) Environment[S, A]
}
