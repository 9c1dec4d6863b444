package core

// UpdateMode tells the runner when a learner improves its policy.
type UpdateMode int

const (
	// EpisodeUpdate learners improve once per episode from the full trajectory.
	EpisodeUpdate UpdateMode = iota
	// StepUpdate learners improve after every transition. The next action is
	// sampled after the update.
	StepUpdate
	// LookaheadStepUpdate learners need the action actually taken from the
	// next state before they update, and that action is then carried forward.
	LookaheadStepUpdate
)

func (m UpdateMode) String() string {
	switch m {
	case EpisodeUpdate:
		return "episode"
	case StepUpdate:
		return "step"
	case LookaheadStepUpdate:
		return "lookahead-step"
	default:
		return "unknown"
	}
}

// Transition is what per-step learners consume. NextAction is only set for
// LookaheadStepUpdate learners.
type Transition[S comparable, A Action] struct {
	State      S
	Action     A
	Reward     float64
	NextState  S
	NextAction A
}

// Learner is the policy-improvement strategy plugged into a Runner.
type Learner[S comparable, A Action] interface {
	SampleAction(S) (A, error)
	Mode() UpdateMode
	UpdateStep(Transition[S, A]) error
	UpdateEpisode(*Trajectory[S, A]) error
}
