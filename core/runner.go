package core

// DefaultMaxSteps bounds an episode when Runner.MaxSteps is not set.
const DefaultMaxSteps = 10000

// EpisodeResult summarizes one episode. Exactly one of Terminated and
// Truncated is set once the episode is over.
type EpisodeResult struct {
	Steps      int
	Return     float64
	Terminated bool
	Truncated  bool
}

// Runner plays episodes of an Environment with a Learner. It can run a
// whole episode at once (RunOneEpisode) or be driven one transition at a
// time (Start, Step, CanStillStep, End) by an external loop. A Runner built
// as a literal with Environment and Learner set is ready to use.
type Runner[S comparable, A Action] struct {
	Environment Environment[S, A]
	Learner     Learner[S, A]
	// MaxSteps is the step budget of RunOneEpisode.
	MaxSteps int

	trajectory *Trajectory[S, A]
	current    S
	pending    A
	steps      int
	started    bool
}

func NewRunner[S comparable, A Action](env Environment[S, A], learner Learner[S, A]) *Runner[S, A] {
	return &Runner[S, A]{
		Environment: env,
		Learner:     learner,
		MaxSteps:    DefaultMaxSteps,
		trajectory:  NewTrajectory[S, A](),
	}
}

func (r *Runner[S, A]) Trajectory() *Trajectory[S, A] {
	if r.trajectory == nil {
		r.trajectory = NewTrajectory[S, A]()
	}
	return r.trajectory
}

func (r *Runner[S, A]) CurrentState() S {
	return r.current
}

// Start clears the trajectory and moves to a fresh starting state. Lookahead
// learners also pick their first action here.
func (r *Runner[S, A]) Start() error {
	var hint *S
	if r.started {
		prev := r.current
		hint = &prev
	}
	r.Trajectory().Clear()
	r.current = r.Environment.Reset(hint)
	r.steps = 0
	r.started = true
	if r.Learner.Mode() == LookaheadStepUpdate {
		action, err := r.Learner.SampleAction(r.current)
		if err != nil {
			return err
		}
		r.pending = action
	}
	return nil
}

// Step performs exactly one transition and, for per-step learners, one
// policy improvement. An episode is started first if none is in progress.
func (r *Runner[S, A]) Step() error {
	if !r.started {
		if err := r.Start(); err != nil {
			return err
		}
	}
	state := r.current
	mode := r.Learner.Mode()

	action := r.pending
	if mode != LookaheadStepUpdate {
		var err error
		if action, err = r.Learner.SampleAction(state); err != nil {
			return err
		}
	}

	sample := r.Environment.SampleNext(state, action)
	r.trajectory.Add(state, action, sample.Reward)
	r.current = sample.State
	r.steps++

	transition := Transition[S, A]{
		State:     state,
		Action:    action,
		Reward:    sample.Reward,
		NextState: sample.State,
	}
	switch mode {
	case StepUpdate:
		return r.Learner.UpdateStep(transition)
	case LookaheadStepUpdate:
		next, err := r.Learner.SampleAction(sample.State)
		if err != nil {
			return err
		}
		transition.NextAction = next
		r.pending = next
		return r.Learner.UpdateStep(transition)
	}
	return nil
}

// CanStillStep reports whether the current state is non-terminal. Before
// the first Start it is always true.
func (r *Runner[S, A]) CanStillStep() bool {
	if !r.started {
		return true
	}
	return !r.Environment.IsTerminal(r.current)
}

// End closes a step-driven episode. Episode learners improve here; per-step
// learners have already learned online and End is a no-op for them.
func (r *Runner[S, A]) End() error {
	if r.Learner.Mode() != EpisodeUpdate {
		return nil
	}
	trajectory := r.Trajectory()
	if trajectory.Len() == 0 {
		return ErrEmptyTrajectory
	}
	return r.Learner.UpdateEpisode(trajectory)
}

// Result describes the episode in progress, or the last one played.
func (r *Runner[S, A]) Result() EpisodeResult {
	terminated := r.started && r.Environment.IsTerminal(r.current)
	return EpisodeResult{
		Steps:      r.steps,
		Return:     r.Trajectory().Return(),
		Terminated: terminated,
		Truncated:  !terminated,
	}
}

// RunOneEpisode plays an episode until a terminal state is reached or
// MaxSteps transitions have been taken. Running out of steps is reported
// through EpisodeResult.Truncated, not as an error.
func (r *Runner[S, A]) RunOneEpisode() (EpisodeResult, error) {
	maxSteps := r.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	if err := r.Start(); err != nil {
		return EpisodeResult{}, err
	}
	for r.steps < maxSteps && r.CanStillStep() {
		if err := r.Step(); err != nil {
			return r.Result(), err
		}
	}
	result := r.Result()

	if r.Learner.Mode() == EpisodeUpdate && r.trajectory.Len() > 0 {
		if err := r.Learner.UpdateEpisode(r.trajectory); err != nil {
			return result, err
		}
	}
	return result, nil
}
