package core

import "github.com/pkg/errors"

var (
	// ErrInvalidConfiguration is returned when a sampler or policy is built
	// over an empty action set.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrEmptyTrajectory is returned when a trajectory with no visits is
	// queried for its last visit or handed to an episode update.
	ErrEmptyTrajectory = errors.New("empty trajectory")
)
