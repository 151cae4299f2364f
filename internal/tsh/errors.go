package tsh

import "errors"

// Domain errors for propagation.
var (
	// ErrPropagation indicates the step produced an invalid state.
	ErrPropagation = errors.New("tsh: propagation failed (NaN or Inf in state)")

	// ErrUnsupportedMethod indicates a hopping method this propagator
	// does not implement.
	ErrUnsupportedMethod = errors.New("tsh: unsupported hopping method")
)
