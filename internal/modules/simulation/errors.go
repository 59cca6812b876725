package simulation

import "errors"

var (
	// ErrInvalidState signals a state whose dimensions, norm, or trace do not
	// describe a valid n-qubit quantum state.
	ErrInvalidState = errors.New("invalid quantum state")

	// ErrSimulationFailed signals that the simulator could not execute the
	// circuit. It is surfaced immediately and never retried.
	ErrSimulationFailed = errors.New("simulation failed")
)
