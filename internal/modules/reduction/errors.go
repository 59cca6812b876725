package reduction

import "errors"

var (
	// ErrInvalidSubsystem signals an empty keep set, a duplicate index, or an
	// index outside [0, n).
	ErrInvalidSubsystem = errors.New("invalid subsystem index set")

	// ErrInvalidState signals a density matrix whose trace or Hermiticity
	// deviates beyond the configured tolerance. No renormalization is applied.
	ErrInvalidState = errors.New("invalid density matrix")
)
