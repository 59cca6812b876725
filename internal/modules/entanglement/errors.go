package entanglement

import "errors"

var (
	// ErrNumericInstability signals an eigenvalue more negative than the
	// clipping tolerance allows - the input is not positive-semidefinite
	// within numerical precision.
	ErrNumericInstability = errors.New("numeric instability")

	// ErrInvalidConfig signals an unknown weighting strategy or log base.
	ErrInvalidConfig = errors.New("invalid entanglement configuration")
)
