package circuits

import "errors"

var (
	// ErrInvalidCircuit signals a malformed circuit: bad qubit count, unknown
	// gate type, or a gate referencing a qubit outside [0, n).
	ErrInvalidCircuit = errors.New("invalid circuit")

	// ErrNoMoments signals a circuit whose gate sequence produces zero moments.
	ErrNoMoments = errors.New("circuit has no moments")
)
