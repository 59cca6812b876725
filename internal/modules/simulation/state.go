// Package simulation defines the full-system quantum state representation, the
// Simulator capability interface, and a reference dense state-vector simulator.
package simulation

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// normTolerance bounds the acceptable deviation of a state vector's norm (and
// a density matrix's trace) from 1.
const normTolerance = 1e-6

// State is the full joint quantum description of n qubits: either a pure state
// vector of length 2^n or a density matrix of size 2^n x 2^n. States are
// produced fresh per moment and read-only afterward.
type State struct {
	qubits  int
	vector  []complex128
	density *mat.CDense
}

// NewVectorState wraps a pure state vector. The amplitude slice is copied and
// must have length 2^qubits with unit norm within tolerance.
func NewVectorState(qubits int, amplitudes []complex128) (*State, error) {
	dim := 1 << qubits
	if len(amplitudes) != dim {
		return nil, fmt.Errorf("%w: expected %d amplitudes for %d qubits, got %d",
			ErrInvalidState, dim, qubits, len(amplitudes))
	}
	norm := 0.0
	for _, a := range amplitudes {
		norm += real(a)*real(a) + imag(a)*imag(a)
	}
	if math.Abs(norm-1) > normTolerance {
		return nil, fmt.Errorf("%w: state vector norm %.9f deviates from 1", ErrInvalidState, norm)
	}
	owned := make([]complex128, dim)
	copy(owned, amplitudes)
	return &State{qubits: qubits, vector: owned}, nil
}

// NewDensityState wraps a density matrix. The matrix is not copied; callers
// must treat it as owned by the state. Unit trace is checked within tolerance.
func NewDensityState(qubits int, rho *mat.CDense) (*State, error) {
	dim := 1 << qubits
	r, c := rho.Dims()
	if r != dim || c != dim {
		return nil, fmt.Errorf("%w: expected %dx%d density matrix for %d qubits, got %dx%d",
			ErrInvalidState, dim, dim, qubits, r, c)
	}
	tr := complex(0, 0)
	for i := 0; i < dim; i++ {
		tr += rho.At(i, i)
	}
	if cmplx.Abs(tr-1) > normTolerance {
		return nil, fmt.Errorf("%w: density matrix trace %v deviates from 1", ErrInvalidState, tr)
	}
	return &State{qubits: qubits, density: rho}, nil
}

// Qubits returns the number of qubits the state describes.
func (s *State) Qubits() int { return s.qubits }

// Pure reports whether the state is held as a pure state vector.
func (s *State) Pure() bool { return s.vector != nil }

// Amplitudes returns a copy of the pure state vector, or nil for a mixed state.
func (s *State) Amplitudes() []complex128 {
	if s.vector == nil {
		return nil
	}
	out := make([]complex128, len(s.vector))
	copy(out, s.vector)
	return out
}

// Density returns the full-system density matrix. For a pure vector psi this
// is the outer product psi psi-dagger, built fresh on each call; for a mixed
// state the held matrix is returned directly and must not be mutated.
func (s *State) Density() *mat.CDense {
	if s.density != nil {
		return s.density
	}
	dim := len(s.vector)
	rho := mat.NewCDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			rho.Set(i, j, s.vector[i]*cmplx.Conj(s.vector[j]))
		}
	}
	return rho
}
