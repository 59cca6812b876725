// Package reduction computes reduced density matrices by partial trace over
// the complement of a designated qubit subset.
package reduction

import (
	"fmt"
	"math/cmplx"
	"sort"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/simulation"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// DefaultTolerance bounds the acceptable trace and Hermiticity deviation of an
// input density matrix before reduction refuses it.
const DefaultTolerance = 1e-6

// Reducer traces out qubits from a full-system density matrix. It is
// composable: reducing to {i,j} and then further to {i} equals reducing
// directly to {i} from the full state.
type Reducer struct {
	tol float64
	log zerolog.Logger
}

// New creates a reducer. A non-positive tolerance falls back to the default.
func New(tol float64, log zerolog.Logger) *Reducer {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return &Reducer{
		tol: tol,
		log: log.With().Str("component", "reducer").Logger(),
	}
}

// ReduceState reduces a full state to the subsystem identified by keep,
// forming psi psi-dagger first when the state is a pure vector.
func (r *Reducer) ReduceState(s *simulation.State, keep []int) (*mat.CDense, error) {
	return r.Reduce(s.Density(), s.Qubits(), keep)
}

// Reduce returns the partial trace of rho over the complement of keep. The
// keep indices address qubits of a 2^qubits-dimensional density matrix; the
// result is a 2^len(keep)-dimensional density matrix whose subsystem qubit k
// corresponds to keep-sorted position k.
func (r *Reducer) Reduce(rho *mat.CDense, qubits int, keep []int) (*mat.CDense, error) {
	kept, err := validateSubsystem(qubits, keep)
	if err != nil {
		return nil, err
	}
	if err := r.checkDensity(rho, qubits); err != nil {
		return nil, err
	}

	traced := complement(qubits, kept)
	keptDim := 1 << len(kept)
	envDim := 1 << len(traced)

	out := mat.NewCDense(keptDim, keptDim, nil)
	for a := 0; a < keptDim; a++ {
		for b := 0; b < keptDim; b++ {
			sum := complex(0, 0)
			for e := 0; e < envDim; e++ {
				row := scatter(a, kept) | scatter(e, traced)
				col := scatter(b, kept) | scatter(e, traced)
				sum += rho.At(row, col)
			}
			out.Set(a, b, sum)
		}
	}
	return out, nil
}

// checkDensity verifies unit trace and Hermiticity within tolerance. A
// deviation beyond tolerance is an error, never silently renormalized.
func (r *Reducer) checkDensity(rho *mat.CDense, qubits int) error {
	dim := 1 << qubits
	rows, cols := rho.Dims()
	if rows != dim || cols != dim {
		return fmt.Errorf("%w: %dx%d matrix does not match %d qubits", ErrInvalidState, rows, cols, qubits)
	}

	tr := complex(0, 0)
	for i := 0; i < dim; i++ {
		tr += rho.At(i, i)
	}
	if cmplx.Abs(tr-1) > r.tol {
		return fmt.Errorf("%w: trace %v deviates from 1 beyond tolerance %g", ErrInvalidState, tr, r.tol)
	}

	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			if cmplx.Abs(rho.At(i, j)-cmplx.Conj(rho.At(j, i))) > r.tol {
				return fmt.Errorf("%w: entry (%d,%d) violates Hermiticity beyond tolerance %g",
					ErrInvalidState, i, j, r.tol)
			}
		}
	}
	return nil
}

// validateSubsystem checks the keep set and returns it sorted ascending.
func validateSubsystem(qubits int, keep []int) ([]int, error) {
	if len(keep) == 0 {
		return nil, fmt.Errorf("%w: empty subset", ErrInvalidSubsystem)
	}
	seen := make(map[int]bool, len(keep))
	sorted := make([]int, 0, len(keep))
	for _, q := range keep {
		if q < 0 || q >= qubits {
			return nil, fmt.Errorf("%w: qubit %d out of range [0,%d)", ErrInvalidSubsystem, q, qubits)
		}
		if seen[q] {
			return nil, fmt.Errorf("%w: duplicate qubit %d", ErrInvalidSubsystem, q)
		}
		seen[q] = true
		sorted = append(sorted, q)
	}
	sort.Ints(sorted)
	return sorted, nil
}

// complement returns the qubit indices not in kept, ascending.
func complement(qubits int, kept []int) []int {
	inKept := make(map[int]bool, len(kept))
	for _, q := range kept {
		inKept[q] = true
	}
	out := make([]int, 0, qubits-len(kept))
	for q := 0; q < qubits; q++ {
		if !inKept[q] {
			out = append(out, q)
		}
	}
	return out
}

// scatter distributes the low bits of a compact index onto the given qubit
// positions of the full basis index.
func scatter(compact int, positions []int) int {
	idx := 0
	for i, p := range positions {
		if compact&(1<<i) != 0 {
			idx |= 1 << p
		}
	}
	return idx
}
