package entanglement

import (
	"fmt"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/reduction"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/simulation"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// Strategy selects how a qubit pair's interaction weight is derived.
type Strategy string

const (
	// StrategyMutualInformation weighs a pair by its quantum mutual
	// information M(i,j) = S(rho_i) + S(rho_j) - S(rho_ij).
	StrategyMutualInformation Strategy = "mutual_information"
	// StrategyEntropy weighs a pair by the joint entropy S(rho_ij) alone.
	StrategyEntropy Strategy = "entropy"
	// StrategyGateCount weighs a pair by the number of two-qubit gates acting
	// on it - a static circuit-structure count handled by the circuits module,
	// not a state computation.
	StrategyGateCount Strategy = "gate_count"
)

// Valid reports whether the strategy is recognized.
func (s Strategy) Valid() bool {
	return s == StrategyMutualInformation || s == StrategyEntropy || s == StrategyGateCount
}

// Config holds weigher configuration.
type Config struct {
	Strategy  Strategy
	LogBase   LogBase
	Tolerance float64 // eigenvalue clipping threshold
}

// Weigher converts a full state into the n x n symmetric interaction weight
// matrix, one pair evaluation at a time.
type Weigher struct {
	cfg     Config
	reducer *reduction.Reducer
	log     zerolog.Logger
}

// New creates a weigher. The reducer is shared with the rest of the pipeline
// so one- and two-qubit reductions go through a single implementation.
func New(cfg Config, reducer *reduction.Reducer, log zerolog.Logger) (*Weigher, error) {
	if !cfg.Strategy.Valid() {
		return nil, fmt.Errorf("%w: strategy %q", ErrInvalidConfig, cfg.Strategy)
	}
	if !cfg.LogBase.Valid() {
		return nil, fmt.Errorf("%w: log base %q", ErrInvalidConfig, cfg.LogBase)
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultEigenTolerance
	}
	return &Weigher{
		cfg:     cfg,
		reducer: reducer,
		log:     log.With().Str("component", "weigher").Logger(),
	}, nil
}

// Config returns the weigher configuration.
func (w *Weigher) Config() Config { return w.cfg }

// WeightMatrix computes the symmetric interaction weight matrix for the state.
// Only the upper triangle is evaluated and then mirrored, so the matrix is
// symmetric by construction; the diagonal stays zero. A failed pair aborts the
// whole matrix - a zeroed entry would be indistinguishable from a genuinely
// uncorrelated pair.
func (w *Weigher) WeightMatrix(state *simulation.State) ([][]float64, error) {
	n := state.Qubits()
	weights := make([][]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			value, err := w.PairWeight(state, i, j)
			if err != nil {
				return nil, fmt.Errorf("pair (%d,%d): %w", i, j, err)
			}
			weights[i][j] = value
			weights[j][i] = value
		}
	}
	return weights, nil
}

// PairWeight computes the configured weight for the unordered pair (i, j).
func (w *Weigher) PairWeight(state *simulation.State, i, j int) (float64, error) {
	switch w.cfg.Strategy {
	case StrategyMutualInformation:
		return w.MutualInformation(state, i, j)
	case StrategyEntropy:
		return w.PairEntropy(state, i, j)
	default:
		return 0, fmt.Errorf("%w: strategy %q is not a state computation", ErrInvalidConfig, w.cfg.Strategy)
	}
}

// MutualInformation computes M(i,j) = S(rho_i) + S(rho_j) - S(rho_ij). The
// single-qubit marginals are obtained by reducing the already-reduced pair
// matrix a second time, so the reducer's composability covers both levels.
func (w *Weigher) MutualInformation(state *simulation.State, i, j int) (float64, error) {
	rhoPair, err := w.reducer.ReduceState(state, []int{i, j})
	if err != nil {
		return 0, fmt.Errorf("reducing to pair {%d,%d}: %w", i, j, err)
	}
	// After reduction, subsystem qubit 0 is min(i,j) and qubit 1 is max(i,j).
	rhoFirst, err := w.reducer.Reduce(rhoPair, 2, []int{0})
	if err != nil {
		return 0, fmt.Errorf("reducing pair {%d,%d} to first marginal: %w", i, j, err)
	}
	rhoSecond, err := w.reducer.Reduce(rhoPair, 2, []int{1})
	if err != nil {
		return 0, fmt.Errorf("reducing pair {%d,%d} to second marginal: %w", i, j, err)
	}

	sPair, err := w.Entropy(rhoPair)
	if err != nil {
		return 0, fmt.Errorf("joint entropy of {%d,%d}: %w", i, j, err)
	}
	sFirst, err := w.Entropy(rhoFirst)
	if err != nil {
		return 0, fmt.Errorf("marginal entropy of qubit %d: %w", min(i, j), err)
	}
	sSecond, err := w.Entropy(rhoSecond)
	if err != nil {
		return 0, fmt.Errorf("marginal entropy of qubit %d: %w", max(i, j), err)
	}

	return sFirst + sSecond - sPair, nil
}

// PairEntropy computes the joint von Neumann entropy S(rho_ij).
func (w *Weigher) PairEntropy(state *simulation.State, i, j int) (float64, error) {
	rhoPair, err := w.reducer.ReduceState(state, []int{i, j})
	if err != nil {
		return 0, fmt.Errorf("reducing to pair {%d,%d}: %w", i, j, err)
	}
	return w.Entropy(rhoPair)
}

// Entropy computes the von Neumann entropy of a density matrix in the
// configured log base.
func (w *Weigher) Entropy(rho *mat.CDense) (float64, error) {
	return VonNeumannEntropy(rho, w.cfg.LogBase, w.cfg.Tolerance)
}

// DistanceMatrix converts a mutual-information-like weight matrix into a
// distance-like filtration parameter: d(i,j) = 2*log 2 - W(i,j), with the
// normalization constant in the same log base as the entropies. The diagonal
// stays zero.
func (w *Weigher) DistanceMatrix(weights [][]float64) [][]float64 {
	maxInfo := w.cfg.LogBase.MaxPairInformation()
	n := len(weights)
	distances := make([][]float64, n)
	for i := range distances {
		distances[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			distances[i][j] = maxInfo - weights[i][j]
		}
	}
	return distances
}
