// Package entanglement converts reduced density matrices into scalar
// interaction weights: von Neumann entropies, quantum mutual information, and
// the per-moment symmetric weight matrix those values assemble into.
package entanglement

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LogBase selects the logarithm convention for entropy values. The distance
// normalization constant follows the same base, so the two never mix.
type LogBase string

const (
	// Base2 measures entropy in bits.
	Base2 LogBase = "2"
	// BaseE measures entropy in nats.
	BaseE LogBase = "e"
)

// Valid reports whether the log base is a recognized convention.
func (b LogBase) Valid() bool { return b == Base2 || b == BaseE }

// log applies the configured logarithm.
func (b LogBase) log(x float64) float64 {
	if b == BaseE {
		return math.Log(x)
	}
	return math.Log2(x)
}

// MaxPairInformation is the maximum mutual information of a two-qubit pair:
// two maximal single-qubit entropies, 2*log 2 in the configured base.
func (b LogBase) MaxPairInformation() float64 {
	if b == BaseE {
		return 2 * math.Ln2
	}
	return 2
}

// DefaultEigenTolerance is the eigenvalue clipping threshold: eigenvalues with
// magnitude below it are treated as exactly zero, following the 0*log 0 = 0
// convention.
const DefaultEigenTolerance = 1e-9

// VonNeumannEntropy computes S(rho) = -sum_k lambda_k log lambda_k over the
// eigenvalues of rho in the given base. Eigenvalues below tol in magnitude are
// excluded; an eigenvalue more negative than -tol is a numeric-instability
// error rather than a silently clipped value.
func VonNeumannEntropy(rho *mat.CDense, base LogBase, tol float64) (float64, error) {
	if tol <= 0 {
		tol = DefaultEigenTolerance
	}
	eigs, err := hermitianEigenvalues(rho)
	if err != nil {
		return 0, err
	}

	entropy := 0.0
	for _, lambda := range eigs {
		if lambda < -tol {
			return 0, fmt.Errorf("%w: eigenvalue %g below -%g", ErrNumericInstability, lambda, tol)
		}
		if lambda <= tol {
			continue
		}
		entropy -= lambda * base.log(lambda)
	}
	// Clamp the tiny negative residue a rank-1 spectrum can leave behind.
	if entropy < 0 && entropy > -tol {
		entropy = 0
	}
	return entropy, nil
}

// hermitianEigenvalues returns the eigenvalues of a Hermitian complex matrix,
// ascending. The matrix H = A + iB is embedded as the real symmetric matrix
// [[A, -B], [B, A]], whose spectrum is that of H with every eigenvalue
// doubled; one representative per adjacent pair is kept.
func hermitianEigenvalues(h *mat.CDense) ([]float64, error) {
	n, c := h.Dims()
	if n != c {
		return nil, fmt.Errorf("%w: %dx%d matrix is not square", ErrNumericInstability, n, c)
	}

	embedded := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			re := real(h.At(i, j))
			embedded.SetSym(i, j, re)
			embedded.SetSym(n+i, n+j, re)
		}
		for j := 0; j < n; j++ {
			// B is antisymmetric for Hermitian h, so mirroring -B[i][j] into
			// (n+j, i) is exactly the lower-left block B.
			embedded.SetSym(i, n+j, -imag(h.At(i, j)))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(embedded, false); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition did not converge", ErrNumericInstability)
	}
	all := eig.Values(nil) // ascending, each eigenvalue of h appears twice

	out := make([]float64, n)
	for k := 0; k < n; k++ {
		// Average the duplicated pair to cancel embedding round-off.
		out[k] = (all[2*k] + all[2*k+1]) / 2
	}
	return out, nil
}
