package circuits

import (
	"math"
	"math/rand"
)

// GHZ builds the n-qubit GHZ preparation circuit: H on qubit 0 followed by a
// CNOT ladder down the register.
func GHZ(n int) (*Circuit, error) {
	gates := []Gate{{Type: GateH, Target: 0, Control: -1}}
	for q := 0; q < n-1; q++ {
		gates = append(gates, Gate{Type: GateCX, Control: q, Target: q + 1})
	}
	return New(n, gates)
}

// Bell builds the two-qubit Bell pair circuit.
func Bell() (*Circuit, error) {
	return New(2, []Gate{
		{Type: GateH, Target: 0, Control: -1},
		{Type: GateCX, Control: 0, Target: 1},
	})
}

// RandomEntangler builds a random layered circuit of the given depth: each
// layer applies a random single-qubit rotation to every qubit followed by CZ
// couplings along randomly chosen edges. The same seed always produces the
// same circuit, so prefix re-simulation stays deterministic.
func RandomEntangler(n, depth int, seed int64) (*Circuit, error) {
	rng := rand.New(rand.NewSource(seed))
	rotations := []GateType{GateRX, GateRY, GateRZ}

	var gates []Gate
	for d := 0; d < depth; d++ {
		for q := 0; q < n; q++ {
			gates = append(gates, Gate{
				Type:    rotations[rng.Intn(len(rotations))],
				Target:  q,
				Control: -1,
				Theta:   rng.Float64() * 2 * math.Pi,
			})
		}
		// Couple a random subset of adjacent pairs, alternating parity per
		// layer so every edge of the line is reachable.
		for q := d % 2; q < n-1; q += 2 {
			if rng.Float64() < 0.75 {
				gates = append(gates, Gate{Type: GateCZ, Control: q, Target: q + 1})
			}
		}
	}
	return New(n, gates)
}
