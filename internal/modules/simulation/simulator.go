package simulation

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/circuits"
	"github.com/rs/zerolog"
)

// Simulator executes a circuit (or circuit prefix) and returns the resulting
// full state. Any engine satisfying this contract can be substituted; the
// result must be deterministic for a measurement-free circuit.
type Simulator interface {
	Run(c *circuits.Circuit) (*State, error)
}

// StateVector is a dense state-vector simulator. It applies gates in moment
// order via bitmask amplitude updates; measurements and barriers are
// short-circuited so evolution stays deterministic.
type StateVector struct {
	log zerolog.Logger
}

// NewStateVector creates a state-vector simulator.
func NewStateVector(log zerolog.Logger) *StateVector {
	return &StateVector{log: log.With().Str("component", "simulator").Logger()}
}

// Run executes the circuit from |0...0> and returns the final state.
func (sv *StateVector) Run(c *circuits.Circuit) (*State, error) {
	n := c.Qubits()
	amps := make([]complex128, 1<<n)
	amps[0] = 1

	skipped := 0
	for _, moment := range c.Moments() {
		for _, g := range moment {
			if !g.Unitary() {
				skipped++
				continue
			}
			if err := applyGate(amps, g); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSimulationFailed, err)
			}
		}
	}
	if skipped > 0 {
		sv.log.Debug().Int("skipped_ops", skipped).Msg("Short-circuited non-unitary operations")
	}

	return NewVectorState(n, amps)
}

func applyGate(amps []complex128, g circuits.Gate) error {
	switch g.Type {
	case circuits.GateH:
		h := complex(1/math.Sqrt2, 0)
		applyOneQubit(amps, g.Target, h, h, h, -h)
	case circuits.GateX:
		applyOneQubit(amps, g.Target, 0, 1, 1, 0)
	case circuits.GateY:
		applyOneQubit(amps, g.Target, 0, -1i, 1i, 0)
	case circuits.GateZ:
		applyPhase(amps, g.Target, -1)
	case circuits.GateS:
		applyPhase(amps, g.Target, 1i)
	case circuits.GateSDG:
		applyPhase(amps, g.Target, -1i)
	case circuits.GateT:
		applyPhase(amps, g.Target, cmplx.Exp(complex(0, math.Pi/4)))
	case circuits.GateTDG:
		applyPhase(amps, g.Target, cmplx.Exp(complex(0, -math.Pi/4)))
	case circuits.GateRX:
		c := complex(math.Cos(g.Theta/2), 0)
		js := complex(0, -math.Sin(g.Theta/2))
		applyOneQubit(amps, g.Target, c, js, js, c)
	case circuits.GateRY:
		c := complex(math.Cos(g.Theta/2), 0)
		s := complex(math.Sin(g.Theta/2), 0)
		applyOneQubit(amps, g.Target, c, -s, s, c)
	case circuits.GateRZ:
		phase := cmplx.Exp(complex(0, g.Theta/2))
		bit := 1 << g.Target
		for i := range amps {
			if i&bit != 0 {
				amps[i] *= phase
			} else {
				amps[i] *= cmplx.Conj(phase)
			}
		}
	case circuits.GateCX:
		cBit, tBit := 1<<g.Control, 1<<g.Target
		for i := range amps {
			if i&cBit != 0 && i&tBit == 0 {
				j := i | tBit
				amps[i], amps[j] = amps[j], amps[i]
			}
		}
	case circuits.GateCZ:
		cBit, tBit := 1<<g.Control, 1<<g.Target
		for i := range amps {
			if i&cBit != 0 && i&tBit != 0 {
				amps[i] *= -1
			}
		}
	case circuits.GateSWAP:
		aBit, bBit := 1<<g.Control, 1<<g.Target
		for i := range amps {
			if i&aBit != 0 && i&bBit == 0 {
				j := (i &^ aBit) | bBit
				amps[i], amps[j] = amps[j], amps[i]
			}
		}
	default:
		return fmt.Errorf("unsupported gate type %q", g.Type)
	}
	return nil
}

// applyOneQubit applies the 2x2 unitary [[a,b],[c,d]] to the target qubit.
func applyOneQubit(amps []complex128, target int, a, b, c, d complex128) {
	bit := 1 << target
	for i := range amps {
		if i&bit == 0 {
			j := i | bit
			lo, hi := amps[i], amps[j]
			amps[i] = a*lo + b*hi
			amps[j] = c*lo + d*hi
		}
	}
}

// applyPhase multiplies amplitudes with the target bit set by the given factor.
func applyPhase(amps []complex128, target int, factor complex128) {
	bit := 1 << target
	for i := range amps {
		if i&bit != 0 {
			amps[i] *= factor
		}
	}
}
