// Package circuits provides the quantum circuit data model: gates, deterministic
// moment scheduling, and cumulative prefix construction.
package circuits

import (
	"encoding/json"
	"fmt"
)

// GateType identifies a gate operation.
type GateType string

const (
	GateH    GateType = "H"
	GateX    GateType = "X"
	GateY    GateType = "Y"
	GateZ    GateType = "Z"
	GateS    GateType = "S"
	GateSDG  GateType = "SDG"
	GateT    GateType = "T"
	GateTDG  GateType = "TDG"
	GateRX   GateType = "RX"
	GateRY   GateType = "RY"
	GateRZ   GateType = "RZ"
	GateCX   GateType = "CX"
	GateCZ   GateType = "CZ"
	GateSWAP GateType = "SWAP"

	// GateMeasure is accepted in a circuit but short-circuited during state
	// reconstruction: density matrices are only defined for the unitary segment.
	GateMeasure GateType = "MEASURE"
	// GateBarrier is a scheduling hint with no effect on the state.
	GateBarrier GateType = "BARRIER"
)

// twoQubitGates are the gate types that couple two qubits.
var twoQubitGates = map[GateType]bool{
	GateCX:   true,
	GateCZ:   true,
	GateSWAP: true,
}

// rotationGates are the gate types that carry a rotation angle.
var rotationGates = map[GateType]bool{
	GateRX: true,
	GateRY: true,
	GateRZ: true,
}

// knownGates is the full set of accepted gate types.
var knownGates = map[GateType]bool{
	GateH: true, GateX: true, GateY: true, GateZ: true,
	GateS: true, GateSDG: true, GateT: true, GateTDG: true,
	GateRX: true, GateRY: true, GateRZ: true,
	GateCX: true, GateCZ: true, GateSWAP: true,
	GateMeasure: true, GateBarrier: true,
}

// Gate is a single operation placed on the circuit. Control is -1 for
// single-qubit gates. Theta is only meaningful for rotation gates.
type Gate struct {
	Type    GateType
	Target  int
	Control int
	Theta   float64
}

// Qubits returns the qubit indices the gate acts on.
func (g Gate) Qubits() []int {
	if g.Control >= 0 {
		return []int{g.Control, g.Target}
	}
	return []int{g.Target}
}

// TwoQubit reports whether the gate couples two qubits.
func (g Gate) TwoQubit() bool {
	return twoQubitGates[g.Type]
}

// Unitary reports whether the gate contributes to deterministic state evolution.
func (g Gate) Unitary() bool {
	return g.Type != GateMeasure && g.Type != GateBarrier
}

// Circuit is an ordered sequence of gates over a fixed set of labeled qubits.
// It is immutable once built via New; the operation order determines the moment
// partition deterministically.
type Circuit struct {
	qubits int
	gates  []Gate
}

// New builds a circuit and validates every gate against the qubit count.
func New(qubits int, gates []Gate) (*Circuit, error) {
	if qubits < 1 {
		return nil, fmt.Errorf("%w: qubit count %d", ErrInvalidCircuit, qubits)
	}
	for i, g := range gates {
		if err := validateGate(g, qubits); err != nil {
			return nil, fmt.Errorf("gate %d: %w", i, err)
		}
	}
	owned := make([]Gate, len(gates))
	copy(owned, gates)
	return &Circuit{qubits: qubits, gates: owned}, nil
}

func validateGate(g Gate, qubits int) error {
	if !knownGates[g.Type] {
		return fmt.Errorf("%w: unknown gate type %q", ErrInvalidCircuit, g.Type)
	}
	if g.Target < 0 || g.Target >= qubits {
		return fmt.Errorf("%w: target %d out of range [0,%d)", ErrInvalidCircuit, g.Target, qubits)
	}
	if twoQubitGates[g.Type] {
		if g.Control < 0 || g.Control >= qubits {
			return fmt.Errorf("%w: control %d out of range [0,%d)", ErrInvalidCircuit, g.Control, qubits)
		}
		if g.Control == g.Target {
			return fmt.Errorf("%w: control and target are both qubit %d", ErrInvalidCircuit, g.Target)
		}
	} else if g.Control >= 0 {
		return fmt.Errorf("%w: gate %s does not take a control qubit", ErrInvalidCircuit, g.Type)
	}
	return nil
}

// Qubits returns the number of qubits.
func (c *Circuit) Qubits() int { return c.qubits }

// Gates returns a copy of the gate sequence.
func (c *Circuit) Gates() []Gate {
	out := make([]Gate, len(c.gates))
	copy(out, c.gates)
	return out
}

// HasMeasurements reports whether the circuit contains measurement operations.
func (c *Circuit) HasMeasurements() bool {
	for _, g := range c.gates {
		if g.Type == GateMeasure {
			return true
		}
	}
	return false
}

// gateJSON is the wire representation of a gate.
type gateJSON struct {
	Type    string   `json:"type"`
	Target  int      `json:"target"`
	Control *int     `json:"control,omitempty"`
	Theta   *float64 `json:"theta,omitempty"`
}

// circuitJSON is the wire representation of a circuit.
type circuitJSON struct {
	Qubits int        `json:"qubits"`
	Gates  []gateJSON `json:"gates"`
}

// MarshalJSON implements json.Marshaler.
func (c *Circuit) MarshalJSON() ([]byte, error) {
	out := circuitJSON{Qubits: c.qubits, Gates: make([]gateJSON, 0, len(c.gates))}
	for _, g := range c.gates {
		gj := gateJSON{Type: string(g.Type), Target: g.Target}
		if g.Control >= 0 {
			ctrl := g.Control
			gj.Control = &ctrl
		}
		if rotationGates[g.Type] {
			theta := g.Theta
			gj.Theta = &theta
		}
		out.Gates = append(out.Gates, gj)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler, validating the decoded circuit.
func (c *Circuit) UnmarshalJSON(data []byte) error {
	var in circuitJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCircuit, err)
	}
	gates := make([]Gate, 0, len(in.Gates))
	for _, gj := range in.Gates {
		g := Gate{Type: GateType(gj.Type), Target: gj.Target, Control: -1}
		if gj.Control != nil {
			g.Control = *gj.Control
		}
		if gj.Theta != nil {
			g.Theta = *gj.Theta
		}
		gates = append(gates, g)
	}
	built, err := New(in.Qubits, gates)
	if err != nil {
		return err
	}
	*c = *built
	return nil
}
