package circuits

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		qubits int
		gates  []Gate
		valid  bool
	}{
		{
			name:   "valid single qubit circuit",
			qubits: 1,
			gates:  []Gate{{Type: GateH, Target: 0, Control: -1}},
			valid:  true,
		},
		{
			name:   "zero qubits",
			qubits: 0,
			gates:  nil,
			valid:  false,
		},
		{
			name:   "target out of range",
			qubits: 2,
			gates:  []Gate{{Type: GateX, Target: 2, Control: -1}},
			valid:  false,
		},
		{
			name:   "unknown gate type",
			qubits: 1,
			gates:  []Gate{{Type: "Q", Target: 0, Control: -1}},
			valid:  false,
		},
		{
			name:   "control equals target",
			qubits: 2,
			gates:  []Gate{{Type: GateCX, Control: 1, Target: 1}},
			valid:  false,
		},
		{
			name:   "control on single qubit gate",
			qubits: 2,
			gates:  []Gate{{Type: GateH, Target: 0, Control: 1}},
			valid:  false,
		},
		{
			name:   "valid two qubit gate",
			qubits: 2,
			gates:  []Gate{{Type: GateCX, Control: 0, Target: 1}},
			valid:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.qubits, tt.gates)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidCircuit)
			}
		})
	}
}

func TestMoments_GreedyPacking(t *testing.T) {
	// H(0) and X(1) share no qubits, so they pack into the same moment;
	// CNOT(0,1) must wait for both.
	c, err := New(2, []Gate{
		{Type: GateH, Target: 0, Control: -1},
		{Type: GateX, Target: 1, Control: -1},
		{Type: GateCX, Control: 0, Target: 1},
	})
	require.NoError(t, err)

	moments := c.Moments()
	require.Len(t, moments, 2)
	assert.Len(t, moments[0], 2)
	assert.Len(t, moments[1], 1)
	assert.Equal(t, GateCX, moments[1][0].Type)
}

func TestMoments_SequentialSameQubit(t *testing.T) {
	// Scenario circuit: each gate touches qubit 0, so every gate gets its
	// own moment.
	c, err := New(2, []Gate{
		{Type: GateH, Target: 0, Control: -1},
		{Type: GateCX, Control: 0, Target: 1},
		{Type: GateX, Target: 0, Control: -1},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, c.NumMoments())
}

func TestMoments_Deterministic(t *testing.T) {
	c, err := RandomEntangler(4, 5, 42)
	require.NoError(t, err)

	first := c.Moments()
	second := c.Moments()
	assert.Equal(t, first, second)
}

func TestMoments_Barrier(t *testing.T) {
	c, err := New(2, []Gate{
		{Type: GateH, Target: 0, Control: -1},
		{Type: GateBarrier, Target: 0, Control: -1},
		{Type: GateX, Target: 1, Control: -1},
	})
	require.NoError(t, err)

	moments := c.Moments()
	require.Len(t, moments, 2)
	assert.Equal(t, GateX, moments[1][0].Type)
}

func TestPrefix(t *testing.T) {
	c, err := GHZ(3)
	require.NoError(t, err)
	require.Equal(t, 3, c.NumMoments())

	prefix, err := c.Prefix(1)
	require.NoError(t, err)
	assert.Equal(t, 3, prefix.Qubits())
	assert.Len(t, prefix.Gates(), 2)

	_, err = c.Prefix(3)
	assert.ErrorIs(t, err, ErrInvalidCircuit)
	_, err = c.Prefix(-1)
	assert.ErrorIs(t, err, ErrInvalidCircuit)
}

func TestPrefix_EmptyCircuit(t *testing.T) {
	c, err := New(2, nil)
	require.NoError(t, err)

	_, err = c.Prefix(0)
	assert.ErrorIs(t, err, ErrNoMoments)
}

func TestTwoQubitGateCounts(t *testing.T) {
	c, err := New(3, []Gate{
		{Type: GateH, Target: 0, Control: -1},
		{Type: GateCX, Control: 0, Target: 1},
		{Type: GateCX, Control: 0, Target: 1},
		{Type: GateCZ, Control: 1, Target: 2},
	})
	require.NoError(t, err)

	counts, err := c.TwoQubitGateCounts(c.NumMoments() - 1)
	require.NoError(t, err)

	assert.Equal(t, 2.0, counts[0][1])
	assert.Equal(t, 2.0, counts[1][0])
	assert.Equal(t, 1.0, counts[1][2])
	assert.Equal(t, 0.0, counts[0][2])
	for i := range counts {
		assert.Equal(t, 0.0, counts[i][i])
	}
}

func TestCircuitJSON_RoundTrip(t *testing.T) {
	original, err := New(2, []Gate{
		{Type: GateH, Target: 0, Control: -1},
		{Type: GateRX, Target: 1, Control: -1, Theta: 1.25},
		{Type: GateCX, Control: 0, Target: 1},
	})
	require.NoError(t, err)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Circuit
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.Qubits(), decoded.Qubits())
	assert.Equal(t, original.Gates(), decoded.Gates())
}

func TestCircuitJSON_InvalidCircuit(t *testing.T) {
	var c Circuit
	err := json.Unmarshal([]byte(`{"qubits":1,"gates":[{"type":"CX","target":0,"control":5}]}`), &c)
	assert.ErrorIs(t, err, ErrInvalidCircuit)
}

func TestGHZ(t *testing.T) {
	c, err := GHZ(4)
	require.NoError(t, err)

	gates := c.Gates()
	require.Len(t, gates, 4)
	assert.Equal(t, GateH, gates[0].Type)
	for i := 1; i < 4; i++ {
		assert.Equal(t, GateCX, gates[i].Type)
		assert.Equal(t, i-1, gates[i].Control)
		assert.Equal(t, i, gates[i].Target)
	}
}

func TestRandomEntangler_SeedStability(t *testing.T) {
	a, err := RandomEntangler(3, 4, 7)
	require.NoError(t, err)
	b, err := RandomEntangler(3, 4, 7)
	require.NoError(t, err)

	assert.Equal(t, a.Gates(), b.Gates())
}
