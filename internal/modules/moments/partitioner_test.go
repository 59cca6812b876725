package moments

import (
	"context"
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/circuits"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/simulation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPartitioner() *Partitioner {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	return NewPartitioner(simulation.NewStateVector(log), log)
}

// failingSimulator returns an error on the nth invocation.
type failingSimulator struct {
	failOn int
	calls  int
	inner  simulation.Simulator
}

func (f *failingSimulator) Run(c *circuits.Circuit) (*simulation.State, error) {
	f.calls++
	if f.calls == f.failOn {
		return nil, errors.New("backend unavailable")
	}
	return f.inner.Run(c)
}

func TestStates_ScenarioCircuit(t *testing.T) {
	// [H(0), CNOT(0,1), X(0)] partitions into exactly 3 moments; the second
	// state is the Bell state and the third is its X-flipped companion.
	c, err := circuits.New(2, []circuits.Gate{
		{Type: circuits.GateH, Target: 0, Control: -1},
		{Type: circuits.GateCX, Control: 0, Target: 1},
		{Type: circuits.GateX, Target: 0, Control: -1},
	})
	require.NoError(t, err)

	states, err := testPartitioner().States(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, states, 3)

	invSqrt2 := 1 / math.Sqrt2

	// Moment 0: equal superposition on qubit 0 only.
	amps := states[0].Amplitudes()
	assert.InDelta(t, invSqrt2, real(amps[0]), 1e-9)
	assert.InDelta(t, invSqrt2, real(amps[1]), 1e-9)

	// Moment 1: Bell state (|00> + |11>)/sqrt(2).
	amps = states[1].Amplitudes()
	assert.InDelta(t, invSqrt2, real(amps[0]), 1e-9)
	assert.InDelta(t, 0, cmplx.Abs(amps[1]), 1e-9)
	assert.InDelta(t, 0, cmplx.Abs(amps[2]), 1e-9)
	assert.InDelta(t, invSqrt2, real(amps[3]), 1e-9)

	// Moment 2: (|01> + |10>)/sqrt(2) after the X flip.
	amps = states[2].Amplitudes()
	assert.InDelta(t, 0, cmplx.Abs(amps[0]), 1e-9)
	assert.InDelta(t, invSqrt2, real(amps[1]), 1e-9)
	assert.InDelta(t, invSqrt2, real(amps[2]), 1e-9)
	assert.InDelta(t, 0, cmplx.Abs(amps[3]), 1e-9)
}

func TestStates_OneStatePerMoment(t *testing.T) {
	c, err := circuits.GHZ(4)
	require.NoError(t, err)

	states, err := testPartitioner().States(context.Background(), c)
	require.NoError(t, err)
	assert.Len(t, states, c.NumMoments())
	for _, s := range states {
		assert.Equal(t, 4, s.Qubits())
	}
}

func TestStates_EmptyCircuit(t *testing.T) {
	c, err := circuits.New(2, nil)
	require.NoError(t, err)

	_, err = testPartitioner().States(context.Background(), c)
	assert.ErrorIs(t, err, circuits.ErrNoMoments)
}

func TestStates_SimulationFailurePropagates(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	sim := &failingSimulator{failOn: 2, inner: simulation.NewStateVector(log)}
	p := NewPartitioner(sim, log)

	c, err := circuits.GHZ(3)
	require.NoError(t, err)

	_, err = p.States(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moment 1", "error should name the offending moment")
	assert.Equal(t, 2, sim.calls, "failure must not be retried")
}

func TestStates_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, err := circuits.GHZ(3)
	require.NoError(t, err)

	_, err = testPartitioner().States(ctx, c)
	assert.ErrorIs(t, err, context.Canceled)
}
