// Package moments reconstructs the full quantum state at every scheduling step
// of a circuit by re-simulating cumulative moment prefixes.
package moments

import (
	"context"
	"fmt"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/circuits"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/simulation"
	"github.com/rs/zerolog"
)

// Partitioner splits a circuit into cumulative moment prefixes and obtains one
// state snapshot per prefix from the simulation capability.
type Partitioner struct {
	sim simulation.Simulator
	log zerolog.Logger
}

// NewPartitioner creates a moment partitioner backed by the given simulator.
func NewPartitioner(sim simulation.Simulator, log zerolog.Logger) *Partitioner {
	return &Partitioner{
		sim: sim,
		log: log.With().Str("component", "partitioner").Logger(),
	}
}

// States returns exactly one state per moment, in increasing moment order.
// Each prefix is re-executed independently from the start - the simulator is
// opaque and no incremental state reuse is assumed. A simulator failure is
// propagated immediately with the offending moment index, never retried.
func (p *Partitioner) States(ctx context.Context, c *circuits.Circuit) ([]*simulation.State, error) {
	numMoments := c.NumMoments()
	if numMoments == 0 {
		return nil, circuits.ErrNoMoments
	}

	p.log.Debug().
		Int("qubits", c.Qubits()).
		Int("moments", numMoments).
		Msg("Reconstructing per-moment states")

	states := make([]*simulation.State, 0, numMoments)
	for m := 0; m < numMoments; m++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prefix, err := c.Prefix(m)
		if err != nil {
			return nil, fmt.Errorf("building prefix for moment %d: %w", m, err)
		}
		state, err := p.sim.Run(prefix)
		if err != nil {
			return nil, fmt.Errorf("simulating prefix through moment %d: %w", m, err)
		}
		if state.Qubits() != c.Qubits() {
			return nil, fmt.Errorf("moment %d: %w: simulator returned %d-qubit state for %d-qubit circuit",
				m, simulation.ErrInvalidState, state.Qubits(), c.Qubits())
		}
		states = append(states, state)
	}
	return states, nil
}
