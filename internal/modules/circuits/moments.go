package circuits

import "fmt"

// Moments partitions the gate sequence into scheduling steps. A gate is placed
// in the earliest moment in which all of its qubits are free - greedy ASAP
// packing, which is stable and deterministic for a given gate order. Barriers
// close the current frontier across all qubits without occupying a moment.
func (c *Circuit) Moments() [][]Gate {
	var moments [][]Gate
	free := make([]int, c.qubits) // earliest free moment per qubit

	for _, g := range c.gates {
		if g.Type == GateBarrier {
			// Force every subsequent gate past the current frontier.
			frontier := len(moments)
			for q := range free {
				free[q] = frontier
			}
			continue
		}
		m := 0
		for _, q := range g.Qubits() {
			if free[q] > m {
				m = free[q]
			}
		}
		if m == len(moments) {
			moments = append(moments, nil)
		}
		moments[m] = append(moments[m], g)
		for _, q := range g.Qubits() {
			free[q] = m + 1
		}
	}
	return moments
}

// NumMoments returns the number of scheduling steps the circuit decomposes into.
func (c *Circuit) NumMoments() int {
	return len(c.Moments())
}

// Prefix returns the cumulative sub-circuit consisting of moments [0..m].
// The prefix is a fresh circuit over the same qubit set.
func (c *Circuit) Prefix(m int) (*Circuit, error) {
	moments := c.Moments()
	if len(moments) == 0 {
		return nil, ErrNoMoments
	}
	if m < 0 || m >= len(moments) {
		return nil, fmt.Errorf("%w: moment %d out of range [0,%d)", ErrInvalidCircuit, m, len(moments))
	}
	var gates []Gate
	for i := 0; i <= m; i++ {
		gates = append(gates, moments[i]...)
	}
	return New(c.qubits, gates)
}

// TwoQubitGateCounts counts, for every unordered qubit pair, the two-qubit
// gates acting on that pair within moments [0..uptoMoment]. This is the static
// gate-count weighting strategy: a circuit-structure count, not a state
// computation. The returned matrix is symmetric with a zero diagonal.
func (c *Circuit) TwoQubitGateCounts(uptoMoment int) ([][]float64, error) {
	moments := c.Moments()
	if len(moments) == 0 {
		return nil, ErrNoMoments
	}
	if uptoMoment < 0 || uptoMoment >= len(moments) {
		return nil, fmt.Errorf("%w: moment %d out of range [0,%d)", ErrInvalidCircuit, uptoMoment, len(moments))
	}

	counts := make([][]float64, c.qubits)
	for i := range counts {
		counts[i] = make([]float64, c.qubits)
	}
	for m := 0; m <= uptoMoment; m++ {
		for _, g := range moments[m] {
			if !g.TwoQubit() {
				continue
			}
			i, j := g.Control, g.Target
			counts[i][j]++
			counts[j][i]++
		}
	}
	return counts, nil
}
