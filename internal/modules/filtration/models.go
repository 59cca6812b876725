// Package filtration orchestrates the full pipeline: moment partitioning,
// per-moment interaction weighing, and assembly of the resulting matrix
// sequence - the bifiltration artifact consumed by persistent-homology tools.
package filtration

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// Frame is one moment's slice of the filtration: the symmetric interaction
// weight matrix, its derived distance matrix, and summary statistics over the
// upper triangle.
type Frame struct {
	Moment     int         `json:"moment"`
	Weights    [][]float64 `json:"weights"`
	Distances  [][]float64 `json:"distances"`
	MeanWeight float64     `json:"mean_weight"`
	MaxWeight  float64     `json:"max_weight"`
}

// Sequence is the ordered list of frames indexed by moment number, the
// two-parameter filtration input (moment index first, weight/distance second).
type Sequence struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Qubits    int       `json:"qubits"`
	Moments   int       `json:"moments"`
	Strategy  string    `json:"strategy"`
	LogBase   string    `json:"log_base"`
	Frames    []Frame   `json:"frames,omitempty"`
}

// RunSummary is the frame-less listing view of a stored sequence.
type RunSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Qubits    int       `json:"qubits"`
	Moments   int       `json:"moments"`
	Strategy  string    `json:"strategy"`
}

// summarize computes mean and max over the strict upper triangle of a
// symmetric weight matrix.
func summarize(weights [][]float64) (mean, maxWeight float64) {
	var values []float64
	for i := range weights {
		for j := i + 1; j < len(weights); j++ {
			values = append(values, weights[i][j])
			if weights[i][j] > maxWeight {
				maxWeight = weights[i][j]
			}
		}
	}
	if len(values) == 0 {
		return 0, 0
	}
	return stat.Mean(values, nil), maxWeight
}
