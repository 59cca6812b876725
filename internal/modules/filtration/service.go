package filtration

import (
	"context"
	"fmt"
	"time"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/circuits"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/entanglement"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/moments"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service runs the pipeline end to end: partition a circuit into moments,
// weigh every qubit pair per moment, and assemble the filtration sequence.
type Service struct {
	partitioner *moments.Partitioner
	weigher     *entanglement.Weigher
	log         zerolog.Logger
}

// NewService creates a filtration service.
func NewService(partitioner *moments.Partitioner, weigher *entanglement.Weigher, log zerolog.Logger) *Service {
	return &Service{
		partitioner: partitioner,
		weigher:     weigher,
		log:         log.With().Str("component", "filtration").Logger(),
	}
}

// Compute produces the full filtration sequence for a circuit. Any per-moment
// or per-pair failure aborts the computation and surfaces with the offending
// indices attached; no partial result is returned.
func (s *Service) Compute(ctx context.Context, c *circuits.Circuit) (*Sequence, error) {
	seq := s.newSequence(c)
	err := s.stream(ctx, c, func(f Frame) error {
		seq.Frames = append(seq.Frames, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	seq.Moments = len(seq.Frames)
	return seq, nil
}

// Stream produces frames one moment at a time, invoking emit as each frame
// completes. Used by the live-streaming API surface; emit errors abort the
// computation.
func (s *Service) Stream(ctx context.Context, c *circuits.Circuit, emit func(Frame) error) (*Sequence, error) {
	seq := s.newSequence(c)
	count := 0
	err := s.stream(ctx, c, func(f Frame) error {
		count++
		return emit(f)
	})
	if err != nil {
		return nil, err
	}
	seq.Moments = count
	return seq, nil
}

func (s *Service) newSequence(c *circuits.Circuit) *Sequence {
	cfg := s.weigher.Config()
	return &Sequence{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Qubits:    c.Qubits(),
		Strategy:  string(cfg.Strategy),
		LogBase:   string(cfg.LogBase),
	}
}

func (s *Service) stream(ctx context.Context, c *circuits.Circuit, emit func(Frame) error) error {
	numMoments := c.NumMoments()
	if numMoments == 0 {
		return circuits.ErrNoMoments
	}
	cfg := s.weigher.Config()

	started := time.Now()
	s.log.Info().
		Int("qubits", c.Qubits()).
		Int("moments", numMoments).
		Str("strategy", string(cfg.Strategy)).
		Msg("Computing filtration sequence")

	if cfg.Strategy == entanglement.StrategyGateCount {
		// Static circuit-structure weights need no state reconstruction.
		for m := 0; m < numMoments; m++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			weights, err := c.TwoQubitGateCounts(m)
			if err != nil {
				return fmt.Errorf("moment %d: %w", m, err)
			}
			if err := emit(s.buildFrame(m, weights)); err != nil {
				return err
			}
		}
	} else {
		states, err := s.partitioner.States(ctx, c)
		if err != nil {
			return err
		}
		for m, state := range states {
			if err := ctx.Err(); err != nil {
				return err
			}
			weights, err := s.weigher.WeightMatrix(state)
			if err != nil {
				return fmt.Errorf("moment %d: %w", m, err)
			}
			if err := emit(s.buildFrame(m, weights)); err != nil {
				return err
			}
		}
	}

	s.log.Info().
		Int("moments", numMoments).
		Dur("elapsed", time.Since(started)).
		Msg("Filtration sequence complete")
	return nil
}

func (s *Service) buildFrame(moment int, weights [][]float64) Frame {
	mean, maxWeight := summarize(weights)
	frame := Frame{
		Moment:     moment,
		Weights:    weights,
		MeanWeight: mean,
		MaxWeight:  maxWeight,
	}
	// The additive-inverse distance transform is only meaningful for values
	// bounded by the pair information maximum.
	if s.weigher.Config().Strategy == entanglement.StrategyMutualInformation {
		frame.Distances = s.weigher.DistanceMatrix(weights)
	}
	return frame
}
