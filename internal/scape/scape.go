// Package scape provides scoring environments for parameter-vector
// candidates. A scape maps one genotype to a scalar fitness and a
// fixed-dimension behavior descriptor; the emitter consumes scapes
// through the batch ScoringFunc adapter.
package scape

import (
	"context"
	"fmt"

	"proteus/internal/emitter"
	"proteus/internal/model"
)

type Scape interface {
	Name() string
	// Descriptors is the dimension of the behavior descriptor this
	// scape produces.
	Descriptors() int
	Evaluate(ctx context.Context, candidate model.Genotype) (float64, []float64, error)
}

// ScoringFunc adapts a scape into the emitter's batch scoring
// contract. Candidates are evaluated in order; the random seed is
// passed through unchanged since scapes here are deterministic.
func ScoringFunc(s Scape) emitter.ScoringFunc {
	return func(ctx context.Context, candidates []model.Genotype, seed int64) ([]float64, [][]float64, model.ExtraScores, int64, error) {
		fitnesses := make([]float64, len(candidates))
		descriptors := make([][]float64, len(candidates))
		for i, candidate := range candidates {
			if err := ctx.Err(); err != nil {
				return nil, nil, nil, 0, err
			}
			fitness, descriptor, err := s.Evaluate(ctx, candidate)
			if err != nil {
				return nil, nil, nil, 0, fmt.Errorf("evaluate candidate %d on %s: %w", i, s.Name(), err)
			}
			fitnesses[i] = fitness
			descriptors[i] = descriptor
		}
		return fitnesses, descriptors, nil, seed, nil
	}
}
