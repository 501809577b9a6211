// Package es holds the numeric core of the evolution-strategies
// emitter: perturbation sampling, rank-based score normalization, and
// the noise-weighted gradient estimate.
package es

import (
	"errors"
	"fmt"
	"math/rand"

	"proteus/internal/genotype"
	"proteus/internal/model"
)

var ErrOddMirroredSamples = errors.New("mirrored sampling requires an even sample number")

// NoiseBatch holds one generation's perturbations. SampleNoise always
// has SampleNumber rows. Under mirroring, rows 2i and 2i+1 are exact
// negations of each other and GradientNoise keeps only the positive
// halves (SampleNumber/2 rows); the antithetic pairing is resolved
// later by MirrorPairDifference. Without mirroring the two fields
// alias the same rows.
type NoiseBatch struct {
	SampleNoise   []model.Genotype
	GradientNoise []model.Genotype
}

// DrawNoise samples unit-normal perturbations shaped like parent from
// a dedicated sub-stream seeded with seed.
func DrawNoise(parent model.Genotype, sampleNumber int, mirror bool, seed int64) (NoiseBatch, error) {
	if sampleNumber <= 0 {
		return NoiseBatch{}, fmt.Errorf("sample number must be > 0, got %d", sampleNumber)
	}
	rng := rand.New(rand.NewSource(seed))

	if !mirror {
		rows := make([]model.Genotype, sampleNumber)
		for i := range rows {
			rows[i] = normalLike(parent, rng)
		}
		return NoiseBatch{SampleNoise: rows, GradientNoise: rows}, nil
	}

	if sampleNumber%2 != 0 {
		return NoiseBatch{}, fmt.Errorf("%w: got %d", ErrOddMirroredSamples, sampleNumber)
	}
	half := sampleNumber / 2
	positive := make([]model.Genotype, half)
	for i := range positive {
		positive[i] = normalLike(parent, rng)
	}
	interleaved := make([]model.Genotype, sampleNumber)
	for i, row := range positive {
		interleaved[2*i] = row
		interleaved[2*i+1] = genotype.Scale(row, -1)
	}
	return NoiseBatch{SampleNoise: interleaved, GradientNoise: positive}, nil
}

// PerturbedSamples builds the evaluation candidates parent + sigma*noise.
// The parent itself is never part of the batch.
func PerturbedSamples(parent model.Genotype, noise []model.Genotype, sigma float64) ([]model.Genotype, error) {
	out := make([]model.Genotype, len(noise))
	for i, row := range noise {
		sample, err := genotype.AddScaled(parent, row, sigma)
		if err != nil {
			return nil, fmt.Errorf("perturb sample %d: %w", i, err)
		}
		out[i] = sample
	}
	return out, nil
}

func normalLike(parent model.Genotype, rng *rand.Rand) model.Genotype {
	return genotype.Map(parent, func(_ string, values []float64) []float64 {
		out := make([]float64, len(values))
		for i := range out {
			out[i] = rng.NormFloat64()
		}
		return out
	})
}
