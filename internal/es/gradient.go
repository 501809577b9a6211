package es

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"proteus/internal/genotype"
	"proteus/internal/model"
)

// EstimateGradient combines gradient noise and per-sample weights into
// a regularized gradient estimate, per parameter leaf:
//
//	g = -sum_i(w_i * noise_i) / (totalSampleNumber * sigma) + l2 * parent
//
// totalSampleNumber is always the full batch size, even under
// mirroring, since each antithetic pair accounts for two evaluated
// samples. The negation encodes the ascent direction as a quantity
// for the optimizer to minimize; the l2 term is weight decay baked
// into the gradient.
func EstimateGradient(parent model.Genotype, gradientNoise []model.Genotype, weights []float64, totalSampleNumber int, sigma, l2 float64) (model.Genotype, error) {
	if len(gradientNoise) != len(weights) {
		return model.Genotype{}, fmt.Errorf("gradient noise rows %d do not match weights %d", len(gradientNoise), len(weights))
	}
	if totalSampleNumber <= 0 {
		return model.Genotype{}, fmt.Errorf("total sample number must be > 0, got %d", totalSampleNumber)
	}
	if sigma == 0 {
		return model.Genotype{}, fmt.Errorf("sample sigma must be non-zero")
	}

	accum := genotype.ZerosLike(parent)
	for i, row := range gradientNoise {
		next, err := genotype.AddScaled(accum, row, weights[i])
		if err != nil {
			return model.Genotype{}, fmt.Errorf("accumulate sample %d: %w", i, err)
		}
		accum = next
	}

	scale := -1 / (float64(totalSampleNumber) * sigma)
	gradient := genotype.Scale(accum, scale)
	return genotype.Zip(gradient, parent, func(gv, pv []float64) []float64 {
		out := make([]float64, len(gv))
		floats.AddScaledTo(out, gv, l2, pv)
		return out
	})
}
