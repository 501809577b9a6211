package scape

import (
	"context"
	"errors"

	"proteus/internal/genotype"
	"proteus/internal/model"
)

// SphereScape rewards candidates near the origin: fitness is the
// negated squared Euclidean norm. The descriptor is the first two
// parameters, which makes gradient progress directly visible in
// descriptor space.
type SphereScape struct{}

func (SphereScape) Name() string {
	return "sphere"
}

func (SphereScape) Descriptors() int {
	return 2
}

func (SphereScape) Evaluate(_ context.Context, candidate model.Genotype) (float64, []float64, error) {
	values := genotype.Flatten(candidate)
	if len(values) == 0 {
		return 0, nil, errors.New("candidate has no parameters")
	}
	total := 0.0
	for _, v := range values {
		total += v * v
	}
	return -total, leadingDescriptor(values, 2), nil
}

func leadingDescriptor(values []float64, dims int) []float64 {
	out := make([]float64, dims)
	copy(out, values)
	return out
}
