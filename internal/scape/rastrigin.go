package scape

import (
	"context"
	"errors"
	"math"

	"proteus/internal/genotype"
	"proteus/internal/model"
)

// RastriginScape is the classic highly multimodal benchmark, negated
// so larger is better. Descriptor is the first two parameters.
type RastriginScape struct{}

func (RastriginScape) Name() string {
	return "rastrigin"
}

func (RastriginScape) Descriptors() int {
	return 2
}

func (RastriginScape) Evaluate(_ context.Context, candidate model.Genotype) (float64, []float64, error) {
	values := genotype.Flatten(candidate)
	if len(values) == 0 {
		return 0, nil, errors.New("candidate has no parameters")
	}
	total := 10 * float64(len(values))
	for _, v := range values {
		total += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return -total, leadingDescriptor(values, 2), nil
}
