package scape

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"proteus/internal/genotype"
	"proteus/internal/model"
)

// PlanarArmScape is the redundant-arm quality-diversity task: the
// candidate parameters are joint angles (radians) of a planar arm
// with unit total reach. Fitness rewards smooth configurations (low
// variance across joint angles); the descriptor is the end-effector
// position rescaled to [0, 1]^2. Many joint configurations reach the
// same point, which is what makes the task interesting for novelty
// search.
type PlanarArmScape struct{}

func (PlanarArmScape) Name() string {
	return "planar_arm"
}

func (PlanarArmScape) Descriptors() int {
	return 2
}

func (PlanarArmScape) Evaluate(_ context.Context, candidate model.Genotype) (float64, []float64, error) {
	angles := genotype.Flatten(candidate)
	if len(angles) == 0 {
		return 0, nil, errors.New("candidate has no joint angles")
	}

	fitness := -stat.Variance(angles, nil)
	if len(angles) == 1 {
		fitness = 0
	}

	segment := 1 / float64(len(angles))
	x, y := 0.0, 0.0
	heading := 0.0
	for _, angle := range angles {
		heading += angle
		x += segment * math.Cos(heading)
		y += segment * math.Sin(heading)
	}

	// Reach is at most 1, so positions land in [-1, 1]^2.
	descriptor := []float64{(x + 1) / 2, (y + 1) / 2}
	return fitness, descriptor, nil
}
