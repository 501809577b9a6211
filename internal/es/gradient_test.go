package es

import (
	"math"
	"testing"

	"proteus/internal/genotype"
	"proteus/internal/model"
)

func TestEstimateGradientWeightedSum(t *testing.T) {
	parent := genotype.FromVector("params", []float64{0, 0})
	noise := []model.Genotype{
		genotype.FromVector("params", []float64{1, 0}),
		genotype.FromVector("params", []float64{0, 2}),
	}
	weights := []float64{2, 0.5}

	gradient, err := EstimateGradient(parent, noise, weights, 4, 0.5, 0)
	if err != nil {
		t.Fatalf("estimate gradient: %v", err)
	}

	// -sum(w*noise)/(N*sigma) with N=4, sigma=0.5.
	flat := genotype.Flatten(gradient)
	if math.Abs(flat[0]-(-1.0)) > 1e-12 {
		t.Fatalf("gradient[0]: got=%v want=-1", flat[0])
	}
	if math.Abs(flat[1]-(-0.5)) > 1e-12 {
		t.Fatalf("gradient[1]: got=%v want=-0.5", flat[1])
	}
}

func TestEstimateGradientL2Term(t *testing.T) {
	parent := genotype.FromVector("params", []float64{3})
	noise := []model.Genotype{genotype.FromVector("params", []float64{1})}

	gradient, err := EstimateGradient(parent, noise, []float64{2}, 4, 0.5, 0.1)
	if err != nil {
		t.Fatalf("estimate gradient: %v", err)
	}

	// -1 from the noise term plus 0.1*3 weight decay.
	got := genotype.Flatten(gradient)[0]
	if math.Abs(got-(-0.7)) > 1e-12 {
		t.Fatalf("gradient with l2: got=%v want=-0.7", got)
	}
}

func TestEstimateGradientPointsDownhillForAscent(t *testing.T) {
	// With fitness rewarded in the +x direction, positive noise gets
	// positive weight and the gradient must be negative so that the
	// optimizer's negated step moves +x.
	parent := genotype.FromVector("params", []float64{0})
	noise := []model.Genotype{genotype.FromVector("params", []float64{1})}

	gradient, err := EstimateGradient(parent, noise, []float64{1}, 1, 0.1, 0)
	if err != nil {
		t.Fatalf("estimate gradient: %v", err)
	}
	if got := genotype.Flatten(gradient)[0]; got >= 0 {
		t.Fatalf("gradient sign: got=%v want<0", got)
	}
}

func TestEstimateGradientValidation(t *testing.T) {
	parent := genotype.FromVector("params", []float64{0})
	noise := []model.Genotype{genotype.FromVector("params", []float64{1})}

	if _, err := EstimateGradient(parent, noise, []float64{1, 2}, 2, 0.1, 0); err == nil {
		t.Fatal("expected error for mismatched weights")
	}
	if _, err := EstimateGradient(parent, noise, []float64{1}, 0, 0.1, 0); err == nil {
		t.Fatal("expected error for zero total sample number")
	}
	if _, err := EstimateGradient(parent, noise, []float64{1}, 2, 0, 0); err == nil {
		t.Fatal("expected error for zero sigma")
	}
}
