package optimizer

import (
	"math"
	"testing"

	"proteus/internal/genotype"
)

func TestSGDStepIsNegatedScaledGradient(t *testing.T) {
	gradient := genotype.FromVector("params", []float64{2, -4})
	opt := SGD{LearningRate: 0.5}

	step, state, err := opt.Update(gradient, opt.Init(gradient))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	flat := genotype.Flatten(step)
	if flat[0] != -1 || flat[1] != 2 {
		t.Fatalf("sgd step: got=%v want=[-1 2]", flat)
	}
	if state.Step != 1 {
		t.Fatalf("step counter: got=%d want=1", state.Step)
	}
}

func TestAdamFirstStepMagnitude(t *testing.T) {
	gradient := genotype.FromVector("params", []float64{3, -3})
	opt := Adam{LearningRate: 0.1}

	step, state, err := opt.Update(gradient, opt.Init(gradient))
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	// After bias correction the first step is -lr*sign(g) up to epsilon.
	flat := genotype.Flatten(step)
	if math.Abs(flat[0]-(-0.1)) > 1e-6 {
		t.Fatalf("adam step[0]: got=%v want~-0.1", flat[0])
	}
	if math.Abs(flat[1]-0.1) > 1e-6 {
		t.Fatalf("adam step[1]: got=%v want~0.1", flat[1])
	}
	if state.Step != 1 {
		t.Fatalf("step counter: got=%d want=1", state.Step)
	}
}

func TestAdamStateIsNotMutated(t *testing.T) {
	gradient := genotype.FromVector("params", []float64{1})
	opt := Adam{LearningRate: 0.01}
	initial := opt.Init(gradient)

	if _, _, err := opt.Update(gradient, initial); err != nil {
		t.Fatalf("update: %v", err)
	}

	if initial.Step != 0 {
		t.Fatalf("initial step mutated: %d", initial.Step)
	}
	if genotype.Flatten(initial.FirstMoment)[0] != 0 {
		t.Fatalf("initial first moment mutated: %+v", initial.FirstMoment)
	}
}

func TestAdamMomentsAccumulate(t *testing.T) {
	gradient := genotype.FromVector("params", []float64{1})
	opt := Adam{LearningRate: 0.01}

	_, state, err := opt.Update(gradient, opt.Init(gradient))
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	_, state, err = opt.Update(gradient, state)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	if state.Step != 2 {
		t.Fatalf("step counter: got=%d want=2", state.Step)
	}
	first := genotype.Flatten(state.FirstMoment)[0]
	want := 0.9*0.1 + 0.1 // beta1*m1 + (1-beta1)*g
	if math.Abs(first-want) > 1e-12 {
		t.Fatalf("first moment: got=%v want=%v", first, want)
	}
}

func TestApplyAddsStep(t *testing.T) {
	params := genotype.FromVector("params", []float64{1, 2})
	step := genotype.FromVector("params", []float64{0.5, -0.5})

	next, err := Apply(params, step)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	flat := genotype.Flatten(next)
	if flat[0] != 1.5 || flat[1] != 1.5 {
		t.Fatalf("applied params: got=%v want=[1.5 1.5]", flat)
	}
}

func TestOptimizerNames(t *testing.T) {
	if got := (SGD{}).Name(); got != "sgd" {
		t.Fatalf("sgd name: got=%s", got)
	}
	if got := (Adam{}).Name(); got != "adam" {
		t.Fatalf("adam name: got=%s", got)
	}
}
