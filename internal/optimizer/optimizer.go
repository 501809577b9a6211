// Package optimizer wraps the first-order update rules applied to the
// ES gradient estimate. Updates produce a step (already scaled by the
// negative learning rate) that Apply adds to the parameters, so a
// gradient that encodes an ascent direction as its negation moves the
// parameters uphill.
package optimizer

import (
	"fmt"
	"math"

	"proteus/internal/genotype"
	"proteus/internal/model"
)

const (
	defaultBeta1   = 0.9
	defaultBeta2   = 0.999
	defaultEpsilon = 1e-8
)

// State is a plain value replaced wholesale on every update. SGD only
// advances Step; Adam additionally tracks the two moment estimates.
type State struct {
	Step         int            `json:"step"`
	FirstMoment  model.Genotype `json:"first_moment"`
	SecondMoment model.Genotype `json:"second_moment"`
}

type Optimizer interface {
	Name() string
	Init(params model.Genotype) State
	Update(gradient model.Genotype, state State) (model.Genotype, State, error)
}

// Apply adds a step to the parameters, per leaf.
func Apply(params, step model.Genotype) (model.Genotype, error) {
	return genotype.Add(params, step)
}

// SGD is plain gradient descent: step = -lr * gradient.
type SGD struct {
	LearningRate float64
}

func (SGD) Name() string {
	return "sgd"
}

func (SGD) Init(_ model.Genotype) State {
	return State{}
}

func (o SGD) Update(gradient model.Genotype, state State) (model.Genotype, State, error) {
	step := genotype.Scale(gradient, -o.LearningRate)
	return step, State{Step: state.Step + 1}, nil
}

// Adam keeps bias-corrected first and second moment estimates and
// steps by -lr * mhat / (sqrt(vhat) + eps).
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
}

func (Adam) Name() string {
	return "adam"
}

func (Adam) Init(params model.Genotype) State {
	return State{
		FirstMoment:  genotype.ZerosLike(params),
		SecondMoment: genotype.ZerosLike(params),
	}
}

func (o Adam) Update(gradient model.Genotype, state State) (model.Genotype, State, error) {
	beta1 := o.Beta1
	if beta1 == 0 {
		beta1 = defaultBeta1
	}
	beta2 := o.Beta2
	if beta2 == 0 {
		beta2 = defaultBeta2
	}
	epsilon := o.Epsilon
	if epsilon == 0 {
		epsilon = defaultEpsilon
	}

	step := state.Step + 1

	firstMoment, err := genotype.Zip(state.FirstMoment, gradient, func(mv, gv []float64) []float64 {
		out := make([]float64, len(mv))
		for i := range out {
			out[i] = beta1*mv[i] + (1-beta1)*gv[i]
		}
		return out
	})
	if err != nil {
		return model.Genotype{}, State{}, fmt.Errorf("adam first moment: %w", err)
	}
	secondMoment, err := genotype.Zip(state.SecondMoment, gradient, func(vv, gv []float64) []float64 {
		out := make([]float64, len(vv))
		for i := range out {
			out[i] = beta2*vv[i] + (1-beta2)*gv[i]*gv[i]
		}
		return out
	})
	if err != nil {
		return model.Genotype{}, State{}, fmt.Errorf("adam second moment: %w", err)
	}

	correction1 := 1 - math.Pow(beta1, float64(step))
	correction2 := 1 - math.Pow(beta2, float64(step))
	delta, err := genotype.Zip(firstMoment, secondMoment, func(mv, vv []float64) []float64 {
		out := make([]float64, len(mv))
		for i := range out {
			mhat := mv[i] / correction1
			vhat := vv[i] / correction2
			out[i] = -o.LearningRate * mhat / (math.Sqrt(vhat) + epsilon)
		}
		return out
	})
	if err != nil {
		return model.Genotype{}, State{}, fmt.Errorf("adam step: %w", err)
	}

	return delta, State{Step: step, FirstMoment: firstMoment, SecondMoment: secondMoment}, nil
}
