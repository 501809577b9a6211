package genotype

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"proteus/internal/model"
)

var ErrShapeMismatch = errors.New("genotype shapes do not match")

// Clone returns a deep copy so callers can keep value semantics.
func Clone(g model.Genotype) model.Genotype {
	out := model.Genotype{Leaves: make([]model.Leaf, len(g.Leaves))}
	for i, leaf := range g.Leaves {
		out.Leaves[i] = model.Leaf{
			Name:   leaf.Name,
			Values: append([]float64(nil), leaf.Values...),
		}
	}
	return out
}

// ZerosLike returns a genotype with the same leaf structure and all
// values set to zero.
func ZerosLike(g model.Genotype) model.Genotype {
	out := model.Genotype{Leaves: make([]model.Leaf, len(g.Leaves))}
	for i, leaf := range g.Leaves {
		out.Leaves[i] = model.Leaf{
			Name:   leaf.Name,
			Values: make([]float64, len(leaf.Values)),
		}
	}
	return out
}

// Dim returns the total number of parameters across all leaves.
func Dim(g model.Genotype) int {
	total := 0
	for _, leaf := range g.Leaves {
		total += len(leaf.Values)
	}
	return total
}

// Map applies fn to every leaf and collects the results into a new
// genotype with the same leaf names.
func Map(g model.Genotype, fn func(name string, values []float64) []float64) model.Genotype {
	out := model.Genotype{Leaves: make([]model.Leaf, len(g.Leaves))}
	for i, leaf := range g.Leaves {
		out.Leaves[i] = model.Leaf{Name: leaf.Name, Values: fn(leaf.Name, leaf.Values)}
	}
	return out
}

// Zip applies fn to corresponding leaves of a and b. The two genotypes
// must have identical leaf structure.
func Zip(a, b model.Genotype, fn func(av, bv []float64) []float64) (model.Genotype, error) {
	if err := checkSameShape(a, b); err != nil {
		return model.Genotype{}, err
	}
	out := model.Genotype{Leaves: make([]model.Leaf, len(a.Leaves))}
	for i, leaf := range a.Leaves {
		out.Leaves[i] = model.Leaf{Name: leaf.Name, Values: fn(leaf.Values, b.Leaves[i].Values)}
	}
	return out, nil
}

// AddScaled returns a + alpha*b, per leaf.
func AddScaled(a, b model.Genotype, alpha float64) (model.Genotype, error) {
	return Zip(a, b, func(av, bv []float64) []float64 {
		out := make([]float64, len(av))
		floats.AddScaledTo(out, av, alpha, bv)
		return out
	})
}

// Add returns a + b, per leaf.
func Add(a, b model.Genotype) (model.Genotype, error) {
	return AddScaled(a, b, 1)
}

// Scale returns alpha*g, per leaf.
func Scale(g model.Genotype, alpha float64) model.Genotype {
	return Map(g, func(_ string, values []float64) []float64 {
		out := append([]float64(nil), values...)
		floats.Scale(alpha, out)
		return out
	})
}

// Flatten concatenates all leaf values in leaf order.
func Flatten(g model.Genotype) []float64 {
	out := make([]float64, 0, Dim(g))
	for _, leaf := range g.Leaves {
		out = append(out, leaf.Values...)
	}
	return out
}

// FromVector wraps a flat vector as a single-leaf genotype.
func FromVector(name string, values []float64) model.Genotype {
	return model.Genotype{Leaves: []model.Leaf{{
		Name:   name,
		Values: append([]float64(nil), values...),
	}}}
}

func checkSameShape(a, b model.Genotype) error {
	if len(a.Leaves) != len(b.Leaves) {
		return fmt.Errorf("%w: leaf count %d vs %d", ErrShapeMismatch, len(a.Leaves), len(b.Leaves))
	}
	for i := range a.Leaves {
		if len(a.Leaves[i].Values) != len(b.Leaves[i].Values) {
			return fmt.Errorf("%w: leaf %q length %d vs %d",
				ErrShapeMismatch, a.Leaves[i].Name, len(a.Leaves[i].Values), len(b.Leaves[i].Values))
		}
	}
	return nil
}
