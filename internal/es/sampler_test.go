package es

import (
	"errors"
	"testing"

	"proteus/internal/genotype"
)

func TestDrawNoiseMirroredPairsAreExactNegations(t *testing.T) {
	parent := genotype.FromVector("params", make([]float64, 5))

	batch, err := DrawNoise(parent, 6, true, 42)
	if err != nil {
		t.Fatalf("draw noise: %v", err)
	}
	if len(batch.SampleNoise) != 6 {
		t.Fatalf("sample noise rows: got=%d want=6", len(batch.SampleNoise))
	}
	if len(batch.GradientNoise) != 3 {
		t.Fatalf("gradient noise rows: got=%d want=3", len(batch.GradientNoise))
	}

	for i := 0; i < 3; i++ {
		pos := genotype.Flatten(batch.SampleNoise[2*i])
		neg := genotype.Flatten(batch.SampleNoise[2*i+1])
		for j := range pos {
			if pos[j] != -neg[j] {
				t.Fatalf("pair %d index %d: %v is not the negation of %v", i, j, neg[j], pos[j])
			}
		}
		kept := genotype.Flatten(batch.GradientNoise[i])
		for j := range pos {
			if kept[j] != pos[j] {
				t.Fatalf("gradient noise row %d differs from positive half", i)
			}
		}
	}
}

func TestDrawNoiseRejectsOddMirroredCount(t *testing.T) {
	parent := genotype.FromVector("params", make([]float64, 2))
	_, err := DrawNoise(parent, 5, true, 1)
	if !errors.Is(err, ErrOddMirroredSamples) {
		t.Fatalf("expected odd-sample error, got %v", err)
	}
}

func TestDrawNoiseDeterministicPerSeed(t *testing.T) {
	parent := genotype.FromVector("params", make([]float64, 4))

	first, err := DrawNoise(parent, 4, false, 7)
	if err != nil {
		t.Fatalf("draw noise: %v", err)
	}
	second, err := DrawNoise(parent, 4, false, 7)
	if err != nil {
		t.Fatalf("draw noise: %v", err)
	}

	for i := range first.SampleNoise {
		a := genotype.Flatten(first.SampleNoise[i])
		b := genotype.Flatten(second.SampleNoise[i])
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("row %d differs across identical seeds", i)
			}
		}
	}

	other, err := DrawNoise(parent, 4, false, 8)
	if err != nil {
		t.Fatalf("draw noise: %v", err)
	}
	same := true
	for i := range first.SampleNoise {
		a := genotype.Flatten(first.SampleNoise[i])
		b := genotype.Flatten(other.SampleNoise[i])
		for j := range a {
			if a[j] != b[j] {
				same = false
			}
		}
	}
	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestDrawNoiseUnmirroredAliasesRows(t *testing.T) {
	parent := genotype.FromVector("params", make([]float64, 3))
	batch, err := DrawNoise(parent, 4, false, 3)
	if err != nil {
		t.Fatalf("draw noise: %v", err)
	}
	if len(batch.GradientNoise) != len(batch.SampleNoise) {
		t.Fatalf("unmirrored batch split rows: sample=%d gradient=%d", len(batch.SampleNoise), len(batch.GradientNoise))
	}
}

func TestPerturbedSamplesExcludeParent(t *testing.T) {
	parent := genotype.FromVector("params", []float64{1, 1})
	batch, err := DrawNoise(parent, 4, true, 11)
	if err != nil {
		t.Fatalf("draw noise: %v", err)
	}

	samples, err := PerturbedSamples(parent, batch.SampleNoise, 0.1)
	if err != nil {
		t.Fatalf("perturb: %v", err)
	}
	if len(samples) != 4 {
		t.Fatalf("sample count: got=%d want=4", len(samples))
	}
	for i, sample := range samples {
		flat := genotype.Flatten(sample)
		identical := true
		for j, v := range flat {
			if v != parent.Leaves[0].Values[j] {
				identical = false
			}
		}
		if identical {
			t.Fatalf("sample %d equals the parent", i)
		}
	}
}
