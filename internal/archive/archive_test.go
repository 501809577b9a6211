package archive

import (
	"math"
	"testing"
)

func TestInitRejectsBadDimensions(t *testing.T) {
	if _, err := Init(0, 2); err == nil {
		t.Fatal("expected error for zero size")
	}
	if _, err := Init(3, 0); err == nil {
		t.Fatal("expected error for zero descriptor dimension")
	}
}

func TestUpdateAdvancesCursorAndWraps(t *testing.T) {
	a, err := Init(3, 2)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	a = a.Update([]float64{1, 1}, []float64{2, 2}, []float64{3, 3}, []float64{4, 4})

	if a.Position != 1 {
		t.Fatalf("position after wraparound: got=%d want=1", a.Position)
	}
	if a.Filled != 3 {
		t.Fatalf("filled: got=%d want=3", a.Filled)
	}
	// Slot 0 was overwritten by the fourth row.
	if a.Descriptors[0][0] != 4 {
		t.Fatalf("slot 0 after wraparound: got=%v want=4", a.Descriptors[0][0])
	}
	if a.Descriptors[1][0] != 2 || a.Descriptors[2][0] != 3 {
		t.Fatalf("unexpected surviving slots: %+v", a.Descriptors)
	}
}

func TestUpdateDoesNotMutateReceiver(t *testing.T) {
	a, err := Init(2, 2)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	b := a.Update([]float64{5, 5})

	if a.Position != 0 || a.Filled != 0 {
		t.Fatalf("receiver mutated: %+v", a)
	}
	if a.Descriptors[0][0] != 0 {
		t.Fatalf("receiver descriptors mutated: %+v", a.Descriptors)
	}
	if b.Position != 1 || b.Filled != 1 || b.Descriptors[0][0] != 5 {
		t.Fatalf("unexpected updated archive: %+v", b)
	}
}

func TestNoveltyBootstrapScoresAgainstZeroVector(t *testing.T) {
	a, err := Init(5, 2)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	scores := a.Novelty([][]float64{{3, 4}}, 10)
	if len(scores) != 1 {
		t.Fatalf("score count: got=%d want=1", len(scores))
	}
	if math.Abs(scores[0]-5) > 1e-12 {
		t.Fatalf("bootstrap novelty: got=%v want=5", scores[0])
	}
}

func TestNoveltyMeanOfKNearest(t *testing.T) {
	a, err := Init(4, 1)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	a = a.Update([]float64{1}, []float64{2}, []float64{10})

	// Distances from 0 are 1, 2, 10; the two nearest average to 1.5.
	scores := a.Novelty([][]float64{{0}}, 2)
	if math.Abs(scores[0]-1.5) > 1e-12 {
		t.Fatalf("novelty: got=%v want=1.5", scores[0])
	}
}

func TestNoveltyIgnoresUnwrittenSlots(t *testing.T) {
	a, err := Init(100, 1)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	a = a.Update([]float64{7})

	// With k larger than the written count, only the single real entry
	// counts; the 99 zero slots must not drag the score down.
	scores := a.Novelty([][]float64{{7}}, 10)
	if scores[0] != 0 {
		t.Fatalf("novelty against single written slot: got=%v want=0", scores[0])
	}
}

func TestFlattenRowsRoundTrip(t *testing.T) {
	a, err := Init(3, 2)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	a = a.Update([]float64{1, 2}, []float64{3, 4})

	restored, err := FromFlatRows(a.FlattenRows(), a.Size, a.Dims, a.Position, a.Filled)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Position != a.Position || restored.Filled != a.Filled {
		t.Fatalf("restored cursor: got=%+v want=%+v", restored, a)
	}
	for i := range a.Descriptors {
		for j := range a.Descriptors[i] {
			if restored.Descriptors[i][j] != a.Descriptors[i][j] {
				t.Fatalf("restored slot %d: got=%v want=%v", i, restored.Descriptors[i], a.Descriptors[i])
			}
		}
	}
}

func TestFromFlatRowsRejectsBadPayload(t *testing.T) {
	if _, err := FromFlatRows([]float64{1, 2, 3}, 2, 2, 0, 0); err == nil {
		t.Fatal("expected error for payload length mismatch")
	}
	if _, err := FromFlatRows(make([]float64, 4), 2, 2, 2, 0); err == nil {
		t.Fatal("expected error for out-of-range position")
	}
	if _, err := FromFlatRows(make([]float64, 4), 2, 2, 0, 3); err == nil {
		t.Fatal("expected error for out-of-range filled count")
	}
}
