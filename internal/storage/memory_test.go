package storage

import (
	"context"
	"testing"

	"proteus/internal/model"
)

func versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func TestMemoryStoreEmitterSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.EmitterSnapshot{
		VersionedRecord: versioned(),
		RunID:           "run-1",
		ScapeName:       "sphere",
		GenerationCount: 7,
		Seed:            42,
		ArchiveSize:     10,
		ArchiveDims:     2,
	}
	if err := store.SaveEmitterSnapshot(ctx, input); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	output, ok, err := store.GetEmitterSnapshot(ctx, "run-1")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted snapshot")
	}
	if output.GenerationCount != 7 || output.ScapeName != "sphere" {
		t.Fatalf("unexpected snapshot: %+v", output)
	}

	_, ok, err = store.GetEmitterSnapshot(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if ok {
		t.Fatal("expected missing snapshot")
	}
}

func TestMemoryStoreFitnessHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []float64{-2, -1.5, -1}
	if err := store.SaveFitnessHistory(ctx, "run-1", input); err != nil {
		t.Fatalf("save history: %v", err)
	}
	output, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted fitness history")
	}
	if len(output) != len(input) || output[2] != input[2] {
		t.Fatalf("unexpected history: %+v", output)
	}

	// The returned slice must be a copy.
	output[0] = 99
	again, _, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history again: %v", err)
	}
	if again[0] != -2 {
		t.Fatalf("history aliased internal storage: %+v", again)
	}
}

func TestMemoryStoreScapeSummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.ScapeSummary{
		VersionedRecord: versioned(),
		Name:            "sphere",
		Description:     "best observed fitness for scape sphere",
		BestFitness:     -0.25,
	}
	if err := store.SaveScapeSummary(ctx, input); err != nil {
		t.Fatalf("save summary: %v", err)
	}
	output, ok, err := store.GetScapeSummary(ctx, "sphere")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted summary")
	}
	if output.BestFitness != -0.25 {
		t.Fatalf("unexpected summary: %+v", output)
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.SaveFitnessHistory(ctx, "run-1", []float64{1}); err != nil {
		t.Fatalf("save history: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	_, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if ok {
		t.Fatal("expected history to be dropped by reset")
	}
}
