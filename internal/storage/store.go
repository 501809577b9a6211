package storage

import (
	"context"

	"proteus/internal/model"
)

// Store defines persistence operations for emitter runs. All records
// are plain values, so snapshot/restore is a straight field copy.
type Store interface {
	Init(ctx context.Context) error
	SaveEmitterSnapshot(ctx context.Context, snapshot model.EmitterSnapshot) error
	GetEmitterSnapshot(ctx context.Context, runID string) (model.EmitterSnapshot, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveScapeSummary(ctx context.Context, summary model.ScapeSummary) error
	GetScapeSummary(ctx context.Context, name string) (model.ScapeSummary, bool, error)
}

// Resetter is implemented by stores that can drop all persisted state.
type Resetter interface {
	Reset(ctx context.Context) error
}
