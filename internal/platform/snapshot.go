package platform

import (
	"proteus/internal/archive"
	"proteus/internal/emitter"
	"proteus/internal/genotype"
	"proteus/internal/model"
	"proteus/internal/optimizer"
	"proteus/internal/storage"
)

// SnapshotFromState converts an in-memory emitter state into its
// persistable record form. The novelty archive is flattened row-major.
func SnapshotFromState(runID, scapeName string, state emitter.State) model.EmitterSnapshot {
	return model.EmitterSnapshot{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:           runID,
		ScapeName:       scapeName,
		GenerationCount: state.GenerationCount,
		Seed:            state.Seed,
		Offspring:       genotype.Clone(state.Offspring),
		OptimizerStep:   state.OptimizerState.Step,
		FirstMoment:     genotype.Clone(state.OptimizerState.FirstMoment),
		SecondMoment:    genotype.Clone(state.OptimizerState.SecondMoment),
		ArchiveRows:     state.NoveltyArchive.FlattenRows(),
		ArchiveSize:     state.NoveltyArchive.Size,
		ArchiveDims:     state.NoveltyArchive.Dims,
		ArchivePosition: state.NoveltyArchive.Position,
		ArchiveFilled:   state.NoveltyArchive.Filled,
	}
}

// StateFromSnapshot is the inverse of SnapshotFromState.
func StateFromSnapshot(snapshot model.EmitterSnapshot) (emitter.State, error) {
	noveltyArchive, err := archive.FromFlatRows(
		snapshot.ArchiveRows,
		snapshot.ArchiveSize,
		snapshot.ArchiveDims,
		snapshot.ArchivePosition,
		snapshot.ArchiveFilled,
	)
	if err != nil {
		return emitter.State{}, err
	}

	return emitter.State{
		OptimizerState: optimizer.State{
			Step:         snapshot.OptimizerStep,
			FirstMoment:  genotype.Clone(snapshot.FirstMoment),
			SecondMoment: genotype.Clone(snapshot.SecondMoment),
		},
		Offspring:       genotype.Clone(snapshot.Offspring),
		GenerationCount: snapshot.GenerationCount,
		NoveltyArchive:  noveltyArchive,
		Seed:            snapshot.Seed,
	}, nil
}
