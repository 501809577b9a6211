package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Genotype is one candidate solution: an ordered collection of named
// numeric arrays ("leaves"). All leaves are treated uniformly by
// elementwise operations.
type Genotype struct {
	Leaves []Leaf `json:"leaves"`
}

type Leaf struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ExtraScores carries auxiliary outputs of an evaluation. The emitter
// passes it through unmodified.
type ExtraScores map[string]any

// EmitterSnapshot is the persistable form of an emitter state. All
// fields are plain values, so snapshot/restore is a straight copy.
type EmitterSnapshot struct {
	VersionedRecord
	RunID           string    `json:"run_id"`
	ScapeName       string    `json:"scape_name"`
	GenerationCount int       `json:"generation_count"`
	Seed            int64     `json:"seed"`
	Offspring       Genotype  `json:"offspring"`
	OptimizerStep   int       `json:"optimizer_step"`
	FirstMoment     Genotype  `json:"first_moment"`
	SecondMoment    Genotype  `json:"second_moment"`
	ArchiveRows     []float64 `json:"archive_rows"`
	ArchiveSize     int       `json:"archive_size"`
	ArchiveDims     int       `json:"archive_dims"`
	ArchivePosition int       `json:"archive_position"`
	ArchiveFilled   int       `json:"archive_filled"`
}

// ScapeSummary tracks the best observed fitness per scoring environment.
type ScapeSummary struct {
	VersionedRecord
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BestFitness float64 `json:"best_fitness"`
}
