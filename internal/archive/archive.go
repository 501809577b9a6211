// Package archive implements the passive novelty archive used by the
// NS-ES scoring mode: a fixed-capacity circular buffer of behavior
// descriptors with k-nearest-neighbor novelty scoring.
package archive

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NoveltyArchive is an immutable value: Update returns a new archive
// and never mutates the receiver.
//
// Position is the write cursor (wraps modulo Size). Filled counts how
// many slots hold real descriptors, saturating at Size; slots at
// index >= Filled have never been written and are excluded from
// novelty computation.
type NoveltyArchive struct {
	Descriptors [][]float64 `json:"descriptors"`
	Size        int         `json:"size"`
	Dims        int         `json:"dims"`
	Position    int         `json:"position"`
	Filled      int         `json:"filled"`
}

// Init returns an archive of all-zero descriptors with the cursor at
// slot 0.
func Init(size, numDescriptors int) (NoveltyArchive, error) {
	if size <= 0 {
		return NoveltyArchive{}, fmt.Errorf("archive size must be > 0, got %d", size)
	}
	if numDescriptors <= 0 {
		return NoveltyArchive{}, fmt.Errorf("descriptor dimension must be > 0, got %d", numDescriptors)
	}
	rows := make([][]float64, size)
	for i := range rows {
		rows[i] = make([]float64, numDescriptors)
	}
	return NoveltyArchive{Descriptors: rows, Size: size, Dims: numDescriptors}, nil
}

// Update writes the given descriptor rows at the cursor, advancing it
// one slot per row modulo Size. Wraparound silently overwrites the
// oldest entry at that slot.
func (a NoveltyArchive) Update(rows ...[]float64) NoveltyArchive {
	out := a.clone()
	for _, row := range rows {
		copy(out.Descriptors[out.Position], row)
		out.Position = (out.Position + 1) % out.Size
		if out.Filled < out.Size {
			out.Filled++
		}
	}
	return out
}

// Novelty computes, for each query descriptor, the mean Euclidean
// distance to its k nearest archive entries. Unwritten slots never
// contribute; if fewer than k written slots exist the mean is taken
// over however many remain.
//
// A freshly initialized archive has no written slots. The query is
// then scored against slot 0 alone, i.e. against the zero vector, so
// early-generation novelty degrades to plain descriptor magnitude.
// Callers must tolerate this bootstrap behavior.
func (a NoveltyArchive) Novelty(descriptors [][]float64, k int) []float64 {
	valid := a.Filled
	if valid == 0 {
		valid = 1
	}
	if k > valid {
		k = valid
	}
	if k < 1 {
		k = 1
	}

	out := make([]float64, len(descriptors))
	distances := make([]float64, valid)
	for i, query := range descriptors {
		for j := 0; j < valid; j++ {
			distances[j] = floats.Distance(query, a.Descriptors[j], 2)
		}
		sort.Float64s(distances)
		out[i] = stat.Mean(distances[:k], nil)
	}
	return out
}

func (a NoveltyArchive) clone() NoveltyArchive {
	rows := make([][]float64, len(a.Descriptors))
	for i, row := range a.Descriptors {
		rows[i] = append([]float64(nil), row...)
	}
	out := a
	out.Descriptors = rows
	return out
}

// FlattenRows returns the archive content as a flat row-major vector,
// for persistence.
func (a NoveltyArchive) FlattenRows() []float64 {
	out := make([]float64, 0, a.Size*a.Dims)
	for _, row := range a.Descriptors {
		out = append(out, row...)
	}
	return out
}

// FromFlatRows rebuilds an archive from its persisted form.
func FromFlatRows(rows []float64, size, dims, position, filled int) (NoveltyArchive, error) {
	a, err := Init(size, dims)
	if err != nil {
		return NoveltyArchive{}, err
	}
	if len(rows) != size*dims {
		return NoveltyArchive{}, fmt.Errorf("archive payload length %d does not match %dx%d", len(rows), size, dims)
	}
	if position < 0 || position >= size {
		return NoveltyArchive{}, fmt.Errorf("archive position out of range: %d", position)
	}
	if filled < 0 || filled > size {
		return NoveltyArchive{}, fmt.Errorf("archive filled count out of range: %d", filled)
	}
	for i := 0; i < size; i++ {
		copy(a.Descriptors[i], rows[i*dims:(i+1)*dims])
	}
	a.Position = position
	a.Filled = filled
	return a, nil
}
