package emitter

import (
	"fmt"

	"proteus/internal/es"
)

// Config fixes the ES/NS-ES behavior at emitter construction.
//
// NSES selects the scoring mode: false ranks samples by raw fitness,
// true ranks them by novelty against the descriptor archive.
type Config struct {
	NSES                    bool    `json:"nses"`
	SampleNumber            int     `json:"sample_number"`
	SampleSigma             float64 `json:"sample_sigma"`
	SampleMirror            bool    `json:"sample_mirror"`
	SampleRankNorm          bool    `json:"sample_rank_norm"`
	AdamOptimizer           bool    `json:"adam_optimizer"`
	LearningRate            float64 `json:"learning_rate"`
	L2Coefficient           float64 `json:"l2_coefficient"`
	NoveltyNearestNeighbors int     `json:"novelty_nearest_neighbors"`
}

// DefaultConfig is the stock configuration used by the CLI and the
// embedding API.
func DefaultConfig() Config {
	return Config{
		NSES:                    false,
		SampleNumber:            1000,
		SampleSigma:             0.02,
		SampleMirror:            true,
		SampleRankNorm:          true,
		AdamOptimizer:           true,
		LearningRate:            0.01,
		L2Coefficient:           0.02,
		NoveltyNearestNeighbors: 10,
	}
}

// Validate rejects structurally broken configurations. Numeric
// extremes (zero learning rate, zero l2) are deliberately accepted;
// they are the caller's responsibility.
func (c Config) Validate() error {
	if c.SampleNumber <= 0 {
		return fmt.Errorf("sample number must be > 0, got %d", c.SampleNumber)
	}
	if c.SampleMirror && c.SampleNumber%2 != 0 {
		return fmt.Errorf("%w: sample number %d", es.ErrOddMirroredSamples, c.SampleNumber)
	}
	if c.SampleSigma == 0 {
		return fmt.Errorf("sample sigma must be non-zero")
	}
	if c.NSES && c.NoveltyNearestNeighbors <= 0 {
		return fmt.Errorf("novelty nearest neighbors must be > 0, got %d", c.NoveltyNearestNeighbors)
	}
	return nil
}
