package main

import (
	"encoding/json"
	"fmt"
	"os"

	protapi "proteus/pkg/proteus"
)

// runFileConfig is the JSON shape accepted by `run -config`. Fields
// left out of the file keep the flag values.
type runFileConfig struct {
	Scape           *string  `json:"scape"`
	Dimensions      *int     `json:"dimensions"`
	Generations     *int     `json:"generations"`
	Seed            *int64   `json:"seed"`
	InitialValue    *float64 `json:"initial_value"`
	Novelty         *bool    `json:"novelty"`
	SampleNumber    *int     `json:"sample_number"`
	SampleSigma     *float64 `json:"sample_sigma"`
	DisableMirror   *bool    `json:"disable_mirror"`
	DisableRankNorm *bool    `json:"disable_rank_norm"`
	SGDOptimizer    *bool    `json:"sgd_optimizer"`
	LearningRate    *float64 `json:"learning_rate"`
	L2Coefficient   *float64 `json:"l2_coefficient"`
	NoveltyK        *int     `json:"novelty_k"`
}

func applyRunConfigFile(path string, req *protapi.RunRequest) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	var cfg runFileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Scape != nil {
		req.Scape = *cfg.Scape
	}
	if cfg.Dimensions != nil {
		req.Dimensions = *cfg.Dimensions
	}
	if cfg.Generations != nil {
		req.Generations = *cfg.Generations
	}
	if cfg.Seed != nil {
		req.Seed = *cfg.Seed
	}
	if cfg.InitialValue != nil {
		req.InitialValue = *cfg.InitialValue
	}
	if cfg.Novelty != nil {
		req.Novelty = *cfg.Novelty
	}
	if cfg.SampleNumber != nil {
		req.SampleNumber = *cfg.SampleNumber
	}
	if cfg.SampleSigma != nil {
		req.SampleSigma = *cfg.SampleSigma
	}
	if cfg.DisableMirror != nil {
		req.DisableMirror = *cfg.DisableMirror
	}
	if cfg.DisableRankNorm != nil {
		req.DisableRankNorm = *cfg.DisableRankNorm
	}
	if cfg.SGDOptimizer != nil {
		req.SGDOptimizer = *cfg.SGDOptimizer
	}
	if cfg.LearningRate != nil {
		req.LearningRate = *cfg.LearningRate
	}
	if cfg.L2Coefficient != nil {
		req.L2Coefficient = *cfg.L2Coefficient
	}
	if cfg.NoveltyK != nil {
		req.NoveltyK = *cfg.NoveltyK
	}
	return nil
}
