// Package proteus is the embedding API: a thin client over the
// platform orchestrator, the store, and the benchmarks directory.
package proteus

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"proteus/internal/emitter"
	"proteus/internal/genotype"
	"proteus/internal/model"
	"proteus/internal/platform"
	"proteus/internal/scape"
	"proteus/internal/stats"
	"proteus/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultDBPath        = "proteus.db"
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
}

type Client struct {
	store storage.Store
	polis *platform.Polis

	benchmarksDir string
}

type RunRequest struct {
	Scape           string
	Dimensions      int
	Generations     int
	Seed            int64
	InitialValue    float64
	Novelty         bool
	SampleNumber    int
	SampleSigma     float64
	DisableMirror   bool
	DisableRankNorm bool
	SGDOptimizer    bool
	LearningRate    float64
	L2Coefficient   float64
	NoveltyK        int
}

type RunSummary struct {
	RunID               string
	ArtifactsDir        string
	FitnessByGeneration []float64
	FinalBestFitness    float64
	FinalOffspring      model.Genotype
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Scape            string
	Seed             int64
	Generations      int
	NoveltyDriven    bool
	FinalBestFitness float64
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type SnapshotRequest struct {
	RunID  string
	Latest bool
}

type ScapeSummaryItem struct {
	Name        string
	Description string
	BestFitness float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		benchmarksDir: benchmarksDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensurePolis(ctx)
	return err
}

func (c *Client) Start(ctx context.Context) error {
	p, err := c.ensurePolis(ctx)
	if err != nil {
		return err
	}
	return registerDefaultScapes(p)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Scape == "" {
		req.Scape = "sphere"
	}
	if req.Dimensions <= 0 {
		req.Dimensions = 10
	}
	if req.Generations <= 0 {
		req.Generations = 100
	}
	if req.InitialValue == 0 {
		req.InitialValue = 1.0
	}

	cfg := emitter.DefaultConfig()
	cfg.NSES = req.Novelty
	if req.SampleNumber > 0 {
		cfg.SampleNumber = req.SampleNumber
	}
	if req.SampleSigma != 0 {
		cfg.SampleSigma = req.SampleSigma
	}
	cfg.SampleMirror = !req.DisableMirror
	cfg.SampleRankNorm = !req.DisableRankNorm
	cfg.AdamOptimizer = !req.SGDOptimizer
	if req.LearningRate != 0 {
		cfg.LearningRate = req.LearningRate
	}
	if req.L2Coefficient != 0 {
		cfg.L2Coefficient = req.L2Coefficient
	}
	if req.NoveltyK > 0 {
		cfg.NoveltyNearestNeighbors = req.NoveltyK
	}

	p, err := c.ensurePolis(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	if err := registerDefaultScapes(p); err != nil {
		return RunSummary{}, err
	}

	values := make([]float64, req.Dimensions)
	for i := range values {
		values[i] = req.InitialValue
	}
	initial := genotype.FromVector("params", values)

	now := time.Now().UTC()
	runID := fmt.Sprintf("%s-%d-%d", req.Scape, req.Seed, now.Unix())

	result, err := p.RunES(ctx, platform.ESRunConfig{
		RunID:       runID,
		ScapeName:   req.Scape,
		Generations: req.Generations,
		Seed:        req.Seed,
		Emitter:     cfg,
		Initial:     initial,
	})
	if err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:       runID,
			Scape:       req.Scape,
			Generations: req.Generations,
			Seed:        req.Seed,
			Emitter:     cfg,
			Initial:     initial,
		},
		FitnessByGeneration: result.FitnessByGeneration,
		FinalBestFitness:    result.FinalBestFitness,
		FinalOffspring:      result.FinalOffspring,
		Summary:             stats.Summarize(result.FitnessByGeneration),
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:            runID,
		Scape:            req.Scape,
		Generations:      req.Generations,
		Seed:             req.Seed,
		NoveltyDriven:    cfg.NSES,
		FinalBestFitness: result.FinalBestFitness,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:               runID,
		ArtifactsDir:        filepath.Clean(runDir),
		FitnessByGeneration: append([]float64(nil), result.FitnessByGeneration...),
		FinalBestFitness:    result.FinalBestFitness,
		FinalOffspring:      result.FinalOffspring,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:            e.RunID,
			CreatedAtUTC:     e.CreatedAtUTC,
			Scape:            e.Scape,
			Seed:             e.Seed,
			Generations:      e.Generations,
			NoveltyDriven:    e.NoveltyDriven,
			FinalBestFitness: e.FinalBestFitness,
		})
	}
	return out, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]float64, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	if _, err := c.ensurePolis(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]float64(nil), history...), nil
}

func (c *Client) Snapshot(ctx context.Context, req SnapshotRequest) (model.EmitterSnapshot, error) {
	if req.RunID != "" && req.Latest {
		return model.EmitterSnapshot{}, errors.New("use either run id or latest")
	}

	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return model.EmitterSnapshot{}, err
	}

	if _, err := c.ensurePolis(ctx); err != nil {
		return model.EmitterSnapshot{}, err
	}
	snapshot, ok, err := c.store.GetEmitterSnapshot(ctx, runID)
	if err != nil {
		return model.EmitterSnapshot{}, err
	}
	if !ok {
		return model.EmitterSnapshot{}, fmt.Errorf("snapshot not found for run id: %s", runID)
	}
	return snapshot, nil
}

func (c *Client) ScapeSummary(ctx context.Context, scapeName string) (ScapeSummaryItem, error) {
	if scapeName == "" {
		return ScapeSummaryItem{}, errors.New("scape name is required")
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return ScapeSummaryItem{}, err
	}
	summary, ok, err := c.store.GetScapeSummary(ctx, scapeName)
	if err != nil {
		return ScapeSummaryItem{}, err
	}
	if !ok {
		return ScapeSummaryItem{}, fmt.Errorf("scape summary not found: %s", scapeName)
	}
	return ScapeSummaryItem{
		Name:        summary.Name,
		Description: summary.Description,
		BestFitness: summary.BestFitness,
	}, nil
}

func (c *Client) RegisteredScapes(ctx context.Context) ([]string, error) {
	p, err := c.ensurePolis(ctx)
	if err != nil {
		return nil, err
	}
	if err := registerDefaultScapes(p); err != nil {
		return nil, err
	}
	return p.RegisteredScapes(), nil
}

func (c *Client) resolveRunID(runID string, latest bool) (string, error) {
	if latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "", errors.New("no runs available")
		}
		return entries[0].RunID, nil
	}
	if runID == "" {
		return "", errors.New("run id or latest is required")
	}
	return runID, nil
}

func (c *Client) ensurePolis(ctx context.Context) (*platform.Polis, error) {
	if c.polis != nil {
		return c.polis, nil
	}
	p := platform.NewPolis(platform.Config{Store: c.store})
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	c.polis = p
	return c.polis, nil
}

func registerDefaultScapes(p *platform.Polis) error {
	if err := p.RegisterScape(scape.SphereScape{}); err != nil {
		return err
	}
	if err := p.RegisterScape(scape.RastriginScape{}); err != nil {
		return err
	}
	if err := p.RegisterScape(scape.PlanarArmScape{}); err != nil {
		return err
	}
	return nil
}
