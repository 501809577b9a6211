// Package platform hosts the run orchestrator: a registry of scoring
// environments plus the generation loop that drives an ES emitter
// against one of them and persists the results.
package platform

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"proteus/internal/emitter"
	"proteus/internal/model"
	"proteus/internal/scape"
	"proteus/internal/storage"
)

type Config struct {
	Store        storage.Store
	PublicScapes []scape.Scape
}

type Polis struct {
	store storage.Store

	mu      sync.RWMutex
	scapes  map[string]scape.Scape
	started bool

	config Config
}

func NewPolis(cfg Config) *Polis {
	return &Polis{
		store:  cfg.Store,
		scapes: make(map[string]scape.Scape),
		config: cfg,
	}
}

func (p *Polis) Init(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("store is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := p.store.Init(ctx); err != nil {
		return err
	}

	for i, s := range p.config.PublicScapes {
		if s == nil {
			p.scapes = make(map[string]scape.Scape)
			return fmt.Errorf("public scape is nil at index %d", i)
		}
		name := s.Name()
		if name == "" {
			p.scapes = make(map[string]scape.Scape)
			return fmt.Errorf("public scape name is required at index %d", i)
		}
		if _, exists := p.scapes[name]; exists {
			p.scapes = make(map[string]scape.Scape)
			return fmt.Errorf("duplicate public scape: %s", name)
		}
		p.scapes[name] = s
	}

	p.started = true
	return nil
}

func (p *Polis) Reset(ctx context.Context) error {
	p.Stop()
	if resetter, ok := p.store.(storage.Resetter); ok {
		if err := resetter.Reset(ctx); err != nil {
			return err
		}
	}
	return p.Init(ctx)
}

func (p *Polis) RegisterScape(s scape.Scape) error {
	if s == nil {
		return fmt.Errorf("scape is nil")
	}

	name := s.Name()
	if name == "" {
		return fmt.Errorf("scape name is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return fmt.Errorf("polis is not initialized")
	}
	p.scapes[name] = s
	return nil
}

func (p *Polis) GetScape(name string) (scape.Scape, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.scapes[name]
	return s, ok
}

func (p *Polis) RegisteredScapes() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.scapes))
	for name := range p.scapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Polis) Started() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.started
}

func (p *Polis) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started = false
	p.scapes = make(map[string]scape.Scape)
}

type ESRunConfig struct {
	RunID       string
	ScapeName   string
	Generations int
	Seed        int64
	Emitter     emitter.Config
	Initial     model.Genotype
}

type ESRunResult struct {
	RunID               string
	FitnessByGeneration []float64
	FinalBestFitness    float64
	FinalOffspring      model.Genotype
	FinalState          emitter.State
}

// RunES drives one emitter against a registered scape for the
// configured number of generations, then persists the final emitter
// snapshot, the fitness trajectory, and the per-scape best fitness.
func (p *Polis) RunES(ctx context.Context, cfg ESRunConfig) (ESRunResult, error) {
	if cfg.ScapeName == "" {
		return ESRunResult{}, fmt.Errorf("scape name is required")
	}
	if cfg.Generations <= 0 {
		return ESRunResult{}, fmt.Errorf("generations must be > 0, got %d", cfg.Generations)
	}
	if len(cfg.Initial.Leaves) == 0 {
		return ESRunResult{}, fmt.Errorf("initial genotype is required")
	}

	p.mu.RLock()
	targetScape, ok := p.scapes[cfg.ScapeName]
	started := p.started
	p.mu.RUnlock()

	if !started {
		return ESRunResult{}, fmt.Errorf("polis is not initialized")
	}
	if !ok {
		return ESRunResult{}, fmt.Errorf("scape not registered: %s", cfg.ScapeName)
	}

	runID := cfg.RunID
	if runID == "" {
		runID = fmt.Sprintf("es:%s:%d", cfg.ScapeName, cfg.Seed)
	}

	em, err := emitter.New(cfg.Emitter, scape.ScoringFunc(targetScape), cfg.Generations, targetScape.Descriptors())
	if err != nil {
		return ESRunResult{}, err
	}

	state, err := em.Init([]model.Genotype{cfg.Initial}, cfg.Seed)
	if err != nil {
		return ESRunResult{}, err
	}

	history := make([]float64, 0, cfg.Generations)
	for generation := 0; generation < cfg.Generations; generation++ {
		if err := ctx.Err(); err != nil {
			return ESRunResult{}, err
		}

		offspring := em.Emit(nil, state)
		fitness, descriptor, err := targetScape.Evaluate(ctx, offspring)
		if err != nil {
			return ESRunResult{}, fmt.Errorf("generation %d: %w", generation, err)
		}

		state, err = em.StateUpdate(ctx, state, nil, []model.Genotype{offspring}, []float64{fitness}, [][]float64{descriptor}, nil)
		if err != nil {
			return ESRunResult{}, fmt.Errorf("generation %d: %w", generation, err)
		}
		history = append(history, fitness)
	}

	best := history[0]
	for _, fitness := range history[1:] {
		if fitness > best {
			best = fitness
		}
	}

	snapshot := SnapshotFromState(runID, cfg.ScapeName, state)
	if err := p.store.SaveEmitterSnapshot(ctx, snapshot); err != nil {
		return ESRunResult{}, err
	}
	if err := p.store.SaveFitnessHistory(ctx, runID, history); err != nil {
		return ESRunResult{}, err
	}
	if err := p.updateScapeSummary(ctx, cfg.ScapeName, best); err != nil {
		return ESRunResult{}, err
	}

	return ESRunResult{
		RunID:               runID,
		FitnessByGeneration: history,
		FinalBestFitness:    best,
		FinalOffspring:      em.Emit(nil, state),
		FinalState:          state,
	}, nil
}

func (p *Polis) updateScapeSummary(ctx context.Context, scapeName string, fitness float64) error {
	summary, ok, err := p.store.GetScapeSummary(ctx, scapeName)
	if err != nil {
		return err
	}
	if !ok {
		summary = model.ScapeSummary{
			VersionedRecord: model.VersionedRecord{
				SchemaVersion: storage.CurrentSchemaVersion,
				CodecVersion:  storage.CurrentCodecVersion,
			},
			Name:        scapeName,
			Description: fmt.Sprintf("best observed fitness for scape %s", scapeName),
		}
		summary.BestFitness = fitness
		return p.store.SaveScapeSummary(ctx, summary)
	}
	if fitness > summary.BestFitness {
		summary.BestFitness = fitness
	}
	return p.store.SaveScapeSummary(ctx, summary)
}
