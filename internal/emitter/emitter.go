// Package emitter implements the vanilla ES / NS-ES offspring
// generator: one parent in, one gradient-estimated offspring out per
// generation, with a passive novelty archive for the NS scoring mode.
// The emitter never samples from the outer repertoire.
package emitter

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"proteus/internal/archive"
	"proteus/internal/es"
	"proteus/internal/genotype"
	"proteus/internal/model"
	"proteus/internal/optimizer"
)

var (
	ErrInvalidBatchSize  = errors.New("vanilla ES expects exactly one evaluated genotype per generation")
	ErrNoInitialGenotype = errors.New("initialisation requires at least one genotype")
)

// ScoringFunc evaluates a batch of candidates. It receives a seed for
// any stochasticity it needs and returns the seed for the next
// consumer; deterministic scorers pass it through unchanged.
// Fitnesses and descriptors must be in candidate order, one entry per
// candidate.
type ScoringFunc func(ctx context.Context, candidates []model.Genotype, seed int64) (fitnesses []float64, descriptors [][]float64, extra model.ExtraScores, nextSeed int64, err error)

// Repertoire is the outer container of elite solutions shared by all
// emitter strategies. This emitter accepts it to keep a uniform
// emitter interface but never reads or writes it.
type Repertoire any

// State is the single unit of state threaded through the generation
// loop. It is replaced wholesale by StateUpdate, never mutated.
type State struct {
	OptimizerState  optimizer.State        `json:"optimizer_state"`
	Offspring       model.Genotype         `json:"offspring"`
	GenerationCount int                    `json:"generation_count"`
	NoveltyArchive  archive.NoveltyArchive `json:"novelty_archive"`
	Seed            int64                  `json:"seed"`
}

// VanillaESEmitter estimates an ascent direction from many perturbed
// copies of the parent and applies it through a first-order optimizer
// to produce exactly one offspring per generation.
type VanillaESEmitter struct {
	config           Config
	scoring          ScoringFunc
	totalGenerations int
	numDescriptors   int
	opt              optimizer.Optimizer
}

// New builds the emitter. totalGenerations sizes the novelty archive
// and must cover the actual number of generations run, or descriptor
// history silently wraps; numDescriptors is the behavior-descriptor
// dimension.
func New(config Config, scoring ScoringFunc, totalGenerations, numDescriptors int) (*VanillaESEmitter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if scoring == nil {
		return nil, errors.New("scoring function is required")
	}
	if totalGenerations <= 0 {
		totalGenerations = 1
	}
	if numDescriptors <= 0 {
		numDescriptors = 2
	}

	var opt optimizer.Optimizer
	if config.AdamOptimizer {
		opt = optimizer.Adam{LearningRate: config.LearningRate}
	} else {
		opt = optimizer.SGD{LearningRate: config.LearningRate}
	}

	return &VanillaESEmitter{
		config:           config,
		scoring:          scoring,
		totalGenerations: totalGenerations,
		numDescriptors:   numDescriptors,
		opt:              opt,
	}, nil
}

// BatchSize is fixed: this emitter proposes one candidate per
// generation.
func (e *VanillaESEmitter) BatchSize() int {
	return 1
}

func (e *VanillaESEmitter) Config() Config {
	return e.config
}

// Init creates the initial emitter state. When given a batch, only the
// first genotype is kept.
func (e *VanillaESEmitter) Init(initial []model.Genotype, seed int64) (State, error) {
	if len(initial) == 0 {
		return State{}, ErrNoInitialGenotype
	}
	first := genotype.Clone(initial[0])

	noveltyArchive, err := archive.Init(e.totalGenerations, e.numDescriptors)
	if err != nil {
		return State{}, err
	}

	return State{
		OptimizerState:  e.opt.Init(first),
		Offspring:       first,
		GenerationCount: 0,
		NoveltyArchive:  noveltyArchive,
		Seed:            seed,
	}, nil
}

// Emit returns the offspring generated by the previous state update.
// It is a pure accessor: calling it twice on the same state yields
// identical genotypes, and the random stream is untouched.
func (e *VanillaESEmitter) Emit(_ Repertoire, state State) model.Genotype {
	return genotype.Clone(state.Offspring)
}

// StateUpdate consumes the evaluation of the previously emitted
// offspring, folds its descriptor into the novelty archive, and runs
// the ES pipeline to produce the next offspring. The evaluated batch
// must contain exactly one genotype.
func (e *VanillaESEmitter) StateUpdate(
	ctx context.Context,
	state State,
	_ Repertoire,
	genotypes []model.Genotype,
	fitnesses []float64,
	descriptors [][]float64,
	_ model.ExtraScores,
) (State, error) {
	if len(genotypes) != 1 {
		return State{}, fmt.Errorf("%w: batch size %d", ErrInvalidBatchSize, len(genotypes))
	}

	// The archive update precedes scoring, so NS novelty is computed
	// against the current generation's descriptors too.
	noveltyArchive := state.NoveltyArchive.Update(descriptors...)

	scoresFn := func(sampleFitnesses []float64, sampleDescriptors [][]float64) []float64 {
		if e.config.NSES {
			return noveltyArchive.Novelty(sampleDescriptors, e.config.NoveltyNearestNeighbors)
		}
		return sampleFitnesses
	}

	offspring, optimizerState, nextSeed, err := e.esStep(ctx, genotypes[0], state.OptimizerState, state.Seed, scoresFn)
	if err != nil {
		return State{}, err
	}

	return State{
		OptimizerState:  optimizerState,
		Offspring:       offspring,
		GenerationCount: state.GenerationCount + 1,
		NoveltyArchive:  noveltyArchive,
		Seed:            nextSeed,
	}, nil
}

// esStep is the main ES component: given a parent and a way to infer
// sample scores from fitnesses and descriptors, produce the
// approximated-gradient offspring.
func (e *VanillaESEmitter) esStep(
	ctx context.Context,
	parent model.Genotype,
	optimizerState optimizer.State,
	seed int64,
	scoresFn func(fitnesses []float64, descriptors [][]float64) []float64,
) (model.Genotype, optimizer.State, int64, error) {
	noiseSeed, seed := splitSeed(seed)

	noise, err := es.DrawNoise(parent, e.config.SampleNumber, e.config.SampleMirror, noiseSeed)
	if err != nil {
		return model.Genotype{}, optimizer.State{}, 0, err
	}
	samples, err := es.PerturbedSamples(parent, noise.SampleNoise, e.config.SampleSigma)
	if err != nil {
		return model.Genotype{}, optimizer.State{}, 0, err
	}

	fitnesses, descriptors, _, seed, err := e.scoring(ctx, samples, seed)
	if err != nil {
		return model.Genotype{}, optimizer.State{}, 0, fmt.Errorf("score samples: %w", err)
	}
	if len(fitnesses) != len(samples) {
		return model.Genotype{}, optimizer.State{}, 0, fmt.Errorf("scoring returned %d fitnesses for %d samples", len(fitnesses), len(samples))
	}
	if e.config.NSES && len(descriptors) != len(samples) {
		return model.Genotype{}, optimizer.State{}, 0, fmt.Errorf("scoring returned %d descriptors for %d samples", len(descriptors), len(samples))
	}

	scores := scoresFn(fitnesses, descriptors)

	var weights []float64
	if e.config.SampleRankNorm {
		weights = es.CenteredRanks(scores)
	} else {
		weights = append([]float64(nil), scores...)
	}
	if e.config.SampleMirror {
		weights, err = es.MirrorPairDifference(weights)
		if err != nil {
			return model.Genotype{}, optimizer.State{}, 0, err
		}
	}

	gradient, err := es.EstimateGradient(parent, noise.GradientNoise, weights, e.config.SampleNumber, e.config.SampleSigma, e.config.L2Coefficient)
	if err != nil {
		return model.Genotype{}, optimizer.State{}, 0, err
	}

	step, newOptimizerState, err := e.opt.Update(gradient, optimizerState)
	if err != nil {
		return model.Genotype{}, optimizer.State{}, 0, err
	}
	offspring, err := optimizer.Apply(parent, step)
	if err != nil {
		return model.Genotype{}, optimizer.State{}, 0, err
	}

	return offspring, newOptimizerState, seed, nil
}

// splitSeed derives a sub-stream seed and the evolved seed from one
// seed value. Every point that consumes randomness splits first, so a
// fixed initial seed reproduces runs exactly and no two consumers
// share a sub-stream.
func splitSeed(seed int64) (sub, next int64) {
	rng := rand.New(rand.NewSource(seed))
	return rng.Int63(), rng.Int63()
}
