package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"proteus/internal/platform"
	"proteus/internal/storage"
	protapi "proteus/pkg/proteus"
)

const benchmarksDir = "benchmarks"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "start":
		return runStart(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "snapshot":
		return runSnapshot(ctx, args[1:])
	case "scapes":
		return runScapes(ctx, args[1:])
	case "scape-summary":
		return runScapeSummary(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "proteus.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	polis := platform.NewPolis(platform.Config{Store: store})
	if err := polis.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "proteus.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	polis := platform.NewPolis(platform.Config{Store: store})
	if err := polis.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runStart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "proteus.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := protapi.New(protapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Start(ctx); err != nil {
		return err
	}
	scapes, err := client.RegisteredScapes(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("started store=%s scapes=%v\n", *storeKind, scapes)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	scapeName := fs.String("scape", "sphere", "scape name")
	dimensions := fs.Int("dims", 10, "parameter dimension of the candidate vector")
	generations := fs.Int("gens", 100, "generation count")
	seed := fs.Int64("seed", 1, "rng seed")
	initialValue := fs.Float64("initial", 1.0, "initial value for every parameter")
	novelty := fs.Bool("novelty", false, "score samples by archive novelty instead of fitness")
	sampleNumber := fs.Int("samples", 1000, "perturbed samples per generation")
	sampleSigma := fs.Float64("sigma", 0.02, "perturbation standard deviation")
	noMirror := fs.Bool("no-mirror", false, "disable antithetic sampling")
	noRankNorm := fs.Bool("no-rank-norm", false, "disable centered-rank normalization")
	sgd := fs.Bool("sgd", false, "use plain SGD instead of Adam")
	learningRate := fs.Float64("lr", 0.01, "optimizer learning rate")
	l2 := fs.Float64("l2", 0.02, "l2 coefficient of the gradient estimate")
	noveltyK := fs.Int("novelty-k", 10, "nearest neighbors for novelty scoring")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "proteus.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit run summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := protapi.New(protapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	req := protapi.RunRequest{
		Scape:           *scapeName,
		Dimensions:      *dimensions,
		Generations:     *generations,
		Seed:            *seed,
		InitialValue:    *initialValue,
		Novelty:         *novelty,
		SampleNumber:    *sampleNumber,
		SampleSigma:     *sampleSigma,
		DisableMirror:   *noMirror,
		DisableRankNorm: *noRankNorm,
		SGDOptimizer:    *sgd,
		LearningRate:    *learningRate,
		L2Coefficient:   *l2,
		NoveltyK:        *noveltyK,
	}
	if *configPath != "" {
		if err := applyRunConfigFile(*configPath, &req); err != nil {
			return err
		}
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	if *jsonOut {
		payload := map[string]any{
			"run_id":             summary.RunID,
			"artifacts_dir":      summary.ArtifactsDir,
			"final_best_fitness": summary.FinalBestFitness,
			"generations":        len(summary.FitnessByGeneration),
		}
		return printJSON(payload)
	}

	fmt.Printf("run=%s generations=%d final_best=%.6f artifacts=%s\n",
		summary.RunID,
		len(summary.FitnessByGeneration),
		summary.FinalBestFitness,
		summary.ArtifactsDir,
	)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := protapi.New(protapi.Options{BenchmarksDir: benchmarksDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, protapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	if *jsonOut {
		type runsItem struct {
			RunID            string  `json:"run_id"`
			CreatedAtUTC     string  `json:"created_at_utc"`
			Scape            string  `json:"scape"`
			Seed             int64   `json:"seed"`
			Generations      int     `json:"generations"`
			NoveltyDriven    bool    `json:"novelty_driven"`
			FinalBestFitness float64 `json:"final_best_fitness"`
		}
		out := make([]runsItem, 0, len(items))
		for _, item := range items {
			out = append(out, runsItem{
				RunID:            item.RunID,
				CreatedAtUTC:     item.CreatedAtUTC,
				Scape:            item.Scape,
				Seed:             item.Seed,
				Generations:      item.Generations,
				NoveltyDriven:    item.NoveltyDriven,
				FinalBestFitness: item.FinalBestFitness,
			})
		}
		return printJSON(out)
	}

	for _, item := range items {
		fmt.Printf("run=%s created=%s scape=%s seed=%d gens=%d novelty=%t final_best=%.6f\n",
			item.RunID,
			item.CreatedAtUTC,
			item.Scape,
			item.Seed,
			item.Generations,
			item.NoveltyDriven,
			item.FinalBestFitness,
		)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run from run index")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "proteus.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("fitness requires --run-id or --latest")
	}

	client, err := protapi.New(protapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, protapi.FitnessHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}

	if *jsonOut {
		return printJSON(history)
	}
	for i, fitness := range history {
		fmt.Printf("gen=%d fitness=%.6f\n", i+1, fitness)
	}
	return nil
}

func runSnapshot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show snapshot for the most recent run from run index")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "proteus.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("snapshot requires --run-id or --latest")
	}

	client, err := protapi.New(protapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	snapshot, err := client.Snapshot(ctx, protapi.SnapshotRequest{
		RunID:  *runID,
		Latest: *latest,
	})
	if err != nil {
		return err
	}
	return printJSON(snapshot)
}

func runScapes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scapes", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit scape names as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := protapi.New(protapi.Options{
		StoreKind:     "memory",
		BenchmarksDir: benchmarksDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	names, err := client.RegisteredScapes(ctx)
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(names)
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runScapeSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scape-summary", flag.ContinueOnError)
	scapeName := fs.String("scape", "", "scape name")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "proteus.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *scapeName == "" {
		return errors.New("scape-summary requires --scape")
	}

	client, err := protapi.New(protapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.ScapeSummary(ctx, *scapeName)
	if err != nil {
		return err
	}
	fmt.Printf("scape=%s best_fitness=%.6f description=%s\n",
		summary.Name,
		summary.BestFitness,
		summary.Description,
	)
	return nil
}

func printJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: proteusctl <init|reset|start|run|runs|fitness|snapshot|scapes|scape-summary> [flags]", msg)
}
