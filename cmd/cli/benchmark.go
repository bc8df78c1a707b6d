package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling-ga/internal/config"
	"github.com/limaJavier/timetabling-ga/internal/csvio"
	"github.com/limaJavier/timetabling-ga/pkg/genetic"
	"github.com/limaJavier/timetabling-ga/pkg/model"
)

const MB float64 = 1024 * 1024

type ResultType int

const (
	complete ResultType = iota
	partial
	timeout
)

var resultTypes = map[ResultType]string{
	complete: "complete",
	partial:  "partial",
	timeout:  "timeout",
}

type TestMetadata struct {
	Name      string
	Format    string
	Groups    int
	Cohorts   int
	Lecturers int
	Rooms     int
	Subjects  int
	Sessions  int
}

// BenchmarkResult is one run of the engine on one catalog with one seed
type BenchmarkResult struct {
	Test        string  `csv:"test"`
	Groups      int     `csv:"groups"`
	Cohorts     int     `csv:"cohorts"`
	Lecturers   int     `csv:"lecturers"`
	Rooms       int     `csv:"rooms"`
	Subjects    int     `csv:"subjects"`
	Sessions    int     `csv:"sessions"`
	Seed        uint64  `csv:"seed"`
	Population  int     `csv:"population"`
	Generations int     `csv:"generations"`
	Duration    int64   `csv:"duration_ms"`
	Memory      float64 `csv:"allocated_mb"`
	Fitness     float64 `csv:"fitness"`
	Dropped     int     `csv:"dropped"`
	Conflicts   int     `csv:"conflicts"`
	Result      string  `csv:"result"`
}

func benchmarkCmd() *cobra.Command {
	var (
		inputs     string
		seeds      int
		firstSeed  uint64
		out        string
		runTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Run the engine over every catalog of a directory with several seeds and record the outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			if inputs == "" {
				return errors.New("an inputs directory must be specified")
			}
			// Catalogs come from the inputs directory rather than the input section
			cfg.Input.Path = inputs
			if err := config.Validate(cfg); err != nil {
				return err
			}

			tests, err := getTests(inputs)
			if err != nil {
				return err
			}

			results := make([]*BenchmarkResult, 0, len(tests)*seeds)
			for _, test := range tests {
				catalog, err := loadCatalog(test.Format, test.Name)
				if err != nil {
					return fmt.Errorf("cannot load catalog %v: %w", test.Name, err)
				}

				for seed := firstSeed; seed < firstSeed+uint64(seeds); seed++ {
					if err := app.ctx.Err(); err != nil {
						return err
					}
					app.logger.Info("Benchmarking", zap.String("test", test.Name), zap.Uint64("seed", seed))

					params := cfg.Engine
					params.Seed = seed
					result, err := measure(app.ctx, params, catalog, test, runTimeout)
					if err != nil {
						return fmt.Errorf("an error occurred at test %q with seed %d: %w", test.Name, seed, err)
					}
					results = append(results, result)
				}
			}

			if err := csvio.Export(out, results); err != nil {
				return err
			}
			app.logger.Info("Benchmark finished", zap.Int("runs", len(results)), zap.String("out", out))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&inputs, "inputs", "", "Directory of catalogs: .json and .yaml files, and subdirectories of CSV files")
	flags.IntVar(&seeds, "seeds", 3, "Runs per catalog, each with its own seed")
	flags.Uint64Var(&firstSeed, "first-seed", 1, "Seed of the first run; the following runs increment it")
	flags.StringVarP(&out, "out", "o", "benchmark_results.csv", "Results CSV file")
	flags.DurationVar(&runTimeout, "timeout", 0, "Time limit of every run; 0 means none")

	return cmd
}

// getTests lists the catalogs of directory in name order; other entries are skipped
func getTests(directory string) ([]TestMetadata, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	tests := make([]TestMetadata, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(directory, entry.Name())
		format, err := formatOf(path)
		if err != nil {
			continue
		}
		tests = append(tests, TestMetadata{Name: path, Format: format})
	}
	return tests, nil
}

func describe(test TestMetadata, catalog model.Catalog, params genetic.Parameters) TestMetadata {
	index := model.NewIndex(catalog)
	test.Groups = len(catalog.Groups)
	test.Cohorts = index.Cohorts()
	test.Lecturers = index.Lecturers()
	test.Rooms = index.Rooms()
	test.Subjects = index.Subjects()
	test.Sessions = len(model.GenerateSessions(catalog, index, params.UnitDuration))
	return test
}

func measure(ctx context.Context, params genetic.Parameters, catalog model.Catalog, test TestMetadata, limit time.Duration) (*BenchmarkResult, error) {
	if limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	result, err := genetic.NewTimetabler(params, genetic.WithLogger(app.logger)).Build(ctx, catalog)

	duration := time.Since(start)
	runtime.ReadMemStats(&after)

	if result == nil {
		return nil, err
	}
	outcome := classify(result, err)
	if err != nil && outcome != timeout {
		return nil, err
	}

	test = describe(test, catalog, params)
	return &BenchmarkResult{
		Test:        test.Name,
		Groups:      test.Groups,
		Cohorts:     test.Cohorts,
		Lecturers:   test.Lecturers,
		Rooms:       test.Rooms,
		Subjects:    test.Subjects,
		Sessions:    test.Sessions,
		Seed:        result.Seed,
		Population:  params.PopulationSize,
		Generations: len(result.History),
		Duration:    duration.Milliseconds(),
		Memory:      float64(after.TotalAlloc-before.TotalAlloc) / MB,
		Fitness:     result.Fitness,
		Dropped:     result.Dropped,
		Conflicts:   result.Conflicts,
		Result:      resultTypes[outcome],
	}, nil
}

// classify tells whether a run placed every session soundly, stopped on its deadline, or left sessions
// out or clashing
func classify(result *genetic.Result, err error) ResultType {
	if errors.Is(err, context.DeadlineExceeded) {
		return timeout
	}
	if result.Dropped == 0 && result.Conflicts == 0 {
		return complete
	}
	return partial
}
