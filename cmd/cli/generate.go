package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling-ga/internal/config"
	"github.com/limaJavier/timetabling-ga/internal/csvio"
	"github.com/limaJavier/timetabling-ga/pkg/genetic"
	"github.com/limaJavier/timetabling-ga/pkg/model"
)

func generateCmd() *cobra.Command {
	var (
		input       string
		format      string
		out         string
		report      string
		grid        string
		seed        uint64
		generations int
		population  int
		workers     int
		runTimeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a timetable from a catalog of groups, lecturers, rooms and subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.Input.Path = input
				if !flags.Changed("format") {
					if inferred, err := formatOf(input); err == nil {
						cfg.Input.Format = inferred
					}
				}
			}
			if flags.Changed("format") {
				cfg.Input.Format = format
			}
			if flags.Changed("out") {
				cfg.Output.Schedule = out
			}
			if flags.Changed("report") {
				cfg.Output.Report = report
			}
			if flags.Changed("seed") {
				cfg.Engine.Seed = seed
			}
			if flags.Changed("generations") {
				cfg.Engine.Generations = generations
			}
			if flags.Changed("population") {
				cfg.Engine.PopulationSize = population
			}
			if flags.Changed("workers") {
				cfg.Engine.Workers = workers
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			catalog, err := loadCatalog(cfg.Input.Format, cfg.Input.Path)
			if err != nil {
				return fmt.Errorf("cannot load catalog: %w", err)
			}
			app.logger.Info("Catalog loaded",
				zap.String("path", cfg.Input.Path),
				zap.Int("groups", len(catalog.Groups)),
				zap.Int("lecturers", len(catalog.Lecturers)),
				zap.Int("rooms", len(catalog.Rooms)),
				zap.Int("subjects", len(catalog.Subjects)),
			)

			ctx := app.ctx
			if runTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, runTimeout)
				defer cancel()
			}

			timetabler := genetic.NewTimetabler(cfg.Engine, genetic.WithLogger(app.logger))
			result, err := timetabler.Build(ctx, catalog)
			if result == nil {
				return fmt.Errorf("an error occurred during timetable construction: %w", err)
			}
			if err != nil {
				app.logger.Warn("Evolution interrupted, keeping the best schedule so far", zap.Error(err))
			}

			if !timetabler.Verify(catalog, result.Best) {
				app.logger.Warn("Best schedule violates hard constraints", zap.Int("conflicts", result.Conflicts))
			}

			if err := writeOutputs(cfg, catalog, result, grid); err != nil {
				return err
			}
			printSummary(result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "", "Catalog file (.json, .yaml) or directory of CSV files")
	flags.StringVarP(&format, "format", "f", "", "Input format: json, yaml or csv; inferred from the input when omitted")
	flags.StringVarP(&out, "out", "o", "", "Schedule CSV file; the standard output when empty")
	flags.StringVar(&report, "report", "", "Subject hours report CSV file")
	flags.StringVar(&grid, "grid", "", "Group by slot grid CSV file")
	flags.Uint64Var(&seed, "seed", 0, "Random seed; 0 draws one from the clock")
	flags.IntVar(&generations, "generations", 0, "Number of generations")
	flags.IntVar(&population, "population", 0, "Population size")
	flags.IntVar(&workers, "workers", 0, "Parallel workers; 0 uses one per CPU")
	flags.DurationVar(&runTimeout, "timeout", 0, "Stop evolving after this long and keep the best schedule so far")

	return cmd
}

func writeOutputs(cfg *config.Config, catalog model.Catalog, result *genetic.Result, grid string) error {
	index := model.NewIndex(catalog)
	rows := csvio.ScheduleRows(index, result.Best, cfg.Output.PeriodsPerDay)

	if cfg.Output.Schedule == "" {
		if err := csvio.WriteSchedule(os.Stdout, rows); err != nil {
			return fmt.Errorf("an error occurred while writing the schedule: %w", err)
		}
	} else if err := csvio.Export(cfg.Output.Schedule, rows); err != nil {
		return err
	}

	if cfg.Output.Report != "" {
		if err := csvio.Export(cfg.Output.Report, csvio.HoursReport(catalog, result.Best, cfg.Engine)); err != nil {
			return err
		}
	}

	if grid != "" {
		file, err := os.Create(grid)
		if err != nil {
			return fmt.Errorf("failed to create %v: %w", grid, err)
		}
		defer file.Close()
		if err := csvio.WriteGrid(file, catalog, index, result.Best, cfg.Output.PeriodsPerDay); err != nil {
			return fmt.Errorf("failed to write %v: %w", grid, err)
		}
	}

	return nil
}

func printSummary(result *genetic.Result) {
	summary := os.Stderr
	fmt.Fprintf(summary, "\nRun:           %s (seed %d)\n", result.RunID, result.Seed)
	fmt.Fprintf(summary, "Fitness:       %.1f\n", result.Fitness)
	fmt.Fprintf(summary, "  Group gaps:    %.0f\n", result.Breakdown.GroupGaps)
	fmt.Fprintf(summary, "  Lecturer gaps: %.0f\n", result.Breakdown.LecturerGaps)
	fmt.Fprintf(summary, "  Hour balance:  %.1f\n", result.Breakdown.HourBalance)
	fmt.Fprintf(summary, "Sessions:      %d placed of %d (%d dropped, %d unschedulable)\n",
		result.Sessions-result.Dropped, result.Sessions, result.Dropped, result.Unschedulable)
	fmt.Fprintf(summary, "Conflicts:     %d\n", result.Conflicts)
	fmt.Fprintf(summary, "Generations:   %d\n\n", len(result.History))
}
