package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling-ga/internal/config"
	"github.com/limaJavier/timetabling-ga/internal/csvio"
	"github.com/limaJavier/timetabling-ga/internal/logging"
	"github.com/limaJavier/timetabling-ga/pkg/model"
)

// App holds the application dependencies
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	ctx    context.Context
}

var (
	configPath string
	env        string
	logLevel   string
	app        *App
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "timetable",
		Short: "Weekly timetable generator",
		Long:  `Builds a weekly class timetable by evolving a population of schedules that never double-book a group, a lecturer or a room.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(ctx)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				_ = app.logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment name, used to prefix log files")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Console log level: debug, info, warn or error")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(benchmarkCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp loads the configuration and sets up the logger. Command flags are applied and the
// configuration validated by each command
func initApp(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if env != "" {
		cfg.Log.Environment = env
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := logging.InitLogger(cfg.Log.Environment, cfg.Log.Level, cfg.Log.ToFile, cfg.Log.Directory)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app = &App{
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
	}
	app.logger.Debug("Configuration loaded", zap.String("path", configPath), zap.String("environment", cfg.Log.Environment))
	return nil
}

// loadCatalog reads a catalog in the given format: a JSON or YAML file, or a directory of CSV files
func loadCatalog(format, path string) (model.Catalog, error) {
	switch format {
	case "json":
		return model.CatalogFromJson(path)
	case "yaml":
		return model.CatalogFromYaml(path)
	case "csv":
		return csvio.LoadCatalog(path)
	default:
		return model.Catalog{}, fmt.Errorf("unknown input format %q", format)
	}
}

// formatOf infers the input format of a path: directories hold CSV files, files go by extension
func formatOf(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "csv", nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("cannot infer the input format of %v", path)
	}
}
