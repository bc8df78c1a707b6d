package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/limaJavier/timetabling-ga/pkg/genetic"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load, e.g. TIMETABLE_ENGINE_GENERATIONS
const EnvPrefix = "TIMETABLE_"

type Input struct {
	Format string `yaml:"format" env:"FORMAT" validate:"oneof=json yaml csv"`
	// Catalog file for json and yaml, directory holding groups.csv, lecturers.csv, rooms.csv and subjects.csv for csv
	Path string `yaml:"path" env:"PATH" validate:"required"`
}

type Output struct {
	Schedule      string `yaml:"schedule" env:"SCHEDULE"` // Empty writes the schedule to the standard output
	Report        string `yaml:"report" env:"REPORT"`     // Empty skips the hours report
	PeriodsPerDay int    `yaml:"periodsPerDay" env:"PERIODS_PER_DAY" validate:"gte=1"`
}

type Log struct {
	Environment string `yaml:"environment" env:"ENVIRONMENT" validate:"required"`
	Level       string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
	ToFile      bool   `yaml:"toFile" env:"TO_FILE"`
	Directory   string `yaml:"directory" env:"DIRECTORY" validate:"required_if=ToFile true"`
}

// Config represents the application configuration
type Config struct {
	Engine genetic.Parameters `yaml:"engine" envPrefix:"ENGINE_"`
	Input  Input              `yaml:"input" envPrefix:"INPUT_"`
	Output Output             `yaml:"output" envPrefix:"OUTPUT_"`
	Log    Log                `yaml:"log" envPrefix:"LOG_"`
}

var validate = validator.New()

func Default() Config {
	return Config{
		Engine: genetic.DefaultParameters(),
		Input:  Input{Format: "csv"},
		Output: Output{PeriodsPerDay: 4},
		Log: Log{
			Environment: "dev",
			Level:       "info",
			Directory:   "logs",
		},
	}
}

// Load starts from the defaults, applies the YAML file at path (skipped when path is empty) and then
// the TIMETABLE_ environment variables. The result is not validated, so callers can apply their own
// overrides before calling Validate
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) {
			// Only the first error keeps the message readable
			return nil, fmt.Errorf("failed to parse environment: %w", aggErr.Errors[0])
		}
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration struct, engine parameters included
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
