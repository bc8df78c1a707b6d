package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/timetabling-ga/pkg/genetic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
engine:
  slots: 30
  populationSize: 40
  generations: 100
  seed: 7
input:
  format: yaml
  path: catalog.yaml
output:
  schedule: schedule.csv
  periodsPerDay: 6
log:
  level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timetable.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("File values over defaults", func(t *testing.T) {
		// Act
		cfg, err := Load(writeConfig(t, testConfig))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 30, cfg.Engine.Slots)
		assert.Equal(t, 40, cfg.Engine.PopulationSize)
		assert.Equal(t, 100, cfg.Engine.Generations)
		assert.Equal(t, uint64(7), cfg.Engine.Seed)
		assert.Equal(t, genetic.DefaultParameters().MutationRate, cfg.Engine.MutationRate)
		assert.Equal(t, "yaml", cfg.Input.Format)
		assert.Equal(t, 6, cfg.Output.PeriodsPerDay)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "dev", cfg.Log.Environment)
		assert.NoError(t, Validate(cfg))
	})

	t.Run("Environment over file values", func(t *testing.T) {
		// Arrange
		t.Setenv("TIMETABLE_ENGINE_GENERATIONS", "5")
		t.Setenv("TIMETABLE_ENGINE_REPAIR_CHILDREN", "false")
		t.Setenv("TIMETABLE_INPUT_PATH", "data")
		t.Setenv("TIMETABLE_LOG_ENVIRONMENT", "prod")

		// Act
		cfg, err := Load(writeConfig(t, testConfig))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Engine.Generations)
		assert.False(t, cfg.Engine.RepairChildren)
		assert.Equal(t, "data", cfg.Input.Path)
		assert.Equal(t, "prod", cfg.Log.Environment)
		assert.Equal(t, 30, cfg.Engine.Slots)
	})

	t.Run("No file", func(t *testing.T) {
		// Act
		cfg, err := Load("")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, Default(), *cfg)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("Malformed file", func(t *testing.T) {
		_, err := Load(writeConfig(t, "engine: [1, 2"))
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("Malformed environment", func(t *testing.T) {
		t.Setenv("TIMETABLE_ENGINE_SLOTS", "many")
		_, err := Load("")
		assert.ErrorContains(t, err, "failed to parse environment")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Input.Path = "data"
		return &cfg
	}

	testCases := []struct {
		name   string
		modify func(cfg *Config)
	}{
		{"Missing input path", func(cfg *Config) { cfg.Input.Path = "" }},
		{"Unknown input format", func(cfg *Config) { cfg.Input.Format = "xml" }},
		{"Unknown log level", func(cfg *Config) { cfg.Log.Level = "verbose" }},
		{"Log file without directory", func(cfg *Config) { cfg.Log.ToFile, cfg.Log.Directory = true, "" }},
		{"Zero periods per day", func(cfg *Config) { cfg.Output.PeriodsPerDay = 0 }},
		{"Invalid engine parameters", func(cfg *Config) { cfg.Engine.PopulationSize = 1 }},
	}

	assert.NoError(t, Validate(valid()))

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			// Arrange
			cfg := valid()
			testCase.modify(cfg)

			// Act
			err := Validate(cfg)

			// Assert
			assert.Error(t, err)
		})
	}
}
