package genetic

import (
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"
)

// Parameters are the tunables of a run. The tags let hosts load them from YAML and environment
// variables; Validate is applied before any work starts
type Parameters struct {
	Slots        int     `yaml:"slots" env:"SLOTS" validate:"gte=2"`
	UnitDuration float64 `yaml:"unitDuration" env:"UNIT_DURATION" validate:"gt=0"`
	WeeksPerTerm float64 `yaml:"weeksPerTerm" env:"WEEKS_PER_TERM" validate:"gt=0"`

	PopulationSize int `yaml:"populationSize" env:"POPULATION_SIZE" validate:"gte=2"`
	Generations    int `yaml:"generations" env:"GENERATIONS" validate:"gte=0"`

	EliteFraction       float64 `yaml:"eliteFraction" env:"ELITE_FRACTION" validate:"gte=0,lte=1"`
	RemovalFraction     float64 `yaml:"removalFraction" env:"REMOVAL_FRACTION" validate:"gte=0,lt=1"`
	ReseedEvery         int     `yaml:"reseedEvery" env:"RESEED_EVERY" validate:"gte=0"` // 0 disables reseeding
	ReseedFraction      float64 `yaml:"reseedFraction" env:"RESEED_FRACTION" validate:"gte=0,lte=1"`
	LocalSearchFraction float64 `yaml:"localSearchFraction" env:"LOCAL_SEARCH_FRACTION" validate:"gte=0,lte=1"`
	LocalSearchTrials   int     `yaml:"localSearchTrials" env:"LOCAL_SEARCH_TRIALS" validate:"gte=0"`
	MutationRate        float64 `yaml:"mutationRate" env:"MUTATION_RATE" validate:"gte=0,lte=1"`
	ParentPoolFraction  float64 `yaml:"parentPoolFraction" env:"PARENT_POOL_FRACTION" validate:"gt=0,lte=1"`

	// Weight of every pair of clashing sessions; 0 lets clashing children compete on soft penalties only
	ConflictWeight float64 `yaml:"conflictWeight" env:"CONFLICT_WEIGHT" validate:"gte=0"`
	RepairChildren bool    `yaml:"repairChildren" env:"REPAIR_CHILDREN"`

	Workers int    `yaml:"workers" env:"WORKERS" validate:"gte=0"` // 0 means one per CPU
	Seed    uint64 `yaml:"seed" env:"SEED"`                        // 0 means seeded from the clock
}

func DefaultParameters() Parameters {
	return Parameters{
		Slots:               20,
		UnitDuration:        1.5,
		WeeksPerTerm:        14,
		PopulationSize:      10,
		Generations:         10,
		EliteFraction:       0.2,
		RemovalFraction:     0.2,
		ReseedEvery:         5,
		ReseedFraction:      0.1,
		LocalSearchFraction: 0.1,
		LocalSearchTrials:   10,
		MutationRate:        0.1,
		ParentPoolFraction:  1,
		ConflictWeight:      1_000_000,
		RepairChildren:      true,
	}
}

var validate = validator.New()

func (params Parameters) Validate() error {
	if err := validate.Struct(params); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	return nil
}

func (params Parameters) workers() int {
	if params.Workers > 0 {
		return params.Workers
	}
	return runtime.NumCPU()
}

// countOf turns a fraction of total into a count. A positive fraction always yields at least one
func countOf(total int, fraction float64) int {
	if fraction <= 0 || total <= 0 {
		return 0
	}
	return min(total, max(1, int(fraction*float64(total))))
}
