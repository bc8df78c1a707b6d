package genetic

import (
	"context"

	"github.com/limaJavier/timetabling-ga/pkg/model"
	"go.uber.org/zap"
)

type Timetabler interface {
	Build(
		ctx context.Context,
		catalog model.Catalog,
	) (*Result, error)

	Verify(
		catalog model.Catalog,
		schedule *Schedule,
	) bool
}

// Result is the outcome of a run
type Result struct {
	RunID string
	Seed  uint64

	Best      *Schedule
	Fitness   float64
	Breakdown Breakdown

	Sessions      int // Generated sessions
	Dropped       int // Generated sessions absent from Best
	Unschedulable int // Sessions without a fitting room or a capable lecturer
	Conflicts     int // Clashing pairs left in Best

	History []GenerationStats
}

type GenerationStats struct {
	Generation int
	Best       float64
	Mean       float64
	Worst      float64
}

type Option func(timetabler *geneticTimetabler)

func WithLogger(logger *zap.Logger) Option {
	return func(timetabler *geneticTimetabler) {
		if logger != nil {
			timetabler.logger = logger
		}
	}
}

func NewTimetabler(params Parameters, options ...Option) Timetabler {
	timetabler := &geneticTimetabler{
		params: params,
		logger: zap.NewNop(),
	}
	for _, option := range options {
		option(timetabler)
	}
	return timetabler
}

func (timetabler *geneticTimetabler) Verify(catalog model.Catalog, schedule *Schedule) bool {
	return verify(model.NewIndex(catalog), schedule)
}
