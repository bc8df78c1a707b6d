package genetic

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/timetabling-ga/pkg/model"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

type geneticTimetabler struct {
	params Parameters
	logger *zap.Logger
}

// Build evolves a population of schedules for a fixed number of generations and returns the
// lowest-penalty one. Each generation:
//  1. Evaluate stale individuals and rank them
//  2. Local search on the top individuals, keeping a result only when it is not worse
//  3. Drop the worst individuals
//  4. Every ReseedEvery generations, add freshly constructed individuals
//  5. Carry the elites unchanged and refill with the (optionally repaired and mutated) children of
//     parents drawn from the survivors
//
// When ctx is cancelled the best individual found so far is returned together with ctx's error
func (timetabler *geneticTimetabler) Build(ctx context.Context, catalog model.Catalog) (*Result, error) {
	params := timetabler.params
	if params.Seed == 0 {
		params.Seed = uint64(time.Now().UnixNano())
	}

	problem, err := NewProblem(catalog, params)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:         uuid.NewString(),
		Seed:          params.Seed,
		Sessions:      len(problem.Sessions),
		Unschedulable: problem.Unschedulable(),
		History:       make([]GenerationStats, 0, params.Generations),
	}
	logger := timetabler.logger.With(zap.String("run", result.RunID))
	logger.Info("starting evolution",
		zap.Uint64("seed", params.Seed),
		zap.Int("sessions", result.Sessions),
		zap.Int("unschedulable", result.Unschedulable),
		zap.Int("population", params.PopulationSize),
		zap.Int("generations", params.Generations),
	)

	rng := rand.New(rand.NewPCG(params.Seed, params.Seed^0x9e3779b97f4a7c15))

	//** Initialize
	population := constructPopulation(problem, params.PopulationSize, rng)

	for generation := range params.Generations {
		if err := ctx.Err(); err != nil {
			evaluatePopulation(problem, population)
			rank(population)
			timetabler.finish(logger, problem, population[0], result)
			return result, err
		}

		//** Evaluate and rank
		evaluatePopulation(problem, population)
		rank(population)
		stats := statistics(generation, population)
		result.History = append(result.History, stats)
		logger.Debug("generation evaluated",
			zap.Int("generation", generation),
			zap.Float64("best", stats.Best),
			zap.Float64("mean", stats.Mean),
			zap.Float64("worst", stats.Worst),
		)

		//** Local search on the top individuals
		for i := range countOf(len(population), params.LocalSearchFraction) {
			candidate := population[i].Clone()
			if !LocalSearch(problem, candidate, rng, params.LocalSearchTrials) {
				continue
			}
			if Evaluate(problem, candidate) <= population[i].Fitness() {
				population[i] = candidate
			}
		}
		rank(population)

		//** Replace the worst
		removed := min(countOf(params.PopulationSize, params.RemovalFraction), len(population)-1)
		survivors := population[:len(population)-removed]

		//** Reseed
		if params.ReseedEvery > 0 && generation > 0 && generation%params.ReseedEvery == 0 {
			fresh := constructPopulation(problem, countOf(params.PopulationSize, params.ReseedFraction), rng)
			evaluatePopulation(problem, fresh)
			survivors = append(slices.Clone(survivors), fresh...)
			rank(survivors)
			logger.Debug("population reseeded", zap.Int("generation", generation), zap.Int("fresh", len(fresh)))
		}
		survivors = survivors[:min(len(survivors), params.PopulationSize)]

		//** Vary to refill
		elites := min(countOf(params.PopulationSize, params.EliteFraction), len(survivors))
		next := make([]*Schedule, 0, params.PopulationSize)
		next = append(next, survivors[:elites]...)
		next = append(next, timetabler.breed(problem, survivors, params.PopulationSize-elites, rng)...)
		population = next
	}

	//** Terminate
	evaluatePopulation(problem, population)
	rank(population)
	timetabler.finish(logger, problem, population[0], result)
	return result, nil
}

// breed produces count children on the worker pool. Pairs of parents are drawn from the best
// ParentPoolFraction of the (ranked) survivors; each pair works with its own random source
func (timetabler *geneticTimetabler) breed(problem *Problem, survivors []*Schedule, count int, rng *rand.Rand) []*Schedule {
	if count <= 0 {
		return nil
	}
	params := problem.Params
	parents := survivors[:max(countOf(len(survivors), params.ParentPoolFraction), min(2, len(survivors)))]

	pairs := (count + 1) / 2
	children := make([]*Schedule, 2*pairs)
	seeds := drawSeeds(rng, pairs)

	workers := pool.New().WithMaxGoroutines(params.workers())
	for pair := range pairs {
		workers.Go(func() {
			source := rand.New(rand.NewPCG(seeds[pair][0], seeds[pair][1]))
			parent1, parent2 := pickParents(parents, source)

			child1, child2 := Crossover(parent1, parent2, source)
			for _, child := range []*Schedule{child1, child2} {
				if params.RepairChildren {
					Repair(problem, child, source)
				}
				if source.Float64() < params.MutationRate {
					Mutate(problem, child, source)
				}
			}
			children[2*pair], children[2*pair+1] = child1, child2
		})
	}
	workers.Wait()

	return children[:count]
}

// pickParents samples two distinct parents uniformly, or the same one twice when only one exists
func pickParents(parents []*Schedule, rng *rand.Rand) (*Schedule, *Schedule) {
	if len(parents) == 1 {
		return parents[0], parents[0]
	}
	first := rng.IntN(len(parents))
	second := rng.IntN(len(parents) - 1)
	if second >= first {
		second++
	}
	return parents[first], parents[second]
}

// rank sorts by ascending fitness; ties keep their relative order
func rank(population []*Schedule) {
	slices.SortStableFunc(population, func(a, b *Schedule) int {
		return cmp.Compare(a.Fitness(), b.Fitness())
	})
}

func statistics(generation int, population []*Schedule) GenerationStats {
	fitness := lo.Map(population, func(schedule *Schedule, _ int) float64 { return schedule.Fitness() })
	return GenerationStats{
		Generation: generation,
		Best:       lo.Min(fitness),
		Mean:       lo.Sum(fitness) / float64(len(fitness)),
		Worst:      lo.Max(fitness),
	}
}

func (timetabler *geneticTimetabler) finish(logger *zap.Logger, problem *Problem, best *Schedule, result *Result) {
	result.Best = best
	result.Fitness = best.Fitness()
	result.Breakdown = best.Breakdown()
	result.Dropped = best.Missing(problem.Sessions)
	result.Conflicts = best.Breakdown().ConflictPairs

	if result.Dropped > 0 {
		logger.Warn("sessions missing from the best schedule",
			zap.Int("dropped", result.Dropped),
			zap.Int("unschedulable", result.Unschedulable),
		)
	}
	logger.Info("evolution finished",
		zap.Float64("fitness", result.Fitness),
		zap.Float64("groupGaps", result.Breakdown.GroupGaps),
		zap.Float64("lecturerGaps", result.Breakdown.LecturerGaps),
		zap.Float64("hourBalance", result.Breakdown.HourBalance),
		zap.Int("conflicts", result.Conflicts),
		zap.Int("generations", len(result.History)),
	)
}
