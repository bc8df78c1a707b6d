package genetic

import (
	"math"

	"github.com/sourcegraph/conc/pool"
)

// Breakdown splits a schedule's penalty into its terms
type Breakdown struct {
	GroupGaps     float64
	LecturerGaps  float64
	HourBalance   float64
	Conflicts     float64 // ConflictWeight times ConflictPairs
	ConflictPairs int
	Total         float64
}

// Evaluate computes the penalty of a schedule (lower is better) and caches it on the schedule:
//   - Idle slots between consecutive sessions of every participant cohort
//   - Idle slots between consecutive sessions of every lecturer
//   - Per subject, |required - scheduled hours per term| raised to the 4th power
//   - ConflictWeight for every pair of clashing sessions in a slot
func Evaluate(problem *Problem, schedule *Schedule) float64 {
	index := problem.Index
	params := problem.Params

	cohortSlots := make([][]int, index.Cohorts())
	lecturerSlots := make([][]int, index.Lecturers())
	subjectSessions := make([]int, index.Subjects())

	// Slots are visited in increasing order, so every collected list is already sorted
	for slot, bucket := range schedule.Slots {
		for _, session := range bucket {
			subjectSessions[session.SubjectIndex]++
			for _, cohort := range session.Cohorts {
				cohortSlots[cohort] = append(cohortSlots[cohort], slot)
			}
			lecturerSlots[session.Lecturer] = append(lecturerSlots[session.Lecturer], slot)
		}
	}

	var breakdown Breakdown
	for _, slots := range cohortSlots {
		breakdown.GroupGaps += float64(gaps(slots))
	}
	for _, slots := range lecturerSlots {
		breakdown.LecturerGaps += float64(gaps(slots))
	}
	for subject, count := range subjectSessions {
		required := problem.Catalog.Subjects[subject].TotalHours
		actual := float64(count) * params.UnitDuration * params.WeeksPerTerm
		breakdown.HourBalance += math.Pow(math.Abs(required-actual), 4)
	}
	breakdown.ConflictPairs = Conflicts(index, schedule)
	breakdown.Conflicts = params.ConflictWeight * float64(breakdown.ConflictPairs)

	breakdown.Total = breakdown.GroupGaps + breakdown.LecturerGaps + breakdown.HourBalance + breakdown.Conflicts

	schedule.fitness = breakdown.Total
	schedule.breakdown = breakdown
	schedule.evaluated = true
	return breakdown.Total
}

// gaps sums the idle slots between consecutive entries of a sorted slot list
func gaps(slots []int) int {
	total := 0
	for i := range len(slots) - 1 {
		total += max(0, slots[i+1]-slots[i]-1)
	}
	return total
}

// evaluatePopulation evaluates every stale schedule on the worker pool and returns once all are done
func evaluatePopulation(problem *Problem, population []*Schedule) {
	workers := pool.New().WithMaxGoroutines(problem.Params.workers())
	for _, schedule := range population {
		if schedule.Evaluated() {
			continue
		}
		workers.Go(func() {
			Evaluate(problem, schedule)
		})
	}
	workers.Wait()
}
