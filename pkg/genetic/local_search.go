package genetic

import (
	"math/rand/v2"

	"github.com/limaJavier/timetabling-ga/pkg/model"
	"github.com/samber/lo"
)

// LocalSearch tries up to trials times to move a random session into another slot where it clashes
// with nothing. The first legal move ends the search. Returns whether a session was moved
func LocalSearch(problem *Problem, schedule *Schedule, rng *rand.Rand, trials int) bool {
	horizon := schedule.Horizon()

	for range trials {
		occupied := lo.Filter(lo.Range(horizon), func(slot int, _ int) bool {
			return len(schedule.Slots[slot]) > 0
		})
		if len(occupied) == 0 {
			return false
		}

		slot := occupied[rng.IntN(len(occupied))]
		position := rng.IntN(len(schedule.Slots[slot]))
		session := schedule.Slots[slot][position]

		for _, target := range rng.Perm(horizon) {
			if target == slot || !canPlace(problem.Index, schedule, session, target, model.Unassigned) {
				continue
			}
			schedule.place(schedule.remove(slot, position), target)
			schedule.Invalidate()
			return true
		}
	}

	return false
}
