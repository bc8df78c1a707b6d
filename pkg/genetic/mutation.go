package genetic

import (
	"math/rand/v2"

	"github.com/limaJavier/timetabling-ga/pkg/model"
)

// Mutate swaps one session of a random slot with one session of another random slot, provided each
// of them fits into the other's slot once its counterpart has left. Returns whether the swap happened;
// when it did not, the schedule is untouched
func Mutate(problem *Problem, schedule *Schedule, rng *rand.Rand) bool {
	horizon := schedule.Horizon()
	if horizon < 2 {
		return false
	}

	slot1 := rng.IntN(horizon)
	slot2 := rng.IntN(horizon - 1)
	if slot2 >= slot1 {
		slot2++
	}
	if len(schedule.Slots[slot1]) == 0 || len(schedule.Slots[slot2]) == 0 {
		return false
	}

	position1 := rng.IntN(len(schedule.Slots[slot1]))
	position2 := rng.IntN(len(schedule.Slots[slot2]))
	session1, session2 := schedule.Slots[slot1][position1], schedule.Slots[slot2][position2]

	if !canSwap(problem.Index, schedule, session1, session2, slot1, slot2, position1, position2) {
		return false
	}

	session1.Slot, session2.Slot = slot2, slot1
	schedule.Slots[slot1][position1] = session2
	schedule.Slots[slot2][position2] = session1
	schedule.Invalidate()
	return true
}

func canSwap(index *model.Index, schedule *Schedule, session1, session2 model.Session, slot1, slot2, position1, position2 int) bool {
	return canPlace(index, schedule, session1, slot2, position2) &&
		canPlace(index, schedule, session2, slot1, position1)
}
