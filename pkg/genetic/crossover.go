package genetic

import (
	"math/rand/v2"
	"slices"

	"github.com/limaJavier/timetabling-ga/pkg/model"
)

// Crossover recombines two parents at a uniform cut in [1, horizon-1]: the first child takes the
// first parent's slots before the cut and the second parent's from the cut onwards, the second
// child the opposite. Every bucket comes whole from one parent, but a session may appear on both sides
// of the cut or on neither. With fewer than two slots there is no cut and the children are copies
func Crossover(parent1, parent2 *Schedule, rng *rand.Rand) (*Schedule, *Schedule) {
	if parent1.Horizon() < 2 {
		return parent1.Clone(), parent2.Clone()
	}
	cut := 1 + rng.IntN(parent1.Horizon()-1)
	return CrossoverAt(parent1, parent2, cut)
}

func CrossoverAt(parent1, parent2 *Schedule, cut int) (*Schedule, *Schedule) {
	return recombine(parent1, parent2, cut), recombine(parent2, parent1, cut)
}

func recombine(head, tail *Schedule, cut int) *Schedule {
	child := &Schedule{Slots: make([][]model.Session, head.Horizon())}
	for slot := range child.Slots {
		source := head
		if slot >= cut {
			source = tail
		}
		child.Slots[slot] = slices.Clone(source.Slots[slot])
	}
	return child
}
