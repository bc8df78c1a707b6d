package genetic

import (
	"testing"

	"github.com/limaJavier/timetabling-ga/pkg/model"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutate(t *testing.T) {
	t.Run("Keeps constructed schedules sound", func(t *testing.T) {
		// Arrange
		problem := newTestProblem(t, twoGroupCatalog())
		rng := newRand(9)
		schedule, _ := Construct(problem, rng)
		size := schedule.Len()

		for range 200 {
			// Act
			Mutate(problem, schedule, rng)

			// Assert
			require.True(t, verify(problem.Index, schedule))
			require.Equal(t, size, schedule.Len())
		}
	})

	t.Run("Swaps two sessions of one group", func(t *testing.T) {
		// Arrange
		problem := newTestProblem(t, singleGroupCatalog())
		schedule := placeAt(problem, 0, 1, 2, 3)
		Evaluate(problem, schedule)

		// Act
		swapped := false
		rng := newRand(2)
		for !swapped {
			swapped = Mutate(problem, schedule, rng)
		}

		// Assert
		assert.True(t, verify(problem.Index, schedule))
		assert.False(t, schedule.Evaluated())
		assert.ElementsMatch(t, []int{0, 1, 2, 3}, lo.Map(schedule.Sessions(), func(session model.Session, _ int) int { return session.ID }))
	})

	t.Run("Leaves the schedule untouched when a slot is empty", func(t *testing.T) {
		// Arrange
		problem := newTestProblem(t, singleGroupCatalog())
		schedule := placeAt(problem, 4)
		fitness := Evaluate(problem, schedule)
		original := schedule.Clone()

		// Act
		swapped := Mutate(problem, schedule, newRand(4))

		// Assert
		assert.False(t, swapped)
		assert.True(t, schedule.Evaluated())
		assert.Equal(t, fitness, schedule.Fitness())
		assert.Equal(t, original, schedule)
	})

	t.Run("Leaves the schedule untouched when every swap clashes", func(t *testing.T) {
		// Arrange: the lecture clashes with the practical's neighbour in either direction
		problem := newProblemWithSlots(t, twoGroupCatalog(), 2)
		schedule := NewSchedule(2)
		schedule.place(assigned(problem, 0, 0, 0), 0) // G1 math lecture, Ada, Hall
		schedule.place(assigned(problem, 7, 0, 1), 1) // G2a math practical, Ada, Lab
		schedule.place(assigned(problem, 3, 2, 0), 1) // G1 physics lecture, Marie, Hall
		require.True(t, verify(problem.Index, schedule))
		fitness := Evaluate(problem, schedule)
		original := schedule.Clone()

		for seed := range uint64(30) {
			// Act
			swapped := Mutate(problem, schedule, newRand(seed))

			// Assert
			require.False(t, swapped)
			require.True(t, schedule.Evaluated())
			require.Equal(t, fitness, schedule.Fitness())
			require.Equal(t, original.Slots, schedule.Slots)
		}
	})
}

func TestLocalSearch(t *testing.T) {
	t.Run("Moves a session into a legal slot", func(t *testing.T) {
		// Arrange
		problem := newTestProblem(t, singleGroupCatalog())
		schedule := placeAt(problem, 0, 1, 2, 3)

		// Act
		moved := LocalSearch(problem, schedule, newRand(8), 1)

		// Assert
		assert.True(t, moved)
		assert.Equal(t, 4, schedule.Len())
		assert.True(t, verify(problem.Index, schedule))
		assert.False(t, schedule.Evaluated())
	})

	t.Run("Gives up when every other slot is taken", func(t *testing.T) {
		// Arrange
		params := testParameters()
		params.Slots = 2
		problem, err := NewProblem(singleGroupCatalog(), params)
		require.NoError(t, err)
		schedule := placeAt(problem, 0, 1)
		fitness := Evaluate(problem, schedule)
		original := schedule.Clone()

		for seed := range uint64(10) {
			// Act
			moved := LocalSearch(problem, schedule, newRand(seed), 10)

			// Assert
			require.False(t, moved)
			require.True(t, schedule.Evaluated())
			require.Equal(t, fitness, schedule.Fitness())
			require.Equal(t, original, schedule)
		}
	})

	t.Run("Zero trials", func(t *testing.T) {
		// Arrange
		problem := newTestProblem(t, singleGroupCatalog())
		schedule := placeAt(problem, 0, 1, 2, 3)
		fitness := Evaluate(problem, schedule)
		original := schedule.Clone()

		// Act
		moved := LocalSearch(problem, schedule, newRand(8), 0)

		// Assert
		assert.False(t, moved)
		assert.True(t, schedule.Evaluated())
		assert.Equal(t, fitness, schedule.Fitness())
		assert.Equal(t, original, schedule)
	})
}

func TestCrossover(t *testing.T) {
	problem := newTestProblem(t, singleGroupCatalog())
	parent1 := placeAt(problem, 0, 1, 2, 3)
	parent2 := placeAt(problem, 10, 11, 12, 13)

	t.Run("Children exchange tails at the cut", func(t *testing.T) {
		// Act
		child1, child2 := CrossoverAt(parent1, parent2, 11)

		// Assert
		for slot := range 11 {
			assert.Equal(t, parent1.Slots[slot], child1.Slots[slot])
			assert.Equal(t, parent2.Slots[slot], child2.Slots[slot])
		}
		for slot := 11; slot < problem.Params.Slots; slot++ {
			assert.Equal(t, parent2.Slots[slot], child1.Slots[slot])
			assert.Equal(t, parent1.Slots[slot], child2.Slots[slot])
		}
		assert.Equal(t, 4+3, child1.Len())
		assert.Equal(t, 1, child2.Len())
		assert.False(t, child1.Evaluated())
	})

	t.Run("Children do not share buckets with parents", func(t *testing.T) {
		// Act
		child1, _ := CrossoverAt(parent1, parent2, 5)
		child1.Slots[0][0].Room = 7

		// Assert
		assert.Equal(t, 0, parent1.Slots[0][0].Room)
	})

	t.Run("Random cut keeps the horizon", func(t *testing.T) {
		rng := newRand(6)
		for range 50 {
			// Act
			child1, child2 := Crossover(parent1, parent2, rng)

			// Assert
			assert.Equal(t, parent1.Horizon(), child1.Horizon())
			assert.Equal(t, parent1.Horizon(), child2.Horizon())
			assert.Equal(t, parent1.Len()+parent2.Len(), child1.Len()+child2.Len())
		}
	})

	t.Run("Single slot yields copies of the parents", func(t *testing.T) {
		// Arrange
		single1, single2 := NewSchedule(1), NewSchedule(1)
		single1.place(assigned(problem, 0, 0, 0), 0)

		// Act
		child1, child2 := Crossover(single1, single2, newRand(1))

		// Assert
		assert.Equal(t, single1.Slots, child1.Slots)
		assert.Equal(t, single2.Slots, child2.Slots)
		assert.NotSame(t, single1, child1)
	})
}

// slotsOf lists the slots holding the session with the given ID
func slotsOf(schedule *Schedule, id int) []int {
	return lo.FilterMap(schedule.Sessions(), func(session model.Session, _ int) (int, bool) {
		return session.Slot, session.ID == id
	})
}

func TestRepair(t *testing.T) {
	problem := newTestProblem(t, twoGroupCatalog())

	t.Run("Re-matches clashing rooms inside the slot", func(t *testing.T) {
		// Arrange: two practicals of unrelated subgroups booked into the hall
		schedule := NewSchedule(problem.Params.Slots)
		schedule.place(assigned(problem, 1, 0, 0), 0)
		schedule.place(assigned(problem, 7, 1, 0), 0)

		// Act
		conflicts, missing := Repair(problem, schedule, newRand(1))

		// Assert
		assert.Equal(t, 0, conflicts)
		assert.Equal(t, 0, missing)
		assert.True(t, verify(problem.Index, schedule))
		require.Len(t, schedule.Slots[0], 2)
		assert.ElementsMatch(t, []int{1, 7}, lo.Map(schedule.Slots[0], func(session model.Session, _ int) int { return session.ID }))
		assert.ElementsMatch(t, []int{0, 1}, lo.Map(schedule.Slots[0], func(session model.Session, _ int) int { return session.Room }))
	})

	t.Run("Displaces a session left without a room", func(t *testing.T) {
		// Arrange: both math lectures only fit the hall
		schedule := NewSchedule(problem.Params.Slots)
		schedule.place(assigned(problem, 0, 0, 0), 3)
		schedule.place(assigned(problem, 6, 0, 0), 3)

		// Act
		conflicts, missing := Repair(problem, schedule, newRand(1))

		// Assert
		assert.Equal(t, 0, conflicts)
		assert.Equal(t, 0, missing)
		assert.True(t, verify(problem.Index, schedule))
		require.Len(t, slotsOf(schedule, 0), 1)
		require.Len(t, slotsOf(schedule, 6), 1)
		assert.NotEqual(t, slotsOf(schedule, 0)[0], slotsOf(schedule, 6)[0])
		assert.Contains(t, []int{slotsOf(schedule, 0)[0], slotsOf(schedule, 6)[0]}, 3)
	})

	t.Run("Displaces a subgroup sharing the slot with its group", func(t *testing.T) {
		// Arrange
		schedule := NewSchedule(problem.Params.Slots)
		schedule.place(assigned(problem, 0, 0, 0), 5)
		schedule.place(assigned(problem, 2, 1, 1), 5)

		// Act
		conflicts, missing := Repair(problem, schedule, newRand(1))

		// Assert
		assert.Equal(t, 0, conflicts)
		assert.Equal(t, 0, missing)
		assert.True(t, verify(problem.Index, schedule))
		assert.Equal(t, []int{5}, slotsOf(schedule, 0))
		require.Len(t, slotsOf(schedule, 2), 1)
		assert.NotEqual(t, 5, slotsOf(schedule, 2)[0])
	})

	t.Run("Keeps the earliest copy of a duplicated session", func(t *testing.T) {
		// Arrange
		schedule := NewSchedule(problem.Params.Slots)
		schedule.place(assigned(problem, 0, 0, 0), 1)
		schedule.place(assigned(problem, 0, 0, 0), 4)

		// Act
		conflicts, missing := Repair(problem, schedule, newRand(1))

		// Assert
		assert.Equal(t, 0, conflicts)
		assert.Equal(t, 0, missing)
		assert.Equal(t, []int{1}, slotsOf(schedule, 0))
		assert.Equal(t, len(problem.Sessions), schedule.Len())
		assert.True(t, verify(problem.Index, schedule))
	})

	t.Run("Leaves complete sound schedules as they are", func(t *testing.T) {
		// Arrange
		schedule, dropped := Construct(problem, newRand(12))
		require.Empty(t, dropped)
		original := schedule.Clone()

		// Act
		conflicts, missing := Repair(problem, schedule, newRand(1))

		// Assert
		assert.Equal(t, 0, conflicts)
		assert.Equal(t, 0, missing)
		assert.Equal(t, original.Slots, schedule.Slots)
	})

	t.Run("Restores sessions lost by crossover", func(t *testing.T) {
		rng := newRand(21)
		for range 200 {
			// Arrange
			parent1, dropped1 := Construct(problem, rng)
			parent2, dropped2 := Construct(problem, rng)
			require.Empty(t, dropped1)
			require.Empty(t, dropped2)

			child1, child2 := Crossover(parent1, parent2, rng)

			for _, child := range []*Schedule{child1, child2} {
				// Act
				conflicts, missing := Repair(problem, child, rng)

				// Assert
				require.Equal(t, 0, conflicts)
				require.Equal(t, 0, missing)
				require.Equal(t, 0, child.Missing(problem.Sessions))
				require.Equal(t, len(problem.Sessions), child.Len())
				require.True(t, verify(problem.Index, child))
			}
		}
	})

	t.Run("Reports sessions that cannot be restored", func(t *testing.T) {
		// Arrange: four sessions of one group in a horizon of three
		small := newProblemWithSlots(t, singleGroupCatalog(), 3)
		schedule := placeAt(small, 0, 1)

		// Act
		conflicts, missing := Repair(small, schedule, newRand(1))

		// Assert
		assert.Equal(t, 0, conflicts)
		assert.Equal(t, 1, missing)
		assert.Equal(t, 3, schedule.Len())
		assert.Equal(t, missing, schedule.Missing(small.Sessions))
		assert.True(t, verify(small.Index, schedule))
	})
}

func TestSqueeze(t *testing.T) {
	// Arrange: the G2 lecture needs the hall, held at slot 0 by a G1a practical that also fits the lab;
	// slot 1 is closed to G2 by its subgroup
	problem := newProblemWithSlots(t, twoGroupCatalog(), 2)
	schedule := NewSchedule(2)
	schedule.place(assigned(problem, 1, 1, 0), 0) // G1a math practical, Emmy, Hall
	schedule.place(assigned(problem, 8, 0, 1), 1) // G2b math practical, Ada, Lab
	pools := occupiedPools(problem.Index, schedule)
	lecture := problem.Sessions[6]
	require.False(t, assignSlot(problem, schedule, pools, lecture, newRand(1)))

	// Act
	placed := squeeze(problem, schedule, pools, lecture, newRand(1))

	// Assert
	require.True(t, placed)
	assert.True(t, verify(problem.Index, schedule))
	rooms := lo.SliceToMap(schedule.Slots[0], func(session model.Session) (int, int) { return session.ID, session.Room })
	assert.Equal(t, map[int]int{1: 1, 6: 0}, rooms)
	assert.False(t, pools.rooms.free(0, 0))
	assert.False(t, pools.rooms.free(1, 0))
	assert.False(t, pools.lecturers.free(0, 0))
	assert.False(t, pools.cohorts.free(problem.Sessions[6].Cohorts[0], 0))
}
