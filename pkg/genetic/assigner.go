package genetic

import (
	"math/rand/v2"
	"slices"

	"github.com/limaJavier/timetabling-ga/pkg/model"
	"github.com/sourcegraph/conc/pool"
)

// Construct builds one schedule from scratch by greedy randomized matching of slots, rooms and
// lecturers. A slot is committed only when it is free for every participant, for the room and for
// the lecturer at once, so the result never double-books a resource.
// Sessions that find no consistent combination are dropped and returned
func Construct(problem *Problem, rng *rand.Rand) (*Schedule, []model.Session) {
	index := problem.Index
	horizon := problem.Params.Slots
	schedule := NewSchedule(horizon)

	pools := newResourcePools(index, horizon)

	//** Sessions without a fitting room are dropped before the search
	dropped := make([]model.Session, 0)
	pending := make([]model.Session, 0, len(problem.Sessions))
	for _, session := range problem.Sessions {
		if len(problem.CandidateRooms(session)) == 0 {
			dropped = append(dropped, session)
			continue
		}
		pending = append(pending, session)
	}

	rng.Shuffle(len(pending), func(i, j int) {
		pending[i], pending[j] = pending[j], pending[i]
	})

	for _, session := range pending {
		if !assignSlot(problem, schedule, pools, session, rng) {
			dropped = append(dropped, session)
		}
	}

	return schedule, dropped
}

// assignSlot places session at a random slot where its cohorts, one of its candidate rooms and one
// of its capable lecturers are all free, and books them in pools. Returns false when no slot qualifies
func assignSlot(problem *Problem, schedule *Schedule, pools resourcePools, session model.Session, rng *rand.Rand) bool {
	lecturers := slices.Clone(problem.Index.CapableLecturers(session.SubjectIndex, session.Type))
	if len(lecturers) == 0 {
		return false
	}
	rng.Shuffle(len(lecturers), func(i, j int) {
		lecturers[i], lecturers[j] = lecturers[j], lecturers[i]
	})
	rooms := slices.Clone(problem.CandidateRooms(session))

	for _, slot := range rng.Perm(schedule.Horizon()) {
		if !pools.cohortsFree(session, slot) {
			continue
		}

		rng.Shuffle(len(rooms), func(i, j int) {
			rooms[i], rooms[j] = rooms[j], rooms[i]
		})
		for _, room := range rooms {
			if !pools.rooms.free(room, slot) {
				continue
			}
			for _, lecturer := range lecturers {
				if !pools.lecturers.free(lecturer, slot) {
					continue
				}

				//** Commit
				session.Lecturer, session.Room = lecturer, room
				schedule.place(session, slot)
				pools.commit(problem.Index, session, slot)
				return true
			}
		}
	}
	return false
}

// constructPopulation runs independent constructions on the worker pool. Every construction gets
// its own random source seeded from rng before dispatch, so the outcome does not depend on scheduling
func constructPopulation(problem *Problem, size int, rng *rand.Rand) []*Schedule {
	population := make([]*Schedule, size)
	seeds := drawSeeds(rng, size)

	workers := pool.New().WithMaxGoroutines(problem.Params.workers())
	for i := range size {
		workers.Go(func() {
			population[i], _ = Construct(problem, rand.New(rand.NewPCG(seeds[i][0], seeds[i][1])))
		})
	}
	workers.Wait()

	return population
}

func drawSeeds(rng *rand.Rand, count int) [][2]uint64 {
	seeds := make([][2]uint64, count)
	for i := range seeds {
		seeds[i] = [2]uint64{rng.Uint64(), rng.Uint64()}
	}
	return seeds
}
