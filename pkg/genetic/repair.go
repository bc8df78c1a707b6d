package genetic

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/limaJavier/timetabling-ga/pkg/model"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// Repair mends a child produced by crossover. A session placed more than once keeps only its earliest
// copy. Inside every slot:
//   - A session sharing a cohort with an earlier session of the slot is displaced
//   - If rooms (or lecturers) clash, they are re-matched by maximum bipartite matching against the
//     sessions' candidates; sessions left without one are displaced
//
// Displaced sessions move to a random slot where they clash with nothing; when no such slot exists they
// return to where they were and keep being penalized.
// Generated sessions missing from the schedule are then restored, most constrained cohorts first: at a
// slot where its cohorts, a room and a lecturer are all free, or else at a slot free for its cohorts by
// re-matching that slot's rooms and lecturers.
// Returns the number of conflicts left and the number of sessions still missing
func Repair(problem *Problem, schedule *Schedule, rng *rand.Rand) (conflicts, missing int) {
	index := problem.Index
	displaced := make([]model.Session, 0)

	//** Duplicates
	seen := make(map[int]bool)
	for slot, bucket := range schedule.Slots {
		schedule.Slots[slot] = slices.DeleteFunc(bucket, func(session model.Session) bool {
			duplicate := seen[session.ID]
			seen[session.ID] = true
			return duplicate
		})
	}

	for slot, bucket := range schedule.Slots {
		if bucketConflicts(index, bucket) == 0 {
			continue
		}

		//** Cohort clashes cannot be solved inside the slot
		kept := make([]model.Session, 0, len(bucket))
		for _, session := range bucket {
			if lo.SomeBy(kept, func(other model.Session) bool {
				return index.CohortsCollide(session.Cohorts, other.Cohorts)
			}) {
				displaced = append(displaced, session)
				continue
			}
			kept = append(kept, session)
		}

		//** Rooms
		var unmatched []model.Session
		if hasDuplicates(kept, func(session model.Session) int { return session.Room }) {
			kept, unmatched = rematch(kept, problem.CandidateRooms, assignRoom)
			displaced = append(displaced, unmatched...)
		}

		//** Lecturers
		if hasDuplicates(kept, func(session model.Session) int { return session.Lecturer }) {
			kept, unmatched = rematch(kept, problem.capableLecturers, assignLecturer)
			displaced = append(displaced, unmatched...)
		}

		schedule.Slots[slot] = kept
	}

	//** Relocate displaced sessions
	for _, session := range displaced {
		origin := session.Slot
		target, ok := lo.Find(rng.Perm(schedule.Horizon()), func(slot int) bool {
			return canPlace(index, schedule, session, slot, model.Unassigned)
		})
		if !ok {
			target = origin
		}
		schedule.place(session, target)
	}

	//** Restore lost sessions
	lost := lostSessions(problem, schedule)
	if len(lost) > 0 {
		pools := occupiedPools(index, schedule)
		rng.Shuffle(len(lost), func(i, j int) {
			lost[i], lost[j] = lost[j], lost[i]
		})
		slices.SortStableFunc(lost, func(session1, session2 model.Session) int {
			return cmp.Compare(pools.scarcity(session1), pools.scarcity(session2))
		})

		for _, session := range lost {
			if assignSlot(problem, schedule, pools, session, rng) || squeeze(problem, schedule, pools, session, rng) {
				continue
			}
			missing++
		}
	}

	schedule.Invalidate()
	return Conflicts(index, schedule), missing
}

// lostSessions returns the schedulable generated sessions absent from schedule
func lostSessions(problem *Problem, schedule *Schedule) []model.Session {
	present := make(map[int]bool)
	for _, session := range schedule.Sessions() {
		present[session.ID] = true
	}
	return lo.Filter(problem.Sessions, func(session model.Session, _ int) bool {
		return !present[session.ID] && problem.Schedulable(session)
	})
}

// squeeze places session at a random slot free for its cohorts by re-matching the rooms and lecturers of
// every session booked there. Returns false when no slot admits a complete matching
func squeeze(problem *Problem, schedule *Schedule, pools resourcePools, session model.Session, rng *rand.Rand) bool {
	for _, slot := range rng.Perm(schedule.Horizon()) {
		if !pools.cohortsFree(session, slot) {
			continue
		}

		session.Slot = slot
		bucket, unmatched := rematch(append(slices.Clone(schedule.Slots[slot]), session), problem.CandidateRooms, assignRoom)
		if len(unmatched) > 0 {
			continue
		}
		bucket, unmatched = rematch(bucket, problem.capableLecturers, assignLecturer)
		if len(unmatched) > 0 {
			continue
		}

		schedule.Slots[slot] = bucket
		pools.rebook(problem.Index, bucket, slot)
		return true
	}
	return false
}

func assignRoom(session *model.Session, room int) { session.Room = room }

func assignLecturer(session *model.Session, lecturer int) { session.Lecturer = lecturer }

func hasDuplicates(sessions []model.Session, key func(session model.Session) int) bool {
	return len(lo.UniqBy(sessions, key)) < len(sessions)
}

// rematch gives every session one of its candidates so that no candidate is used twice, keeping the
// largest possible number of sessions. Returns the matched sessions and those that got nothing
func rematch(sessions []model.Session, candidates func(session model.Session) []int, assign func(session *model.Session, resource int)) (matched, unmatched []model.Session) {
	resources := make([]int, 0)
	for _, session := range sessions {
		resources = append(resources, candidates(session)...)
	}
	resources = lo.Uniq(resources)
	slices.Sort(resources)

	// Build neighbors predicate: a session is adjacent to each of its candidates
	neighbors := func(positionAny any, resourceAny any) (bool, error) {
		position := positionAny.(int)
		resource := resourceAny.(int)
		return slices.Contains(candidates(sessions[position]), resource), nil
	}

	positionsAny := lo.Map(lo.Range(len(sessions)), func(position int, _ int) any { return position })
	resourcesAny := lo.Map(resources, func(resource int, _ int) any { return resource })

	graph, err := bipartitegraph.NewBipartiteGraph(positionsAny, resourcesAny, neighbors)
	if err != nil {
		// The predicate never fails, keep the slot as it is
		return sessions, nil
	}

	assigned := make([]bool, len(sessions))
	matched = make([]model.Session, 0, len(sessions))
	for _, edge := range graph.LargestMatching() {
		position, resource := edge.Node1, resources[edge.Node2-len(sessions)]
		session := sessions[position]
		assign(&session, resource)
		matched = append(matched, session)
		assigned[position] = true
	}

	for position, session := range sessions {
		if !assigned[position] {
			unmatched = append(unmatched, session)
		}
	}
	return matched, unmatched
}
