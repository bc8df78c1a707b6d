package genetic

import (
	"slices"

	"github.com/limaJavier/timetabling-ga/pkg/model"
)

// clash checks whether two sessions sharing a slot would double-book a cohort, a lecturer or a room
func clash(index *model.Index, session1, session2 model.Session) bool {
	return session1.Lecturer == session2.Lecturer ||
		session1.Room == session2.Room ||
		index.CohortsCollide(session1.Cohorts, session2.Cohorts)
}

// canPlace checks whether session can join slot without clashing with the sessions already there.
// skip is a position inside the slot left out of the scan (model.Unassigned for none); it stands for
// a session that is about to leave the slot
func canPlace(index *model.Index, schedule *Schedule, session model.Session, slot, skip int) bool {
	for position, other := range schedule.Slots[slot] {
		if position == skip {
			continue
		}
		if clash(index, session, other) {
			return false
		}
	}
	return true
}

// Conflicts counts the pairs of sessions that share a slot and clash
func Conflicts(index *model.Index, schedule *Schedule) int {
	conflicts := 0
	for _, bucket := range schedule.Slots {
		conflicts += bucketConflicts(index, bucket)
	}
	return conflicts
}

func bucketConflicts(index *model.Index, bucket []model.Session) int {
	conflicts := 0
	for i := range len(bucket) - 1 {
		for j := i + 1; j < len(bucket); j++ {
			if clash(index, bucket[i], bucket[j]) {
				conflicts++
			}
		}
	}
	return conflicts
}

// verify checks every hard constraint of a schedule:
// - Every session is fully assigned and records the slot it is stored in
// - No session appears twice
// - The lecturer is capable of teaching the session's subject and type
// - The room fits all participants
// - No two sessions of one slot share a cohort, a lecturer or a room
func verify(index *model.Index, schedule *Schedule) bool {
	seen := make(map[int]bool)
	for slot, bucket := range schedule.Slots {
		for _, session := range bucket {
			if !session.Assigned() ||
				session.Slot != slot ||
				seen[session.ID] ||
				session.Lecturer >= index.Lecturers() ||
				session.Room >= index.Rooms() ||
				!slices.Contains(index.CapableLecturers(session.SubjectIndex, session.Type), session.Lecturer) ||
				!index.Fits(session.Cohorts, session.Room) {
				return false
			}
			seen[session.ID] = true
		}
		if bucketConflicts(index, bucket) > 0 {
			return false
		}
	}
	return true
}
