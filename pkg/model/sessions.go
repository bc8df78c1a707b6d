package model

import "math"

// Unassigned marks a lecturer, room or slot that has not been committed yet
const Unassigned = -1

// Session is one teaching occurrence of a subject for a fixed set of participants.
// Participants and subject are resolved once through the Index; lecturer, room and slot are filled
// by the engine. Sessions are handled by value so copies never alias each other
type Session struct {
	ID      int
	Groups  []string
	Subject string
	Type    SessionType

	Cohorts      []int // Dense ids of Groups, shared read-only between copies
	SubjectIndex int

	Lecturer int
	Room     int
	Slot     int
}

func (session Session) Assigned() bool {
	return session.Lecturer != Unassigned && session.Room != Unassigned && session.Slot != Unassigned
}

// SessionsPerWeek returns how many sessions of unitDuration fit into the given weekly hours
func SessionsPerWeek(hours, unitDuration float64) int {
	if unitDuration <= 0 {
		return 0
	}
	return int(math.Floor(hours/unitDuration + 1e-9))
}

// GenerateSessions expands every group's subjects into atomic sessions.
// The result is deterministic: groups in catalog order, subjects in the group's order, lectures
// before practicals and split practicals in subgroup order. Nothing is dropped here
func GenerateSessions(catalog Catalog, index *Index, unitDuration float64) []Session {
	subjects := make(map[string]Subject, len(catalog.Subjects))
	for _, subject := range catalog.Subjects {
		subjects[subject.Name] = subject
	}

	sessions := make([]Session, 0)
	add := func(participant string, subject Subject, sessionType SessionType, count int) {
		cohort, _ := index.CohortId(participant)
		subjectIndex, _ := index.SubjectId(subject.Name)
		for range count {
			sessions = append(sessions, Session{
				ID:           len(sessions),
				Groups:       []string{participant},
				Subject:      subject.Name,
				Type:         sessionType,
				Cohorts:      []int{cohort},
				SubjectIndex: subjectIndex,
				Lecturer:     Unassigned,
				Room:         Unassigned,
				Slot:         Unassigned,
			})
		}
	}

	for _, group := range catalog.Groups {
		for _, subjectName := range group.Subjects {
			subject, ok := subjects[subjectName]
			if !ok {
				continue
			}

			add(group.Name, subject, Lecture, SessionsPerWeek(subject.LectureHours, unitDuration))

			practicals := SessionsPerWeek(subject.PracticalHours, unitDuration)
			if subject.NeedsSubgroup {
				for _, subgroup := range group.Subgroups {
					add(subgroup, subject, Practical, practicals)
				}
			} else {
				add(group.Name, subject, Practical, practicals)
			}
		}
	}

	return sessions
}
