package model

import (
	"github.com/samber/lo"
)

// Index gives every cohort (group or subgroup), lecturer, room and subject a dense integer id
// and answers the structural questions the engine asks in its inner loops.
// It is built once per run and never mutated afterwards.
type Index struct {
	cohorts       []string
	cohortSizes   []uint64
	cohortParents []int // Parent cohort of a subgroup, -1 for groups
	cohortIds     map[string]int
	collisions    [][]int // collisions[c] = cohorts that cannot be scheduled together with c (c included)

	lecturers   []string
	lecturerIds map[string]int

	rooms      []string
	capacities []uint64
	roomIds    map[string]int

	subjects   []string
	subjectIds map[string]int

	capable map[capabilityKey][]int
}

type capabilityKey struct {
	subject     int
	sessionType SessionType
}

func NewIndex(catalog Catalog) *Index {
	index := &Index{
		cohortIds:   make(map[string]int),
		lecturerIds: make(map[string]int),
		roomIds:     make(map[string]int),
		subjectIds:  make(map[string]int),
		capable:     make(map[capabilityKey][]int),
	}

	//** Cohorts: every group followed by its subgroups
	for _, group := range catalog.Groups {
		parent := index.addCohort(group.Name, group.Students, -1)
		for _, subgroup := range group.Subgroups {
			index.addCohort(subgroup, group.SubgroupSize(), parent)
		}
	}
	index.collisions = buildCollisions(index.cohortParents)

	for id, subject := range catalog.Subjects {
		index.subjects = append(index.subjects, subject.Name)
		index.subjectIds[subject.Name] = id
	}

	for id, room := range catalog.Rooms {
		index.rooms = append(index.rooms, room.Name)
		index.capacities = append(index.capacities, room.Capacity)
		index.roomIds[room.Name] = id
	}

	//** Lecturers and the (subject, session type) -> lecturers lookup
	for id, lecturer := range catalog.Lecturers {
		index.lecturers = append(index.lecturers, lecturer.Name)
		index.lecturerIds[lecturer.Name] = id

		for subject, sessionTypes := range lecturer.Capabilities {
			subjectId, ok := index.subjectIds[subject]
			if !ok {
				continue
			}
			for _, sessionType := range lo.Uniq(sessionTypes) {
				key := capabilityKey{subjectId, sessionType}
				index.capable[key] = append(index.capable[key], id)
			}
		}
	}

	return index
}

func (index *Index) addCohort(name string, size uint64, parent int) int {
	id := len(index.cohorts)
	index.cohorts = append(index.cohorts, name)
	index.cohortSizes = append(index.cohortSizes, size)
	index.cohortParents = append(index.cohortParents, parent)
	index.cohortIds[name] = id
	return id
}

// A group collides with itself and with its subgroups; a subgroup collides with itself and its parent.
// Sibling subgroups are disjoint halves and therefore do not collide
func buildCollisions(parents []int) [][]int {
	collisions := make([][]int, len(parents))
	for cohort, parent := range parents {
		collisions[cohort] = append(collisions[cohort], cohort)
		if parent >= 0 {
			collisions[cohort] = append(collisions[cohort], parent)
			collisions[parent] = append(collisions[parent], cohort)
		}
	}
	return collisions
}

func (index *Index) Cohorts() int   { return len(index.cohorts) }
func (index *Index) Lecturers() int { return len(index.lecturers) }
func (index *Index) Rooms() int     { return len(index.rooms) }
func (index *Index) Subjects() int  { return len(index.subjects) }

func (index *Index) CohortId(name string) (int, bool) {
	id, ok := index.cohortIds[name]
	return id, ok
}

func (index *Index) SubjectId(name string) (int, bool) {
	id, ok := index.subjectIds[name]
	return id, ok
}

func (index *Index) CohortName(cohort int) string     { return index.cohorts[cohort] }
func (index *Index) LecturerName(lecturer int) string { return index.lecturers[lecturer] }
func (index *Index) RoomName(room int) string         { return index.rooms[room] }
func (index *Index) SubjectName(subject int) string   { return index.subjects[subject] }

func (index *Index) CohortSize(cohort int) uint64 { return index.cohortSizes[cohort] }

// Collisions returns the cohorts sharing students with cohort (cohort itself included)
func (index *Index) Collisions(cohort int) []int {
	return index.collisions[cohort]
}

// Collide checks whether two cohorts share at least one student
func (index *Index) Collide(cohort1, cohort2 int) bool {
	return cohort1 == cohort2 ||
		index.cohortParents[cohort1] == cohort2 ||
		index.cohortParents[cohort2] == cohort1
}

// CohortsCollide checks whether any cohort of the first list collides with any of the second
func (index *Index) CohortsCollide(cohorts1, cohorts2 []int) bool {
	return lo.SomeBy(cohorts1, func(cohort1 int) bool {
		return lo.SomeBy(cohorts2, func(cohort2 int) bool {
			return index.Collide(cohort1, cohort2)
		})
	})
}

// CapableLecturers returns the lecturers allowed to teach the session type of subject.
// The returned slice is shared and must not be modified
func (index *Index) CapableLecturers(subject int, sessionType SessionType) []int {
	return index.capable[capabilityKey{subject, sessionType}]
}

// Fits checks whether the combined size of the cohorts does not exceed the room's capacity
func (index *Index) Fits(cohorts []int, room int) bool {
	return index.capacities[room] >= lo.SumBy(cohorts, index.CohortSize)
}
