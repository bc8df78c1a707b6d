package genetic

import (
	"math/rand/v2"
	"testing"

	"github.com/limaJavier/timetabling-ga/pkg/model"
	"github.com/stretchr/testify/require"
)

// singleGroupCatalog: one group of 20 with a 3h lecture and a 3h practical per week (2 + 2 sessions of 1.5h),
// one lecturer teaching both and one room of 20
func singleGroupCatalog() model.Catalog {
	return model.Catalog{
		Groups: []model.Group{
			{Name: "G1", Students: 20, Subjects: []string{"Math"}, Subgroups: []string{"G1a", "G1b"}},
		},
		Lecturers: []model.Lecturer{
			{Name: "Ada", Capabilities: map[string][]model.SessionType{"Math": {model.Lecture, model.Practical}}},
		},
		Rooms: []model.Room{
			{Name: "R1", Capacity: 20},
		},
		Subjects: []model.Subject{
			{Name: "Math", TotalHours: 84, LectureHours: 3, PracticalHours: 3},
		},
	}
}

// twoGroupCatalog: two groups sharing lecturers and rooms, with a split practical that puts
// subgroups on the small lab
func twoGroupCatalog() model.Catalog {
	return model.Catalog{
		Groups: []model.Group{
			{Name: "G1", Students: 30, Subjects: []string{"Math", "Physics"}, Subgroups: []string{"G1a", "G1b"}},
			{Name: "G2", Students: 24, Subjects: []string{"Math"}, Subgroups: []string{"G2a", "G2b"}},
		},
		Lecturers: []model.Lecturer{
			{Name: "Ada", Capabilities: map[string][]model.SessionType{"Math": {model.Lecture, model.Practical}}},
			{Name: "Emmy", Capabilities: map[string][]model.SessionType{"Math": {model.Practical}, "Physics": {model.Practical}}},
			{Name: "Marie", Capabilities: map[string][]model.SessionType{"Physics": {model.Lecture}}},
		},
		Rooms: []model.Room{
			{Name: "Hall", Capacity: 60},
			{Name: "Lab", Capacity: 16},
		},
		Subjects: []model.Subject{
			{Name: "Math", TotalHours: 42, LectureHours: 1.5, PracticalHours: 1.5, NeedsSubgroup: true},
			{Name: "Physics", TotalHours: 42, LectureHours: 3, PracticalHours: 1.5},
		},
	}
}

func testParameters() Parameters {
	params := DefaultParameters()
	params.Seed = 42
	params.Workers = 2
	return params
}

func newTestProblem(t *testing.T, catalog model.Catalog) *Problem {
	t.Helper()
	problem, err := NewProblem(catalog, testParameters())
	require.NoError(t, err)
	return problem
}

// assigned returns the generated session with the given lecturer and room
func assigned(problem *Problem, id, lecturer, room int) model.Session {
	session := problem.Sessions[id]
	session.Lecturer, session.Room = lecturer, room
	return session
}

func newProblemWithSlots(t *testing.T, catalog model.Catalog, slots int) *Problem {
	t.Helper()
	params := testParameters()
	params.Slots = slots
	problem, err := NewProblem(catalog, params)
	require.NoError(t, err)
	return problem
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}
