package genetic

import (
	"fmt"

	"github.com/limaJavier/timetabling-ga/pkg/model"
	"github.com/samber/lo"
)

// Problem bundles everything resolved once per run: the catalog, its dense index, the generated
// sessions and the capacity-sufficient rooms of each session
type Problem struct {
	Catalog  model.Catalog
	Index    *model.Index
	Params   Parameters
	Sessions []model.Session

	rooms         [][]int // rooms[session.ID]
	unschedulable int
}

// NewProblem prepares a run and fails fast on configurations that could only produce empty schedules
func NewProblem(catalog model.Catalog, params Parameters) (*Problem, error) {
	if params.Slots < 2 {
		return nil, fmt.Errorf("%w: got %v", ErrHorizonTooSmall, params.Slots)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(catalog.Rooms) == 0 {
		return nil, ErrNoRooms
	}
	if len(catalog.Lecturers) == 0 {
		return nil, ErrNoLecturers
	}

	index := model.NewIndex(catalog)
	sessions := model.GenerateSessions(catalog, index, params.UnitDuration)
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}

	problem := &Problem{
		Catalog:  catalog,
		Index:    index,
		Params:   params,
		Sessions: sessions,
		rooms:    make([][]int, len(sessions)),
	}

	allRooms := lo.Range(index.Rooms())
	for _, session := range sessions {
		problem.rooms[session.ID] = lo.Filter(allRooms, func(room int, _ int) bool {
			return index.Fits(session.Cohorts, room)
		})
		if !problem.Schedulable(session) {
			problem.unschedulable++
		}
	}

	if problem.unschedulable == len(sessions) {
		return nil, ErrNothingSchedulable
	}
	return problem, nil
}

// CandidateRooms returns the rooms able to host the session. The slice is shared and must not be modified
func (problem *Problem) CandidateRooms(session model.Session) []int {
	return problem.rooms[session.ID]
}

func (problem *Problem) capableLecturers(session model.Session) []int {
	return problem.Index.CapableLecturers(session.SubjectIndex, session.Type)
}

// Schedulable checks whether the session has at least one fitting room and one capable lecturer
func (problem *Problem) Schedulable(session model.Session) bool {
	return len(problem.rooms[session.ID]) > 0 &&
		len(problem.capableLecturers(session)) > 0
}

// Unschedulable is the number of sessions no schedule can ever contain
func (problem *Problem) Unschedulable() int {
	return problem.unschedulable
}
