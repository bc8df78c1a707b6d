package genetic

import (
	"slices"

	"github.com/limaJavier/timetabling-ga/pkg/model"
	"github.com/samber/lo"
)

// Schedule is a candidate timetable: one bucket of concurrently placed sessions per slot.
// The fitness is cached by Evaluate and dropped by Invalidate, never updated incrementally
type Schedule struct {
	Slots [][]model.Session

	fitness   float64
	breakdown Breakdown
	evaluated bool
}

func NewSchedule(slots int) *Schedule {
	return &Schedule{Slots: make([][]model.Session, slots)}
}

// Clone returns a deep copy whose buckets can be changed without affecting the original
func (schedule *Schedule) Clone() *Schedule {
	clone := *schedule
	clone.Slots = make([][]model.Session, len(schedule.Slots))
	for slot, bucket := range schedule.Slots {
		clone.Slots[slot] = slices.Clone(bucket)
	}
	return &clone
}

func (schedule *Schedule) Horizon() int {
	return len(schedule.Slots)
}

// Fitness returns the cached penalty; it is only meaningful when Evaluated is true
func (schedule *Schedule) Fitness() float64 {
	return schedule.fitness
}

func (schedule *Schedule) Breakdown() Breakdown {
	return schedule.breakdown
}

func (schedule *Schedule) Evaluated() bool {
	return schedule.evaluated
}

// Invalidate marks the cached fitness as stale after a structural change
func (schedule *Schedule) Invalidate() {
	schedule.fitness = 0
	schedule.breakdown = Breakdown{}
	schedule.evaluated = false
}

// Sessions returns every placed session in slot order
func (schedule *Schedule) Sessions() []model.Session {
	return lo.Flatten(schedule.Slots)
}

func (schedule *Schedule) Len() int {
	return lo.SumBy(schedule.Slots, func(bucket []model.Session) int { return len(bucket) })
}

// Missing counts the sessions of the generated list whose ID does not appear in the schedule
func (schedule *Schedule) Missing(sessions []model.Session) int {
	present := make(map[int]bool, len(sessions))
	for _, bucket := range schedule.Slots {
		for _, session := range bucket {
			present[session.ID] = true
		}
	}
	return lo.CountBy(sessions, func(session model.Session) bool { return !present[session.ID] })
}

func (schedule *Schedule) place(session model.Session, slot int) {
	session.Slot = slot
	schedule.Slots[slot] = append(schedule.Slots[slot], session)
}

func (schedule *Schedule) remove(slot, position int) model.Session {
	session := schedule.Slots[slot][position]
	schedule.Slots[slot] = slices.Delete(schedule.Slots[slot], position, position+1)
	return session
}
