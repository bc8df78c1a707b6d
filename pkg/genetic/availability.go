package genetic

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/limaJavier/timetabling-ga/pkg/model"
	"github.com/samber/lo"
)

// availability keeps, for every resource of one kind, the set of slots it is still free in
type availability []*bitset.BitSet

func newAvailability(resources, slots int) availability {
	pools := make(availability, resources)
	for resource := range pools {
		pools[resource] = bitset.New(uint(slots))
		for slot := range slots {
			pools[resource].Set(uint(slot))
		}
	}
	return pools
}

func (pools availability) free(resource, slot int) bool {
	return pools[resource].Test(uint(slot))
}

func (pools availability) take(resource, slot int) {
	pools[resource].Clear(uint(slot))
}

func (pools availability) release(resource, slot int) {
	pools[resource].Set(uint(slot))
}

func (pools availability) freeSlots(resource int) uint {
	return pools[resource].Count()
}

// resourcePools groups the availability of cohorts, lecturers and rooms over one horizon
type resourcePools struct {
	cohorts   availability
	lecturers availability
	rooms     availability
}

func newResourcePools(index *model.Index, horizon int) resourcePools {
	return resourcePools{
		cohorts:   newAvailability(index.Cohorts(), horizon),
		lecturers: newAvailability(index.Lecturers(), horizon),
		rooms:     newAvailability(index.Rooms(), horizon),
	}
}

// occupiedPools returns the pools left free by the sessions already placed in schedule
func occupiedPools(index *model.Index, schedule *Schedule) resourcePools {
	pools := newResourcePools(index, schedule.Horizon())
	for slot, bucket := range schedule.Slots {
		for _, session := range bucket {
			pools.commit(index, session, slot)
		}
	}
	return pools
}

// cohortsFree checks the participants only: committing a cohort also takes the slot from every
// colliding cohort
func (pools resourcePools) cohortsFree(session model.Session, slot int) bool {
	return lo.EveryBy(session.Cohorts, func(cohort int) bool { return pools.cohorts.free(cohort, slot) })
}

func (pools resourcePools) commit(index *model.Index, session model.Session, slot int) {
	for _, cohort := range session.Cohorts {
		for _, colliding := range index.Collisions(cohort) {
			pools.cohorts.take(colliding, slot)
		}
	}
	pools.lecturers.take(session.Lecturer, slot)
	pools.rooms.take(session.Room, slot)
}

// rebook replaces the lecturer and room bookings of slot with those of bucket
func (pools resourcePools) rebook(index *model.Index, bucket []model.Session, slot int) {
	for lecturer := range pools.lecturers {
		pools.lecturers.release(lecturer, slot)
	}
	for room := range pools.rooms {
		pools.rooms.release(room, slot)
	}
	for _, session := range bucket {
		pools.commit(index, session, slot)
	}
}

// scarcity is the number of slots still free for the most booked participant of session
func (pools resourcePools) scarcity(session model.Session) uint {
	return lo.Min(lo.Map(session.Cohorts, func(cohort int, _ int) uint { return pools.cohorts.freeSlots(cohort) }))
}
