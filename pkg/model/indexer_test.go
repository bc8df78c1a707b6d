package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	//** Arrange
	catalog, err := CatalogFromJson(testDirectory + "catalog.json")
	require.NoError(t, err)

	//** Act
	index := NewIndex(catalog)

	//** Assert
	assert.Equal(t, 6, index.Cohorts())
	assert.Equal(t, 3, index.Lecturers())
	assert.Equal(t, 2, index.Rooms())
	assert.Equal(t, 2, index.Subjects())

	group, _ := index.CohortId("CS-1")
	subgroupA, _ := index.CohortId("CS-1a")
	subgroupB, _ := index.CohortId("CS-1b")
	other, _ := index.CohortId("CS-2")

	assert.Equal(t, uint64(30), index.CohortSize(group))
	assert.Equal(t, uint64(15), index.CohortSize(subgroupA))
	assert.Equal(t, "CS-1b", index.CohortName(subgroupB))

	t.Run("Collisions", func(t *testing.T) {
		assert.True(t, index.Collide(group, group))
		assert.True(t, index.Collide(group, subgroupA))
		assert.True(t, index.Collide(subgroupB, group))
		assert.False(t, index.Collide(subgroupA, subgroupB))
		assert.False(t, index.Collide(group, other))
		assert.ElementsMatch(t, []int{group, subgroupA, subgroupB}, index.Collisions(group))
		assert.ElementsMatch(t, []int{subgroupA, group}, index.Collisions(subgroupA))
		assert.True(t, index.CohortsCollide([]int{other, subgroupA}, []int{group}))
	})

	t.Run("Capabilities", func(t *testing.T) {
		algorithms, _ := index.SubjectId("Algorithms")
		physics, _ := index.SubjectId("Physics")

		assert.Equal(t, []int{0}, index.CapableLecturers(algorithms, Lecture))
		assert.ElementsMatch(t, []int{0, 2}, index.CapableLecturers(algorithms, Practical))
		assert.Equal(t, []int{1}, index.CapableLecturers(physics, Lecture))
		assert.Equal(t, "Noether", index.LecturerName(index.CapableLecturers(physics, Practical)[0]))
	})

	t.Run("Room fit", func(t *testing.T) {
		assert.True(t, index.Fits([]int{group}, 0))
		assert.False(t, index.Fits([]int{group}, 1))
		assert.True(t, index.Fits([]int{subgroupA}, 1))
		assert.False(t, index.Fits([]int{subgroupA, subgroupB}, 1))
	})
}
