package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestAssignRanksDenseCompetition(t *testing.T) {
	entities := []models.ScoredEntity{
		{ID: "a", Score: floatPtr(100)},
		{ID: "b", Score: floatPtr(90)},
		{ID: "c", Score: floatPtr(90)},
		{ID: "d", Score: floatPtr(80)},
	}

	ranked := AssignRanks(entities)
	require.Len(t, ranked, 4)

	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, 2, ranked[2].Rank)
	assert.Equal(t, 4, ranked[3].Rank, "rank after a tie resumes at the absolute position")
}

func TestAssignRanksExcludesNilScores(t *testing.T) {
	entities := []models.ScoredEntity{
		{ID: "present", Score: floatPtr(75)},
		{ID: "absent", Score: nil},
		{ID: "top", Score: floatPtr(95)},
	}

	ranked := AssignRanks(entities)
	require.Len(t, ranked, 2)

	assert.Equal(t, "top", ranked[0].ID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "present", ranked[1].ID)
	assert.Equal(t, 2, ranked[1].Rank)
}

func TestAssignRanksStableForEqualScores(t *testing.T) {
	entities := []models.ScoredEntity{
		{ID: "first", Score: floatPtr(50)},
		{ID: "second", Score: floatPtr(50)},
		{ID: "third", Score: floatPtr(50)},
	}

	ranked := AssignRanks(entities)
	require.Len(t, ranked, 3)

	assert.Equal(t, []string{"first", "second", "third"}, []string{ranked[0].ID, ranked[1].ID, ranked[2].ID})
	for _, row := range ranked {
		assert.Equal(t, 1, row.Rank)
	}
}

func TestAssignRanksEmptyAndAllNil(t *testing.T) {
	assert.Empty(t, AssignRanks(nil))
	assert.Empty(t, AssignRanks([]models.ScoredEntity{{ID: "x"}, {ID: "y"}}))
}
