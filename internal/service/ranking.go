package service

import (
	"sort"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
)

// AssignRanks orders scored entities by score descending and assigns dense
// "1224" competition ranks: an entity's rank is one plus the number of
// entities with a strictly higher score, so equal scores share a rank and
// the next distinct score resumes at its absolute position.
//
// Entities without a score are excluded from the returned ranking entirely.
// The sort is stable, so entities with equal scores keep their input order.
func AssignRanks(entities []models.ScoredEntity) []models.RankedEntity {
	scored := make([]models.ScoredEntity, 0, len(entities))
	for _, entity := range entities {
		if entity.Score != nil {
			scored = append(scored, entity)
		}
	}
	if len(scored) == 0 {
		return []models.RankedEntity{}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return *scored[i].Score > *scored[j].Score
	})

	ranked := make([]models.RankedEntity, len(scored))
	rank := 1
	for i, entity := range scored {
		if i > 0 && *entity.Score < *scored[i-1].Score {
			rank = i + 1
		}
		ranked[i] = models.RankedEntity{ID: entity.ID, Score: *entity.Score, Rank: rank}
	}
	return ranked
}
