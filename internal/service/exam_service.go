package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
	appErrors "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/errors"
)

type examRepository interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	ListResults(ctx context.Context, examID string) ([]models.ExamResult, error)
}

// ExamService ranks exam results for report-card display.
type ExamService struct {
	repo   examRepository
	logger *zap.Logger
}

// NewExamService instantiates ExamService.
func NewExamService(repo examRepository, logger *zap.Logger) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, logger: logger}
}

// Ranking loads an exam's results and assigns dense competition ranks by
// score descending. Students without a score are counted in Skipped and do
// not appear in the ranking.
func (s *ExamService) Ranking(ctx context.Context, examID string) (*models.ExamRanking, error) {
	if _, err := s.repo.FindByID(ctx, examID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	results, err := s.repo.ListResults(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam results")
	}

	scored := make([]models.ScoredEntity, 0, len(results))
	byStudent := make(map[string]models.ExamResult, len(results))
	for _, result := range results {
		scored = append(scored, models.ScoredEntity{ID: result.StudentID, Score: result.Score})
		byStudent[result.StudentID] = result
	}
	ranked := AssignRanks(scored)

	rankedResults := make([]models.RankedResult, 0, len(ranked))
	for _, row := range ranked {
		rankedResults = append(rankedResults, models.RankedResult{
			StudentID:   row.ID,
			StudentName: byStudent[row.ID].StudentName,
			Score:       row.Score,
			Rank:        row.Rank,
		})
	}

	return &models.ExamRanking{
		ExamID:  examID,
		Results: rankedResults,
		Skipped: len(results) - len(rankedResults),
	}, nil
}
