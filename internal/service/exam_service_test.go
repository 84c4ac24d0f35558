package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
	appErrors "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/errors"
)

type examRepoMock struct {
	exams   map[string]models.Exam
	results map[string][]models.ExamResult
}

func (m *examRepoMock) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	exam, ok := m.exams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &exam, nil
}

func (m *examRepoMock) ListResults(ctx context.Context, examID string) ([]models.ExamResult, error) {
	return m.results[examID], nil
}

func TestExamServiceRankingSkipsAbsentStudents(t *testing.T) {
	repo := &examRepoMock{
		exams: map[string]models.Exam{"exam-1": {ID: "exam-1", Name: "Midterm"}},
		results: map[string][]models.ExamResult{"exam-1": {
			{StudentID: "st-1", StudentName: "Asha", Score: floatPtr(88)},
			{StudentID: "st-2", StudentName: "Bilal", Score: nil},
			{StudentID: "st-3", StudentName: "Chitra", Score: floatPtr(92)},
			{StudentID: "st-4", StudentName: "Deepak", Score: floatPtr(88)},
		}},
	}
	svc := NewExamService(repo, nil)

	ranking, err := svc.Ranking(context.Background(), "exam-1")
	require.NoError(t, err)
	assert.Equal(t, 1, ranking.Skipped)
	require.Len(t, ranking.Results, 3)

	assert.Equal(t, "Chitra", ranking.Results[0].StudentName)
	assert.Equal(t, 1, ranking.Results[0].Rank)
	assert.Equal(t, 2, ranking.Results[1].Rank)
	assert.Equal(t, 2, ranking.Results[2].Rank)
}

func TestExamServiceRankingUnknownExam(t *testing.T) {
	svc := NewExamService(&examRepoMock{exams: map[string]models.Exam{}}, nil)

	_, err := svc.Ranking(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "exam not found", appErrors.FromError(err).Message)
}

func TestExamServiceRankingEmptyResults(t *testing.T) {
	repo := &examRepoMock{
		exams:   map[string]models.Exam{"exam-1": {ID: "exam-1"}},
		results: map[string][]models.ExamResult{},
	}
	svc := NewExamService(repo, nil)

	ranking, err := svc.Ranking(context.Background(), "exam-1")
	require.NoError(t, err)
	assert.Empty(t, ranking.Results)
	assert.Zero(t, ranking.Skipped)
}
