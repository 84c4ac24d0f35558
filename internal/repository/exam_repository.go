package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
)

// ExamRepository provides read access to exams and their results.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new exam repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// FindByID loads an exam by id.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, class_id, term_id, subject_id, name, held_at, created_at FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListResults returns all results of an exam joined with student names.
// Absent students appear with a NULL score.
func (r *ExamRepository) ListResults(ctx context.Context, examID string) ([]models.ExamResult, error) {
	const query = `SELECT er.id, er.exam_id, er.student_id, st.full_name AS student_name, er.score, er.recorded_at
        FROM exam_results er
        JOIN students st ON st.id = er.student_id
        WHERE er.exam_id = $1
        ORDER BY st.full_name ASC`
	var results []models.ExamResult
	if err := r.db.SelectContext(ctx, &results, query, examID); err != nil {
		return nil, fmt.Errorf("list exam results: %w", err)
	}
	return results, nil
}
