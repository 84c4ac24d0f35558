package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
)

const timetableColumns = "id, class_id, name, version, active, effective_from, effective_to, created_at, updated_at"

// TimetableRepository provides persistence for weekly timetables.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// List returns timetables filtered by class and/or active flag.
func (r *TimetableRepository) List(ctx context.Context, classID string, activeOnly bool) ([]models.Timetable, error) {
	base := "FROM timetables WHERE 1=1"
	var conditions []string
	var args []interface{}

	if classID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, classID)
	}
	if activeOnly {
		conditions = append(conditions, "active = TRUE")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY class_id ASC, version DESC", timetableColumns, base)
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, args...); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return timetables, nil
}

// FindByID loads a timetable by id.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	query := fmt.Sprintf("SELECT %s FROM timetables WHERE id = $1", timetableColumns)
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// FindActiveByClass loads the currently active timetable for a class.
func (r *TimetableRepository) FindActiveByClass(ctx context.Context, classID string) (*models.Timetable, error) {
	query := fmt.Sprintf("SELECT %s FROM timetables WHERE class_id = $1 AND active = TRUE", timetableColumns)
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, classID); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// Create stores a new timetable with the next version for its class.
func (r *TimetableRepository) Create(ctx context.Context, timetable *models.Timetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	timetable.CreatedAt = now
	timetable.UpdatedAt = now

	var maxVersion sql.NullInt64
	if err := r.db.GetContext(ctx, &maxVersion, `SELECT MAX(version) FROM timetables WHERE class_id = $1`, timetable.ClassID); err != nil {
		return fmt.Errorf("resolve timetable version: %w", err)
	}
	timetable.Version = int(maxVersion.Int64) + 1

	const query = `INSERT INTO timetables (id, class_id, name, version, active, effective_from, effective_to, created_at, updated_at) VALUES (:id, :class_id, :name, :version, :active, :effective_from, :effective_to, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, timetable); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// Update modifies name and effective range of a timetable.
func (r *TimetableRepository) Update(ctx context.Context, timetable *models.Timetable) error {
	timetable.UpdatedAt = time.Now().UTC()
	const query = `UPDATE timetables SET name = :name, effective_from = :effective_from, effective_to = :effective_to, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, timetable); err != nil {
		return fmt.Errorf("update timetable: %w", err)
	}
	return nil
}

// Activate marks the timetable active and deactivates every other timetable
// of the same class within one transaction.
func (r *TimetableRepository) Activate(ctx context.Context, id, classID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate timetable: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, `UPDATE timetables SET active = FALSE, updated_at = $1 WHERE class_id = $2 AND active = TRUE`, now, classID); err != nil {
		return fmt.Errorf("deactivate previous timetable: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE timetables SET active = TRUE, updated_at = $1 WHERE id = $2`, now, id); err != nil {
		return fmt.Errorf("activate timetable: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit activate timetable: %w", err)
	}
	return nil
}

// Delete removes a timetable and cascades to its slots via the schema.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	return nil
}
