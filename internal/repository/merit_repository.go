package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
)

// MeritRepository persists merit configurations, applications and generated
// merit lists.
type MeritRepository struct {
	db *sqlx.DB
}

// NewMeritRepository creates a new merit repository.
func NewMeritRepository(db *sqlx.DB) *MeritRepository {
	return &MeritRepository{db: db}
}

// FindConfigByID loads a configuration with its criteria ordered by position.
func (r *MeritRepository) FindConfigByID(ctx context.Context, id string) (*models.MeritConfiguration, error) {
	const query = `SELECT id, name, created_at, updated_at FROM merit_configurations WHERE id = $1`
	var config models.MeritConfiguration
	if err := r.db.GetContext(ctx, &config, query, id); err != nil {
		return nil, err
	}

	const criteriaQuery = `SELECT id, config_id, field, weight, sort_order, position FROM merit_criteria WHERE config_id = $1 ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &config.Criteria, criteriaQuery, id); err != nil {
		return nil, fmt.Errorf("load merit criteria: %w", err)
	}
	return &config, nil
}

// CreateConfig stores a configuration and its criteria in one transaction.
func (r *MeritRepository) CreateConfig(ctx context.Context, config *models.MeritConfiguration) error {
	if config.ID == "" {
		config.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	config.CreatedAt = now
	config.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create merit config: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO merit_configurations (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)`, config); err != nil {
		return fmt.Errorf("create merit config: %w", err)
	}

	for i := range config.Criteria {
		criterion := &config.Criteria[i]
		if criterion.ID == "" {
			criterion.ID = uuid.NewString()
		}
		criterion.ConfigID = config.ID
		criterion.Position = i
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO merit_criteria (id, config_id, field, weight, sort_order, position) VALUES (:id, :config_id, :field, :weight, :sort_order, :position)`, criterion); err != nil {
			return fmt.Errorf("create merit criterion: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create merit config: %w", err)
	}
	return nil
}

// UpdateCriteriaPositions rewrites the display order of a configuration's criteria.
func (r *MeritRepository) UpdateCriteriaPositions(ctx context.Context, configID string, criteria []models.MeritCriterion) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder criteria: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, criterion := range criteria {
		if _, err = tx.ExecContext(ctx, `UPDATE merit_criteria SET position = $1 WHERE id = $2 AND config_id = $3`, criterion.Position, criterion.ID, configID); err != nil {
			return fmt.Errorf("update criterion position: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder criteria: %w", err)
	}
	return nil
}

// ListApplications returns all admission applications.
func (r *MeritRepository) ListApplications(ctx context.Context) ([]models.Application, error) {
	const query = `SELECT id, applicant_name, entrance_score, interview_score, previous_gpa, distance_km, submitted_at FROM applications ORDER BY submitted_at ASC`
	var applications []models.Application
	if err := r.db.SelectContext(ctx, &applications, query); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return applications, nil
}

// SaveMeritList persists a generated list and its entries atomically.
func (r *MeritRepository) SaveMeritList(ctx context.Context, list *models.MeritList) error {
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	if list.GeneratedAt.IsZero() {
		list.GeneratedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save merit list: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO merit_lists (id, config_id, name, generated_at) VALUES (:id, :config_id, :name, :generated_at)`, list); err != nil {
		return fmt.Errorf("create merit list: %w", err)
	}

	for i := range list.Entries {
		entry := &list.Entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.MeritListID = list.ID
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO merit_entries (id, merit_list_id, application_id, applicant_name, composite_score, rank) VALUES (:id, :merit_list_id, :application_id, :applicant_name, :composite_score, :rank)`, entry); err != nil {
			return fmt.Errorf("create merit entry: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save merit list: %w", err)
	}
	return nil
}

// FindMeritListByID loads a persisted list with its entries ordered by rank.
func (r *MeritRepository) FindMeritListByID(ctx context.Context, id string) (*models.MeritList, error) {
	const query = `SELECT id, config_id, name, generated_at FROM merit_lists WHERE id = $1`
	var list models.MeritList
	if err := r.db.GetContext(ctx, &list, query, id); err != nil {
		return nil, err
	}

	const entriesQuery = `SELECT id, merit_list_id, application_id, applicant_name, composite_score, rank FROM merit_entries WHERE merit_list_id = $1 ORDER BY rank ASC, applicant_name ASC`
	if err := r.db.SelectContext(ctx, &list.Entries, entriesQuery, id); err != nil {
		return nil, fmt.Errorf("load merit entries: %w", err)
	}
	return &list, nil
}
