package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
	appErrors "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/errors"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/jobs"
)

// weightSumMessage is surfaced verbatim to API clients.
const weightSumMessage = "Total weight must equal 100%"

const jobTypeMeritRefresh = "merit_list_refresh"

type meritRepository interface {
	FindConfigByID(ctx context.Context, id string) (*models.MeritConfiguration, error)
	CreateConfig(ctx context.Context, config *models.MeritConfiguration) error
	UpdateCriteriaPositions(ctx context.Context, configID string, criteria []models.MeritCriterion) error
	ListApplications(ctx context.Context) ([]models.Application, error)
	SaveMeritList(ctx context.Context, list *models.MeritList) error
	FindMeritListByID(ctx context.Context, id string) (*models.MeritList, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// CriterionRequest is one weighted criterion in a configuration payload.
type CriterionRequest struct {
	Field  string  `json:"field" validate:"required"`
	Weight float64 `json:"weight" validate:"required,gt=0"`
	Order  string  `json:"order" validate:"required"`
}

// CreateMeritConfigRequest describes a new merit configuration.
type CreateMeritConfigRequest struct {
	Name     string             `json:"name" validate:"required"`
	Criteria []CriterionRequest `json:"criteria" validate:"required,min=1,dive"`
}

// ReorderCriteriaRequest moves one criterion to a new display position.
type ReorderCriteriaRequest struct {
	FromIndex int `json:"from_index" validate:"gte=0"`
	ToIndex   int `json:"to_index" validate:"gte=0"`
}

// GenerateMeritListRequest names the snapshot to generate.
type GenerateMeritListRequest struct {
	Name string `json:"name" validate:"required"`
}

// MeritRefreshPayload is the job payload for async regeneration.
type MeritRefreshPayload struct {
	ConfigID string `json:"config_id"`
	ListName string `json:"list_name"`
}

// MeritService builds weighted merit lists from admission applications.
type MeritService struct {
	repo      meritRepository
	queue     jobEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMeritService instantiates MeritService. queue may be nil when async
// refresh is disabled.
func NewMeritService(repo meritRepository, queue jobEnqueuer, validate *validator.Validate, logger *zap.Logger) *MeritService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeritService{repo: repo, queue: queue, validator: validate, logger: logger}
}

// validateWeights rejects criteria whose weights do not sum to exactly 100.
// Runs before any candidate data is touched.
func validateWeights(criteria []models.MeritCriterion) error {
	var sum float64
	for _, criterion := range criteria {
		sum += criterion.Weight
	}
	if sum != 100 {
		return appErrors.Clone(appErrors.ErrInvalidWeights, weightSumMessage)
	}
	return nil
}

// criterionSubScores assigns a 0-100 sub-score per application for one
// criterion. Applications are ordered by the raw field value per the
// criterion's direction; equal raw values share the position (and therefore
// the sub-score) of their first occurrence. With a single application the
// sub-score is 100.
func criterionSubScores(applications []models.Application, criterion models.MeritCriterion) (map[string]float64, error) {
	type rawValue struct {
		id    string
		value float64
	}

	values := make([]rawValue, 0, len(applications))
	for _, app := range applications {
		value, ok := app.FieldValue(criterion.Field)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown criterion field %q", criterion.Field))
		}
		values = append(values, rawValue{id: app.ID, value: value})
	}

	sort.SliceStable(values, func(i, j int) bool {
		if criterion.Order == models.OrderAsc {
			return values[i].value < values[j].value
		}
		return values[i].value > values[j].value
	})

	n := len(values)
	scores := make(map[string]float64, n)
	position := 1
	for i, v := range values {
		if i > 0 && v.value != values[i-1].value {
			position = i + 1
		}
		if n == 1 {
			scores[v.id] = 100
			continue
		}
		scores[v.id] = float64(n-position) / float64(n-1) * 100
	}
	return scores, nil
}

// reorderItems moves the criterion at from to position to and recomputes the
// Position field of every entry. A no-op move or an out-of-range index
// returns the input unchanged.
func reorderItems(items []models.MeritCriterion, from, to int) []models.MeritCriterion {
	if from == to || from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return items
	}

	moved := items[from]
	rest := make([]models.MeritCriterion, 0, len(items)-1)
	rest = append(rest, items[:from]...)
	rest = append(rest, items[from+1:]...)

	out := make([]models.MeritCriterion, 0, len(items))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)

	for i := range out {
		out[i].Position = i
	}
	return out
}

// CreateConfig validates and stores a merit configuration.
func (s *MeritService) CreateConfig(ctx context.Context, req CreateMeritConfigRequest) (*models.MeritConfiguration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid merit configuration payload")
	}

	criteria := make([]models.MeritCriterion, 0, len(req.Criteria))
	for i, item := range req.Criteria {
		order, ok := models.ParseCriterionOrder(item.Order)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid criterion order %q", item.Order))
		}
		if _, ok := (models.Application{}).FieldValue(item.Field); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown criterion field %q", item.Field))
		}
		criteria = append(criteria, models.MeritCriterion{
			Field:    item.Field,
			Weight:   item.Weight,
			Order:    order,
			Position: i,
		})
	}
	if err := validateWeights(criteria); err != nil {
		return nil, err
	}

	config := &models.MeritConfiguration{Name: req.Name, Criteria: criteria}
	if err := s.repo.CreateConfig(ctx, config); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create merit configuration")
	}
	return config, nil
}

// GetConfig loads a configuration with its ordered criteria.
func (s *MeritService) GetConfig(ctx context.Context, id string) (*models.MeritConfiguration, error) {
	config, err := s.repo.FindConfigByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "merit configuration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load merit configuration")
	}
	return config, nil
}

// ReorderCriteria moves one criterion of a configuration to a new display
// position. A no-op move returns the stored order without writing.
func (s *MeritService) ReorderCriteria(ctx context.Context, configID string, req ReorderCriteriaRequest) ([]models.MeritCriterion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}

	config, err := s.GetConfig(ctx, configID)
	if err != nil {
		return nil, err
	}
	if req.FromIndex >= len(config.Criteria) || req.ToIndex >= len(config.Criteria) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "criterion index out of range")
	}

	reordered := reorderItems(config.Criteria, req.FromIndex, req.ToIndex)
	if req.FromIndex == req.ToIndex {
		return reordered, nil
	}

	if err := s.repo.UpdateCriteriaPositions(ctx, configID, reordered); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reorder criteria")
	}
	return reordered, nil
}

// GenerateMeritList scores every application against the configuration and
// persists the ranked snapshot.
func (s *MeritService) GenerateMeritList(ctx context.Context, configID string, req GenerateMeritListRequest) (*models.MeritList, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid merit list payload")
	}

	config, err := s.GetConfig(ctx, configID)
	if err != nil {
		return nil, err
	}
	if err := validateWeights(config.Criteria); err != nil {
		return nil, err
	}

	applications, err := s.repo.ListApplications(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	if len(applications) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no applications found")
	}

	composites := make(map[string]float64, len(applications))
	for _, criterion := range config.Criteria {
		subScores, err := criterionSubScores(applications, criterion)
		if err != nil {
			return nil, err
		}
		for id, sub := range subScores {
			composites[id] += sub * criterion.Weight / 100
		}
	}

	scored := make([]models.ScoredEntity, 0, len(applications))
	for _, app := range applications {
		composite := composites[app.ID]
		scored = append(scored, models.ScoredEntity{ID: app.ID, Score: &composite})
	}
	ranked := AssignRanks(scored)

	names := make(map[string]string, len(applications))
	for _, app := range applications {
		names[app.ID] = app.ApplicantName
	}

	entries := make([]models.MeritEntry, 0, len(ranked))
	for _, row := range ranked {
		entries = append(entries, models.MeritEntry{
			ApplicationID:  row.ID,
			ApplicantName:  names[row.ID],
			CompositeScore: row.Score,
			Rank:           row.Rank,
		})
	}

	list := &models.MeritList{ConfigID: configID, Name: req.Name, Entries: entries}
	if err := s.repo.SaveMeritList(ctx, list); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save merit list")
	}

	s.logger.Info("merit list generated",
		zap.String("config_id", configID),
		zap.String("merit_list_id", list.ID),
		zap.Int("entries", len(list.Entries)))
	return list, nil
}

// GetMeritList loads a persisted merit list snapshot.
func (s *MeritService) GetMeritList(ctx context.Context, id string) (*models.MeritList, error) {
	list, err := s.repo.FindMeritListByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "merit list not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load merit list")
	}
	return list, nil
}

// EnqueueRefresh schedules an async regeneration of a configuration's list.
func (s *MeritService) EnqueueRefresh(ctx context.Context, configID string, req GenerateMeritListRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid merit list payload")
	}
	if s.queue == nil {
		return appErrors.Clone(appErrors.ErrInternal, "merit refresh queue disabled")
	}
	if _, err := s.GetConfig(ctx, configID); err != nil {
		return err
	}

	payload := MeritRefreshPayload{ConfigID: configID, ListName: req.Name}
	job := jobs.Job{ID: uuid.NewString(), Type: jobTypeMeritRefresh, Payload: payload}
	if err := s.queue.Enqueue(job); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue merit refresh")
	}
	return nil
}

// HandleRefreshJob is the worker-side entrypoint for queued regenerations.
func (s *MeritService) HandleRefreshJob(ctx context.Context, payload MeritRefreshPayload) error {
	_, err := s.GenerateMeritList(ctx, payload.ConfigID, GenerateMeritListRequest{Name: payload.ListName})
	if err != nil {
		s.logger.Error("merit refresh job failed", zap.String("config_id", payload.ConfigID), zap.Error(err))
	}
	return err
}
