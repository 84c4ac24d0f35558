package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
	appErrors "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/errors"
)

type timetableRepository interface {
	List(ctx context.Context, classID string, activeOnly bool) ([]models.Timetable, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	FindActiveByClass(ctx context.Context, classID string) (*models.Timetable, error)
	Create(ctx context.Context, timetable *models.Timetable) error
	Update(ctx context.Context, timetable *models.Timetable) error
	Activate(ctx context.Context, id, classID string) error
	Delete(ctx context.Context, id string) error
}

type timetableSlotLister interface {
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimeSlot, error)
}

type gridCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Invalidate(ctx context.Context, pattern string) error
}

// CreateTimetableRequest describes a new timetable draft.
type CreateTimetableRequest struct {
	ClassID       string     `json:"class_id" validate:"required"`
	Name          string     `json:"name" validate:"required"`
	EffectiveFrom time.Time  `json:"effective_from" validate:"required"`
	EffectiveTo   *time.Time `json:"effective_to"`
}

// UpdateTimetableRequest modifies a timetable's name and effective range.
type UpdateTimetableRequest struct {
	Name          string     `json:"name" validate:"required"`
	EffectiveFrom time.Time  `json:"effective_from" validate:"required"`
	EffectiveTo   *time.Time `json:"effective_to"`
}

// TimetableService manages timetable versions and the weekly grid view.
type TimetableService struct {
	timetables timetableRepository
	slots      timetableSlotLister
	cache      gridCache
	gridTTL    time.Duration
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewTimetableService instantiates TimetableService.
func NewTimetableService(timetables timetableRepository, slots timetableSlotLister, cache gridCache, gridTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gridTTL <= 0 {
		gridTTL = 5 * time.Minute
	}
	return &TimetableService{timetables: timetables, slots: slots, cache: cache, gridTTL: gridTTL, validator: validate, logger: logger}
}

// List returns timetables, optionally restricted to one class or to active ones.
func (s *TimetableService) List(ctx context.Context, classID string, activeOnly bool) ([]models.Timetable, error) {
	timetables, err := s.timetables.List(ctx, classID, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return timetables, nil
}

// Get loads a timetable by id.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.Timetable, error) {
	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return timetable, nil
}

// Create stores a new inactive timetable draft with the next version number
// for its class.
func (s *TimetableService) Create(ctx context.Context, req CreateTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if req.EffectiveTo != nil && !req.EffectiveTo.After(req.EffectiveFrom) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "effective_to must be after effective_from")
	}

	timetable := &models.Timetable{
		ClassID:       req.ClassID,
		Name:          req.Name,
		Active:        false,
		EffectiveFrom: req.EffectiveFrom,
		EffectiveTo:   req.EffectiveTo,
	}
	if err := s.timetables.Create(ctx, timetable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
	}
	return timetable, nil
}

// Update modifies a timetable's name and effective range.
func (s *TimetableService) Update(ctx context.Context, id string, req UpdateTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if req.EffectiveTo != nil && !req.EffectiveTo.After(req.EffectiveFrom) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "effective_to must be after effective_from")
	}

	timetable, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	timetable.Name = req.Name
	timetable.EffectiveFrom = req.EffectiveFrom
	timetable.EffectiveTo = req.EffectiveTo

	if err := s.timetables.Update(ctx, timetable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable")
	}
	s.invalidateGrid(ctx, timetable.ClassID)
	return timetable, nil
}

// Activate makes a timetable the live one for its class, deactivating the
// previously active version in the same transaction.
func (s *TimetableService) Activate(ctx context.Context, id string) (*models.Timetable, error) {
	timetable, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if timetable.Active {
		return timetable, nil
	}

	if err := s.timetables.Activate(ctx, id, timetable.ClassID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate timetable")
	}
	timetable.Active = true
	s.invalidateGrid(ctx, timetable.ClassID)

	s.logger.Info("timetable activated",
		zap.String("timetable_id", id),
		zap.String("class_id", timetable.ClassID),
		zap.Int("version", timetable.Version))
	return timetable, nil
}

// Delete removes a timetable and its slots.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	timetable, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.timetables.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	s.invalidateGrid(ctx, timetable.ClassID)
	return nil
}

// Grid assembles the weekly view of a class's active timetable, served from
// cache when warm.
func (s *TimetableService) Grid(ctx context.Context, classID string) (*models.TimetableGrid, error) {
	key := gridCacheKey(classID)
	if s.cache != nil {
		var cached models.TimetableGrid
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	timetable, err := s.timetables.FindActiveByClass(ctx, classID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active timetable for class")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active timetable")
	}

	slots, err := s.slots.ListByTimetable(ctx, timetable.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}

	grid := buildGrid(*timetable, slots)
	if s.cache != nil {
		s.cache.Set(ctx, key, grid, s.gridTTL)
	}
	return grid, nil
}

// buildGrid groups slots by day in grid order, each day sorted by start time.
func buildGrid(timetable models.Timetable, slots []models.TimeSlot) *models.TimetableGrid {
	byDay := make(map[models.DayOfWeek][]models.TimeSlot, len(models.Weekdays))
	for _, slot := range slots {
		byDay[slot.Day] = append(byDay[slot.Day], slot)
	}

	days := make([]models.GridDay, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		daySlots := byDay[day]
		sort.SliceStable(daySlots, func(i, j int) bool {
			return daySlots[i].StartTime < daySlots[j].StartTime
		})
		days = append(days, models.GridDay{Day: day, Slots: daySlots})
	}
	return &models.TimetableGrid{Timetable: timetable, Days: days}
}

func (s *TimetableService) invalidateGrid(ctx context.Context, classID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, gridCachePattern(classID)); err != nil {
		s.logger.Warn("failed to invalidate timetable grid cache", zap.String("class_id", classID), zap.Error(err))
	}
}
