package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
	appErrors "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/errors"
)

type slotRepository interface {
	List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, int, error)
	ListForDay(ctx context.Context, timetableID string, day models.DayOfWeek) ([]models.TimeSlot, error)
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimeSlot, error)
	ListBySubjectTeacher(ctx context.Context, subjectTeacherID string) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	Update(ctx context.Context, slot *models.TimeSlot) error
	Delete(ctx context.Context, id string) error
}

type timetableReader interface {
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
}

type gridInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// CreateSlotRequest describes payload for placing a slot on a timetable.
type CreateSlotRequest struct {
	TimetableID      string  `json:"timetable_id" validate:"required"`
	ClassID          string  `json:"class_id" validate:"required"`
	SectionID        *string `json:"section_id"`
	SubjectTeacherID string  `json:"subject_teacher_id" validate:"required"`
	RoomID           *string `json:"room_id"`
	Day              string  `json:"day_of_week" validate:"required"`
	StartTime        string  `json:"start_time" validate:"required"`
	EndTime          string  `json:"end_time" validate:"required"`
}

// UpdateSlotRequest replaces every field of an existing slot.
type UpdateSlotRequest struct {
	TimetableID      string  `json:"timetable_id" validate:"required"`
	ClassID          string  `json:"class_id" validate:"required"`
	SectionID        *string `json:"section_id"`
	SubjectTeacherID string  `json:"subject_teacher_id" validate:"required"`
	RoomID           *string `json:"room_id"`
	Day              string  `json:"day_of_week" validate:"required"`
	StartTime        string  `json:"start_time" validate:"required"`
	EndTime          string  `json:"end_time" validate:"required"`
}

// SlotService coordinates slot placement with conflict detection.
type SlotService struct {
	slots      slotRepository
	timetables timetableReader
	cache      gridInvalidator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewSlotService instantiates SlotService.
func NewSlotService(slots slotRepository, timetables timetableReader, cache gridInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotService{slots: slots, timetables: timetables, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// FindSlotConflict checks a proposed slot against existing slots of the same
// timetable and day. The three axes are checked in fixed order: class/section
// first, then teacher, then room; the first hit wins and later axes are not
// reported. excludeID skips the slot's own prior version during updates.
//
// The class/section axis uses literal equality on the section: a slot without
// a section only collides with other sectionless slots of the same class.
func FindSlotConflict(proposed models.TimeSlot, existing []models.TimeSlot, excludeID string) *models.SlotConflict {
	proposedInterval, err := proposed.Interval()
	if err != nil {
		return nil
	}

	var overlapping []models.TimeSlot
	for _, slot := range existing {
		if slot.ID != "" && slot.ID == excludeID {
			continue
		}
		if slot.TimetableID != proposed.TimetableID || slot.Day != proposed.Day {
			continue
		}
		interval, err := slot.Interval()
		if err != nil {
			continue
		}
		if proposedInterval.Overlaps(interval) {
			overlapping = append(overlapping, slot)
		}
	}

	for _, slot := range overlapping {
		if slot.ClassID == proposed.ClassID && sectionEqual(slot.SectionID, proposed.SectionID) {
			return conflictFor(slot, models.AxisClassSection,
				fmt.Sprintf("class %s%s already has a lesson on %s between %s and %s", slot.ClassID, sectionLabel(slot.SectionID), slot.Day, slot.StartTime, slot.EndTime))
		}
	}
	for _, slot := range overlapping {
		if slot.SubjectTeacherID == proposed.SubjectTeacherID {
			return conflictFor(slot, models.AxisTeacher,
				fmt.Sprintf("teacher assignment %s is already scheduled on %s between %s and %s", slot.SubjectTeacherID, slot.Day, slot.StartTime, slot.EndTime))
		}
	}
	for _, slot := range overlapping {
		if slot.RoomID != nil && proposed.RoomID != nil && *slot.RoomID == *proposed.RoomID {
			return conflictFor(slot, models.AxisRoom,
				fmt.Sprintf("room %s is already booked on %s between %s and %s", *slot.RoomID, slot.Day, slot.StartTime, slot.EndTime))
		}
	}
	return nil
}

func sectionEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sectionLabel(section *string) string {
	if section == nil {
		return ""
	}
	return fmt.Sprintf(" section %s", *section)
}

func conflictFor(slot models.TimeSlot, axis models.ConflictAxis, description string) *models.SlotConflict {
	return &models.SlotConflict{
		SlotID:           slot.ID,
		TimetableID:      slot.TimetableID,
		ClassID:          slot.ClassID,
		SectionID:        slot.SectionID,
		SubjectTeacherID: slot.SubjectTeacherID,
		RoomID:           slot.RoomID,
		Day:              slot.Day,
		StartTime:        slot.StartTime,
		EndTime:          slot.EndTime,
		Axis:             axis,
		Description:      description,
	}
}

// List returns slots with pagination metadata.
func (s *SlotService) List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, *models.Pagination, error) {
	slots, total, err := s.slots.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return slots, pagination, nil
}

// ListBySubjectTeacher returns the weekly slots of a subject-teacher pairing.
func (s *SlotService) ListBySubjectTeacher(ctx context.Context, subjectTeacherID string) ([]models.TimeSlot, error) {
	slots, err := s.slots.ListBySubjectTeacher(ctx, subjectTeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher slots")
	}
	return slots, nil
}

// Create places a new slot after conflict detection on all three axes.
func (s *SlotService) Create(ctx context.Context, req CreateSlotRequest) (*models.TimeSlot, error) {
	slot, err := s.buildSlot(ctx, req.TimetableID, req.ClassID, req.SectionID, req.SubjectTeacherID, req.RoomID, req.Day, req.StartTime, req.EndTime, &req)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNoConflict(ctx, *slot, ""); err != nil {
		return nil, err
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot")
	}
	s.invalidateGrid(ctx, slot.ClassID)
	return slot, nil
}

// Update replaces an existing slot, excluding its prior version from conflict
// checks so a slot never collides with itself.
func (s *SlotService) Update(ctx context.Context, id string, req UpdateSlotRequest) (*models.TimeSlot, error) {
	existing, err := s.slots.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	if existing.TimetableID != req.TimetableID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found in timetable")
	}

	slot, err := s.buildSlot(ctx, req.TimetableID, req.ClassID, req.SectionID, req.SubjectTeacherID, req.RoomID, req.Day, req.StartTime, req.EndTime, &req)
	if err != nil {
		return nil, err
	}
	slot.ID = existing.ID
	slot.CreatedAt = existing.CreatedAt

	if err := s.ensureNoConflict(ctx, *slot, existing.ID); err != nil {
		return nil, err
	}

	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update slot")
	}
	s.invalidateGrid(ctx, slot.ClassID)
	if existing.ClassID != slot.ClassID {
		s.invalidateGrid(ctx, existing.ClassID)
	}
	return slot, nil
}

// Delete removes a slot. Removing a slot cannot introduce a conflict, so no
// conflict check runs here.
func (s *SlotService) Delete(ctx context.Context, id string) error {
	existing, err := s.slots.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}

	if err := s.slots.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot")
	}
	s.invalidateGrid(ctx, existing.ClassID)
	return nil
}

func (s *SlotService) buildSlot(ctx context.Context, timetableID, classID string, sectionID *string, subjectTeacherID string, roomID *string, day, startTime, endTime string, payload interface{}) (*models.TimeSlot, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}

	parsedDay, err := models.ParseDay(day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day of week")
	}
	if _, err := models.NewTimeInterval(parsedDay, startTime, endTime); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot times")
	}

	if _, err := s.timetables.FindByID(ctx, timetableID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	return &models.TimeSlot{
		TimetableID:      timetableID,
		ClassID:          classID,
		SectionID:        sectionID,
		SubjectTeacherID: subjectTeacherID,
		RoomID:           roomID,
		Day:              parsedDay,
		StartTime:        startTime,
		EndTime:          endTime,
	}, nil
}

func (s *SlotService) ensureNoConflict(ctx context.Context, slot models.TimeSlot, excludeID string) error {
	existing, err := s.slots.ListForDay(ctx, slot.TimetableID, slot.Day)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot conflicts")
	}

	conflict := FindSlotConflict(slot, existing, excludeID)
	if conflict == nil {
		return nil
	}

	if s.metrics != nil {
		s.metrics.RecordSlotConflict(string(conflict.Axis))
	}
	domainErr := &models.SlotConflictError{Axis: conflict.Axis, Description: conflict.Description, Conflict: *conflict}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflict.Description)
}

func (s *SlotService) invalidateGrid(ctx context.Context, classID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, gridCachePattern(classID)); err != nil {
		s.logger.Warn("failed to invalidate timetable grid cache", zap.String("class_id", classID), zap.Error(err))
	}
}
