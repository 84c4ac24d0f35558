package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
)

const slotColumns = "id, timetable_id, class_id, section_id, subject_teacher_id, room_id, day_of_week, start_time, end_time, created_at, updated_at"

// SlotRepository provides persistence for timetable slots.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository creates a new slot repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// List returns slots with optional filtering and pagination.
func (r *SlotRepository) List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, int, error) {
	base := "FROM time_slots WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TimetableID != "" {
		conditions = append(conditions, fmt.Sprintf("timetable_id = $%d", len(args)+1))
		args = append(args, filter.TimetableID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.SubjectTeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_teacher_id = $%d", len(args)+1))
		args = append(args, filter.SubjectTeacherID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.Day))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"day_of_week": true,
		"start_time":  true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "day_of_week"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", slotColumns, base, sortBy, order, size, offset)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list time slots: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count time slots: %w", err)
	}

	return slots, total, nil
}

// FindByID loads a slot by id.
func (r *SlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE id = $1", slotColumns)
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListForDay returns every slot of a timetable on one weekday. The conflict
// checker runs over this set.
func (r *SlotRepository) ListForDay(ctx context.Context, timetableID string, day models.DayOfWeek) ([]models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE timetable_id = $1 AND day_of_week = $2 ORDER BY start_time ASC", slotColumns)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, timetableID, day); err != nil {
		return nil, fmt.Errorf("list slots for day: %w", err)
	}
	return slots, nil
}

// ListByTimetable returns all slots of a timetable ordered for grid assembly.
func (r *SlotRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE timetable_id = $1 ORDER BY day_of_week ASC, start_time ASC", slotColumns)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list slots by timetable: %w", err)
	}
	return slots, nil
}

// ListBySubjectTeacher returns the weekly slots taught under a subject-teacher pairing.
func (r *SlotRepository) ListBySubjectTeacher(ctx context.Context, subjectTeacherID string) ([]models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE subject_teacher_id = $1 ORDER BY day_of_week ASC, start_time ASC", slotColumns)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, subjectTeacherID); err != nil {
		return nil, fmt.Errorf("list slots by subject teacher: %w", err)
	}
	return slots, nil
}

// Create stores a new slot record. The time_slots table carries exclusion
// constraints over the class/section, teacher and room axes, so a concurrent
// writer that slips past the in-process conflict check still fails here.
func (r *SlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO time_slots (id, timetable_id, class_id, section_id, subject_teacher_id, room_id, day_of_week, start_time, end_time, created_at, updated_at) VALUES (:id, :timetable_id, :class_id, :section_id, :subject_teacher_id, :room_id, :day_of_week, :start_time, :end_time, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// Update replaces all mutable fields of a slot.
func (r *SlotRepository) Update(ctx context.Context, slot *models.TimeSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE time_slots SET class_id = :class_id, section_id = :section_id, subject_teacher_id = :subject_teacher_id, room_id = :room_id, day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id AND timetable_id = :timetable_id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}
	return nil
}

// Delete removes a slot by id.
func (r *SlotRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM time_slots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}
	return nil
}
