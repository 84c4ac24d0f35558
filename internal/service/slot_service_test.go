package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
	appErrors "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/errors"
)

type slotRepoMock struct {
	slots map[string]models.TimeSlot
	order []string
}

func newSlotRepoMock(slots ...models.TimeSlot) *slotRepoMock {
	m := &slotRepoMock{slots: make(map[string]models.TimeSlot)}
	for _, slot := range slots {
		m.slots[slot.ID] = slot
		m.order = append(m.order, slot.ID)
	}
	return m
}

func (m *slotRepoMock) all() []models.TimeSlot {
	out := make([]models.TimeSlot, 0, len(m.order))
	for _, id := range m.order {
		if slot, ok := m.slots[id]; ok {
			out = append(out, slot)
		}
	}
	return out
}

func (m *slotRepoMock) List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, int, error) {
	slots := m.all()
	return slots, len(slots), nil
}

func (m *slotRepoMock) ListForDay(ctx context.Context, timetableID string, day models.DayOfWeek) ([]models.TimeSlot, error) {
	var out []models.TimeSlot
	for _, slot := range m.all() {
		if slot.TimetableID == timetableID && slot.Day == day {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (m *slotRepoMock) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimeSlot, error) {
	var out []models.TimeSlot
	for _, slot := range m.all() {
		if slot.TimetableID == timetableID {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (m *slotRepoMock) ListBySubjectTeacher(ctx context.Context, subjectTeacherID string) ([]models.TimeSlot, error) {
	var out []models.TimeSlot
	for _, slot := range m.all() {
		if slot.SubjectTeacherID == subjectTeacherID {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (m *slotRepoMock) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	slot, ok := m.slots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &slot, nil
}

func (m *slotRepoMock) Create(ctx context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = "slot-" + string(slot.Day) + "-" + slot.StartTime
	}
	m.slots[slot.ID] = *slot
	m.order = append(m.order, slot.ID)
	return nil
}

func (m *slotRepoMock) Update(ctx context.Context, slot *models.TimeSlot) error {
	m.slots[slot.ID] = *slot
	return nil
}

func (m *slotRepoMock) Delete(ctx context.Context, id string) error {
	delete(m.slots, id)
	return nil
}

type timetableReaderMock struct {
	timetables map[string]models.Timetable
}

func (m *timetableReaderMock) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	timetable, ok := m.timetables[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &timetable, nil
}

type invalidatorMock struct {
	patterns []string
}

func (m *invalidatorMock) Invalidate(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func strPtr(v string) *string {
	return &v
}

func baseSlot(id, start, end string) models.TimeSlot {
	return models.TimeSlot{
		ID:               id,
		TimetableID:      "tt-1",
		ClassID:          "class-10",
		SectionID:        strPtr("A"),
		SubjectTeacherID: "st-math",
		RoomID:           strPtr("room-1"),
		Day:              models.Monday,
		StartTime:        start,
		EndTime:          end,
	}
}

func TestFindSlotConflictClassSectionAxisWinsFirst(t *testing.T) {
	// Existing slot collides on all three axes; the class/section axis is
	// checked first and must be the one reported.
	existing := []models.TimeSlot{baseSlot("s1", "09:00", "10:00")}
	proposed := baseSlot("", "09:30", "10:30")

	conflict := FindSlotConflict(proposed, existing, "")
	require.NotNil(t, conflict)
	assert.Equal(t, models.AxisClassSection, conflict.Axis)
	assert.Equal(t, "s1", conflict.SlotID)
	assert.Contains(t, conflict.Description, "class class-10 section A")
	assert.Contains(t, conflict.Description, "MONDAY")
}

func TestFindSlotConflictTeacherAxis(t *testing.T) {
	existing := baseSlot("s1", "09:00", "10:00")
	proposed := baseSlot("", "09:30", "10:30")
	proposed.ClassID = "class-11"
	proposed.RoomID = strPtr("room-2")

	conflict := FindSlotConflict(proposed, []models.TimeSlot{existing}, "")
	require.NotNil(t, conflict)
	assert.Equal(t, models.AxisTeacher, conflict.Axis)
	assert.Contains(t, conflict.Description, "st-math")
}

func TestFindSlotConflictRoomAxis(t *testing.T) {
	existing := baseSlot("s1", "09:00", "10:00")
	proposed := baseSlot("", "09:30", "10:30")
	proposed.ClassID = "class-11"
	proposed.SubjectTeacherID = "st-physics"

	conflict := FindSlotConflict(proposed, []models.TimeSlot{existing}, "")
	require.NotNil(t, conflict)
	assert.Equal(t, models.AxisRoom, conflict.Axis)
	assert.Contains(t, conflict.Description, "room room-1")
}

func TestFindSlotConflictNilRoomsNeverCollide(t *testing.T) {
	existing := baseSlot("s1", "09:00", "10:00")
	existing.RoomID = nil
	proposed := baseSlot("", "09:30", "10:30")
	proposed.ClassID = "class-11"
	proposed.SubjectTeacherID = "st-physics"
	proposed.RoomID = nil

	assert.Nil(t, FindSlotConflict(proposed, []models.TimeSlot{existing}, ""))
}

func TestFindSlotConflictNilSectionIsLiteral(t *testing.T) {
	// A slot without a section does not collide with a sectioned slot of the
	// same class, and vice versa. Two sectionless slots do collide.
	sectioned := baseSlot("s1", "09:00", "10:00")
	sectionless := baseSlot("", "09:30", "10:30")
	sectionless.SectionID = nil
	sectionless.SubjectTeacherID = "st-physics"
	sectionless.RoomID = strPtr("room-2")

	assert.Nil(t, FindSlotConflict(sectionless, []models.TimeSlot{sectioned}, ""))

	otherSectionless := baseSlot("s2", "09:00", "10:00")
	otherSectionless.SectionID = nil
	otherSectionless.SubjectTeacherID = "st-chem"
	otherSectionless.RoomID = strPtr("room-3")

	conflict := FindSlotConflict(sectionless, []models.TimeSlot{otherSectionless}, "")
	require.NotNil(t, conflict)
	assert.Equal(t, models.AxisClassSection, conflict.Axis)
}

func TestFindSlotConflictAdjacentSlotsDoNotOverlap(t *testing.T) {
	existing := baseSlot("s1", "09:00", "10:00")
	proposed := baseSlot("", "10:00", "11:00")

	assert.Nil(t, FindSlotConflict(proposed, []models.TimeSlot{existing}, ""))
}

func TestFindSlotConflictDifferentDayOrTimetable(t *testing.T) {
	existing := baseSlot("s1", "09:00", "10:00")
	proposed := baseSlot("", "09:00", "10:00")
	proposed.Day = models.Tuesday
	assert.Nil(t, FindSlotConflict(proposed, []models.TimeSlot{existing}, ""))

	proposed = baseSlot("", "09:00", "10:00")
	proposed.TimetableID = "tt-2"
	assert.Nil(t, FindSlotConflict(proposed, []models.TimeSlot{existing}, ""))
}

func TestFindSlotConflictExcludesOwnID(t *testing.T) {
	existing := baseSlot("s1", "09:00", "10:00")
	proposed := baseSlot("s1", "09:15", "10:15")

	assert.Nil(t, FindSlotConflict(proposed, []models.TimeSlot{existing}, "s1"))
}

func newSlotServiceForTest(repo *slotRepoMock) (*SlotService, *invalidatorMock) {
	timetables := &timetableReaderMock{timetables: map[string]models.Timetable{
		"tt-1": {ID: "tt-1", ClassID: "class-10"},
	}}
	cache := &invalidatorMock{}
	return NewSlotService(repo, timetables, cache, nil, nil, nil), cache
}

func TestSlotServiceCreateRejectsConflict(t *testing.T) {
	repo := newSlotRepoMock(baseSlot("s1", "09:00", "10:00"))
	svc, _ := newSlotServiceForTest(repo)

	_, err := svc.Create(context.Background(), CreateSlotRequest{
		TimetableID:      "tt-1",
		ClassID:          "class-10",
		SectionID:        strPtr("A"),
		SubjectTeacherID: "st-bio",
		RoomID:           strPtr("room-9"),
		Day:              "monday",
		StartTime:        "09:30",
		EndTime:          "10:30",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	var conflictErr *models.SlotConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, models.AxisClassSection, conflictErr.Axis)
}

func TestSlotServiceCreatePersistsAndInvalidatesGrid(t *testing.T) {
	repo := newSlotRepoMock()
	svc, cache := newSlotServiceForTest(repo)

	slot, err := svc.Create(context.Background(), CreateSlotRequest{
		TimetableID:      "tt-1",
		ClassID:          "class-10",
		SubjectTeacherID: "st-bio",
		Day:              "MONDAY",
		StartTime:        "08:00",
		EndTime:          "08:45",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, slot.ID)
	assert.Equal(t, models.Monday, slot.Day)
	assert.Equal(t, []string{"timetable:grid:class-10*"}, cache.patterns)
}

func TestSlotServiceCreateRejectsInvertedInterval(t *testing.T) {
	repo := newSlotRepoMock()
	svc, _ := newSlotServiceForTest(repo)

	_, err := svc.Create(context.Background(), CreateSlotRequest{
		TimetableID:      "tt-1",
		ClassID:          "class-10",
		SubjectTeacherID: "st-bio",
		Day:              "MONDAY",
		StartTime:        "10:00",
		EndTime:          "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSlotServiceUpdateExcludesSelf(t *testing.T) {
	repo := newSlotRepoMock(baseSlot("s1", "09:00", "10:00"))
	svc, _ := newSlotServiceForTest(repo)

	// Shifting the slot within its own window must not conflict with itself.
	updated, err := svc.Update(context.Background(), "s1", UpdateSlotRequest{
		TimetableID:      "tt-1",
		ClassID:          "class-10",
		SectionID:        strPtr("A"),
		SubjectTeacherID: "st-math",
		RoomID:           strPtr("room-1"),
		Day:              "MONDAY",
		StartTime:        "09:15",
		EndTime:          "10:15",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", updated.ID)
	assert.Equal(t, "09:15", updated.StartTime)
}

func TestSlotServiceUpdateUnknownSlot(t *testing.T) {
	repo := newSlotRepoMock()
	svc, _ := newSlotServiceForTest(repo)

	_, err := svc.Update(context.Background(), "missing", UpdateSlotRequest{
		TimetableID:      "tt-1",
		ClassID:          "class-10",
		SubjectTeacherID: "st-math",
		Day:              "MONDAY",
		StartTime:        "09:00",
		EndTime:          "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSlotServiceUpdateWrongTimetableIsNotFound(t *testing.T) {
	repo := newSlotRepoMock(baseSlot("s1", "09:00", "10:00"))
	timetables := &timetableReaderMock{timetables: map[string]models.Timetable{
		"tt-1": {ID: "tt-1", ClassID: "class-10"},
		"tt-2": {ID: "tt-2", ClassID: "class-11"},
	}}
	svc := NewSlotService(repo, timetables, &invalidatorMock{}, nil, nil, nil)

	_, err := svc.Update(context.Background(), "s1", UpdateSlotRequest{
		TimetableID:      "tt-2",
		ClassID:          "class-11",
		SubjectTeacherID: "st-math",
		Day:              "MONDAY",
		StartTime:        "09:00",
		EndTime:          "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSlotServiceDeleteSkipsConflictChecks(t *testing.T) {
	repo := newSlotRepoMock(baseSlot("s1", "09:00", "10:00"), func() models.TimeSlot {
		s := baseSlot("s2", "11:00", "12:00")
		return s
	}())
	svc, cache := newSlotServiceForTest(repo)

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	assert.NotContains(t, repo.slots, "s1")
	assert.Equal(t, []string{"timetable:grid:class-10*"}, cache.patterns)

	err := svc.Delete(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
