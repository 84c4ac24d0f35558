package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func slotRows(slots ...models.TimeSlot) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "timetable_id", "class_id", "section_id", "subject_teacher_id", "room_id", "day_of_week", "start_time", "end_time", "created_at", "updated_at"})
	for _, s := range slots {
		rows.AddRow(s.ID, s.TimetableID, s.ClassID, s.SectionID, s.SubjectTeacherID, s.RoomID, s.Day, s.StartTime, s.EndTime, time.Now(), time.Now())
	}
	return rows
}

func TestSlotRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSlotRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO time_slots")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	section := "A"
	slot := &models.TimeSlot{
		TimetableID:      "tt-1",
		ClassID:          "class-10",
		SectionID:        &section,
		SubjectTeacherID: "st-math",
		Day:              models.Monday,
		StartTime:        "09:00",
		EndTime:          "10:00",
	}
	require.NoError(t, repo.Create(context.Background(), slot))
	require.NotEmpty(t, slot.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, timetable_id, class_id, section_id")).
		WithArgs(slot.ID).
		WillReturnRows(slotRows(*slot))

	found, err := repo.FindByID(context.Background(), slot.ID)
	require.NoError(t, err)
	require.Equal(t, slot.ID, found.ID)
	require.Equal(t, "st-math", found.SubjectTeacherID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryListForDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSlotRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM time_slots WHERE timetable_id = $1 AND day_of_week = $2")).
		WithArgs("tt-1", models.Monday).
		WillReturnRows(slotRows(models.TimeSlot{ID: "s1", TimetableID: "tt-1", ClassID: "class-10", SubjectTeacherID: "st-1", Day: models.Monday, StartTime: "08:00", EndTime: "09:00"}))

	slots, err := repo.ListForDay(context.Background(), "tt-1", models.Monday)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, "s1", slots[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryListBuildsFiltersAndCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSlotRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("timetable_id = $1 AND class_id = $2 AND day_of_week = $3")).
		WithArgs("tt-1", "class-10", "MONDAY").
		WillReturnRows(slotRows(models.TimeSlot{ID: "s1", TimetableID: "tt-1", ClassID: "class-10", SubjectTeacherID: "st-1", Day: models.Monday, StartTime: "08:00", EndTime: "09:00"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("tt-1", "class-10", "MONDAY").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	slots, total, err := repo.List(context.Background(), models.TimeSlotFilter{
		TimetableID: "tt-1",
		ClassID:     "class-10",
		Day:         "monday",
		Page:        1,
		PageSize:    20,
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryUpdateScopedToTimetable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSlotRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE time_slots SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	slot := &models.TimeSlot{ID: "s1", TimetableID: "tt-1", ClassID: "class-10", SubjectTeacherID: "st-1", Day: models.Monday, StartTime: "09:00", EndTime: "10:00"}
	require.NoError(t, repo.Update(context.Background(), slot))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSlotRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM time_slots WHERE id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "s1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
