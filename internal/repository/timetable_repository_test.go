package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
)

func timetableRows(timetables ...models.Timetable) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "class_id", "name", "version", "active", "effective_from", "effective_to", "created_at", "updated_at"})
	for _, tt := range timetables {
		rows.AddRow(tt.ID, tt.ClassID, tt.Name, tt.Version, tt.Active, tt.EffectiveFrom, tt.EffectiveTo, time.Now(), time.Now())
	}
	return rows
}

func TestTimetableRepositoryCreateAssignsNextVersion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(version) FROM timetables WHERE class_id = $1")).
		WithArgs("class-10").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	timetable := &models.Timetable{
		ClassID:       "class-10",
		Name:          "Semester 2",
		EffectiveFrom: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), timetable))
	require.Equal(t, 3, timetable.Version)
	require.NotEmpty(t, timetable.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCreateFirstVersion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(version)")).
		WithArgs("class-11").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	timetable := &models.Timetable{ClassID: "class-11", Name: "Semester 1", EffectiveFrom: time.Now()}
	require.NoError(t, repo.Create(context.Background(), timetable))
	require.Equal(t, 1, timetable.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryActivateRunsInTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET active = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET active = TRUE")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Activate(context.Background(), "tt-2", "class-10"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindActiveByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE class_id = $1 AND active = TRUE")).
		WithArgs("class-10").
		WillReturnRows(timetableRows(models.Timetable{ID: "tt-1", ClassID: "class-10", Name: "Semester 1", Version: 1, Active: true, EffectiveFrom: time.Now()}))

	timetable, err := repo.FindActiveByClass(context.Background(), "class-10")
	require.NoError(t, err)
	require.Equal(t, "tt-1", timetable.ID)
	require.True(t, timetable.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}
