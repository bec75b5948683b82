package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/models"
)

func newStudyPlanRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudyPlanRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newStudyPlanRepoMock(t)
	defer cleanup()
	repo := NewStudyPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM study_plans WHERE student_id = $1 AND period_start = $2 AND period_end = $3")).
		WithArgs("student-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO study_plans")).
		WithArgs(sqlmock.AnyArg(), "student-1", sqlmock.AnyArg(), sqlmock.AnyArg(), 3, string(models.StudyPlanStatusDraft), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload := &models.StudyPlan{
		StudentID:   "student-1",
		PeriodStart: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		Meta:        types.JSONText(`{"autoAdjusted":0}`),
	}
	err := repo.CreateVersioned(context.Background(), nil, payload)
	require.NoError(t, err)
	assert.Equal(t, 3, payload.Version)
	assert.NotEmpty(t, payload.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudyPlanRepositoryCreateVersionedRequiresStudent(t *testing.T) {
	db, _, cleanup := newStudyPlanRepoMock(t)
	defer cleanup()
	repo := NewStudyPlanRepository(db)

	err := repo.CreateVersioned(context.Background(), nil, &models.StudyPlan{})
	require.Error(t, err)
}

func TestStudyPlanRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newStudyPlanRepoMock(t)
	defer cleanup()
	repo := NewStudyPlanRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "period_start", "period_end", "version", "status", "meta", "created_at", "updated_at"}).
		AddRow("plan-2", "student-1", time.Now(), time.Now(), 2, string(models.StudyPlanStatusDraft), types.JSONText(`{}`), time.Now(), time.Now()).
		AddRow("plan-1", "student-1", time.Now(), time.Now(), 1, string(models.StudyPlanStatusPublished), types.JSONText(`{}`), time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, student_id, period_start, period_end, version, status, meta, created_at, updated_at").
		WithArgs("student-1").
		WillReturnRows(rows)

	list, err := repo.ListByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "plan-2", list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudyPlanRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newStudyPlanRepoMock(t)
	defer cleanup()
	repo := NewStudyPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM study_plans WHERE id = $1")).
		WithArgs("plan-404").
		WillReturnResult(sqlmock.NewResult(1, 0))

	err := repo.Delete(context.Background(), "plan-404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudyPlanRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newStudyPlanRepoMock(t)
	defer cleanup()
	repo := NewStudyPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE study_plans SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(string(models.StudyPlanStatusPublished), sqlmock.AnyArg(), "plan-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateStatus(context.Background(), nil, "plan-1", models.StudyPlanStatusPublished, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudyPlanRepositoryUpdateStatusWithMeta(t *testing.T) {
	db, mock, cleanup := newStudyPlanRepoMock(t)
	defer cleanup()
	repo := NewStudyPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE study_plans SET status = $1, meta = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(string(models.StudyPlanStatusArchived), types.JSONText(`{"reason":"superseded"}`), sqlmock.AnyArg(), "plan-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateStatus(context.Background(), nil, "plan-1", models.StudyPlanStatusArchived, types.JSONText(`{"reason":"superseded"}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
