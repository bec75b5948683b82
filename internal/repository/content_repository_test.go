package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func contentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_id", "title", "content_type", "range_start", "range_end", "subject", "subject_category", "created_at", "updated_at"})
}

func TestContentRepositoryListBySelectionPreservesOrder(t *testing.T) {
	db, mock, cleanup := newContentRepoMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	// The database returns rows in arbitrary order.
	rows := contentRows().
		AddRow("lecture-1", "student-1", "Grammar", "lecture", 1, 60, "english", "language", time.Now(), time.Now()).
		AddRow("book-1", "student-1", "Algebra", "book", 1, 100, "math", "science", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE student_id = $1 AND id IN ($2, $3)")).
		WithArgs("student-1", "book-1", "lecture-1").
		WillReturnRows(rows)

	list, err := repo.ListBySelection(context.Background(), "student-1", []string{"book-1", "lecture-1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "book-1", list[0].ID)
	assert.Equal(t, "lecture-1", list[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepositoryListBySelectionMissingRows(t *testing.T) {
	db, mock, cleanup := newContentRepoMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	rows := contentRows().
		AddRow("book-1", "student-1", "Algebra", "book", 1, 100, "math", "science", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE student_id = $1 AND id IN ($2, $3)")).
		WithArgs("student-1", "book-1", "ghost-1").
		WillReturnRows(rows)

	list, err := repo.ListBySelection(context.Background(), "student-1", []string{"book-1", "ghost-1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "book-1", list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepositoryListBySelectionEmpty(t *testing.T) {
	db, mock, cleanup := newContentRepoMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	list, err := repo.ListBySelection(context.Background(), "student-1", nil)
	require.NoError(t, err)
	assert.Nil(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newContentRepoMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	rows := contentRows().
		AddRow("book-1", "student-1", "Algebra", "book", 1, 100, "math", "science", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM contents WHERE id = $1")).
		WithArgs("book-1").
		WillReturnRows(rows)

	content, err := repo.FindByID(context.Background(), "book-1")
	require.NoError(t, err)
	assert.Equal(t, "Algebra", content.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}
