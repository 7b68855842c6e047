package sessions

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/server/models"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestCreate_SecondSessionForUserConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "sessions_user_unique"})

	err := repo.Create(context.Background(), &models.Session{ID: "7", SiteID: 1, UserID: 7})
	require.ErrorIs(t, err, common.ErrNameInUse)
}

func TestUpdateValidUntil_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateValidUntil(context.Background(), "7", time.Now())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteExpired_ReturnsCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE site_id = $1 AND valid_until < $2`)).
		WithArgs(int64(1), now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), 1, now)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestGetByUserID_ScansRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	validUntil := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "site_id", "user_id", "valid_until"}).
			AddRow("7", int64(1), int64(7), validUntil))

	session, err := repo.GetByUserID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "7", session.ID)
	require.True(t, session.ValidUntil.Equal(validUntil))
}

func TestGet_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 1, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}
