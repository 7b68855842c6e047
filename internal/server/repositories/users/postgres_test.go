package users

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

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

func TestCreate_AssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(int64(1), "alice", "salt:digest").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	user, err := repo.Create(context.Background(), &models.User{
		SiteID: 1, Username: "alice", PasswordHash: "salt:digest",
	})
	require.NoError(t, err)
	require.EqualValues(t, 42, user.ID)
}

func TestCreate_DuplicateUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_site_username_unique"})

	_, err := repo.Create(context.Background(), &models.User{SiteID: 1, Username: "alice"})
	require.ErrorIs(t, err, common.ErrNameInUse)
}

func TestGetByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(int64(1), "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), 1, "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_MissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users`)).
		WithArgs(int64(1), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Delete(context.Background(), 1, 42), common.ErrNotFound)
}
