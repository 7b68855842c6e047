package auctions

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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

func TestCreate_ReturnsIDAndVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	endsOn := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO auctions`)).
		WithArgs(int64(1), int64(2), "old lamp", endsOn, 10.0, 10.0, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(int64(5), int64(1)))

	auction, err := repo.Create(context.Background(), &models.Auction{
		SiteID: 1, SellerID: 2, Description: "old lamp", EndsOn: endsOn,
		Price: 10, HighestBid: 10,
	})
	require.NoError(t, err)
	require.EqualValues(t, 5, auction.ID)
	require.EqualValues(t, 1, auction.Version)
}

func TestGet_ScansWinner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	endsOn := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(int64(1), int64(5)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "site_id", "seller_id", "description", "ends_on", "price", "highest_bid", "winner_id", "version"}).
			AddRow(int64(5), int64(1), int64(2), "old lamp", endsOn, 15.0, 20.0, int64(9), int64(3)))

	auction, err := repo.Get(context.Background(), 1, 5)
	require.NoError(t, err)
	require.True(t, auction.HasWinner())
	require.EqualValues(t, 9, *auction.WinnerID)
	require.EqualValues(t, 3, auction.Version)
}

func TestGet_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 1, 404)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateBidState_VersionMatchIncrements(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	winner := int64(9)
	auction := &models.Auction{ID: 5, SiteID: 1, Price: 15, HighestBid: 20, WinnerID: &winner, Version: 3}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE auctions`)).
		WithArgs(15.0, 20.0, &winner, int64(1), int64(5), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateBidState(context.Background(), auction))
	require.EqualValues(t, 4, auction.Version)
}

func TestUpdateBidState_StaleVersionConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	auction := &models.Auction{ID: 5, SiteID: 1, Version: 3}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE auctions`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateBidState(context.Background(), auction)
	require.ErrorIs(t, err, common.ErrConcurrentChange)
	require.EqualValues(t, 3, auction.Version, "version must not advance on conflict")
}

func TestListByWinner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	endsOn := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "site_id", "seller_id", "description", "ends_on", "price", "highest_bid", "winner_id", "version"}).
			AddRow(int64(5), int64(1), int64(2), "old lamp", endsOn, 15.0, 20.0, int64(9), int64(3)))

	got, err := repo.ListByWinner(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
