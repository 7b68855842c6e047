package dbx

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/stretchr/testify/require"
)

func TestNormalizeError_Nil(t *testing.T) {
	require.NoError(t, NormalizeError(nil))
}

func TestNormalizeError_NoRows(t *testing.T) {
	require.ErrorIs(t, NormalizeError(sql.ErrNoRows), common.ErrNotFound)
	require.ErrorIs(t, NormalizeError(fmt.Errorf("scan: %w", sql.ErrNoRows)), common.ErrNotFound)
}

func TestNormalizeError_PgCodes(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{code: "23505", want: common.ErrNameInUse},
		{code: "23503", want: common.ErrForeignKey},
		{code: "40001", want: common.ErrConcurrentChange},
		{code: "40P01", want: common.ErrConcurrentChange},
		{code: "08006", want: common.ErrStoreUnavailable},
		{code: "53300", want: common.ErrStoreUnavailable},
		{code: "57P01", want: common.ErrStoreUnavailable},
	}
	for _, tc := range tests {
		err := NormalizeError(&pgconn.PgError{Code: tc.code, ConstraintName: "c"})
		require.ErrorIs(t, err, tc.want, "code %s", tc.code)
	}
}

func TestNormalizeError_UnknownPgCodePassesThrough(t *testing.T) {
	orig := &pgconn.PgError{Code: "22012"} // division_by_zero
	err := NormalizeError(orig)

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	require.Equal(t, "22012", pgErr.Code)
}

func TestNormalizeError_BadConn(t *testing.T) {
	require.ErrorIs(t, NormalizeError(driver.ErrBadConn), common.ErrStoreUnavailable)
}

func TestNormalizeError_UnrelatedErrorUnchanged(t *testing.T) {
	sentinel := errors.New("some app error")
	require.Same(t, sentinel, NormalizeError(sentinel))
}
