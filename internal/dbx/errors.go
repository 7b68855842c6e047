package dbx

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkuznecov/auctionsite/internal/common"
)

// Postgres SQLSTATE codes the store layer cares about. Everything else from
// the same class is folded into the closest taxonomy member.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
)

// NormalizeError maps backend-specific failures onto the common sentinels so
// callers above the repository layer never see driver error types:
//
//	unique violation      -> common.ErrNameInUse
//	foreign key violation -> common.ErrForeignKey
//	serialization/deadlock-> common.ErrConcurrentChange
//	connection failures   -> common.ErrStoreUnavailable
//	sql.ErrNoRows         -> common.ErrNotFound
//
// Errors already belonging to the taxonomy, and nil, pass through unchanged.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", common.ErrNameInUse, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", common.ErrForeignKey, pgErr.ConstraintName)
		case pgSerializationFail, pgDeadlockDetected:
			return fmt.Errorf("%w: %s", common.ErrConcurrentChange, pgErr.Code)
		}
		// Class 08 = connection exception, 53 = insufficient resources,
		// 57 = operator intervention (e.g. shutdown).
		switch {
		case strings.HasPrefix(pgErr.Code, "08"),
			strings.HasPrefix(pgErr.Code, "53"),
			strings.HasPrefix(pgErr.Code, "57"):
			return fmt.Errorf("%w: %s", common.ErrStoreUnavailable, pgErr.Code)
		}
		return err
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return err
}
