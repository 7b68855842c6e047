package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/dbx"
	"github.com/mkuznecov/auctionsite/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, site_id, user_id, valid_until)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query,
		session.ID, session.SiteID, session.UserID, session.ValidUntil); err != nil {
		return fmt.Errorf("error creating session: %w", dbx.NormalizeError(err))
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, siteID int64, id string) (*models.Session, error) {
	query := `
		SELECT id, site_id, user_id, valid_until
		FROM sessions
		WHERE site_id = $1 AND id = $2
	`
	return scanSession(r.db.QueryRowContext(ctx, query, siteID, id))
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID int64) (*models.Session, error) {
	query := `
		SELECT id, site_id, user_id, valid_until
		FROM sessions
		WHERE user_id = $1
	`
	return scanSession(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) UpdateValidUntil(ctx context.Context, id string, validUntil time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET valid_until = $1 WHERE id = $2`, validUntil, id)
	if err != nil {
		return fmt.Errorf("error extending session: %w", dbx.NormalizeError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error extending session: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListBySite(ctx context.Context, siteID int64) ([]*models.Session, error) {
	query := `
		SELECT id, site_id, user_id, valid_until
		FROM sessions
		WHERE site_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", dbx.NormalizeError(err))
	}
	defer rows.Close()

	var result []*models.Session
	for rows.Next() {
		session := &models.Session{}
		if err := rows.Scan(&session.ID, &session.SiteID, &session.UserID, &session.ValidUntil); err != nil {
			return nil, fmt.Errorf("error scanning session: %w", err)
		}
		result = append(result, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", dbx.NormalizeError(err))
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, siteID int64, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE site_id = $1 AND id = $2`, siteID, id)
	if err != nil {
		return fmt.Errorf("error deleting session: %w", dbx.NormalizeError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error deleting user session: %w", dbx.NormalizeError(err))
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, siteID int64, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE site_id = $1 AND valid_until < $2`, siteID, now)
	if err != nil {
		return 0, fmt.Errorf("error sweeping sessions: %w", dbx.NormalizeError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error sweeping sessions: %w", err)
	}
	return n, nil
}

func scanSession(row interface{ Scan(...any) error }) (*models.Session, error) {
	session := &models.Session{}
	err := row.Scan(&session.ID, &session.SiteID, &session.UserID, &session.ValidUntil)
	if err != nil {
		return nil, dbx.NormalizeError(err)
	}
	return session, nil
}

var _ Repository = (*PostgresRepository)(nil)
