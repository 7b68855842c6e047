package users

import (
	"context"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (site_id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, user.SiteID, user.Username, user.PasswordHash).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", dbx.NormalizeError(err))
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, siteID, id int64) (*models.User, error) {
	query := `
		SELECT id, site_id, username, password_hash
		FROM users
		WHERE site_id = $1 AND id = $2
	`
	return scanUser(r.db.QueryRowContext(ctx, query, siteID, id))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, siteID int64, username string) (*models.User, error) {
	query := `
		SELECT id, site_id, username, password_hash
		FROM users
		WHERE site_id = $1 AND username = $2
	`
	return scanUser(r.db.QueryRowContext(ctx, query, siteID, username))
}

func (r *PostgresRepository) ListBySite(ctx context.Context, siteID int64) ([]*models.User, error) {
	query := `
		SELECT id, site_id, username, password_hash
		FROM users
		WHERE site_id = $1
		ORDER BY username
	`
	rows, err := r.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", dbx.NormalizeError(err))
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.SiteID, &user.Username, &user.PasswordHash); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing users: %w", dbx.NormalizeError(err))
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, siteID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE site_id = $1 AND id = $2`, siteID, id)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", dbx.NormalizeError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.SiteID, &user.Username, &user.PasswordHash)
	if err != nil {
		return nil, dbx.NormalizeError(err)
	}
	return user, nil
}

var _ Repository = (*PostgresRepository)(nil)
