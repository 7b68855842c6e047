package sites

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

func (r *PostgresRepository) Create(ctx context.Context, site *models.Site) (*models.Site, error) {
	query := `
		INSERT INTO sites (name, timezone, session_expiration_seconds, minimum_bid_increment)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		site.Name, site.Timezone, site.SessionExpirationSeconds, site.MinimumBidIncrement).Scan(&site.ID)
	if err != nil {
		return nil, fmt.Errorf("error creating site: %w", dbx.NormalizeError(err))
	}
	return site, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Site, error) {
	query := `
		SELECT id, name, timezone, session_expiration_seconds, minimum_bid_increment
		FROM sites
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Site, error) {
	query := `
		SELECT id, name, timezone, session_expiration_seconds, minimum_bid_increment
		FROM sites
		WHERE name = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Site, error) {
	query := `
		SELECT id, name, timezone, session_expiration_seconds, minimum_bid_increment
		FROM sites
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing sites: %w", dbx.NormalizeError(err))
	}
	defer rows.Close()

	var result []*models.Site
	for rows.Next() {
		site := &models.Site{}
		if err := rows.Scan(&site.ID, &site.Name, &site.Timezone,
			&site.SessionExpirationSeconds, &site.MinimumBidIncrement); err != nil {
			return nil, fmt.Errorf("error scanning site: %w", err)
		}
		result = append(result, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing sites: %w", dbx.NormalizeError(err))
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting site: %w", dbx.NormalizeError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting site: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row interface{ Scan(...any) error }) (*models.Site, error) {
	site := &models.Site{}
	err := row.Scan(&site.ID, &site.Name, &site.Timezone,
		&site.SessionExpirationSeconds, &site.MinimumBidIncrement)
	if err != nil {
		return nil, dbx.NormalizeError(err)
	}
	return site, nil
}

var _ Repository = (*PostgresRepository)(nil)
