package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mkuznecov/auctionsite/internal/dbx"
	"github.com/mkuznecov/auctionsite/internal/server/migrations"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/auctions"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/sessions"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/sites"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/users"
)

// PostgresStore implements Store over a pgx-backed *sql.DB.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database and applies pending migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", dbx.NormalizeError(err))
	}
	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, ".")
}

func reposFor(db dbx.DBTX) Repos {
	return Repos{
		Sites:    sites.NewPostgresRepository(db),
		Users:    users.NewPostgresRepository(db),
		Sessions: sessions.NewPostgresRepository(db),
		Auctions: auctions.NewPostgresRepository(db),
	}
}

func (s *PostgresStore) Within(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, reposFor(tx))
	})
}

func (s *PostgresStore) View() Repos {
	return reposFor(s.db)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

var _ Store = (*PostgresStore)(nil)
