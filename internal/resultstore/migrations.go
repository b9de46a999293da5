package resultstore

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"roadrouter/internal/apperror"
	"roadrouter/internal/logger"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// Migrator applies and inspects the result store's schema migrations.
type Migrator struct {
	pool *pgxpool.Pool
}

// NewMigrator builds a Migrator over an already-open pool.
func NewMigrator(pool *pgxpool.Pool) *Migrator {
	return &Migrator{pool: pool}
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	goose.SetBaseFS(embeddedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return apperror.Wrap(err, apperror.CodeResultStoreIO, "setting goose dialect")
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return apperror.Wrap(err, apperror.CodeResultStoreIO, "applying migrations")
	}
	logger.Log.Info("result store migrations applied")
	return nil
}

// Status reports the current migration state to the logger.
func (m *Migrator) Status(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	goose.SetBaseFS(embeddedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return apperror.Wrap(err, apperror.CodeResultStoreIO, "setting goose dialect")
	}
	return goose.StatusContext(ctx, db, migrationsDir)
}
