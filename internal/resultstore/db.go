// Package resultstore optionally persists the structured diagnostic
// records spec.md §6 defines — per-query and potential-quality records —
// to Postgres. It never persists the mutated capacity graph itself
// (spec.md §1 non-goal "no cross-process persistence of the mutated
// capacity graph"); this package is a pure sink for already-computed
// report.Batch records.
package resultstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"roadrouter/internal/apperror"
	"roadrouter/internal/logger"
)

// DB is the subset of pgxpool.Pool's surface the repository needs,
// narrowed to an interface so tests can substitute pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Close()
	Ping(ctx context.Context) error
}

// PostgresDB wraps a pgxpool.Pool.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// NewPostgresDB opens a connection pool against dsn and verifies it with a
// Ping before returning.
func NewPostgresDB(ctx context.Context, dsn string) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigInvalid, "parsing result store dsn")
	}
	poolConfig.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeResultStoreIO, "creating connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperror.Wrap(err, apperror.CodeResultStoreIO, "pinging result store")
	}

	logger.Log.Info("connected to result store", "component", "resultstore")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return db.pool.Exec(ctx, sql, args...)
}

func (db *PostgresDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return db.pool.Query(ctx, sql, args...)
}

func (db *PostgresDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.pool.QueryRow(ctx, sql, args...)
}

func (db *PostgresDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return db.pool.BeginTx(ctx, txOptions)
}

func (db *PostgresDB) Close() {
	db.pool.Close()
	logger.Log.Info("result store connection pool closed")
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Pool exposes the underlying pgxpool.Pool for migration tooling.
func (db *PostgresDB) Pool() *pgxpool.Pool { return db.pool }

func wrapErr(err error, action string) error {
	return apperror.Wrap(err, apperror.CodeResultStoreIO, fmt.Sprintf("%s failed", action))
}
