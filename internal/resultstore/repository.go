package resultstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"roadrouter/internal/report"
)

func pgxTxOptions() pgx.TxOptions {
	return pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
}

// Repository persists report.Batch records under a run correlation id.
type Repository struct {
	db DB
}

// NewRepository builds a Repository over db.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// SaveBatch inserts every record of b tagged with runID, one row per
// record, inside a single transaction.
func (r *Repository) SaveBatch(ctx context.Context, runID uuid.UUID, b report.Batch) error {
	tx, err := r.db.BeginTx(ctx, pgxTxOptions())
	if err != nil {
		return wrapErr(err, "beginning result store transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	for _, qr := range b.QueryResults {
		_, err := tx.Exec(ctx, `
			INSERT INTO query_results
				(run_id, type, query_time_s, cust_time_s, num_runs, num_valid, total_dist, avg_dist)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			runID, qr.Type, qr.QueryTimeS, qr.CustTimeS, qr.NumRuns, qr.NumValid, qr.TotalDist, qr.AvgDist)
		if err != nil {
			_ = tx.Rollback(ctx)
			return wrapErr(err, "inserting query result")
		}
	}

	for _, pq := range b.PotentialQuality {
		_, err := tx.Exec(ctx, `
			INSERT INTO potential_quality
				(run_id, name, query_count, time_type, time_s)
			VALUES ($1, $2, $3, $4, $5)`,
			runID, pq.Name, pq.QueryCount, pq.TimeType, pq.TimeS)
		if err != nil {
			_ = tx.Rollback(ctx)
			return wrapErr(err, "inserting potential quality record")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapErr(err, "committing result store transaction")
	}
	return nil
}

// LoadBatch reconstructs every record stored under runID.
func (r *Repository) LoadBatch(ctx context.Context, runID uuid.UUID) (report.Batch, error) {
	var b report.Batch

	qrRows, err := r.db.Query(ctx, `
		SELECT type, query_time_s, cust_time_s, num_runs, num_valid, total_dist, avg_dist
		FROM query_results WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return b, wrapErr(err, "querying query results")
	}
	defer qrRows.Close()
	for qrRows.Next() {
		var rec report.QueryResultRecord
		if err := qrRows.Scan(&rec.Type, &rec.QueryTimeS, &rec.CustTimeS, &rec.NumRuns, &rec.NumValid, &rec.TotalDist, &rec.AvgDist); err != nil {
			return b, wrapErr(err, "scanning query result")
		}
		b.QueryResults = append(b.QueryResults, rec)
	}
	if err := qrRows.Err(); err != nil {
		return b, wrapErr(err, "iterating query results")
	}

	pqRows, err := r.db.Query(ctx, `
		SELECT name, query_count, time_type, time_s
		FROM potential_quality WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return b, wrapErr(err, "querying potential quality records")
	}
	defer pqRows.Close()
	for pqRows.Next() {
		var rec report.PotentialQualityRecord
		if err := pqRows.Scan(&rec.Name, &rec.QueryCount, &rec.TimeType, &rec.TimeS); err != nil {
			return b, wrapErr(err, "scanning potential quality record")
		}
		b.PotentialQuality = append(b.PotentialQuality, rec)
	}
	if err := pqRows.Err(); err != nil {
		return b, wrapErr(err, "iterating potential quality records")
	}

	return b, nil
}
