package resultstore

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadrouter/internal/report"
)

type pgxMockAdapter struct {
	mock pgxmock.PgxPoolIface
}

func (a *pgxMockAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.mock.Exec(ctx, sql, args...)
}

func (a *pgxMockAdapter) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return a.mock.Query(ctx, sql, args...)
}

func (a *pgxMockAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return a.mock.QueryRow(ctx, sql, args...)
}

func (a *pgxMockAdapter) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return a.mock.BeginTx(ctx, txOptions)
}

func (a *pgxMockAdapter) Close() {
	a.mock.Close()
}

func (a *pgxMockAdapter) Ping(ctx context.Context) error {
	return a.mock.Ping(ctx)
}

func setupMockDB(t *testing.T) (pgxmock.PgxPoolIface, *Repository) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	adapter := &pgxMockAdapter{mock: mock}
	return mock, NewRepository(adapter)
}

func sampleBatch() report.Batch {
	return report.Batch{
		QueryResults: []report.QueryResultRecord{
			{Type: "random", QueryTimeS: 0.001, CustTimeS: 0.5, NumRuns: 100, NumValid: 98, TotalDist: 12345, AvgDist: 126.0},
		},
		PotentialQuality: []report.PotentialQualityRecord{
			{Name: "cch-lowerbound", QueryCount: 100, TimeType: "query", TimeS: 0.002},
		},
	}
}

func TestRepository_SaveBatch_Success(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	runID := uuid.New()
	b := sampleBatch()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO query_results`).
		WithArgs(runID, "random", 0.001, 0.5, 100, 98, 12345.0, 126.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO potential_quality`).
		WithArgs(runID, "cch-lowerbound", 100, "query", 0.002).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.SaveBatch(context.Background(), runID, b)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveBatch_RollsBackOnInsertError(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	runID := uuid.New()
	b := sampleBatch()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO query_results`).
		WithArgs(runID, "random", 0.001, 0.5, 100, 98, 12345.0, 126.0).
		WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	err := repo.SaveBatch(context.Background(), runID, b)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveBatch_FailsOnBeginError(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	runID := uuid.New()
	b := sampleBatch()

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	err := repo.SaveBatch(context.Background(), runID, b)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LoadBatch_Success(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	runID := uuid.New()

	qrRows := pgxmock.NewRows([]string{"type", "query_time_s", "cust_time_s", "num_runs", "num_valid", "total_dist", "avg_dist"}).
		AddRow("random", 0.001, 0.5, 100, 98, 12345.0, 126.0)
	mock.ExpectQuery(`SELECT type, query_time_s, cust_time_s, num_runs, num_valid, total_dist, avg_dist`).
		WithArgs(runID).
		WillReturnRows(qrRows)

	pqRows := pgxmock.NewRows([]string{"name", "query_count", "time_type", "time_s"}).
		AddRow("cch-lowerbound", 100, "query", 0.002)
	mock.ExpectQuery(`SELECT name, query_count, time_type, time_s`).
		WithArgs(runID).
		WillReturnRows(pqRows)

	b, err := repo.LoadBatch(context.Background(), runID)

	require.NoError(t, err)
	require.Len(t, b.QueryResults, 1)
	require.Len(t, b.PotentialQuality, 1)
	assert.Equal(t, "random", b.QueryResults[0].Type)
	assert.Equal(t, 98, b.QueryResults[0].NumValid)
	assert.Equal(t, "cch-lowerbound", b.PotentialQuality[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LoadBatch_QueryError(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	runID := uuid.New()

	mock.ExpectQuery(`SELECT type, query_time_s, cust_time_s, num_runs, num_valid, total_dist, avg_dist`).
		WithArgs(runID).
		WillReturnError(errors.New("timeout"))

	b, err := repo.LoadBatch(context.Background(), runID)

	assert.Error(t, err)
	assert.Empty(t, b.QueryResults)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(&pgxMockAdapter{mock: mock})
	assert.NotNil(t, repo)
}
