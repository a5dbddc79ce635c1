package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func payloadRows(t *testing.T, ids ...string) *pgxmock.Rows {
	t.Helper()
	rows := pgxmock.NewRows([]string{"payload"})
	for _, id := range ids {
		b, err := json.Marshal(sampleEvaluation(id, "gq-1", base))
		require.NoError(t, err)
		rows.AddRow(b)
	}
	return rows
}

func TestPostgresStore_SaveEvaluation(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ev := sampleEvaluation("ev-1", "gq-1", base)

	mock.ExpectExec(`INSERT INTO evaluations`).
		WithArgs("ev-1", "tenant-1", "gq-1", "pruefer", base, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveEvaluation(context.Background(), &ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveEvaluation_Duplicate(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ev := sampleEvaluation("ev-1", "gq-1", base)

	mock.ExpectExec(`INSERT INTO evaluations`).
		WithArgs("ev-1", "tenant-1", "gq-1", "pruefer", base, pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := s.SaveEvaluation(context.Background(), &ev)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveEvaluation_OtherError(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ev := sampleEvaluation("ev-1", "gq-1", base)

	mock.ExpectExec(`INSERT INTO evaluations`).
		WithArgs("ev-1", "tenant-1", "gq-1", "pruefer", base, pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err := s.SaveEvaluation(context.Background(), &ev)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExists)
	assert.Contains(t, err.Error(), "insert evaluation ev-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveEvaluations(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"evaluations"}, evaluationColumns).WillReturnResult(3)

	n, err := s.SaveEvaluations(context.Background(), numberedEvaluations(3, "gq-1", base))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveEvaluations_Duplicate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"evaluations"}, evaluationColumns).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := s.SaveEvaluations(context.Background(), numberedEvaluations(2, "gq-1", base))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEvaluation(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT payload FROM evaluations WHERE id = \$1`).
		WithArgs("ev-1").
		WillReturnRows(payloadRows(t, "ev-1"))

	got, err := s.GetEvaluation(context.Background(), "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "ev-1", got.ID)
	assert.Equal(t, 120.0, got.Results.AggregatedData.TotalOperations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEvaluation_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT payload FROM evaluations WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetEvaluation(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestEvaluation(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`WHERE tenant_id = \$1 AND query_id = \$2 ORDER BY created_at DESC, seq DESC LIMIT 1`).
		WithArgs("tenant-1", "gq-1").
		WillReturnRows(payloadRows(t, "ev-9"))

	got, err := s.LatestEvaluation(context.Background(), "tenant-1", "gq-1")
	require.NoError(t, err)
	assert.Equal(t, "ev-9", got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListEvaluations(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`AND query_id = \$1 AND tenant_id = \$2 ORDER BY created_at DESC, seq DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("gq-1", "tenant-1", 10, 20).
		WillReturnRows(payloadRows(t, "ev-2", "ev-1"))

	evs, err := s.ListEvaluations(context.Background(), EvaluationFilter{
		QueryID: "gq-1", TenantID: "tenant-1", Limit: 10, Offset: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-2", "ev-1"}, evaluationIDs(evs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListEvaluations_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`WHERE true ORDER BY created_at DESC, seq DESC LIMIT \$1$`).
		WithArgs(100).
		WillReturnRows(payloadRows(t))

	evs, err := s.ListEvaluations(context.Background(), EvaluationFilter{})
	require.NoError(t, err)
	assert.Empty(t, evs)
	assert.NotNil(t, evs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MigrateAndPing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS evaluations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`SELECT 1`).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CloseWithoutPool(t *testing.T) {
	s := &PostgresStore{}
	assert.NoError(t, s.Close())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestOpen_SQLite(t *testing.T) {
	st, err := Open(context.Background(), "sqlite", t.TempDir()+"/archive.db", nil)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, st.Ping(context.Background()))
}
