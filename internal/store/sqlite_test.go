package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestSQLite_SaveAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	ev := sampleEvaluation("ev-1", "gq-1", base)
	require.NoError(t, st.SaveEvaluation(ctx, &ev))

	got, err := st.GetEvaluation(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "gq-1", got.QueryID)
	assert.Equal(t, []string{"a1", "a2"}, got.IncludedAssignments)
	assert.Equal(t, 1500.5, got.Results.AggregatedData.TotalAuditedAmount)
	assert.True(t, base.Equal(got.CreatedAt))
}

func TestSQLite_GetMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetEvaluation(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_DuplicateID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	ev := sampleEvaluation("ev-1", "gq-1", base)
	require.NoError(t, st.SaveEvaluation(ctx, &ev))

	ev.Results.TotalAuthorities = 99
	err := st.SaveEvaluation(ctx, &ev)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExists)

	got, err := st.GetEvaluation(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Results.TotalAuthorities)
}

func TestSQLite_UpdateRejected(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	ev := sampleEvaluation("ev-1", "gq-1", base)
	require.NoError(t, st.SaveEvaluation(ctx, &ev))

	_, err := st.db.ExecContext(ctx, `UPDATE evaluations SET payload = '{}' WHERE id = ?`, "ev-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "immutable")
}

func TestSQLite_LatestEvaluation(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	older := sampleEvaluation("ev-old", "gq-1", base)
	newer := sampleEvaluation("ev-new", "gq-1", base.Add(time.Hour))
	other := sampleEvaluation("ev-other", "gq-2", base.Add(2*time.Hour))
	require.NoError(t, st.SaveEvaluation(ctx, &newer))
	require.NoError(t, st.SaveEvaluation(ctx, &older))
	require.NoError(t, st.SaveEvaluation(ctx, &other))

	got, err := st.LatestEvaluation(ctx, "tenant-1", "gq-1")
	require.NoError(t, err)
	assert.Equal(t, "ev-new", got.ID)

	_, err = st.LatestEvaluation(ctx, "tenant-1", "gq-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_LatestEvaluation_ScopedToTenant(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	own := sampleEvaluation("ev-own", "gq-1", base)
	foreign := sampleEvaluation("ev-foreign", "gq-1", base.Add(time.Hour))
	foreign.TenantID = "tenant-2"
	require.NoError(t, st.SaveEvaluation(ctx, &own))
	require.NoError(t, st.SaveEvaluation(ctx, &foreign))

	got, err := st.LatestEvaluation(ctx, "tenant-1", "gq-1")
	require.NoError(t, err)
	assert.Equal(t, "ev-own", got.ID)

	got, err = st.LatestEvaluation(ctx, "tenant-2", "gq-1")
	require.NoError(t, err)
	assert.Equal(t, "ev-foreign", got.ID)

	_, err = st.LatestEvaluation(ctx, "", "gq-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_LatestEvaluation_TieBrokenByArchiveOrder(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first := sampleEvaluation("ev-b", "gq-1", base)
	second := sampleEvaluation("ev-a", "gq-1", base)
	require.NoError(t, st.SaveEvaluation(ctx, &first))
	require.NoError(t, st.SaveEvaluation(ctx, &second))

	got, err := st.LatestEvaluation(ctx, "tenant-1", "gq-1")
	require.NoError(t, err)
	assert.Equal(t, "ev-a", got.ID)
}

func TestSQLite_SaveEvaluations(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.SaveEvaluations(ctx, numberedEvaluations(5, "gq-1", base))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	evs, err := st.ListEvaluations(ctx, EvaluationFilter{QueryID: "gq-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gq-1-ev-04", "gq-1-ev-03", "gq-1-ev-02", "gq-1-ev-01", "gq-1-ev-00"}, evaluationIDs(evs))
}

func TestSQLite_SaveEvaluations_AllOrNothing(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	existing := sampleEvaluation("gq-1-ev-02", "gq-1", base)
	require.NoError(t, st.SaveEvaluation(ctx, &existing))

	_, err := st.SaveEvaluations(ctx, numberedEvaluations(4, "gq-1", base))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExists)

	evs, err := st.ListEvaluations(ctx, EvaluationFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"gq-1-ev-02"}, evaluationIDs(evs))
}

func TestSQLite_ListEvaluations_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.SaveEvaluations(ctx, numberedEvaluations(3, "gq-1", base))
	require.NoError(t, err)
	foreign := sampleEvaluation("foreign", "gq-2", base.Add(-time.Hour))
	foreign.TenantID = "tenant-2"
	require.NoError(t, st.SaveEvaluation(ctx, &foreign))

	tests := []struct {
		name   string
		filter EvaluationFilter
		want   []string
	}{
		{"all", EvaluationFilter{}, []string{"gq-1-ev-02", "gq-1-ev-01", "gq-1-ev-00", "foreign"}},
		{"by query", EvaluationFilter{QueryID: "gq-2"}, []string{"foreign"}},
		{"by tenant", EvaluationFilter{TenantID: "tenant-1"}, []string{"gq-1-ev-02", "gq-1-ev-01", "gq-1-ev-00"}},
		{"limit", EvaluationFilter{QueryID: "gq-1", Limit: 2}, []string{"gq-1-ev-02", "gq-1-ev-01"}},
		{"offset", EvaluationFilter{QueryID: "gq-1", Limit: 2, Offset: 2}, []string{"gq-1-ev-00"}},
		{"no match", EvaluationFilter{TenantID: "tenant-9"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evs, err := st.ListEvaluations(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, evaluationIDs(evs))
		})
	}
}

func TestSQLite_Ping(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Ping(context.Background()))
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Migrate(context.Background()))
}
