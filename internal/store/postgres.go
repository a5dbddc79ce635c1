package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/flowaudit/audit-engine/internal/db"
	"github.com/flowaudit/audit-engine/internal/evaluation"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const uniqueViolation = "23505"

var evaluationColumns = []string{"id", "tenant_id", "query_id", "created_by", "created_at", "payload"}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"insert_evaluation": `INSERT INTO evaluations (id, tenant_id, query_id, created_by, created_at, payload) VALUES ($1, $2, $3, $4, $5, $6)`,
	"get_evaluation":    `SELECT payload FROM evaluations WHERE id = $1`,
	"latest_evaluation": `SELECT payload FROM evaluations WHERE tenant_id = $1 AND query_id = $2 ORDER BY created_at DESC, seq DESC LIMIT 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS evaluations (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	tenant_id  TEXT NOT NULL DEFAULT '',
	query_id   TEXT NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluations_query ON evaluations(query_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_evaluations_tenant ON evaluations(tenant_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_tenant_query ON evaluations(tenant_id, query_id, created_at DESC);

CREATE OR REPLACE FUNCTION evaluations_immutable() RETURNS trigger AS $$
BEGIN
	RAISE EXCEPTION 'evaluations are immutable';
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS evaluations_immutable ON evaluations;
CREATE TRIGGER evaluations_immutable BEFORE UPDATE ON evaluations
	FOR EACH ROW EXECUTE FUNCTION evaluations_immutable();
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveEvaluation(ctx context.Context, ev *evaluation.Evaluation) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal evaluation")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO evaluations (id, tenant_id, query_id, created_by, created_at, payload) VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ID, ev.TenantID, ev.QueryID, ev.CreatedBy, ev.CreatedAt.UTC(), payload,
	)
	return wrapInsert(err, ev.ID)
}

// SaveEvaluations bulk-loads evs with COPY. A duplicate id aborts the whole
// batch.
func (s *PostgresStore) SaveEvaluations(ctx context.Context, evs []evaluation.Evaluation) (int, error) {
	rows := make([][]any, 0, len(evs))
	for i := range evs {
		ev := &evs[i]
		payload, err := json.Marshal(ev)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal evaluation %s", ev.ID)
		}
		rows = append(rows, []any{ev.ID, ev.TenantID, ev.QueryID, ev.CreatedBy, ev.CreatedAt.UTC(), payload})
	}
	n, err := db.CopyFrom(ctx, s.pool, "evaluations", evaluationColumns, rows)
	if err != nil {
		return 0, wrapInsert(err, fmt.Sprintf("batch of %d", len(evs)))
	}
	return int(n), nil
}

func wrapInsert(err error, id string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return eris.Wrapf(ErrExists, "id %s", id)
	}
	return eris.Wrapf(err, "postgres: insert evaluation %s", id)
}

func (s *PostgresStore) GetEvaluation(ctx context.Context, id string) (*evaluation.Evaluation, error) {
	row := s.pool.QueryRow(ctx, `SELECT payload FROM evaluations WHERE id = $1`, id)
	return scanPayload(row, id)
}

func (s *PostgresStore) LatestEvaluation(ctx context.Context, tenantID, queryID string) (*evaluation.Evaluation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT payload FROM evaluations WHERE tenant_id = $1 AND query_id = $2 ORDER BY created_at DESC, seq DESC LIMIT 1`,
		tenantID, queryID,
	)
	return scanPayload(row, "latest of query "+queryID)
}

func (s *PostgresStore) ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]evaluation.Evaluation, error) {
	query := `SELECT payload FROM evaluations WHERE true`
	args := []any{}
	argIdx := 1

	if filter.QueryID != "" {
		query += fmt.Sprintf(` AND query_id = $%d`, argIdx)
		args = append(args, filter.QueryID)
		argIdx++
	}
	if filter.TenantID != "" {
		query += fmt.Sprintf(` AND tenant_id = $%d`, argIdx)
		args = append(args, filter.TenantID)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, seq DESC LIMIT $%d`, argIdx)
	args = append(args, filter.limit())
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list evaluations")
	}
	defer rows.Close()

	evs := []evaluation.Evaluation{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan evaluation")
		}
		var ev evaluation.Evaluation
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal evaluation")
		}
		evs = append(evs, ev)
	}
	return evs, eris.Wrap(rows.Err(), "postgres: list evaluations iterate")
}

func scanPayload(row pgx.Row, what string) (*evaluation.Evaluation, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrap(ErrNotFound, what)
		}
		return nil, eris.Wrap(err, "postgres: get evaluation")
	}
	var ev evaluation.Evaluation
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal evaluation")
	}
	return &ev, nil
}
