package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/flowaudit/audit-engine/internal/evaluation"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS evaluations (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	tenant_id  TEXT NOT NULL DEFAULT '',
	query_id   TEXT NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	payload    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluations_query ON evaluations(query_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_evaluations_tenant ON evaluations(tenant_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_tenant_query ON evaluations(tenant_id, query_id, created_at DESC);

CREATE TRIGGER IF NOT EXISTS evaluations_immutable
BEFORE UPDATE ON evaluations
BEGIN
	SELECT RAISE(ABORT, 'evaluations are immutable');
END;
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSQLite(ctx context.Context, db execer, ev *evaluation.Evaluation) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal evaluation")
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO evaluations (id, tenant_id, query_id, created_by, created_at, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.TenantID, ev.QueryID, ev.CreatedBy, ev.CreatedAt.UTC(), string(payload),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return eris.Wrapf(ErrExists, "id %s", ev.ID)
		}
		return eris.Wrapf(err, "sqlite: insert evaluation %s", ev.ID)
	}
	return nil
}

func (s *SQLiteStore) SaveEvaluation(ctx context.Context, ev *evaluation.Evaluation) error {
	return insertSQLite(ctx, s.db, ev)
}

// SaveEvaluations archives evs in one transaction; either all or none are
// stored.
func (s *SQLiteStore) SaveEvaluations(ctx context.Context, evs []evaluation.Evaluation) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range evs {
		if err := insertSQLite(ctx, tx, &evs[i]); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return len(evs), nil
}

func (s *SQLiteStore) GetEvaluation(ctx context.Context, id string) (*evaluation.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM evaluations WHERE id = ?`, id)
	return scanEvaluation(row, id)
}

func (s *SQLiteStore) LatestEvaluation(ctx context.Context, tenantID, queryID string) (*evaluation.Evaluation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM evaluations WHERE tenant_id = ? AND query_id = ? ORDER BY created_at DESC, seq DESC LIMIT 1`,
		tenantID, queryID,
	)
	return scanEvaluation(row, "latest of query "+queryID)
}

func (s *SQLiteStore) ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]evaluation.Evaluation, error) {
	query := `SELECT payload FROM evaluations WHERE 1=1`
	var args []any

	if filter.QueryID != "" {
		query += ` AND query_id = ?`
		args = append(args, filter.QueryID)
	}
	if filter.TenantID != "" {
		query += ` AND tenant_id = ?`
		args = append(args, filter.TenantID)
	}
	query += ` ORDER BY created_at DESC, seq DESC LIMIT ?`
	args = append(args, filter.limit())

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list evaluations")
	}
	defer rows.Close()

	evs := []evaluation.Evaluation{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan evaluation")
		}
		var ev evaluation.Evaluation
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal evaluation")
		}
		evs = append(evs, ev)
	}
	return evs, eris.Wrap(rows.Err(), "sqlite: list evaluations iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scannable, what string) (*evaluation.Evaluation, error) {
	var payload string
	err := row.Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, what)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan evaluation")
	}
	var ev evaluation.Evaluation
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal evaluation")
	}
	return &ev, nil
}
