// Package store archives evaluations. Archived evaluations are immutable:
// the store can add and read them but never update or delete one.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/flowaudit/audit-engine/internal/evaluation"
)

var (
	// ErrNotFound is returned when no evaluation matches.
	ErrNotFound = eris.New("store: evaluation not found")
	// ErrExists is returned when an evaluation id is already archived.
	ErrExists = eris.New("store: evaluation already archived")
)

// EvaluationFilter specifies criteria for listing evaluations.
type EvaluationFilter struct {
	QueryID  string `json:"queryId,omitempty"`
	TenantID string `json:"tenantId,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

func (f EvaluationFilter) limit() int {
	if f.Limit <= 0 {
		return 100
	}
	return f.Limit
}

// Store defines the persistence interface of the evaluation archive.
type Store interface {
	SaveEvaluation(ctx context.Context, ev *evaluation.Evaluation) error
	SaveEvaluations(ctx context.Context, evs []evaluation.Evaluation) (int, error)
	GetEvaluation(ctx context.Context, id string) (*evaluation.Evaluation, error)
	// LatestEvaluation returns the tenant's evaluation of a query that
	// supersedes all others: the most recently created, ties broken by
	// archive order. Other tenants' evaluations are never considered; an
	// empty tenantID matches evaluations archived without a tenant.
	LatestEvaluation(ctx context.Context, tenantID, queryID string) (*evaluation.Evaluation, error)
	ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]evaluation.Evaluation, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
