package store

import (
	"fmt"
	"time"

	"github.com/flowaudit/audit-engine/internal/evaluation"
)

func sampleEvaluation(id, queryID string, createdAt time.Time) evaluation.Evaluation {
	return evaluation.Evaluation{
		ID:                  id,
		QueryID:             queryID,
		TenantID:            "tenant-1",
		CreatedAt:           createdAt,
		CreatedBy:           "pruefer",
		IncludedAssignments: []string{"a1", "a2"},
		ExcludedAssignments: []string{},
		Results: evaluation.Results{
			TotalAuthorities:     2,
			RespondedAuthorities: 2,
			ResponseRate:         1,
			AggregatedData: evaluation.AggregatedData{
				TotalOperations:    120,
				TotalAuditedAmount: 1500.5,
				TotalErrors:        3,
				WeightedErrorRate:  0.025,
			},
		},
	}
}

func evaluationIDs(evs []evaluation.Evaluation) []string {
	ids := make([]string, len(evs))
	for i := range evs {
		ids[i] = evs[i].ID
	}
	return ids
}

func numberedEvaluations(n int, queryID string, base time.Time) []evaluation.Evaluation {
	evs := make([]evaluation.Evaluation, n)
	for i := range evs {
		evs[i] = sampleEvaluation(fmt.Sprintf("%s-ev-%02d", queryID, i), queryID, base.Add(time.Duration(i)*time.Minute))
	}
	return evs
}
