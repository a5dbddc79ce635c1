// Package evaluation aggregates the responses of a group query into an
// immutable evaluation: totals and breakdowns, distribution statistics,
// per-authority comparisons and a multi-year trend.
package evaluation

import (
	"slices"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flowaudit/audit-engine/internal/checklist"
	"github.com/flowaudit/audit-engine/internal/groupquery"
)

// ErrNotEvaluable is returned when the query's evaluation trigger does not
// allow an evaluation yet.
var ErrNotEvaluable = eris.New("evaluation: query cannot be evaluated")

// included is one authority that contributes to the evaluation.
type included struct {
	assignment *groupquery.Assignment
	response   *groupquery.Response
	data       checklist.Data
	metrics    Metrics
}

// Evaluate aggregates the responses of q. Only submitted or accepted
// assignments with a matching response contribute; excluded assignments
// contribute nothing but still count toward TotalAuthorities.
func Evaluate(q *groupquery.GroupQuery, responses []groupquery.Response, opts Options) (*Evaluation, error) {
	opts = opts.withDefaults()
	if !groupquery.CanEvaluate(q, opts.Now) {
		return nil, eris.Wrapf(ErrNotEvaluable, "query %s: trigger %q", q.ID, q.Config.EvaluationTrigger)
	}

	var idx *checklist.Index
	if opts.Template != nil {
		var err error
		if idx, err = checklist.NewIndex(opts.Template); err != nil {
			return nil, eris.Wrap(err, "evaluation: index template")
		}
	}

	rows, excluded := collect(q, responses, opts.Excluded)
	for i := range rows {
		rows[i].metrics = authorityMetrics(&rows[i], idx, opts.CompletionMode)
	}

	ev := &Evaluation{
		ID:                  uuid.NewString(),
		QueryID:             q.ID,
		TenantID:            opts.TenantID,
		CreatedAt:           opts.Now,
		CreatedBy:           opts.CreatedBy,
		IncludedAssignments: make([]string, 0, len(rows)),
		ExcludedAssignments: excluded,
		Comparisons:         make([]AuthorityComparison, 0, len(rows)),
	}
	for _, r := range rows {
		ev.IncludedAssignments = append(ev.IncludedAssignments, r.assignment.ID)
	}

	ev.Results = Results{
		TotalAuthorities:     len(q.Assignments),
		RespondedAuthorities: len(rows),
		ResponseRate:         ratio(float64(len(rows)), float64(len(q.Assignments))),
		AggregatedData:       aggregate(rows, opts),
	}
	ev.Comparisons, ev.Results.Statistics = compare(rows, opts.Metric)

	if q.Config.AggregationConfig != nil {
		data := make([]checklist.Data, len(rows))
		for i := range rows {
			data[i] = rows[i].data
		}
		ev.Results.Custom = Aggregate(q.Config.AggregationConfig, data)
	}

	agg := ev.Results.AggregatedData
	ev.Trends = AnalyzeTrend(opts.History, YearFigures{
		Year:       q.FiscalYear,
		ErrorRate:  agg.WeightedErrorRate,
		Operations: agg.TotalOperations,
		Amount:     agg.TotalAuditedAmount,
	}, *opts.TrendBand)

	return ev, nil
}

// collect pairs responded assignments with their responses in assignment
// order and returns the excluded ids that belong to q.
func collect(q *groupquery.GroupQuery, responses []groupquery.Response, exclude []string) ([]included, []string) {
	byAssignment := make(map[string]*groupquery.Response, len(responses))
	byID := make(map[string]*groupquery.Response, len(responses))
	for i := range responses {
		r := &responses[i]
		byAssignment[r.AssignmentID] = r
		byID[r.ID] = r
	}

	var rows []included
	excluded := []string{}
	for i := range q.Assignments {
		a := &q.Assignments[i]
		if slices.Contains(exclude, a.ID) {
			excluded = append(excluded, a.ID)
			continue
		}
		if !a.Status.Responded() {
			continue
		}
		r := byAssignment[a.ID]
		if r == nil && a.ResponseID != "" {
			r = byID[a.ResponseID]
		}
		if r == nil {
			zap.L().Debug("evaluation: responded assignment without response",
				zap.String("query_id", q.ID),
				zap.String("assignment_id", a.ID),
			)
			continue
		}
		rows = append(rows, included{assignment: a, response: r, data: groupquery.CurrentData(r)})
	}
	return rows, excluded
}

func authorityMetrics(row *included, idx *checklist.Index, mode checklist.CompletionMode) Metrics {
	s := row.response.SummaryData
	m := Metrics{
		OperationsCount: s.NumberOr(groupquery.SummaryTotalOperations, 0),
		AuditedAmount:   s.NumberOr(groupquery.SummaryTotalAmount, 0),
		FindingsCount:   s.NumberOr(groupquery.SummaryFindingsCount, 0),
	}

	errs, hasErrs := s.Number(groupquery.SummaryTotalErrors)
	switch {
	case hasErrs && m.OperationsCount > 0:
		m.ErrorRate = errs / m.OperationsCount
	default:
		m.ErrorRate = s.NumberOr(groupquery.SummaryErrorRate, 0)
	}

	if idx != nil {
		data := checklist.ParseData(idx.Template, row.data)
		m.CompletionRate = float64(idx.Completion(mode, data)) / 100
	} else {
		m.CompletionRate = float64(min(max(groupquery.CalculateProgress(row.assignment), 0), 100)) / 100
	}
	return m
}

// groupKey returns the breakdown key of a response, looked up in its
// summary first and its checklist data second.
func (r *included) groupKey(key string) string {
	if k := r.response.SummaryData.Key(key); k != "" {
		return k
	}
	if v := r.data.Get(key); !v.IsBlank() {
		return v.String()
	}
	return Unassigned
}

func aggregate(rows []included, opts Options) AggregatedData {
	type fundAcc struct {
		ops, errs float64
		amount    decimal.Decimal
	}
	type auditAcc struct {
		count    int
		findings float64
		amount   decimal.Decimal
	}

	var ops, errs float64
	amount := decimal.Zero
	funds := make(map[string]*fundAcc)
	audits := make(map[string]*auditAcc)
	byCategory := make(map[string]float64)

	for i := range rows {
		r := &rows[i]
		s := r.response.SummaryData
		rOps := s.NumberOr(groupquery.SummaryTotalOperations, 0)
		rErrs := s.NumberOr(groupquery.SummaryTotalErrors, 0)
		rAmount := decimal.NewFromFloat(s.NumberOr(groupquery.SummaryTotalAmount, 0))

		ops += rOps
		errs += rErrs
		amount = amount.Add(rAmount)

		fk := r.groupKey(opts.FundKey)
		f, ok := funds[fk]
		if !ok {
			f = &fundAcc{amount: decimal.Zero}
			funds[fk] = f
		}
		f.ops += rOps
		f.errs += rErrs
		f.amount = f.amount.Add(rAmount)

		byCategory[r.groupKey(opts.ErrorCategoryKey)] += rErrs

		ak := r.groupKey(opts.AuditTypeKey)
		a, ok := audits[ak]
		if !ok {
			a = &auditAcc{amount: decimal.Zero}
			audits[ak] = a
		}
		a.count++
		a.findings += r.metrics.FindingsCount
		a.amount = a.amount.Add(rAmount)
	}

	out := AggregatedData{
		TotalOperations:    ops,
		TotalAuditedAmount: amount.InexactFloat64(),
		TotalErrors:        errs,
		WeightedErrorRate:  ratio(errs, ops),
		ByFund:             make(map[string]FundSummary, len(funds)),
		ByErrorCategory:    byCategory,
		ByAuditType:        make(map[string]AuditTypeSummary, len(audits)),
	}
	for k, f := range funds {
		out.ByFund[k] = FundSummary{
			Operations: f.ops,
			Amount:     f.amount.InexactFloat64(),
			Errors:     f.errs,
			ErrorRate:  ratio(f.errs, f.ops),
		}
	}
	for k, a := range audits {
		out.ByAuditType[k] = AuditTypeSummary{
			Count:         a.count,
			Amount:        a.amount.InexactFloat64(),
			FindingsCount: a.findings,
		}
	}
	return out
}

func compare(rows []included, metric Metric) ([]AuthorityComparison, Statistics) {
	n := len(rows)
	errorRates := make([]float64, n)
	amounts := make([]float64, n)
	volumes := make([]float64, n)
	completeness := make([]float64, n)
	designated := make([]float64, n)
	for i := range rows {
		m := &rows[i].metrics
		errorRates[i] = m.ErrorRate
		amounts[i] = m.AuditedAmount
		volumes[i] = m.OperationsCount
		completeness[i] = m.CompletionRate
		designated[i] = metric.of(m)
	}

	meanErrorRate := Mean(errorRates)
	meanAmount := Mean(amounts)
	byErrorRate := DenseRank(errorRates, true)
	byVolume := DenseRank(volumes, false)
	byCompleteness := DenseRank(completeness, false)

	out := make([]AuthorityComparison, n)
	for i := range rows {
		a := rows[i].assignment
		name := a.AuthorityName
		if name == "" {
			name = a.AuthorityID
		}
		out[i] = AuthorityComparison{
			AssignmentID:  a.ID,
			AuthorityID:   a.AuthorityID,
			AuthorityName: name,
			Metrics:       rows[i].metrics,
			Deviations: Deviations{
				ErrorRateDeviation: errorRates[i] - meanErrorRate,
				AmountDeviation:    amounts[i] - meanAmount,
			},
			Rankings: Rankings{
				ByErrorRate:    byErrorRate[i],
				ByVolume:       byVolume[i],
				ByCompleteness: byCompleteness[i],
			},
		}
	}
	return out, Describe(designated)
}
