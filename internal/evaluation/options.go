package evaluation

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/flowaudit/audit-engine/internal/checklist"
)

// Metric names the per-authority figure that Statistics describes.
type Metric string

const (
	MetricErrorRate  Metric = "error_rate"
	MetricOperations Metric = "operations"
	MetricAmount     Metric = "amount"
	MetricFindings   Metric = "findings"
	MetricCompletion Metric = "completion"
)

// ParseMetric accepts the metric names above; "" selects MetricErrorRate.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case "":
		return MetricErrorRate, nil
	case MetricErrorRate, MetricOperations, MetricAmount, MetricFindings, MetricCompletion:
		return m, nil
	}
	return "", eris.Errorf("evaluation: unknown metric %q", s)
}

func (m Metric) of(x *Metrics) float64 {
	switch m {
	case MetricOperations:
		return x.OperationsCount
	case MetricAmount:
		return x.AuditedAmount
	case MetricFindings:
		return x.FindingsCount
	case MetricCompletion:
		return x.CompletionRate
	default:
		return x.ErrorRate
	}
}

// Unassigned is the breakdown bucket of responses without a grouping key.
const Unassigned = "unassigned"

// DefaultTrendBand is the hysteresis band of the trend classification: a
// change of at most one percentage point counts as stable.
const DefaultTrendBand = 0.01

// Options control an evaluation run.
type Options struct {
	// Excluded assignment ids. Excluded authorities still count toward
	// TotalAuthorities but contribute nothing else.
	Excluded []string `json:"excluded,omitempty" yaml:"excluded,omitempty"`

	Metric           Metric `json:"metric,omitempty" yaml:"metric,omitempty"`
	FundKey          string `json:"fundKey,omitempty" yaml:"fundKey,omitempty"`
	ErrorCategoryKey string `json:"errorCategoryKey,omitempty" yaml:"errorCategoryKey,omitempty"`
	AuditTypeKey     string `json:"auditTypeKey,omitempty" yaml:"auditTypeKey,omitempty"`

	// TrendBand is the stable band around a zero change in error rate. Nil
	// selects DefaultTrendBand; a pointer to 0 classifies every change.
	TrendBand *float64 `json:"trendBand,omitempty" yaml:"trendBand,omitempty"`
	// History holds earlier fiscal years; without it no trend is computed.
	History []YearFigures `json:"history,omitempty" yaml:"history,omitempty"`

	// Template, when set, derives completion rates from response data
	// instead of the assignments' progress field.
	Template       *checklist.Template      `json:"-" yaml:"-"`
	CompletionMode checklist.CompletionMode `json:"-" yaml:"-"`

	TenantID  string    `json:"-" yaml:"-"`
	CreatedBy string    `json:"-" yaml:"-"`
	Now       time.Time `json:"-" yaml:"-"`
}

// DefaultOptions returns the options used when a caller sets nothing.
func DefaultOptions() Options {
	band := DefaultTrendBand
	return Options{
		Metric:           MetricErrorRate,
		FundKey:          "fund",
		ErrorCategoryKey: "errorCategory",
		AuditTypeKey:     "auditType",
		TrendBand:        &band,
		CompletionMode:   checklist.DefaultCompletionMode,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Metric == "" {
		o.Metric = d.Metric
	}
	if o.FundKey == "" {
		o.FundKey = d.FundKey
	}
	if o.ErrorCategoryKey == "" {
		o.ErrorCategoryKey = d.ErrorCategoryKey
	}
	if o.AuditTypeKey == "" {
		o.AuditTypeKey = d.AuditTypeKey
	}
	if o.TrendBand == nil {
		o.TrendBand = d.TrendBand
	}
	if o.CompletionMode == "" {
		o.CompletionMode = d.CompletionMode
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}
