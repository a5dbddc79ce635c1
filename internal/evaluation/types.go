package evaluation

import "time"

// Evaluation is a point-in-time aggregation over a chosen subset of a
// query's assignments. It is immutable once created; a later run
// supersedes it.
type Evaluation struct {
	ID                  string                `json:"id" yaml:"id"`
	QueryID             string                `json:"queryId" yaml:"queryId"`
	TenantID            string                `json:"tenantId,omitempty" yaml:"tenantId,omitempty"`
	CreatedAt           time.Time             `json:"createdAt" yaml:"createdAt"`
	CreatedBy           string                `json:"createdBy" yaml:"createdBy"`
	IncludedAssignments []string              `json:"includedAssignments" yaml:"includedAssignments"`
	ExcludedAssignments []string              `json:"excludedAssignments" yaml:"excludedAssignments"`
	Results             Results               `json:"results" yaml:"results"`
	Comparisons         []AuthorityComparison `json:"comparisons" yaml:"comparisons"`
	Trends              *TrendAnalysis        `json:"trends,omitempty" yaml:"trends,omitempty"`
}

// Results holds the aggregate figures of an evaluation.
type Results struct {
	TotalAuthorities     int                `json:"totalAuthorities" yaml:"totalAuthorities"`
	RespondedAuthorities int                `json:"respondedAuthorities" yaml:"respondedAuthorities"`
	ResponseRate         float64            `json:"responseRate" yaml:"responseRate"`
	AggregatedData       AggregatedData     `json:"aggregatedData" yaml:"aggregatedData"`
	Statistics           Statistics         `json:"statistics" yaml:"statistics"`
	Custom               map[string]Figures `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// Figures maps a derived field name (see AggregationConfig) to its value.
type Figures map[string]float64

// AggregatedData sums the summary data of all included responses.
type AggregatedData struct {
	TotalOperations    float64                     `json:"totalOperations" yaml:"totalOperations"`
	TotalAuditedAmount float64                     `json:"totalAuditedAmount" yaml:"totalAuditedAmount"`
	TotalErrors        float64                     `json:"totalErrors" yaml:"totalErrors"`
	WeightedErrorRate  float64                     `json:"weightedErrorRate" yaml:"weightedErrorRate"`
	ByFund             map[string]FundSummary      `json:"byFund" yaml:"byFund"`
	ByErrorCategory    map[string]float64          `json:"byErrorCategory" yaml:"byErrorCategory"`
	ByAuditType        map[string]AuditTypeSummary `json:"byAuditType" yaml:"byAuditType"`
}

// FundSummary is the breakdown bucket of one fund.
type FundSummary struct {
	Operations float64 `json:"operations" yaml:"operations"`
	Amount     float64 `json:"amount" yaml:"amount"`
	Errors     float64 `json:"errors" yaml:"errors"`
	ErrorRate  float64 `json:"errorRate" yaml:"errorRate"`
}

// AuditTypeSummary is the breakdown bucket of one audit type.
type AuditTypeSummary struct {
	Count         int     `json:"count" yaml:"count"`
	Amount        float64 `json:"amount" yaml:"amount"`
	FindingsCount float64 `json:"findingsCount" yaml:"findingsCount"`
}

// Statistics describes the distribution of the designated metric across
// included authorities. Quartiles are [Q1, median, Q3].
type Statistics struct {
	Mean      float64    `json:"mean" yaml:"mean"`
	Median    float64    `json:"median" yaml:"median"`
	StdDev    float64    `json:"stdDev" yaml:"stdDev"`
	Min       float64    `json:"min" yaml:"min"`
	Max       float64    `json:"max" yaml:"max"`
	Quartiles [3]float64 `json:"quartiles" yaml:"quartiles"`
}

// AuthorityComparison places one included authority relative to the rest.
type AuthorityComparison struct {
	AssignmentID  string     `json:"assignmentId" yaml:"assignmentId"`
	AuthorityID   string     `json:"authorityId" yaml:"authorityId"`
	AuthorityName string     `json:"authorityName" yaml:"authorityName"`
	Metrics       Metrics    `json:"metrics" yaml:"metrics"`
	Deviations    Deviations `json:"deviations" yaml:"deviations"`
	Rankings      Rankings   `json:"rankings" yaml:"rankings"`
}

// Metrics are the per-authority figures. CompletionRate is in [0, 1].
type Metrics struct {
	OperationsCount float64 `json:"operationsCount" yaml:"operationsCount"`
	AuditedAmount   float64 `json:"auditedAmount" yaml:"auditedAmount"`
	ErrorRate       float64 `json:"errorRate" yaml:"errorRate"`
	FindingsCount   float64 `json:"findingsCount" yaml:"findingsCount"`
	CompletionRate  float64 `json:"completionRate" yaml:"completionRate"`
}

// Deviations are metric minus the mean over included authorities.
type Deviations struct {
	ErrorRateDeviation float64 `json:"errorRateDeviation" yaml:"errorRateDeviation"`
	AmountDeviation    float64 `json:"amountDeviation" yaml:"amountDeviation"`
}

// Rankings are 1-based dense ranks, 1 being best.
type Rankings struct {
	ByErrorRate    int `json:"byErrorRate" yaml:"byErrorRate"`
	ByVolume       int `json:"byVolume" yaml:"byVolume"`
	ByCompleteness int `json:"byCompleteness" yaml:"byCompleteness"`
}

// Trend classifies the direction of the error rate.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// TrendAnalysis lines up the figures of consecutive fiscal years, oldest
// first. All slices have the same length.
type TrendAnalysis struct {
	Years           []int     `json:"years" yaml:"years"`
	ErrorRates      []float64 `json:"errorRates" yaml:"errorRates"`
	OperationCounts []float64 `json:"operationCounts" yaml:"operationCounts"`
	Amounts         []float64 `json:"amounts" yaml:"amounts"`
	Trend           Trend     `json:"trend" yaml:"trend"`
}

// YearFigures are the aggregate figures of one earlier fiscal year.
type YearFigures struct {
	Year       int     `json:"year" yaml:"year"`
	ErrorRate  float64 `json:"errorRate" yaml:"errorRate"`
	Operations float64 `json:"operations" yaml:"operations"`
	Amount     float64 `json:"amount" yaml:"amount"`
}
