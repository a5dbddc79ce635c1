package groupquery

import (
	"time"

	"github.com/flowaudit/audit-engine/internal/checklist"
)

// Well-known summary keys. Any other key is free-form and can serve as a
// grouping key for evaluation breakdowns.
const (
	SummaryTotalOperations = "totalOperations"
	SummaryTotalAmount     = "totalAmount"
	SummaryTotalErrors     = "totalErrors"
	SummaryErrorRate       = "errorRate"
	SummaryFindingsCount   = "findingsCount"
)

// SummaryData is an authority's numeric summary of its answer.
type SummaryData map[string]checklist.Value

// Number returns the numeric value under key. Missing and non-numeric
// entries report ok=false.
func (s SummaryData) Number(key string) (float64, bool) {
	return s[key].AsNumber()
}

// NumberOr returns the numeric value under key, or def.
func (s SummaryData) NumberOr(key string, def float64) float64 {
	if n, ok := s.Number(key); ok {
		return n
	}
	return def
}

// Key returns the string form of the value under key, or "" when the entry
// is missing, null or empty.
func (s SummaryData) Key(key string) string {
	v := s[key]
	if v.IsBlank() {
		return ""
	}
	return v.String()
}

// Confirmation records the sign-off of a submitted response.
type Confirmation struct {
	ConfirmedBy      string    `json:"confirmedBy" yaml:"confirmedBy"`
	ConfirmedAt      time.Time `json:"confirmedAt" yaml:"confirmedAt"`
	DigitalSignature string    `json:"digitalSignature,omitempty" yaml:"digitalSignature,omitempty"`
}

// ResponseVersion is one entry of a response's append-only save log.
type ResponseVersion struct {
	Version int            `json:"version" yaml:"version"`
	Data    checklist.Data `json:"data" yaml:"data"`
	SavedAt time.Time      `json:"savedAt" yaml:"savedAt"`
	SavedBy string         `json:"savedBy" yaml:"savedBy"`
}

// Response is an authority's checklist answer to a query.
type Response struct {
	ID             string            `json:"id" yaml:"id"`
	AssignmentID   string            `json:"assignmentId" yaml:"assignmentId"`
	ChecklistData  checklist.Data    `json:"checklistData" yaml:"checklistData"`
	SummaryData    SummaryData       `json:"summaryData" yaml:"summaryData"`
	Versions       []ResponseVersion `json:"versions" yaml:"versions"`
	CurrentVersion int               `json:"currentVersion" yaml:"currentVersion"`
	SubmittedBy    string            `json:"submittedBy" yaml:"submittedBy"`
	SubmittedAt    time.Time         `json:"submittedAt" yaml:"submittedAt"`
	Confirmation   *Confirmation     `json:"confirmation,omitempty" yaml:"confirmation,omitempty"`
}

// CurrentData returns the data of the version CurrentVersion points to,
// falling back to ChecklistData when the log has no such entry.
func CurrentData(r *Response) checklist.Data {
	for i := len(r.Versions) - 1; i >= 0; i-- {
		if r.Versions[i].Version == r.CurrentVersion && r.Versions[i].Data != nil {
			return r.Versions[i].Data
		}
	}
	return r.ChecklistData
}
