// Package docbox aggregates manual and AI verification results of the
// documents stored in an audit case's document box.
package docbox

import "time"

// Status is the verification status of a document.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
	StatusUnclear  Status = "unclear"
)

// RiskLevel is the AI verifier's risk classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ManualVerification is the human decision on a document.
type ManualVerification struct {
	Status     Status     `json:"status" yaml:"status"`
	VerifiedBy string     `json:"verifiedBy,omitempty" yaml:"verifiedBy,omitempty"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty" yaml:"verifiedAt,omitempty"`
	Remarks    string     `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	Findings   []string   `json:"findings,omitempty" yaml:"findings,omitempty"`
}

// MatchedExpenditure links a document to an expenditure item.
type MatchedExpenditure struct {
	ItemID          string  `json:"itemId" yaml:"itemId"`
	InvoiceNumber   string  `json:"invoiceNumber" yaml:"invoiceNumber"`
	Amount          float64 `json:"amount" yaml:"amount"`
	MatchConfidence float64 `json:"matchConfidence" yaml:"matchConfidence"`
}

// Document is one uploaded file with at most one manual and one AI
// verification. Re-verification replaces the previous result.
type Document struct {
	ID                 string              `json:"id" yaml:"id"`
	BoxID              string              `json:"boxId" yaml:"boxId"`
	ExpenditureItemID  string              `json:"expenditureItemId,omitempty" yaml:"expenditureItemId,omitempty"`
	FileName           string              `json:"fileName" yaml:"fileName"`
	FileSize           int64               `json:"fileSize" yaml:"fileSize"`
	MimeType           string              `json:"mimeType" yaml:"mimeType"`
	StoragePath        string              `json:"storagePath" yaml:"storagePath"`
	ThumbnailPath      string              `json:"thumbnailPath,omitempty" yaml:"thumbnailPath,omitempty"`
	UploadedBy         string              `json:"uploadedBy" yaml:"uploadedBy"`
	UploadedAt         time.Time           `json:"uploadedAt" yaml:"uploadedAt"`
	ManualVerification *ManualVerification `json:"manualVerification,omitempty" yaml:"manualVerification,omitempty"`
	AIVerification     *AIVerification     `json:"aiVerification,omitempty" yaml:"aiVerification,omitempty"`
	MatchedExpenditure *MatchedExpenditure `json:"matchedExpenditure,omitempty" yaml:"matchedExpenditure,omitempty"`
}

// Amount returns the matched expenditure amount, or 0 when unmatched.
func (d *Document) Amount() float64 {
	if d.MatchedExpenditure == nil {
		return 0
	}
	return d.MatchedExpenditure.Amount
}

// ManualStatus returns the manual status, or "" if none was recorded.
func (d *Document) ManualStatus() Status {
	if d.ManualVerification == nil {
		return ""
	}
	return d.ManualVerification.Status
}

// AIVerificationConfig controls the AI verification run of a box.
type AIVerificationConfig struct {
	AutoProcess         bool    `json:"autoProcess" yaml:"autoProcess"`
	ConfidenceThreshold float64 `json:"confidenceThreshold" yaml:"confidenceThreshold"`
	Features            struct {
		OCR                bool `json:"ocr" yaml:"ocr"`
		Extraction         bool `json:"extraction" yaml:"extraction"`
		Verification       bool `json:"verification" yaml:"verification"`
		DuplicateDetection bool `json:"duplicateDetection" yaml:"duplicateDetection"`
	} `json:"features" yaml:"features"`
}

// AIVerificationSettings describes whether and how AI verification runs.
type AIVerificationSettings struct {
	Enabled   bool                 `json:"enabled" yaml:"enabled"`
	Provider  string               `json:"provider" yaml:"provider"`
	LastRunAt *time.Time           `json:"lastRunAt,omitempty" yaml:"lastRunAt,omitempty"`
	Config    AIVerificationConfig `json:"config" yaml:"config"`
}

// Box is the document repository of one audit case.
type Box struct {
	ID             string                 `json:"id" yaml:"id"`
	AuditCaseID    string                 `json:"auditCaseId" yaml:"auditCaseId"`
	Documents      []Document             `json:"documents" yaml:"documents"`
	Statistics     Statistics             `json:"statistics" yaml:"statistics"`
	AIVerification AIVerificationSettings `json:"aiVerification" yaml:"aiVerification"`
}

// Refresh recomputes the box statistics from its documents.
func (b *Box) Refresh() {
	b.Statistics = CalculateBoxStatistics(b.Documents)
}
