package docbox

import "github.com/shopspring/decimal"

// Statistics tallies a box. Manual and AI counters are independent: a
// document counts once among verified/rejected/inProgress/pending and, if
// it has an AI result, once among the ai* counters.
type Statistics struct {
	Total      int `json:"total" yaml:"total"`
	Verified   int `json:"verified" yaml:"verified"`
	Rejected   int `json:"rejected" yaml:"rejected"`
	InProgress int `json:"inProgress" yaml:"inProgress"`
	Pending    int `json:"pending" yaml:"pending"`

	AIProcessed int `json:"aiProcessed" yaml:"aiProcessed"`
	AIApproved  int `json:"aiApproved" yaml:"aiApproved"`
	AIRejected  int `json:"aiRejected" yaml:"aiRejected"`
	AIUnclear   int `json:"aiUnclear" yaml:"aiUnclear"`

	TotalAmount    float64 `json:"totalAmount" yaml:"totalAmount"`
	VerifiedAmount float64 `json:"verifiedAmount" yaml:"verifiedAmount"`
	RejectedAmount float64 `json:"rejectedAmount" yaml:"rejectedAmount"`
}

// CalculateBoxStatistics tallies documents in a single pass. Verified and
// rejected amounts only follow manual decisions; AI verdicts never move money.
func CalculateBoxStatistics(documents []Document) Statistics {
	stats := Statistics{Total: len(documents)}
	total, verified, rejected := decimal.Zero, decimal.Zero, decimal.Zero

	for i := range documents {
		doc := &documents[i]
		amount := decimal.NewFromFloat(doc.Amount())
		total = total.Add(amount)

		switch doc.ManualStatus() {
		case StatusVerified:
			stats.Verified++
			verified = verified.Add(amount)
		case StatusRejected:
			stats.Rejected++
			rejected = rejected.Add(amount)
		case StatusUnclear:
			stats.InProgress++
		default:
			stats.Pending++
		}

		if doc.AIVerification != nil {
			stats.AIProcessed++
			switch aiVerdict(&doc.AIVerification.VerificationResults) {
			case StatusVerified:
				stats.AIApproved++
			case StatusRejected:
				stats.AIRejected++
			default:
				stats.AIUnclear++
			}
		}
	}

	stats.TotalAmount = total.InexactFloat64()
	stats.VerifiedAmount = verified.InexactFloat64()
	stats.RejectedAmount = rejected.InexactFloat64()
	return stats
}

// GetDocumentStatus resolves the effective status: a manual decision always
// wins, otherwise the AI verdict applies, otherwise the document is pending.
func GetDocumentStatus(doc *Document) Status {
	if s := doc.ManualStatus(); s != "" {
		return s
	}
	if doc.AIVerification != nil {
		return aiVerdict(&doc.AIVerification.VerificationResults)
	}
	return StatusPending
}

// NeedsManualReview reports whether a human has to look at the document:
// always without an AI result, otherwise when the verifier asks for it.
func NeedsManualReview(doc *Document) bool {
	if doc.AIVerification == nil {
		return true
	}
	return doc.AIVerification.VerificationResults.RequiresManualReview
}

// VerificationScore returns the AI overall score, or 0 without an AI result.
func VerificationScore(doc *Document) float64 {
	if doc.AIVerification == nil {
		return 0
	}
	return doc.AIVerification.VerificationResults.OverallScore
}

// StatusCounts counts documents by effective status.
func StatusCounts(documents []Document) map[Status]int {
	counts := map[Status]int{
		StatusPending:  0,
		StatusVerified: 0,
		StatusRejected: 0,
		StatusUnclear:  0,
	}
	for i := range documents {
		counts[GetDocumentStatus(&documents[i])]++
	}
	return counts
}
