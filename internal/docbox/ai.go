package docbox

import "time"

// AIVerification is the machine verification result of one document.
type AIVerification struct {
	ID                  string              `json:"id" yaml:"id"`
	DocumentID          string              `json:"documentId" yaml:"documentId"`
	ProcessedAt         time.Time           `json:"processedAt" yaml:"processedAt"`
	ProcessingTime      float64             `json:"processingTime" yaml:"processingTime"`
	ExtractedData       ExtractedInvoice    `json:"extractedData" yaml:"extractedData"`
	VerificationResults VerificationResults `json:"verificationResults" yaml:"verificationResults"`
	Warnings            []AIWarning         `json:"warnings" yaml:"warnings"`
	Suggestions         []AISuggestion      `json:"suggestions" yaml:"suggestions"`
	Confidence          Confidence          `json:"confidence" yaml:"confidence"`
}

// Confidence holds the verifier's confidence per stage, each in [0, 1].
type Confidence struct {
	Extraction   float64 `json:"extraction" yaml:"extraction"`
	Verification float64 `json:"verification" yaml:"verification"`
	Overall      float64 `json:"overall" yaml:"overall"`
}

// ExtractedInvoice holds the invoice fields read from the document.
type ExtractedInvoice struct {
	InvoiceNumber string              `json:"invoiceNumber,omitempty" yaml:"invoiceNumber,omitempty"`
	InvoiceDate   string              `json:"invoiceDate,omitempty" yaml:"invoiceDate,omitempty"`
	VendorName    string              `json:"vendorName,omitempty" yaml:"vendorName,omitempty"`
	VendorAddress string              `json:"vendorAddress,omitempty" yaml:"vendorAddress,omitempty"`
	VendorTaxID   string              `json:"vendorTaxId,omitempty" yaml:"vendorTaxId,omitempty"`
	TotalAmount   *float64            `json:"totalAmount,omitempty" yaml:"totalAmount,omitempty"`
	NetAmount     *float64            `json:"netAmount,omitempty" yaml:"netAmount,omitempty"`
	Currency      string              `json:"currency,omitempty" yaml:"currency,omitempty"`
	TaxAmount     *float64            `json:"taxAmount,omitempty" yaml:"taxAmount,omitempty"`
	TaxRate       *float64            `json:"taxRate,omitempty" yaml:"taxRate,omitempty"`
	LineItems     []ExtractedLineItem `json:"lineItems,omitempty" yaml:"lineItems,omitempty"`
	PaymentTerms  string              `json:"paymentTerms,omitempty" yaml:"paymentTerms,omitempty"`
	BankDetails   *BankDetails        `json:"bankDetails,omitempty" yaml:"bankDetails,omitempty"`
}

// BankDetails is the payee bank connection printed on an invoice.
type BankDetails struct {
	IBAN     string `json:"iban,omitempty" yaml:"iban,omitempty"`
	BIC      string `json:"bic,omitempty" yaml:"bic,omitempty"`
	BankName string `json:"bankName,omitempty" yaml:"bankName,omitempty"`
}

// ExtractedLineItem is one invoice position.
type ExtractedLineItem struct {
	Position    *int     `json:"position,omitempty" yaml:"position,omitempty"`
	Description string   `json:"description" yaml:"description"`
	Quantity    *float64 `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Unit        string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	UnitPrice   *float64 `json:"unitPrice,omitempty" yaml:"unitPrice,omitempty"`
	TotalPrice  float64  `json:"totalPrice" yaml:"totalPrice"`
	TaxRate     *float64 `json:"taxRate,omitempty" yaml:"taxRate,omitempty"`
}

// FormalChecks are presence checks on mandatory invoice elements.
type FormalChecks struct {
	HasInvoiceNumber    bool `json:"hasInvoiceNumber" yaml:"hasInvoiceNumber"`
	HasDate             bool `json:"hasDate" yaml:"hasDate"`
	HasVendorInfo       bool `json:"hasVendorInfo" yaml:"hasVendorInfo"`
	HasAmounts          bool `json:"hasAmounts" yaml:"hasAmounts"`
	HasRequiredElements bool `json:"hasRequiredElements" yaml:"hasRequiredElements"`
}

// ArithmeticChecks verify the invoice sums.
type ArithmeticChecks struct {
	LineItemsSum   bool `json:"lineItemsSum" yaml:"lineItemsSum"`
	TaxCalculation bool `json:"taxCalculation" yaml:"taxCalculation"`
	TotalCorrect   bool `json:"totalCorrect" yaml:"totalCorrect"`
}

// PlausibilityChecks compare the invoice with the funded project.
type PlausibilityChecks struct {
	DateInProjectPeriod bool `json:"dateInProjectPeriod" yaml:"dateInProjectPeriod"`
	AmountWithinBudget  bool `json:"amountWithinBudget" yaml:"amountWithinBudget"`
	VendorKnown         bool `json:"vendorKnown" yaml:"vendorKnown"`
	DuplicateDetected   bool `json:"duplicateDetected" yaml:"duplicateDetected"`
}

// VerificationResults is the verdict block of an AI verification.
type VerificationResults struct {
	FormalChecks         FormalChecks       `json:"formalChecks" yaml:"formalChecks"`
	ArithmeticChecks     ArithmeticChecks   `json:"arithmeticChecks" yaml:"arithmeticChecks"`
	PlausibilityChecks   PlausibilityChecks `json:"plausibilityChecks" yaml:"plausibilityChecks"`
	OverallScore         float64            `json:"overallScore" yaml:"overallScore"`
	RiskLevel            RiskLevel          `json:"riskLevel" yaml:"riskLevel"`
	RequiresManualReview bool               `json:"requiresManualReview" yaml:"requiresManualReview"`
}

// AIWarning is a problem flagged by the verifier.
type AIWarning struct {
	Code       string `json:"code" yaml:"code"`
	Severity   string `json:"severity" yaml:"severity"`
	Message    string `json:"message" yaml:"message"`
	Field      string `json:"field,omitempty" yaml:"field,omitempty"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// AISuggestion is a correction, match or follow-up proposed by the verifier.
type AISuggestion struct {
	Type           string  `json:"type" yaml:"type"`
	Message        string  `json:"message" yaml:"message"`
	Field          string  `json:"field,omitempty" yaml:"field,omitempty"`
	SuggestedValue any     `json:"suggestedValue,omitempty" yaml:"suggestedValue,omitempty"`
	Confidence     float64 `json:"confidence" yaml:"confidence"`
}

// aiVerdict maps an AI result to a status: low risk without a review flag
// verifies, high risk rejects, everything else is unclear.
func aiVerdict(r *VerificationResults) Status {
	switch {
	case r.RiskLevel == RiskLow && !r.RequiresManualReview:
		return StatusVerified
	case r.RiskLevel == RiskHigh:
		return StatusRejected
	default:
		return StatusUnclear
	}
}
