package checklist

import "time"

// ChecklistType classifies what a template is used for.
type ChecklistType string

const (
	TypeMain        ChecklistType = "main"
	TypeProcurement ChecklistType = "procurement"
	TypeSubsidy     ChecklistType = "subsidy"
	TypeEligibility ChecklistType = "eligibility"
	TypeSystem      ChecklistType = "system"
)

// Section is an ordered group of fields. Its conditional controls the
// section only and is not inherited by the fields inside it.
type Section struct {
	ID          string            `json:"id" yaml:"id" validate:"required"`
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Order       int               `json:"order" yaml:"order"`
	Fields      []FieldSchema     `json:"fields" yaml:"fields" validate:"dive"`
	Conditional *ConditionalLogic `json:"conditional,omitempty" yaml:"conditional,omitempty"`
}

// ReportIntegrationMode controls how much of a checklist lands in the report.
type ReportIntegrationMode string

const (
	ReportFull      ReportIntegrationMode = "full"
	ReportSummary   ReportIntegrationMode = "summary"
	ReportTableOnly ReportIntegrationMode = "table_only"
	ReportNone      ReportIntegrationMode = "none"
)

// ReportIntegrationConfig configures report integration.
type ReportIntegrationConfig struct {
	Enabled  bool                  `json:"enabled" yaml:"enabled"`
	Mode     ReportIntegrationMode `json:"mode" yaml:"mode" validate:"omitempty,oneof=full summary table_only none"`
	Template string                `json:"template,omitempty" yaml:"template,omitempty"`
}

// ScoringConfig is consumed by the external category scorer; the engine
// only carries it.
type ScoringConfig struct {
	Enabled        bool                  `json:"enabled" yaml:"enabled"`
	Categories     []SystemAuditCategory `json:"categories" yaml:"categories" validate:"dive,min=1,max=4"`
	WeightedFields map[string]float64    `json:"weightedFields,omitempty" yaml:"weightedFields,omitempty"`
}

// Config holds per-template behaviour switches.
type Config struct {
	ReportIntegration ReportIntegrationConfig `json:"reportIntegration" yaml:"reportIntegration"`
	ValidateOnSave    bool                    `json:"validateOnSave" yaml:"validateOnSave"`
	RequireAllFields  bool                    `json:"requireAllFields" yaml:"requireAllFields"`
	Scoring           *ScoringConfig          `json:"scoring,omitempty" yaml:"scoring,omitempty"`
}

// Template is a tenant-scoped checklist definition. The engine only reads
// templates; versioning and locking are enforced by the caller.
type Template struct {
	ID             string        `json:"id" yaml:"id" validate:"required"`
	TenantID       string        `json:"tenantId" yaml:"tenantId"`
	CreatedAt      time.Time     `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt" yaml:"updatedAt"`
	Name           string        `json:"name" yaml:"name" validate:"required"`
	Description    string        `json:"description,omitempty" yaml:"description,omitempty"`
	Type           ChecklistType `json:"type" yaml:"type" validate:"omitempty,oneof=main procurement subsidy eligibility system"`
	Version        int           `json:"version" yaml:"version" validate:"gte=0"`
	IsActive       bool          `json:"isActive" yaml:"isActive"`
	IsLocked       bool          `json:"isLocked" yaml:"isLocked"`
	Sections       []Section     `json:"sections" yaml:"sections" validate:"dive"`
	Config         Config        `json:"config" yaml:"config"`
	CreatedBy      string        `json:"createdBy" yaml:"createdBy"`
	LastModifiedBy string        `json:"lastModifiedBy" yaml:"lastModifiedBy"`
}

// Fields returns every field across all sections in template order.
func (t *Template) Fields() []*FieldSchema {
	var out []*FieldSchema
	for si := range t.Sections {
		for fi := range t.Sections[si].Fields {
			out = append(out, &t.Sections[si].Fields[fi])
		}
	}
	return out
}

// InstanceStatus is driven externally; the engine never transitions it.
type InstanceStatus string

const (
	InstanceDraft      InstanceStatus = "draft"
	InstanceInProgress InstanceStatus = "in_progress"
	InstanceCompleted  InstanceStatus = "completed"
	InstanceApproved   InstanceStatus = "approved"
	InstanceRejected   InstanceStatus = "rejected"
)

// Instance is a filled-out copy of a template version. It owns its data
// and references the template weakly by id and version.
type Instance struct {
	ID                   string               `json:"id" yaml:"id"`
	TenantID             string               `json:"tenantId" yaml:"tenantId"`
	CreatedAt            time.Time            `json:"createdAt" yaml:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt" yaml:"updatedAt"`
	TemplateID           string               `json:"templateId" yaml:"templateId"`
	TemplateVersion      int                  `json:"templateVersion" yaml:"templateVersion"`
	AuditCaseID          string               `json:"auditCaseId,omitempty" yaml:"auditCaseId,omitempty"`
	Data                 Data                 `json:"data" yaml:"data"`
	Status               InstanceStatus       `json:"status" yaml:"status"`
	CompletionPercentage int                  `json:"completionPercentage" yaml:"completionPercentage"`
	Score                *float64             `json:"score,omitempty" yaml:"score,omitempty"`
	Category             *SystemAuditCategory `json:"category,omitempty" yaml:"category,omitempty"`
	StartedAt            *time.Time           `json:"startedAt,omitempty" yaml:"startedAt,omitempty"`
	CompletedAt          *time.Time           `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	AssignedTo           string               `json:"assignedTo,omitempty" yaml:"assignedTo,omitempty"`
	CompletedBy          string               `json:"completedBy,omitempty" yaml:"completedBy,omitempty"`
}

// SystemAuditCategory is the 1-4 rating of a system audit.
type SystemAuditCategory int

const (
	CategoryWorksWell      SystemAuditCategory = 1
	CategoryNeedsImprove   SystemAuditCategory = 2
	CategorySignificantGap SystemAuditCategory = 3
	CategoryNotWorking     SystemAuditCategory = 4
)

var categoryLabels = map[SystemAuditCategory]string{
	CategoryWorksWell:      "System funktioniert gut",
	CategoryNeedsImprove:   "Verbesserungen nötig",
	CategorySignificantGap: "Erhebliche Mängel",
	CategoryNotWorking:     "System funktioniert nicht",
}

// Label returns the German display label, or "" for out-of-range values.
func (c SystemAuditCategory) Label() string {
	return categoryLabels[c]
}

// Valid reports whether c is one of the four categories.
func (c SystemAuditCategory) Valid() bool {
	return c >= CategoryWorksWell && c <= CategoryNotWorking
}
