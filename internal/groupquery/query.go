// Package groupquery derives the state of a cross-authority group query:
// deadlines, submission progress, evaluation gating and the assignment
// lifecycle. It never mutates a query.
package groupquery

import (
	"time"

	"github.com/flowaudit/audit-engine/internal/checklist"
)

// Category classifies the purpose of a query.
type Category string

const (
	CategoryAnnualReport       Category = "annual_report"
	CategoryQuarterlyReport    Category = "quarterly_report"
	CategoryAdHoc              Category = "ad_hoc"
	CategorySystemAuditSummary Category = "system_audit_summary"
	CategoryStatistics         Category = "statistics"
)

// Status is the query lifecycle state. It is driven by the caller and only
// read here.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusPublished  Status = "published"
	StatusInProgress Status = "in_progress"
	StatusEvaluation Status = "evaluation"
	StatusCompleted  Status = "completed"
	StatusArchived   Status = "archived"
)

// EvaluationTrigger gates when a query may be evaluated.
type EvaluationTrigger string

const (
	TriggerOnSubmission  EvaluationTrigger = "on_submission"
	TriggerAfterDeadline EvaluationTrigger = "after_deadline"
	TriggerManual        EvaluationTrigger = "manual"
)

// GroupQuery is a data-collection request from a parent organisation to its
// authorities, with one assignment per participating authority.
type GroupQuery struct {
	ID                  string       `json:"id" yaml:"id"`
	TenantID            string       `json:"tenantId" yaml:"tenantId"`
	CreatedAt           time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt" yaml:"updatedAt"`
	Title               string       `json:"title" yaml:"title"`
	Description         string       `json:"description,omitempty" yaml:"description,omitempty"`
	Category            Category     `json:"category" yaml:"category"`
	FiscalYear          int          `json:"fiscalYear" yaml:"fiscalYear"`
	PublishedAt         *time.Time   `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
	Deadline            time.Time    `json:"deadline" yaml:"deadline"`
	ChecklistTemplateID string       `json:"checklistTemplateId" yaml:"checklistTemplateId"`
	ChecklistVersion    int          `json:"checklistVersion" yaml:"checklistVersion"`
	Config              Config       `json:"config" yaml:"config"`
	Status              Status       `json:"status" yaml:"status"`
	Assignments         []Assignment `json:"assignments" yaml:"assignments"`
}

// Config holds the per-query rules.
type Config struct {
	EvaluationTrigger   EvaluationTrigger       `json:"evaluationTrigger" yaml:"evaluationTrigger"`
	RequiredAttachments []AttachmentRequirement `json:"requiredAttachments" yaml:"requiredAttachments"`
	ReminderSettings    ReminderSettings        `json:"reminderSettings" yaml:"reminderSettings"`
	ValidationRules     []ValidationRule        `json:"validationRules" yaml:"validationRules"`
	AggregationConfig   *AggregationConfig      `json:"aggregationConfig,omitempty" yaml:"aggregationConfig,omitempty"`
}

// AttachmentRequirement names a file every authority has to upload.
type AttachmentRequirement struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	FileTypes   []string `json:"fileTypes" yaml:"fileTypes"`
	Required    bool     `json:"required" yaml:"required"`
	MaxSize     int      `json:"maxSize" yaml:"maxSize"` // MB
}

// RuleKind is the check a ValidationRule performs.
type RuleKind string

const (
	RuleRequired RuleKind = "required"
	RuleMin      RuleKind = "min"
	RuleMax      RuleKind = "max"
	RulePattern  RuleKind = "pattern"
)

// ValidationRule is a query-level check on one response field, applied on
// top of the checklist template's own field rules.
type ValidationRule struct {
	Field   string          `json:"field" yaml:"field"`
	Rule    RuleKind        `json:"rule" yaml:"rule"`
	Value   checklist.Value `json:"value" yaml:"value"`
	Message string          `json:"message" yaml:"message"`
}

// AggregationConfig configures the custom aggregation of response data.
type AggregationConfig struct {
	GroupBy     []string `json:"groupBy" yaml:"groupBy"`
	SumFields   []string `json:"sumFields" yaml:"sumFields"`
	AvgFields   []string `json:"avgFields" yaml:"avgFields"`
	CountFields []string `json:"countFields" yaml:"countFields"`
}

// ReminderSettings schedules deadline reminders.
type ReminderSettings struct {
	Enabled          bool  `json:"enabled" yaml:"enabled"`
	DaysBefore       []int `json:"daysBefore" yaml:"daysBefore"`
	SendToTeamLeader bool  `json:"sendToTeamLeader" yaml:"sendToTeamLeader"`
}

// Assignment returns the assignment with the given id, or nil.
func (q *GroupQuery) Assignment(id string) *Assignment {
	for i := range q.Assignments {
		if q.Assignments[i].ID == id {
			return &q.Assignments[i]
		}
	}
	return nil
}
