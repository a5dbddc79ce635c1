package groupquery

import (
	"math"
	"slices"
	"time"
)

// IsOverdue reports whether now is past the deadline.
func IsOverdue(q *GroupQuery, now time.Time) bool {
	return q.Deadline.Before(now)
}

// GetSubmittedCount counts submitted and accepted assignments.
func GetSubmittedCount(q *GroupQuery) int {
	n := 0
	for i := range q.Assignments {
		if q.Assignments[i].Status.Responded() {
			n++
		}
	}
	return n
}

// GetProgressPercentage is the rounded share of responded assignments, or
// 0 for a query without assignments.
func GetProgressPercentage(q *GroupQuery) int {
	if len(q.Assignments) == 0 {
		return 0
	}
	return int(math.Floor(float64(GetSubmittedCount(q))/float64(len(q.Assignments))*100 + 0.5))
}

// CanEvaluate applies the query's evaluation trigger. Unknown triggers never
// allow evaluation.
func CanEvaluate(q *GroupQuery, now time.Time) bool {
	switch q.Config.EvaluationTrigger {
	case TriggerManual:
		return true
	case TriggerAfterDeadline:
		return IsOverdue(q, now)
	case TriggerOnSubmission:
		return GetSubmittedCount(q) > 0
	default:
		return false
	}
}

// GetPendingAuthorities returns the assignments that are pending or in
// progress. Returned assignments are not included until they resume.
func GetPendingAuthorities(q *GroupQuery) []Assignment {
	out := []Assignment{}
	for _, a := range q.Assignments {
		if a.Status == AssignmentPending || a.Status == AssignmentInProgress {
			out = append(out, a)
		}
	}
	return out
}

// DaysUntilDeadline returns the whole days left before the deadline,
// truncated toward zero, and false once the deadline has passed.
func DaysUntilDeadline(q *GroupQuery, now time.Time) (int, bool) {
	if IsOverdue(q, now) {
		return 0, false
	}
	return int(q.Deadline.Sub(now) / (24 * time.Hour)), true
}

// ReminderDue reports whether a reminder should go out at now: reminders
// are enabled and the days left match one of the configured offsets.
func ReminderDue(q *GroupQuery, now time.Time) bool {
	rs := q.Config.ReminderSettings
	if !rs.Enabled {
		return false
	}
	days, ok := DaysUntilDeadline(q, now)
	return ok && slices.Contains(rs.DaysBefore, days)
}

// MissingAttachments lists the required attachments a has not uploaded.
// Rejected uploads do not satisfy a requirement.
func MissingAttachments(q *GroupQuery, a *Assignment) []AttachmentRequirement {
	out := []AttachmentRequirement{}
	for _, req := range q.Config.RequiredAttachments {
		if !req.Required {
			continue
		}
		satisfied := slices.ContainsFunc(a.Attachments, func(att Attachment) bool {
			return att.RequirementID == req.ID && att.VerificationStatus != AttachmentRejected
		})
		if !satisfied {
			out = append(out, req)
		}
	}
	return out
}

// StatusReport bundles the derived state of a query at one instant.
type StatusReport struct {
	QueryID            string       `json:"queryId" yaml:"queryId"`
	Overdue            bool         `json:"overdue" yaml:"overdue"`
	SubmittedCount     int          `json:"submittedCount" yaml:"submittedCount"`
	ProgressPercentage int          `json:"progressPercentage" yaml:"progressPercentage"`
	CanEvaluate        bool         `json:"canEvaluate" yaml:"canEvaluate"`
	PendingAuthorities []Assignment `json:"pendingAuthorities" yaml:"pendingAuthorities"`
	DaysUntilDeadline  *int         `json:"daysUntilDeadline,omitempty" yaml:"daysUntilDeadline,omitempty"`
	ReminderDue        bool         `json:"reminderDue" yaml:"reminderDue"`
}

// Summarize computes the derived state of q at now.
func Summarize(q *GroupQuery, now time.Time) StatusReport {
	r := StatusReport{
		QueryID:            q.ID,
		Overdue:            IsOverdue(q, now),
		SubmittedCount:     GetSubmittedCount(q),
		ProgressPercentage: GetProgressPercentage(q),
		CanEvaluate:        CanEvaluate(q, now),
		PendingAuthorities: GetPendingAuthorities(q),
		ReminderDue:        ReminderDue(q, now),
	}
	if days, ok := DaysUntilDeadline(q, now); ok {
		r.DaysUntilDeadline = &days
	}
	return r
}
