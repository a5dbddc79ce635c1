package groupquery

import (
	"time"

	"github.com/rotisserie/eris"
)

// ErrInvalidTransition is returned when an event does not apply to the
// assignment's current status.
var ErrInvalidTransition = eris.New("groupquery: invalid assignment transition")

// AssignmentStatus is one authority's progress on a query.
type AssignmentStatus string

const (
	AssignmentPending        AssignmentStatus = "pending"
	AssignmentInProgress     AssignmentStatus = "in_progress"
	AssignmentReadyForReview AssignmentStatus = "ready_for_review"
	AssignmentSubmitted      AssignmentStatus = "submitted"
	AssignmentReturned       AssignmentStatus = "returned"
	AssignmentAccepted       AssignmentStatus = "accepted"
)

// Responded reports whether the status counts as a response: submitted or
// accepted.
func (s AssignmentStatus) Responded() bool {
	return s == AssignmentSubmitted || s == AssignmentAccepted
}

// Assignment is one authority's obligation to answer a query. Progress is
// maintained by the caller and trusted as-is.
type Assignment struct {
	ID            string           `json:"id" yaml:"id"`
	QueryID       string           `json:"queryId" yaml:"queryId"`
	AuthorityID   string           `json:"authorityId" yaml:"authorityId"`
	AuthorityName string           `json:"authorityName,omitempty" yaml:"authorityName,omitempty"`
	Status        AssignmentStatus `json:"status" yaml:"status"`
	Progress      int              `json:"progress" yaml:"progress"`
	AssignedAt    time.Time        `json:"assignedAt" yaml:"assignedAt"`
	StartedAt     *time.Time       `json:"startedAt,omitempty" yaml:"startedAt,omitempty"`
	SubmittedAt   *time.Time       `json:"submittedAt,omitempty" yaml:"submittedAt,omitempty"`
	ResponseID    string           `json:"responseId,omitempty" yaml:"responseId,omitempty"`
	Attachments   []Attachment     `json:"attachments" yaml:"attachments"`
	Remarks       string           `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	InternalNotes string           `json:"internalNotes,omitempty" yaml:"internalNotes,omitempty"`
}

// AttachmentStatus is the review state of an uploaded attachment.
type AttachmentStatus string

const (
	AttachmentPending  AttachmentStatus = "pending"
	AttachmentVerified AttachmentStatus = "verified"
	AttachmentRejected AttachmentStatus = "rejected"
)

// Attachment is a file uploaded for an assignment, optionally satisfying an
// AttachmentRequirement.
type Attachment struct {
	ID                 string           `json:"id" yaml:"id"`
	AssignmentID       string           `json:"assignmentId" yaml:"assignmentId"`
	RequirementID      string           `json:"requirementId,omitempty" yaml:"requirementId,omitempty"`
	FileName           string           `json:"fileName" yaml:"fileName"`
	FileSize           int64            `json:"fileSize" yaml:"fileSize"`
	MimeType           string           `json:"mimeType" yaml:"mimeType"`
	StoragePath        string           `json:"storagePath" yaml:"storagePath"`
	UploadedBy         string           `json:"uploadedBy" yaml:"uploadedBy"`
	UploadedAt         time.Time        `json:"uploadedAt" yaml:"uploadedAt"`
	VerificationStatus AttachmentStatus `json:"verificationStatus,omitempty" yaml:"verificationStatus,omitempty"`
	VerifiedBy         string           `json:"verifiedBy,omitempty" yaml:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time       `json:"verifiedAt,omitempty" yaml:"verifiedAt,omitempty"`
}

// Event drives an assignment from one status to the next.
type Event string

const (
	EventStart  Event = "start"
	EventReady  Event = "ready"
	EventSubmit Event = "submit"
	EventReturn Event = "return"
	EventAccept Event = "accept"
	EventResume Event = "resume"
)

type transitionKey struct {
	from  AssignmentStatus
	event Event
}

// transitions is the assignment lifecycle. A returned assignment goes back
// to in_progress on resume; accepted has no outgoing edges.
var transitions = map[transitionKey]AssignmentStatus{
	{AssignmentPending, EventStart}:         AssignmentInProgress,
	{AssignmentInProgress, EventReady}:      AssignmentReadyForReview,
	{AssignmentReadyForReview, EventSubmit}: AssignmentSubmitted,
	{AssignmentSubmitted, EventReturn}:      AssignmentReturned,
	{AssignmentSubmitted, EventAccept}:      AssignmentAccepted,
	{AssignmentReturned, EventResume}:       AssignmentInProgress,
}

// Transition returns the status reached from 'from' on event e.
func Transition(from AssignmentStatus, e Event) (AssignmentStatus, error) {
	to, ok := transitions[transitionKey{from, e}]
	if !ok {
		return from, eris.Wrapf(ErrInvalidTransition, "%s on %s", e, from)
	}
	return to, nil
}

// Events lists the events accepted in status s, in a stable order.
func Events(s AssignmentStatus) []Event {
	var out []Event
	for _, e := range []Event{EventStart, EventReady, EventSubmit, EventReturn, EventAccept, EventResume} {
		if _, ok := transitions[transitionKey{s, e}]; ok {
			out = append(out, e)
		}
	}
	return out
}

// CalculateProgress returns the caller-maintained progress of a.
func CalculateProgress(a *Assignment) int {
	return a.Progress
}
