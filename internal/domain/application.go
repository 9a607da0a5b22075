package domain

import "time"

// ApplicationStatus enumerates review pipeline states.
type ApplicationStatus string

const (
	ApplicationStatusApplied   ApplicationStatus = "applied"
	ApplicationStatusReviewed  ApplicationStatus = "reviewed"
	ApplicationStatusInterview ApplicationStatus = "interview"
	ApplicationStatusHired     ApplicationStatus = "hired"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusApplied, ApplicationStatusReviewed, ApplicationStatusInterview,
		ApplicationStatusHired, ApplicationStatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is accepted from s.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationStatusHired || s == ApplicationStatusRejected
}

// JobApplication is a candidate's application to a job. One per (JobID, ApplicantID).
type JobApplication struct {
	ID          string
	JobID       string
	ApplicantID string
	Status      ApplicationStatus
	ResumeRef   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplicationHistory is an immutable audit entry for a status change.
type ApplicationHistory struct {
	ID            string
	ApplicationID string
	ChangedBy     string
	OldStatus     ApplicationStatus
	NewStatus     ApplicationStatus
	CreatedAt     time.Time
}
