package events

import (
	"time"

	"github.com/spec-kit/hiring-workflow/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventJoinRequestCreated       EventType = "join_request_created"
	EventJoinRequestResolved      EventType = "join_request_resolved"
	EventMembershipRoleChanged    EventType = "membership_role_changed"
	EventMembershipRemoved        EventType = "membership_removed"
	EventApplicationSubmitted     EventType = "application_submitted"
	EventApplicationStatusChanged EventType = "application_status_changed"
	EventApplicationWithdrawn     EventType = "application_withdrawn"
)

// Event represents a domain event emitted by services after the write commits.
// SubjectID is the id of the entity the event is about.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// JoinRequestCreatedPayload payload.
type JoinRequestCreatedPayload struct {
	CompanyID string                   `json:"company_id"`
	UserID    string                   `json:"user_id"`
	RoleTitle domain.MemberRole        `json:"role_title"`
	Origin    domain.JoinRequestOrigin `json:"origin"`
}

// JoinRequestResolvedPayload payload.
type JoinRequestResolvedPayload struct {
	CompanyID string                   `json:"company_id"`
	UserID    string                   `json:"user_id"`
	Status    domain.JoinRequestStatus `json:"status"`
}

// MembershipRoleChangedPayload payload.
type MembershipRoleChangedPayload struct {
	CompanyID string            `json:"company_id"`
	UserID    string            `json:"user_id"`
	OldRole   domain.MemberRole `json:"old_role"`
	NewRole   domain.MemberRole `json:"new_role"`
}

// MembershipRemovedPayload payload.
type MembershipRemovedPayload struct {
	CompanyID string            `json:"company_id"`
	UserID    string            `json:"user_id"`
	Role      domain.MemberRole `json:"role"`
}

// ApplicationSubmittedPayload payload.
type ApplicationSubmittedPayload struct {
	JobID       string `json:"job_id"`
	ApplicantID string `json:"applicant_id"`
}

// ApplicationStatusChangedPayload payload.
type ApplicationStatusChangedPayload struct {
	ApplicantID string                   `json:"applicant_id"`
	OldStatus   domain.ApplicationStatus `json:"old_status"`
	NewStatus   domain.ApplicationStatus `json:"new_status"`
}

// ApplicationWithdrawnPayload payload.
type ApplicationWithdrawnPayload struct {
	JobID string `json:"job_id"`
}
