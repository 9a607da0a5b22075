package domain

import "time"

// JoinRequestOrigin tells which side proposed the relationship and therefore who resolves it.
type JoinRequestOrigin string

const (
	OriginUserInitiated    JoinRequestOrigin = "user-initiated"
	OriginCompanyInitiated JoinRequestOrigin = "company-initiated"
)

// JoinRequestStatus enumerates join request lifecycle states.
type JoinRequestStatus string

const (
	JoinRequestStatusPending  JoinRequestStatus = "pending"
	JoinRequestStatusAccepted JoinRequestStatus = "accepted"
	JoinRequestStatusRejected JoinRequestStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s JoinRequestStatus) Valid() bool {
	switch s {
	case JoinRequestStatusPending, JoinRequestStatusAccepted, JoinRequestStatusRejected:
		return true
	default:
		return false
	}
}

// Decision is the resolver's answer to a pending join request.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// JoinRequest proposes a Membership. At most one pending request exists per (CompanyID, UserID).
type JoinRequest struct {
	ID          string
	CompanyID   string
	UserID      string
	RoleTitle   MemberRole
	Origin      JoinRequestOrigin
	Status      JoinRequestStatus
	RequestedBy string
	RequestedAt time.Time
	ResolvedBy  *string
	ResolvedAt  *time.Time
}

// IsPending reports whether the request can still be resolved.
func (r *JoinRequest) IsPending() bool {
	return r != nil && r.Status == JoinRequestStatusPending
}
