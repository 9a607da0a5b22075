package dto

import (
	"time"

	"github.com/spec-kit/hiring-workflow/internal/domain"
)

// CreateJoinRequestRequest payload.
type CreateJoinRequestRequest struct {
	RoleTitle domain.MemberRole `json:"role_title"`
}

// InviteUserRequest payload.
type InviteUserRequest struct {
	UserID    string            `json:"user_id"`
	RoleTitle domain.MemberRole `json:"role_title"`
}

// ResolveJoinRequestRequest payload.
type ResolveJoinRequestRequest struct {
	Decision domain.Decision `json:"decision"`
}

// JoinRequestResponse represents a join request or invitation.
type JoinRequestResponse struct {
	ID          string                   `json:"id"`
	CompanyID   string                   `json:"company_id"`
	UserID      string                   `json:"user_id"`
	RoleTitle   domain.MemberRole        `json:"role_title"`
	Origin      domain.JoinRequestOrigin `json:"origin"`
	Status      domain.JoinRequestStatus `json:"status"`
	RequestedBy string                   `json:"requested_by"`
	RequestedAt time.Time                `json:"requested_at"`
	ResolvedBy  *string                  `json:"resolved_by"`
	ResolvedAt  *time.Time               `json:"resolved_at"`
}

// ResolveJoinRequestResponse carries the membership created by an acceptance.
type ResolveJoinRequestResponse struct {
	Request    JoinRequestResponse `json:"request"`
	Membership *MembershipResponse `json:"membership,omitempty"`
}
