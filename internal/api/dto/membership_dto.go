package dto

import (
	"time"

	"github.com/spec-kit/hiring-workflow/internal/domain"
)

// UpdateMemberRoleRequest payload.
type UpdateMemberRoleRequest struct {
	Role domain.MemberRole `json:"role"`
}

// MembershipResponse represents a company member.
type MembershipResponse struct {
	CompanyID string            `json:"company_id"`
	UserID    string            `json:"user_id"`
	Role      domain.MemberRole `json:"role"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
