package domain

import "time"

// MemberRole enumerates company-scoped roles.
type MemberRole string

const (
	MemberRoleNone      MemberRole = ""
	MemberRoleAdmin     MemberRole = "admin"
	MemberRoleRecruiter MemberRole = "recruiter"
	MemberRoleEmployee  MemberRole = "employee"
)

// Valid reports whether r names an assignable role.
func (r MemberRole) Valid() bool {
	switch r {
	case MemberRoleAdmin, MemberRoleRecruiter, MemberRoleEmployee:
		return true
	default:
		return false
	}
}

// Membership binds a user to a company under a role. One per (CompanyID, UserID).
type Membership struct {
	CompanyID string
	UserID    string
	Role      MemberRole
	CreatedAt time.Time
	UpdatedAt time.Time
}
