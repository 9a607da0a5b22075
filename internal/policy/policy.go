// Package policy decides which company-scoped mutations an actor may perform.
//
// Every function is total and side-effect free. Callers pass domain.MemberRoleNone
// when the actor has no membership in the company.
package policy

import "github.com/spec-kit/hiring-workflow/internal/domain"

// CanResolveUserInitiatedRequest reports whether a member with the acting role may
// accept or reject a user's request to join, or invite a user on the company's behalf.
func CanResolveUserInitiatedRequest(acting domain.MemberRole) bool {
	return acting == domain.MemberRoleAdmin || acting == domain.MemberRoleRecruiter
}

// CanManageMembership reports whether the acting role may change or remove a
// membership currently holding the target role.
func CanManageMembership(acting, target domain.MemberRole) bool {
	switch acting {
	case domain.MemberRoleAdmin:
		return true
	case domain.MemberRoleRecruiter:
		return target != domain.MemberRoleAdmin
	default:
		return false
	}
}

// CanAssignRole reports whether the acting role may grant newRole.
func CanAssignRole(acting, newRole domain.MemberRole) bool {
	if !newRole.Valid() {
		return false
	}
	switch acting {
	case domain.MemberRoleAdmin:
		return true
	case domain.MemberRoleRecruiter:
		return newRole == domain.MemberRoleRecruiter || newRole == domain.MemberRoleEmployee
	default:
		return false
	}
}

// CanManage combines CanManageMembership with the rule that nobody manages their own record.
func CanManage(actorID string, acting domain.MemberRole, targetID string, target domain.MemberRole) bool {
	if actorID == targetID {
		return false
	}
	return CanManageMembership(acting, target)
}

// CanReviewApplications reports whether the acting role may move applications through the pipeline.
func CanReviewApplications(acting domain.MemberRole) bool {
	return acting == domain.MemberRoleAdmin || acting == domain.MemberRoleRecruiter
}
