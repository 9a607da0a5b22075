package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hiring-workflow/internal/api/dto"
	"github.com/spec-kit/hiring-workflow/internal/auth"
	"github.com/spec-kit/hiring-workflow/internal/domain"
	apperrors "github.com/spec-kit/hiring-workflow/pkg/util/errorutil"
)

const maxPageSize = 100

func currentActor(c *fiber.Ctx) (domain.Actor, error) {
	actor, ok := auth.ActorFromContext(c)
	if !ok || actor == nil {
		return domain.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return *actor, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// parsePage converts page/page_size query params to limit and offset.
func parsePage(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func splitCSV(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func membershipResponse(m *domain.Membership) dto.MembershipResponse {
	return dto.MembershipResponse{
		CompanyID: m.CompanyID,
		UserID:    m.UserID,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func joinRequestResponse(r *domain.JoinRequest) dto.JoinRequestResponse {
	return dto.JoinRequestResponse{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		UserID:      r.UserID,
		RoleTitle:   r.RoleTitle,
		Origin:      r.Origin,
		Status:      r.Status,
		RequestedBy: r.RequestedBy,
		RequestedAt: r.RequestedAt,
		ResolvedBy:  r.ResolvedBy,
		ResolvedAt:  r.ResolvedAt,
	}
}

func applicationResponse(a *domain.JobApplication) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:          a.ID,
		JobID:       a.JobID,
		ApplicantID: a.ApplicantID,
		Status:      a.Status,
		ResumeRef:   a.ResumeRef,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
