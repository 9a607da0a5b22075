package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hiring-workflow/internal/api/dto"
	"github.com/spec-kit/hiring-workflow/internal/domain"
	"github.com/spec-kit/hiring-workflow/internal/service"
	apperrors "github.com/spec-kit/hiring-workflow/pkg/util/errorutil"
)

// JoinRequestsHandler exposes join requests and invitations.
type JoinRequestsHandler struct {
	service *service.JoinRequestService
}

// NewJoinRequestsHandler constructs handler.
func NewJoinRequestsHandler(joinRequestService *service.JoinRequestService) *JoinRequestsHandler {
	return &JoinRequestsHandler{service: joinRequestService}
}

// RequestToJoin POST /companies/:companyId/join-requests.
func (h *JoinRequestsHandler) RequestToJoin(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateJoinRequestRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	created, err := h.service.RequestToJoin(c.UserContext(), actor, c.Params("companyId"), req.RoleTitle)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": joinRequestResponse(created)})
}

// Invite POST /companies/:companyId/invitations.
func (h *JoinRequestsHandler) Invite(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.InviteUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.UserID) == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	created, err := h.service.InviteUser(c.UserContext(), actor, c.Params("companyId"), req.UserID, req.RoleTitle)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": joinRequestResponse(created)})
}

// Resolve POST /join-requests/:id/resolve.
func (h *JoinRequestsHandler) Resolve(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.ResolveJoinRequestRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.service.Resolve(c.UserContext(), actor, c.Params("id"), req.Decision)
	if err != nil {
		return err
	}
	resp := dto.ResolveJoinRequestResponse{Request: joinRequestResponse(result.Request)}
	if result.Membership != nil {
		m := membershipResponse(result.Membership)
		resp.Membership = &m
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ListForCompany GET /companies/:companyId/join-requests.
func (h *JoinRequestsHandler) ListForCompany(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	filter, err := parseJoinRequestQuery(c)
	if err != nil {
		return err
	}
	reqs, err := h.service.ListForCompany(c.UserContext(), actor, c.Params("companyId"), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": joinRequestList(reqs)})
}

// ListMine GET /me/join-requests.
func (h *JoinRequestsHandler) ListMine(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	filter, err := parseJoinRequestQuery(c)
	if err != nil {
		return err
	}
	reqs, err := h.service.ListForUser(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": joinRequestList(reqs)})
}

func parseJoinRequestQuery(c *fiber.Ctx) (service.JoinRequestListFilter, error) {
	filter := service.JoinRequestListFilter{}
	if raw := c.Query("status"); raw != "" {
		status := domain.JoinRequestStatus(raw)
		if !status.Valid() {
			return filter, apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
		filter.Status = &status
	}
	filter.Limit, filter.Offset = parsePage(c)
	return filter, nil
}

func joinRequestList(reqs []domain.JoinRequest) []dto.JoinRequestResponse {
	items := make([]dto.JoinRequestResponse, 0, len(reqs))
	for i := range reqs {
		items = append(items, joinRequestResponse(&reqs[i]))
	}
	return items
}
