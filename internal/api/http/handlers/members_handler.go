package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hiring-workflow/internal/api/dto"
	"github.com/spec-kit/hiring-workflow/internal/service"
)

// MembersHandler serves the company roster.
type MembersHandler struct {
	service *service.MembershipService
}

// NewMembersHandler constructs handler.
func NewMembersHandler(membershipService *service.MembershipService) *MembersHandler {
	return &MembersHandler{service: membershipService}
}

// List GET /companies/:companyId/members.
func (h *MembersHandler) List(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	members, err := h.service.ListMembers(c.UserContext(), actor, c.Params("companyId"))
	if err != nil {
		return err
	}
	items := make([]dto.MembershipResponse, 0, len(members))
	for i := range members {
		items = append(items, membershipResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateRole PATCH /companies/:companyId/members/:userId.
func (h *MembersHandler) UpdateRole(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateMemberRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	updated, err := h.service.UpdateRole(c.UserContext(), actor, c.Params("companyId"), c.Params("userId"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": membershipResponse(updated)})
}

// Remove DELETE /companies/:companyId/members/:userId.
func (h *MembersHandler) Remove(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Remove(c.UserContext(), actor, c.Params("companyId"), c.Params("userId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
