package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hiring-workflow/internal/api/dto"
	"github.com/spec-kit/hiring-workflow/internal/domain"
	"github.com/spec-kit/hiring-workflow/internal/service"
	apperrors "github.com/spec-kit/hiring-workflow/pkg/util/errorutil"
)

// ApplicationsHandler exposes the application pipeline.
type ApplicationsHandler struct {
	service *service.ApplicationService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(applicationService *service.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{service: applicationService}
}

// Submit POST /jobs/:jobId/applications.
func (h *ApplicationsHandler) Submit(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.SubmitApplicationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	app, err := h.service.Submit(c.UserContext(), actor, c.Params("jobId"), req.ResumeRef)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": applicationResponse(app)})
}

// SetStatus PATCH /applications/:id/status.
func (h *ApplicationsHandler) SetStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.SetApplicationStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	app, err := h.service.SetStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponse(app)})
}

// Withdraw DELETE /applications/:id.
func (h *ApplicationsHandler) Withdraw(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Withdraw(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Get GET /applications/:id.
func (h *ApplicationsHandler) Get(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	app, err := h.service.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponse(app)})
}

// History GET /applications/:id/history.
func (h *ApplicationsHandler) History(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ApplicationHistoryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.ApplicationHistoryResponse{
			ID:        e.ID,
			ChangedBy: e.ChangedBy,
			OldStatus: e.OldStatus,
			NewStatus: e.NewStatus,
			CreatedAt: e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListForJob GET /jobs/:jobId/applications.
func (h *ApplicationsHandler) ListForJob(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	filter, err := parseApplicationQuery(c)
	if err != nil {
		return err
	}
	apps, err := h.service.ListForJob(c.UserContext(), actor, c.Params("jobId"), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationList(apps)})
}

// ListMine GET /me/applications.
func (h *ApplicationsHandler) ListMine(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	filter, err := parseApplicationQuery(c)
	if err != nil {
		return err
	}
	apps, err := h.service.ListForApplicant(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationList(apps)})
}

func parseApplicationQuery(c *fiber.Ctx) (service.ApplicationListFilter, error) {
	filter := service.ApplicationListFilter{}
	for _, raw := range splitCSV(c.Query("status")) {
		status := domain.ApplicationStatus(raw)
		if !status.Valid() {
			return filter, apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	filter.Limit, filter.Offset = parsePage(c)
	return filter, nil
}

func applicationList(apps []domain.JobApplication) []dto.ApplicationResponse {
	items := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		items = append(items, applicationResponse(&apps[i]))
	}
	return items
}
