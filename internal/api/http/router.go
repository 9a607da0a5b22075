package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hiring-workflow/internal/api/http/handlers"
	"github.com/spec-kit/hiring-workflow/internal/auth"
	"github.com/spec-kit/hiring-workflow/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Members        *handlers.MembersHandler
	JoinRequests   *handlers.JoinRequestsHandler
	Applications   *handlers.ApplicationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authed := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireActor()}

	companies := app.Group("/companies/:companyId", authed...)
	companies.Get("/members", cfg.Members.List)
	companies.Patch("/members/:userId", cfg.Members.UpdateRole)
	companies.Delete("/members/:userId", cfg.Members.Remove)
	companies.Post("/join-requests", cfg.JoinRequests.RequestToJoin)
	companies.Get("/join-requests", cfg.JoinRequests.ListForCompany)
	companies.Post("/invitations", cfg.JoinRequests.Invite)

	joinRequests := app.Group("/join-requests", authed...)
	joinRequests.Post("/:id/resolve", cfg.JoinRequests.Resolve)

	jobs := app.Group("/jobs/:jobId", authed...)
	jobs.Post("/applications", auth.RequireGlobalRole(domain.GlobalRoleCandidate), cfg.Applications.Submit)
	jobs.Get("/applications", cfg.Applications.ListForJob)

	apps := app.Group("/applications/:id", authed...)
	apps.Get("", cfg.Applications.Get)
	apps.Delete("", cfg.Applications.Withdraw)
	apps.Patch("/status", cfg.Applications.SetStatus)
	apps.Get("/history", cfg.Applications.History)

	me := app.Group("/me", authed...)
	me.Get("/join-requests", cfg.JoinRequests.ListMine)
	me.Get("/applications", cfg.Applications.ListMine)
}
