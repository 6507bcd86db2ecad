package routes

import (
	"github.com/gofiber/fiber/v3"

	"contact-tracker/internal/delivery/http/handler"
	"contact-tracker/internal/delivery/http/middleware"
	"contact-tracker/internal/domain/user"
	"contact-tracker/internal/ws"
)

type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Contacts     *handler.ContactHandler
	Imports      *handler.ImportHandler
	Requirements *handler.RequirementHandler
	Admin        *handler.AdminHandler
	WS           *ws.Handler
}

type Registry struct {
	h           Handlers
	requireAuth fiber.Handler
	adminUp     fiber.Handler
	superOnly   fiber.Handler
}

// NewRegistry wires handlers behind requireAuth, which must attach a
// principal to the request. A nil requireAuth rejects every protected route.
func NewRegistry(h Handlers, requireAuth fiber.Handler) *Registry {
	if requireAuth == nil {
		requireAuth = func(fiber.Ctx) error {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Not authenticated", nil, nil)
		}
	}
	return &Registry{
		h:           h,
		requireAuth: requireAuth,
		adminUp:     middleware.RequireRoles(user.RoleAdmin, user.RoleSuperAdmin),
		superOnly:   middleware.RequireRoles(user.RoleSuperAdmin),
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	api := app.Group("/api")
	if r.h.Health != nil {
		r.h.Health.RegisterRoutes(api)
	}
	if r.h.Auth != nil {
		r.h.Auth.RegisterRoutes(api.Group("/auth"), r.requireAuth)
	}
	r.registerContacts(api.Group("/contacts", r.requireAuth))
	if r.h.Requirements != nil {
		r.h.Requirements.RegisterRoutes(api.Group("/requirements", r.requireAuth))
	}
	if r.h.Admin != nil {
		r.h.Admin.RegisterRoutes(api.Group("/admin", r.requireAuth), r.adminUp, r.superOnly)
	}
	if r.h.WS != nil {
		app.Get("/ws", r.h.WS.HandleWS)
	}
}

// registerContacts mounts fixed paths before the /:id patterns.
func (r *Registry) registerContacts(g fiber.Router) {
	c, imp, req := r.h.Contacts, r.h.Imports, r.h.Requirements

	if c != nil {
		g.Post("/", c.Add)
		g.Get("/", c.List)
		g.Get("/count", c.Count)
		g.Get("/export", c.Export)
		g.Delete("/clear-all", r.adminUp, c.ClearAll)
		g.Get("/followups/pending", c.PendingFollowUps)
		g.Get("/followups/all", c.AllFollowUps)
		g.Patch("/followups/:logId/complete", c.CompleteFollowUp)
		g.Delete("/logs/:logId", c.DeleteLog)
	}
	if imp != nil {
		g.Post("/import", imp.Import)
		g.Get("/imports", imp.List)
		g.Get("/imports/:id/contacts", imp.Contacts)
		g.Delete("/imports/:id", imp.Delete)
	}
	if req != nil {
		g.Delete("/requirements/clear-all", req.DeleteAll)
		g.Delete("/requirements/:reqId", req.Delete)
	}
	if c != nil {
		g.Post("/:id/log", c.AddLog)
		g.Get("/:id/logs", c.Logs)
		g.Get("/:id", c.Get)
	}
}
