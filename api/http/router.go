package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stuimpact/stuimpactweb2/api/http/handlers"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Search      *handlers.SearchHandler
	Opportunity *handlers.OpportunityHandler
	Contact     *handlers.ContactHandler
	Auth        *handlers.AuthHandler
	Health      *handlers.HealthHandler
	// AdminOnly guards catalog writes.
	AdminOnly fiber.Handler
}

// Register wires all HTTP routes under /api/v1.
func Register(app *fiber.App, h Handlers) {
	v1 := app.Group("/api").Group("/v1")

	v1.Get("/health", h.Health.Health)
	v1.Get("/ready", h.Health.Ready)

	v1.Post("/search", h.Search.Search)

	op := v1.Group("/opportunities")
	op.Get("/", h.Search.List)
	op.Get("/:id", h.Opportunity.Get)
	op.Post("/", h.AdminOnly, h.Opportunity.Save)

	v1.Post("/contact", h.Contact.Submit)

	a := v1.Group("/auth")
	a.Post("/register", h.Auth.Register)
	a.Post("/signup", h.Auth.Register)
	a.Post("/login", h.Auth.Login)
	a.Post("/verify", h.Auth.Verify)
}
