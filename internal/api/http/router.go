package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/helpdesk-kit/helpdesk-service/internal/auth"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireRole())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id/status", auth.RequireRole(domain.UserRoleAgent, domain.UserRoleAdmin), cfg.Tickets.UpdateStatus)
	tickets.Put("/:id/priority", auth.RequireRole(domain.UserRoleAgent, domain.UserRoleAdmin), cfg.Tickets.UpdatePriority)
	tickets.Put("/:id/reassign", auth.RequireRole(domain.UserRoleAdmin), cfg.Tickets.Reassign)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Delete("/:id", auth.RequireRole(domain.UserRoleAdmin), cfg.Tickets.DeleteTicket)

	analytics := api.Group("/analytics", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.UserRoleAdmin))
	analytics.Get("/dashboard", cfg.Analytics.Dashboard)
	analytics.Get("/agents", cfg.Analytics.AgentStats)
	analytics.Get("/trends", cfg.Analytics.Trends)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/agents", auth.RequireRole(domain.UserRoleAgent, domain.UserRoleAdmin), cfg.Users.ListAgents)
	users.Put("/agents/:id/availability", auth.RequireRole(domain.UserRoleAdmin), cfg.Users.SetAvailability)
	users.Post("", auth.RequireRole(domain.UserRoleAdmin), cfg.Users.CreateUser)
	users.Get("", auth.RequireRole(domain.UserRoleAdmin), cfg.Users.ListUsers)
}
