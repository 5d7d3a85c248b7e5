package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Home        *handlers.HomeHandler
	Users       *handlers.UsersHandler
	Tickets     *handlers.TicketsHandler
	Admin       *handlers.AdminTicketsHandler
	Sessions    *auth.SessionMiddleware
	AuthLimiter *RateLimiter
	Policy      auth.Policy
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	health := app.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/metrics", cfg.Health.Metrics)

	site := app.Group("", cfg.Sessions.Handle)
	site.Get("/", cfg.Home.Index)
	site.Get("/app", auth.RequireUser(), cfg.Home.App)

	authGroup := site.Group("/auth")
	authGroup.Post("/register", cfg.AuthLimiter.Middleware(), cfg.Users.Register)
	authGroup.Post("/login", cfg.AuthLimiter.Middleware(), cfg.Users.Login)
	authGroup.Post("/logout", cfg.Users.Logout)
	authGroup.Get("/logout", cfg.Users.Logout)

	profile := site.Group("/profile", auth.RequireUser())
	profile.Get("", cfg.Users.Profile)
	profile.Post("/name", cfg.Users.ChangeName)
	profile.Post("/password", cfg.Users.ChangePassword)

	tickets := site.Group("/tickets", auth.RequireUser())
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/new", cfg.Tickets.NewTicketForm)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)

	admin := site.Group("/admin", auth.RequireUser(), auth.RequireAdmin(cfg.Policy))
	admin.Get("/tickets", cfg.Admin.ListTickets)
}
