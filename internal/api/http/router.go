package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sfqs/ticket-system/internal/access"
	"github.com/sfqs/ticket-system/internal/api/http/handlers"
	"github.com/sfqs/ticket-system/internal/auth"
	"github.com/sfqs/ticket-system/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Pages     *handlers.PagesHandler
	Auth      *handlers.AuthHandler
	Tickets   *handlers.TicketsHandler
	Engineer  *handlers.EngineerHandler
	Admin     *handlers.AdminHandler
	Changelog *handlers.ChangelogHandler
	Session   *auth.SessionMiddleware
	Access    *auth.AccessMiddleware
}

// pages lists the page shells guarded by the access router.
var pages = map[string]string{
	access.PathRoot:                         "home",
	access.PathLogin:                        "login",
	access.PathRestricted:                   "restricted",
	"/admin":                                "admin",
	"/dashboard":                            "dashboard",
	"/dashboard/users":                      "dashboard_users",
	access.PathChangelog:                    "changelog",
	access.PathEngineerStats:                "engineer_stats",
	"/engineer":                             "engineer",
	"/engineer/stats":                       "engineer_stats",
	"/engineer/profile":                     "engineer_profile",
	"/engineer/unregistered-support":        "unregistered_support",
	"/engineer/unregistered-support/review": "unregistered_support_review",
	"/user":                                 "user",
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)
	app.Get("/metrics", cfg.Health.Prometheus())

	app.Use(cfg.Session.Handle, cfg.Access.Handle)

	for path, name := range pages {
		app.Get(path, cfg.Pages.Page(name))
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/session", cfg.Auth.Session)
	authGroup.Post("/password", auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	tickets := api.Group("/tickets", auth.RequireAuthenticated())
	tickets.Get("", cfg.Tickets.List)
	tickets.Post("/submit", cfg.Tickets.Submit)
	tickets.Get("/:id", cfg.Tickets.Get)

	engineer := api.Group("/engineer", auth.RequireRole(domain.RoleEngineer))
	engineer.Post("/tickets/:id/claim", cfg.Engineer.Claim)
	engineer.Post("/tickets/:id/release", cfg.Engineer.Release)
	engineer.Post("/tickets/:id/resolve", cfg.Engineer.Resolve)
	engineer.Get("/experience", cfg.Engineer.Experience)
	engineer.Get("/leaderboard", cfg.Engineer.Leaderboard)
	engineer.Post("/extra-time", cfg.Engineer.RequestExtraTime)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleAdmin, domain.RoleManager))
	admin.Get("/users/pending", cfg.Admin.PendingUsers)
	admin.Post("/users/:id/approve", cfg.Admin.ApproveUser)
	admin.Post("/users/:id/reject", cfg.Admin.RejectUser)
	admin.Get("/extra-time", cfg.Admin.ListExtraTime)
	admin.Post("/extra-time/:id/review", cfg.Admin.ReviewExtraTime)

	changelog := api.Group("/changelog", auth.RequireRole(domain.RoleEngineer, domain.RoleAdmin, domain.RoleManager))
	changelog.Get("", cfg.Changelog.List)
	changelog.Post("", cfg.Changelog.Create)
	changelog.Delete("/:id", cfg.Changelog.Delete)
}
