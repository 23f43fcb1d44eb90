package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-portal/internal/api/http/handlers"
	"github.com/spec-kit/school-portal/internal/auth"
	"github.com/spec-kit/school-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Contacts       *handlers.ContactsHandler
	Messages       *handlers.MessagesHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Protected groups pass through the
// authenticator first, then a role gate, so 401 and 403 stay distinct.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	adminOnly := authGroup.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleAdmin))
	adminOnly.Post("", cfg.Auth.Register)

	contacts := app.Group("/contacts", cfg.AuthMiddleware.Handle)
	contacts.Get("", auth.RequireAuthenticated(), cfg.Contacts.List)
	contacts.Post("", auth.RequireRoles(domain.RoleAdmin), cfg.Contacts.Create)
	contacts.Put("/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Contacts.Update)
	contacts.Delete("/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Contacts.Delete)

	messages := app.Group("/messages", cfg.AuthMiddleware.Handle)
	messages.Get("/:group", auth.RequireAuthenticated(), cfg.Messages.List)
	messages.Post("/:group", auth.RequireRoles(domain.RoleTeacher, domain.RoleAdmin), cfg.Messages.Post)
}
