package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/prebel/reservas-service/internal/handler"
	"github.com/prebel/reservas-service/internal/middleware"
)

// Register wires every route of the service onto the Echo instance.
// Public routes carry the intake rate limiter; everything under
// /api/admin except login, logout and reset-password passes through the
// session guard.  reset-password is deliberately outside the guard (see
// the handler).
func Register(
	e *echo.Echo,
	pub *handler.PublicHandler,
	auth *handler.AuthHandler,
	res *handler.ReservaHandler,
	guard *middleware.SessionGuard,
	intakeLimit echo.MiddlewareFunc,
	uploadDir string,
) {
	e.GET("/healthz", handler.Health)

	// Public intake.
	e.POST("/api/reservas", pub.CreateReserva, intakeLimit)

	// Session endpoints (no guard).
	e.POST("/api/admin/login", auth.Login)
	e.POST("/api/admin/logout", auth.Logout)
	e.POST("/api/admin/reset-password", auth.ResetPassword)

	// Authenticated admin panel.
	g := e.Group("/api/admin", guard.RequireAdmin())
	g.POST("/create", auth.CreateAdmin)
	g.GET("/usuarios", auth.ListAdmins)
	g.GET("/reservas", res.ListActive)
	g.GET("/historial", res.ListHistory)
	g.PUT("/reservas/:id", res.Update)
	g.POST("/reservas/:id/confirm", res.Confirm)
	g.PUT("/reservas/:id/cancel", res.Cancel)
	g.DELETE("/reservas/:id", res.Delete)

	// Stored attachments are served directly.
	e.Static("/uploads", uploadDir)
}
