package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/prebel/reservas-service/internal/model"
	"github.com/prebel/reservas-service/internal/repository"
)

// SessionCookieName is the HttpOnly cookie carrying the admin token.
const SessionCookieName = "adminToken"

// AdminSource resolves a session token to its admin principal.
// *repository.AdminRepo satisfies it.
type AdminSource interface {
	GetByToken(ctx context.Context, token string) (model.Admin, error)
}

// SessionGuard validates the opaque admin token before any mutation.
// Lookups hit the redis token cache first and fall back to the database,
// which stays authoritative.  Missing and invalid tokens are both 401;
// they differ only in the log line.
type SessionGuard struct {
	Admins AdminSource
	Tokens *repository.TokenCache
	Log    *logrus.Logger
}

func NewSessionGuard(admins AdminSource, tokens *repository.TokenCache, log *logrus.Logger) *SessionGuard {
	return &SessionGuard{Admins: admins, Tokens: tokens, Log: log}
}

// RequireAdmin returns middleware that rejects requests without a valid
// session token.  On success the admin id is stored in the context under
// "admin_id" (and the full principal under "admin" on cache misses).
func (g *SessionGuard) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				g.Log.WithField("path", c.Path()).Debug("solicitud admin sin token")
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"ok": false, "error": "Token de administrador requerido",
				})
			}
			token := cookie.Value

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			if id, ok := g.Tokens.Lookup(ctx, token); ok {
				c.Set("admin_id", id)
				return next(c)
			}

			admin, err := g.Admins.GetByToken(ctx, token)
			if err != nil {
				if err == repository.ErrNotFound {
					g.Log.WithField("path", c.Path()).Debug("token de admin inválido")
					return c.JSON(http.StatusUnauthorized, echo.Map{
						"ok": false, "error": "Token inválido o expirado",
					})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{
					"ok": false, "error": "Error interno",
				})
			}
			g.Tokens.Store(ctx, token, admin.ID)
			c.Set("admin_id", admin.ID)
			c.Set("admin", admin)
			return next(c)
		}
	}
}
