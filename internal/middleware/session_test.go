package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prebel/reservas-service/internal/model"
	"github.com/prebel/reservas-service/internal/repository"
)

type fakeAdmins struct {
	byToken map[string]model.Admin
	calls   int
}

func (f *fakeAdmins) GetByToken(_ context.Context, token string) (model.Admin, error) {
	f.calls++
	a, ok := f.byToken[token]
	if !ok {
		return model.Admin{}, repository.ErrNotFound
	}
	return a, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func doGuarded(t *testing.T, admins *fakeAdmins, cookie *http.Cookie) (*httptest.ResponseRecorder, bool, any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/reservas", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	guard := NewSessionGuard(admins, repository.NewTokenCache(nil, time.Hour), quietLogger())

	reached := false
	h := guard.RequireAdmin()(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, reached, c.Get("admin_id")
}

func TestRequireAdminRejectsMissingCookie(t *testing.T) {
	rec, reached, _ := doGuarded(t, &fakeAdmins{}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
	assert.Contains(t, rec.Body.String(), "Token de administrador requerido")
}

func TestRequireAdminRejectsEmptyCookie(t *testing.T) {
	rec, reached, _ := doGuarded(t, &fakeAdmins{}, &http.Cookie{Name: SessionCookieName, Value: ""})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestRequireAdminRejectsUnknownToken(t *testing.T) {
	admins := &fakeAdmins{byToken: map[string]model.Admin{}}
	rec, reached, _ := doGuarded(t, admins, &http.Cookie{Name: SessionCookieName, Value: "deadbeef"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
	assert.Contains(t, rec.Body.String(), "Token inválido o expirado")
	assert.Equal(t, 1, admins.calls, "cache miss falls through to the database")
}

func TestRequireAdminAcceptsValidToken(t *testing.T) {
	admins := &fakeAdmins{byToken: map[string]model.Admin{
		"tok-123": {ID: 7, Username: "admin"},
	}}
	rec, reached, adminID := doGuarded(t, admins, &http.Cookie{Name: SessionCookieName, Value: "tok-123"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	assert.Equal(t, uint64(7), adminID)
}
