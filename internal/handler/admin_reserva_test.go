package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prebel/reservas-service/internal/model"
	"github.com/prebel/reservas-service/internal/repository"
	"github.com/prebel/reservas-service/internal/service"
)

// recordingStore captures the field map handed to Update so tests can
// assert what would reach the database.
type recordingStore struct {
	fields map[string]string
}

func (r *recordingStore) Create(context.Context, repository.NuevaReserva) (uint64, error) {
	return 0, nil
}

func (r *recordingStore) GetByID(context.Context, uint64) (model.Reserva, error) {
	return model.Reserva{}, repository.ErrNotFound
}

func (r *recordingStore) Update(_ context.Context, id uint64, fields map[string]string) (model.Reserva, error) {
	r.fields = fields
	return model.Reserva{ID: id}, nil
}

func (r *recordingStore) UpdateEstado(ctx context.Context, id uint64, estado string) (model.Reserva, error) {
	return r.Update(ctx, id, map[string]string{"estado": estado})
}

func (r *recordingStore) Delete(context.Context, uint64) (bool, error) { return false, nil }

func updateRequest(t *testing.T, h *ReservaHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/reservas/5", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/admin/reservas/:id")
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Update(c))
	return rec
}

func TestUpdatePreservesNumericJSONValues(t *testing.T) {
	store := &recordingStore{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewReservaHandler(service.NewLifecycleService(store, nil, nil, log), nil, log)

	rec := updateRequest(t, h, `{"telefono": 3001234567, "cajas": 12, "numero_reserva": "777"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3001234567", store.fields["telefono"], "large integers must keep their literal form")
	assert.Equal(t, "12", store.fields["cajas"])
	assert.Equal(t, "777", store.fields["numero_reserva"])
}

func TestUpdateNullClearsField(t *testing.T) {
	store := &recordingStore{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewReservaHandler(service.NewLifecycleService(store, nil, nil, log), nil, log)

	rec := updateRequest(t, h, `{"notas": null}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	v, ok := store.fields["notas"]
	require.True(t, ok, "null still produces a clearing write")
	assert.Equal(t, "", v)
}
