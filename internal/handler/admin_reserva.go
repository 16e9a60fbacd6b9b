package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/prebel/reservas-service/internal/model"
	"github.com/prebel/reservas-service/internal/repository"
	"github.com/prebel/reservas-service/internal/service"
	"github.com/prebel/reservas-service/internal/view"
)

// ReservaHandler serves the authenticated admin reservation endpoints.
// List endpoints return the raw partition by default; when any of the
// projection query parameters (q, estado, desde, hasta, sort, dir,
// grupo, page, page_size) is present the view projector filters, sorts
// and paginates server-side.
type ReservaHandler struct {
	Lifecycle *service.LifecycleService
	Reservas  *repository.ReservaRepo
	Log       *logrus.Logger
}

func NewReservaHandler(lc *service.LifecycleService, repo *repository.ReservaRepo, log *logrus.Logger) *ReservaHandler {
	return &ReservaHandler{Lifecycle: lc, Reservas: repo, Log: log}
}

// ListActive handles GET /api/admin/reservas.
func (h *ReservaHandler) ListActive(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reservas, err := h.Reservas.ListActive(ctx)
	if err != nil {
		h.Log.WithError(err).Error("error al obtener reservas")
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "Error al obtener reservas"})
	}
	return h.respondList(c, reservas)
}

// ListHistory handles GET /api/admin/historial.
func (h *ReservaHandler) ListHistory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	historial, err := h.Reservas.ListHistory(ctx)
	if err != nil {
		h.Log.WithError(err).Error("error al obtener historial")
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "Error al obtener historial"})
	}
	return h.respondList(c, historial)
}

// Update handles PUT /api/admin/reservas/:id, a partial update over the
// allow-listed field set.  Unknown fields are ignored silently.  The
// body is decoded with UseNumber so numeric JSON values keep their
// literal form instead of going through float64; null clears the field.
func (h *ReservaHandler) Update(c echo.Context) error {
	id, err := reservaID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "ID inválido"})
	}
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "Cuerpo inválido"})
	}
	fields := make(map[string]string, len(body))
	for k, v := range body {
		switch t := v.(type) {
		case nil:
			fields[k] = "" // stored as NULL
		case string:
			fields[k] = t
		case json.Number:
			fields[k] = t.String()
		default:
			fields[k] = fmt.Sprintf("%v", v)
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Lifecycle.Edit(ctx, id, fields)
	if err != nil {
		return h.mutationError(c, err, "Error al actualizar reserva")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "reserva": updated, "message": "Reserva actualizada"})
}

// Confirm handles POST /api/admin/reservas/:id/confirm.
func (h *ReservaHandler) Confirm(c echo.Context) error {
	id, err := reservaID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "ID inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	reserva, err := h.Lifecycle.Confirm(ctx, id)
	if err != nil {
		return h.mutationError(c, err, "Error al confirmar reserva")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "reserva": reserva, "message": "Reserva confirmada. Email enviado."})
}

// Cancel handles PUT /api/admin/reservas/:id/cancel.  The observación is
// mandatory and ends up appended to the record's notas.
func (h *ReservaHandler) Cancel(c echo.Context) error {
	id, err := reservaID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "ID inválido"})
	}
	var body struct {
		Observacion string `json:"observacion"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "Cuerpo inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reserva, err := h.Lifecycle.Cancel(ctx, id, body.Observacion)
	if err != nil {
		return h.mutationError(c, err, "Error interno al cancelar reserva.")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "reserva": reserva, "message": "Reserva cancelada correctamente."})
}

// Delete handles DELETE /api/admin/reservas/:id.  Deletion is permanent
// and permitted in any state.
func (h *ReservaHandler) Delete(c echo.Context) error {
	id, err := reservaID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "ID inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	deleted, err := h.Lifecycle.Delete(ctx, id)
	if err != nil {
		h.Log.WithError(err).Error("error eliminando reserva")
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "Error al eliminar"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"ok": false, "error": "Reserva no encontrada"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "Reserva eliminada"})
}

func (h *ReservaHandler) respondList(c echo.Context, list []model.Reserva) error {
	if !hasProjectionParams(c) {
		return c.JSON(http.StatusOK, echo.Map{"ok": true, "reservas": list})
	}

	p := view.NewProjector()
	p.Load(list)

	f := view.Filter{
		Texto:      c.QueryParam("q"),
		Estado:     c.QueryParam("estado"),
		FechaDesde: c.QueryParam("desde"),
		FechaHasta: c.QueryParam("hasta"),
	}
	s := view.Sort{Key: c.QueryParam("sort"), Desc: c.QueryParam("dir") == "desc"}
	page := queryInt(c, "page", 1)
	size := queryInt(c, "page_size", 25)

	var pg view.Page
	switch c.QueryParam("grupo") {
	case "pedidos":
		pg = p.Pedidos(f, s, page, size)
	case "reservas":
		pg = p.Reservas(f, s, page, size)
	default:
		pg = p.Historial(f, s, page, size)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ok":          true,
		"reservas":    pg.Items,
		"page":        pg.Current,
		"total_pages": pg.TotalPages,
		"total_items": pg.TotalItems,
	})
}

func (h *ReservaHandler) mutationError(c echo.Context, err error, fallback string) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": ve.Msg})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"ok": false, "error": "Reserva no encontrada"})
	case errors.Is(err, repository.ErrNumeroReservaExists):
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "El Número de Reserva ingresado ya existe."})
	}
	h.Log.WithError(err).Error(fallback)
	return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": fallback})
}

func reservaID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func hasProjectionParams(c echo.Context) bool {
	for _, p := range []string{"q", "estado", "desde", "hasta", "sort", "dir", "grupo", "page", "page_size"} {
		if c.QueryParam(p) != "" {
			return true
		}
	}
	return false
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return def
}
