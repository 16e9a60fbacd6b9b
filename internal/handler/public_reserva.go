package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/prebel/reservas-service/internal/service"
	"github.com/prebel/reservas-service/internal/storage"
)

// PublicHandler exposes the unauthenticated reservation intake endpoint.
type PublicHandler struct {
	Intake *service.IntakeService
	Log    *logrus.Logger
}

func NewPublicHandler(intake *service.IntakeService, log *logrus.Logger) *PublicHandler {
	return &PublicHandler{Intake: intake, Log: log}
}

// CreateReserva handles POST /api/reservas.  The form arrives as
// multipart with optional "archivo" file parts.  The intake service owns
// validation and attachment cleanup; this handler only adapts the
// multipart request and maps errors onto the JSON envelope.
func (h *PublicHandler) CreateReserva(c echo.Context) error {
	sub := service.Submission{
		NumeroReserva:     c.FormValue("numero_reserva"),
		Nombre:            c.FormValue("nombre"),
		Email:             c.FormValue("email"),
		Telefono:          c.FormValue("telefono"),
		Fecha:             c.FormValue("fecha"),
		Hora:              c.FormValue("hora"),
		Servicio:          c.FormValue("servicio"),
		Notas:             c.FormValue("notas"),
		RangoDesde:        c.FormValue("rango_desde"),
		RangoHasta:        c.FormValue("rango_hasta"),
		RangoPedidosDesde: c.FormValue("rango_pedidos_desde"),
		RangoPedidosHasta: c.FormValue("rango_pedidos_hasta"),
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["archivo"] {
			src, err := fh.Open()
			if err != nil {
				h.Log.WithError(err).Warn("no se pudo abrir el archivo adjunto")
				return c.JSON(http.StatusBadRequest, echo.Map{
					"ok": false, "error": "No se pudo leer el archivo adjunto.",
				})
			}
			defer src.Close()
			sub.Archivos = append(sub.Archivos, storage.Upload{
				Filename: fh.Filename,
				Size:     fh.Size,
				Content:  src,
			})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	id, numero, err := h.Intake.Create(ctx, sub)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": ve.Msg})
		}
		h.Log.WithError(err).Error("error al crear reserva")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"ok": false, "error": "Error del servidor al procesar la reserva.",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":             true,
		"id":             id,
		"numero_reserva": numero,
		"message":        "Reserva creada con éxito.",
	})
}
