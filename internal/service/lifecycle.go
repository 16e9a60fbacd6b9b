package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prebel/reservas-service/internal/model"
	"github.com/prebel/reservas-service/internal/queue"
)

// Notifier delivers the confirmation email.  Best effort: a false
// return is logged and never rolls back the transition.
type Notifier interface {
	Notify(ctx context.Context, email, nombre, numeroReserva string) bool
}

// EventPublisher pushes confirmation events onto the broker.
type EventPublisher interface {
	PublishReservaConfirmada(ctx context.Context, ev queue.ReservaConfirmadaEvent) error
}

// LifecycleService enforces the reservation state machine:
//
//	pendiente -> confirmada (terminal)
//	pendiente -> cancelada  (terminal, requires observación)
//
// Re-invoking a terminal transition re-stamps the timestamp and
// succeeds; that re-entry is accepted behavior, not a bug.  Field edits
// are allowed in any state and never change estado.
type LifecycleService struct {
	Reservas ReservaStore
	Notifier Notifier
	Events   EventPublisher
	Log      *logrus.Logger
}

func NewLifecycleService(store ReservaStore, n Notifier, ev EventPublisher, log *logrus.Logger) *LifecycleService {
	return &LifecycleService{Reservas: store, Notifier: n, Events: ev, Log: log}
}

// Confirm moves a reservation to 'confirmada'.  Side effects, in order:
// stamp fecha_confirmacion (store-side), best-effort email, and for
// ranged orders rewrite numero_reserva to rango_desde so the confirmed
// order gains a canonical identifier.  Notification or publish failures
// are logged only.
func (s *LifecycleService) Confirm(ctx context.Context, id uint64) (model.Reserva, error) {
	r, err := s.Reservas.UpdateEstado(ctx, id, model.EstadoConfirmada)
	if err != nil {
		return model.Reserva{}, err
	}

	if r.Email != nil && *r.Email != "" {
		numero := ""
		if r.NumeroReserva != nil {
			numero = *r.NumeroReserva
		}
		if ok := s.Notifier.Notify(ctx, *r.Email, r.Nombre, numero); !ok {
			s.Log.WithField("reserva_id", id).Warn("no se pudo enviar el email de confirmación")
		}
	}

	if r.RangoDesde != nil && strings.TrimSpace(*r.RangoDesde) != "" {
		r, err = s.Reservas.Update(ctx, id, map[string]string{"numero_reserva": *r.RangoDesde})
		if err != nil {
			return model.Reserva{}, err
		}
	}

	s.publishConfirmada(ctx, r)
	return r, nil
}

// Cancel moves a reservation to 'cancelada'.  The observación is
// mandatory and is appended to notas as an audit-trail line.  A failure
// while appending the note is tolerated: the cancellation stands and the
// already-cancelled row is returned.
func (s *LifecycleService) Cancel(ctx context.Context, id uint64, observacion string) (model.Reserva, error) {
	if strings.TrimSpace(observacion) == "" {
		return model.Reserva{}, validationErr("La observación es obligatoria para cancelar una reserva.")
	}
	r, err := s.Reservas.UpdateEstado(ctx, id, model.EstadoCancelada)
	if err != nil {
		return model.Reserva{}, err
	}

	notas := "Cancelación: " + observacion
	if r.Notas != nil && *r.Notas != "" {
		notas = *r.Notas + "\n" + notas
	}
	updated, err := s.Reservas.Update(ctx, id, map[string]string{"notas": notas})
	if err != nil {
		s.Log.WithError(err).WithField("reserva_id", id).Warn("no se pudo registrar la observación de cancelación")
		return r, nil
	}
	return updated, nil
}

// Edit applies allow-listed field updates in any state.
func (s *LifecycleService) Edit(ctx context.Context, id uint64, fields map[string]string) (model.Reserva, error) {
	return s.Reservas.Update(ctx, id, fields)
}

// Delete removes a reservation permanently, in any state.
func (s *LifecycleService) Delete(ctx context.Context, id uint64) (bool, error) {
	return s.Reservas.Delete(ctx, id)
}

func (s *LifecycleService) publishConfirmada(ctx context.Context, r model.Reserva) {
	if s.Events == nil {
		return
	}
	ev := queue.ReservaConfirmadaEvent{
		ReservaID:    r.ID,
		Nombre:       r.Nombre,
		ConfirmadaEn: time.Now().Format("2006-01-02 15:04:05"),
	}
	if r.FechaConfirmacion != nil {
		ev.ConfirmadaEn = *r.FechaConfirmacion
	}
	if r.NumeroReserva != nil {
		ev.NumeroReserva = *r.NumeroReserva
	}
	if r.Email != nil {
		ev.Email = *r.Email
	}
	if r.RangoDesde != nil {
		ev.RangoDesde = *r.RangoDesde
	}
	if r.RangoHasta != nil {
		ev.RangoHasta = *r.RangoHasta
	}
	if err := s.Events.PublishReservaConfirmada(ctx, ev); err != nil {
		s.Log.WithError(err).WithField("reserva_id", r.ID).Warn("no se pudo publicar el evento de confirmación")
	}
}
