// Package service holds the intake validator and the reservation
// lifecycle engine.  Both depend on narrow interfaces so handlers stay
// thin and tests can run against in-memory fakes.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prebel/reservas-service/internal/model"
	"github.com/prebel/reservas-service/internal/repository"
	"github.com/prebel/reservas-service/internal/storage"
)

// ReservaStore is the subset of the reservation repository the services
// need.  *repository.ReservaRepo satisfies it.
type ReservaStore interface {
	Create(ctx context.Context, n repository.NuevaReserva) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Reserva, error)
	Update(ctx context.Context, id uint64, fields map[string]string) (model.Reserva, error)
	UpdateEstado(ctx context.Context, id uint64, estado string) (model.Reserva, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

// Submission is a public reservation request.  The rango_pedidos_* pair
// are the legacy form field names; the validator folds them into the
// canonical bounds.
type Submission struct {
	NumeroReserva     string
	Nombre            string
	Email             string
	Telefono          string
	Fecha             string
	Hora              string
	Servicio          string
	Notas             string
	RangoDesde        string
	RangoHasta        string
	RangoPedidosDesde string
	RangoPedidosHasta string
	Archivos          []storage.Upload
}

// IntakeService validates public submissions and creates reservation
// records, storing any attachments first and deleting them again when
// record creation fails.
type IntakeService struct {
	Reservas  ReservaStore
	Blobs     storage.BlobStore
	MaxFileMB int64
	Log       *logrus.Logger
}

func NewIntakeService(store ReservaStore, blobs storage.BlobStore, maxFileMB int64, log *logrus.Logger) *IntakeService {
	if maxFileMB <= 0 {
		maxFileMB = 20
	}
	return &IntakeService{Reservas: store, Blobs: blobs, MaxFileMB: maxFileMB, Log: log}
}

// Create validates and persists a submission, returning the new id and
// the final numero_reserva (submitted or synthesized).
func (s *IntakeService) Create(ctx context.Context, sub Submission) (uint64, string, error) {
	nombre := strings.TrimSpace(sub.Nombre)
	if nombre == "" {
		return 0, "", validationErr("Faltan campos requeridos: nombre")
	}

	// Fold the legacy field names into the canonical bounds.
	desde := strings.TrimSpace(firstNonEmpty(sub.RangoPedidosDesde, sub.RangoDesde))
	hasta := strings.TrimSpace(firstNonEmpty(sub.RangoPedidosHasta, sub.RangoHasta))

	numero := strings.TrimSpace(sub.NumeroReserva)
	tieneReserva := numero != ""
	tieneRango := desde != "" || hasta != ""

	if !tieneReserva && !tieneRango {
		return 0, "", validationErr("Debe completar el número de reserva o al menos uno de los campos del rango (Desde/Hasta).")
	}
	// Plain string comparison, reproducing the reference behavior: tokens
	// are expected to be fixed-width numeric strings ("9" sorts after "10").
	if desde != "" && hasta != "" && desde > hasta {
		return 0, "", validationErr(`El rango "Desde" no puede ser mayor que el rango "Hasta".`)
	}

	numeroFinal := numero
	if !tieneReserva {
		// Range-only submissions still need a unique token so the
		// numero_reserva uniqueness constraint is never violated.
		numeroFinal = placeholderNumero()
	}

	stored, err := s.storeArchivos(sub.Archivos)
	if err != nil {
		s.cleanup(stored)
		return 0, "", err
	}

	n := repository.NuevaReserva{
		NumeroReserva: numeroFinal,
		Nombre:        nombre,
		Email:         strings.TrimSpace(sub.Email),
		Telefono:      strings.TrimSpace(sub.Telefono),
		Fecha:         defaultStr(sub.Fecha, time.Now().Format("2006-01-02")),
		Hora:          defaultStr(sub.Hora, time.Now().Format("15:04:05")),
		Servicio:      defaultStr(sub.Servicio, "Automatizado"),
		Notas:         sub.Notas,
		NombreArchivo: strings.Join(stored, ";"),
	}
	if tieneRango {
		n.RangoDesde = desde
		n.RangoHasta = hasta
	}

	id, err := s.Reservas.Create(ctx, n)
	if err != nil {
		s.cleanup(stored)
		if err == repository.ErrNumeroReservaExists {
			return 0, "", validationErr("El Número de Reserva ingresado ya existe.")
		}
		return 0, "", err
	}
	return id, numeroFinal, nil
}

func (s *IntakeService) storeArchivos(ups []storage.Upload) ([]string, error) {
	maxBytes := s.MaxFileMB * 1024 * 1024
	names := make([]string, 0, len(ups))
	for _, up := range ups {
		if up.Size > maxBytes {
			return names, validationErr(fmt.Sprintf("El tamaño del archivo excede el límite (%dMB).", s.MaxFileMB))
		}
		name, err := s.Blobs.Store(up)
		if err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

// cleanup deletes already-stored blobs when the submission fails, so a
// rejected request never leaves orphaned files behind.
func (s *IntakeService) cleanup(names []string) {
	for _, name := range names {
		if err := s.Blobs.Delete(name); err != nil {
			s.Log.WithError(err).WithField("archivo", name).Warn("no se pudo limpiar el archivo subido")
		}
	}
}

func placeholderNumero() string {
	return fmt.Sprintf("RANGO-%d-%d", time.Now().UnixMilli(), rand.Intn(1_000_000))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func defaultStr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
