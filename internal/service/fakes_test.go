package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prebel/reservas-service/internal/model"
	"github.com/prebel/reservas-service/internal/queue"
	"github.com/prebel/reservas-service/internal/repository"
	"github.com/prebel/reservas-service/internal/storage"
)

// memStore is an in-memory ReservaStore mirroring the repository's
// allow-list and terminal-state stamping semantics.
type memStore struct {
	nextID    uint64
	rows      map[uint64]model.Reserva
	createErr error
	failNotas bool // force Update to fail when touching notas
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[uint64]model.Reserva)}
}

var allowed = map[string]bool{
	"estado": true, "documento": true, "cajas": true, "responsable": true,
	"nombre_archivo": true, "notas": true, "telefono": true,
	"numero_reserva": true, "fecha": true, "hora": true, "servicio": true,
}

func (m *memStore) Create(_ context.Context, n repository.NuevaReserva) (uint64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	if n.NumeroReserva != "" {
		for _, r := range m.rows {
			if r.NumeroReserva != nil && *r.NumeroReserva == n.NumeroReserva {
				return 0, repository.ErrNumeroReservaExists
			}
		}
	}
	m.nextID++
	r := model.Reserva{
		ID:            m.nextID,
		NumeroReserva: sptr(n.NumeroReserva),
		Nombre:        n.Nombre,
		Email:         sptr(n.Email),
		Telefono:      sptr(n.Telefono),
		Fecha:         n.Fecha,
		Hora:          n.Hora,
		Servicio:      sptr(n.Servicio),
		Notas:         sptr(n.Notas),
		RangoDesde:    sptr(n.RangoDesde),
		RangoHasta:    sptr(n.RangoHasta),
		NombreArchivo: sptr(n.NombreArchivo),
		Estado:        model.EstadoPendiente,
		CreadoEn:      time.Now(),
	}
	m.rows[r.ID] = r
	return r.ID, nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (model.Reserva, error) {
	r, ok := m.rows[id]
	if !ok {
		return model.Reserva{}, repository.ErrNotFound
	}
	return r, nil
}

func (m *memStore) Update(_ context.Context, id uint64, fields map[string]string) (model.Reserva, error) {
	if m.failNotas {
		if _, ok := fields["notas"]; ok {
			return model.Reserva{}, errors.New("notas update failed")
		}
	}
	r, ok := m.rows[id]
	if !ok {
		return model.Reserva{}, repository.ErrNotFound
	}
	for k, v := range fields {
		if !allowed[k] {
			continue
		}
		switch k {
		case "estado":
			r.Estado = v
		case "documento":
			r.Documento = sptr(v)
		case "cajas":
			r.Cajas = sptr(v)
		case "responsable":
			r.Responsable = sptr(v)
		case "nombre_archivo":
			r.NombreArchivo = sptr(v)
		case "notas":
			r.Notas = sptr(v)
		case "telefono":
			r.Telefono = sptr(v)
		case "numero_reserva":
			r.NumeroReserva = sptr(v)
		case "fecha":
			r.Fecha = v
		case "hora":
			r.Hora = v
		case "servicio":
			r.Servicio = sptr(v)
		}
	}
	if estado, ok := fields["estado"]; ok {
		stamp := time.Now().Format("2006-01-02 15:04:05")
		switch strings.ToLower(estado) {
		case model.EstadoConfirmada:
			r.FechaConfirmacion = &stamp
		case model.EstadoCancelada:
			r.FechaCancelacion = &stamp
		}
	}
	m.rows[id] = r
	return r, nil
}

func (m *memStore) UpdateEstado(ctx context.Context, id uint64, estado string) (model.Reserva, error) {
	return m.Update(ctx, id, map[string]string{"estado": estado})
}

func (m *memStore) Delete(_ context.Context, id uint64) (bool, error) {
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func sptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// fakeBlobs records stored and deleted blob names.
type fakeBlobs struct {
	stored   []string
	deleted  []string
	storeErr error
}

func (f *fakeBlobs) Store(up storage.Upload) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	name := fmt.Sprintf("blob-%d-%s", len(f.stored), up.Filename)
	f.stored = append(f.stored, name)
	return name, nil
}

func (f *fakeBlobs) Delete(name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

// fakeNotifier records notification attempts.
type fakeNotifier struct {
	ok    bool
	calls []string // "email|nombre|numero"
}

func (f *fakeNotifier) Notify(_ context.Context, email, nombre, numero string) bool {
	f.calls = append(f.calls, email+"|"+nombre+"|"+numero)
	return f.ok
}

// fakePublisher records published confirmation events.
type fakePublisher struct {
	events []queue.ReservaConfirmadaEvent
	err    error
}

func (f *fakePublisher) PublishReservaConfirmada(_ context.Context, ev queue.ReservaConfirmadaEvent) error {
	f.events = append(f.events, ev)
	return f.err
}
