package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/prebel/reservas-service/internal/model"
)

// ReservaRepo provides CRUD access to the reservas table.  The table is
// the single shared mutable resource of the system; every mutation is a
// single-row statement so no multi-row transactions are needed.
type ReservaRepo struct {
	db *sql.DB
}

// NewReservaRepo returns a ReservaRepo bound to the given database.
func NewReservaRepo(db *sql.DB) *ReservaRepo { return &ReservaRepo{db: db} }

// NuevaReserva carries the fields accepted at creation.  Empty strings
// are stored as NULL, mirroring the intake form where optional fields
// arrive blank.
type NuevaReserva struct {
	NumeroReserva string
	Nombre        string
	Email         string
	Telefono      string
	Fecha         string
	Hora          string
	Servicio      string
	Notas         string
	NombreArchivo string
	RangoDesde    string
	RangoHasta    string
}

// updatableFields is the allow-list for partial updates.  Any other key
// is silently ignored.  The terminal-state stamps are deliberately
// absent: once written they can never be modified or cleared through
// Update.
var updatableFields = map[string]bool{
	"estado":         true,
	"documento":      true,
	"cajas":          true,
	"responsable":    true,
	"nombre_archivo": true,
	"notas":          true,
	"telefono":       true,
	"numero_reserva": true,
	"fecha":          true,
	"hora":           true,
	"servicio":       true,
}

// nowStamp returns the current server-local time as it is persisted in
// fecha_confirmacion / fecha_cancelacion.  Kept as a variable so tests
// can pin the clock.
var nowStamp = func() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

const reservaColumns = `id, numero_reserva, nombre, email, telefono, fecha, hora, servicio, notas,
	rango_desde, rango_hasta, nombre_archivo, cajas, responsable, documento, estado,
	fecha_confirmacion, fecha_cancelacion, creado_en`

// Create inserts a reservation and returns its id.  A duplicate
// non-null numero_reserva yields ErrNumeroReservaExists.
func (r *ReservaRepo) Create(ctx context.Context, n NuevaReserva) (uint64, error) {
	const q = `INSERT INTO reservas
		(numero_reserva, nombre, email, telefono, fecha, hora, servicio, notas, nombre_archivo, rango_desde, rango_hasta)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		nullable(n.NumeroReserva), n.Nombre, nullable(n.Email), nullable(n.Telefono),
		n.Fecha, n.Hora, nullable(n.Servicio), nullable(n.Notas),
		nullable(n.NombreArchivo), nullable(n.RangoDesde), nullable(n.RangoHasta))
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrNumeroReservaExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a single reservation.
func (r *ReservaRepo) GetByID(ctx context.Context, id uint64) (model.Reserva, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservaColumns+` FROM reservas WHERE id = ? LIMIT 1`, id)
	return scanReserva(row)
}

// GetByNumero fetches a reservation by its unique numero_reserva.
func (r *ReservaRepo) GetByNumero(ctx context.Context, numero string) (model.Reserva, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservaColumns+` FROM reservas WHERE numero_reserva = ? LIMIT 1`, numero)
	return scanReserva(row)
}

// ListActive returns the pending partition, newest submissions first.
// Rows with a NULL or empty estado count as pending.
func (r *ReservaRepo) ListActive(ctx context.Context) ([]model.Reserva, error) {
	const q = `SELECT ` + reservaColumns + ` FROM reservas
		WHERE LOWER(COALESCE(NULLIF(estado,''), 'pendiente')) = 'pendiente'
		ORDER BY creado_en DESC`
	return r.list(ctx, q)
}

// ListHistory returns the terminal partition ordered by the moment each
// record left the active list.
func (r *ReservaRepo) ListHistory(ctx context.Context) ([]model.Reserva, error) {
	const q = `SELECT ` + reservaColumns + ` FROM reservas
		WHERE LOWER(COALESCE(NULLIF(estado,''), 'pendiente')) IN ('confirmada','cancelada')
		ORDER BY COALESCE(fecha_confirmacion, fecha_cancelacion, creado_en) DESC`
	return r.list(ctx, q)
}

// Update applies the allow-listed subset of fields and returns the
// updated row.  Empty values are written as NULL, so clearing a field
// restores its unset state.  Setting estado to a terminal value also
// stamps the matching timestamp column; stamps are re-written on repeat
// transitions (re-confirming is accepted behavior) but never cleared.
func (r *ReservaRepo) Update(ctx context.Context, id uint64, fields map[string]string) (model.Reserva, error) {
	setClauses := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for key, val := range fields {
		if !updatableFields[key] {
			continue
		}
		setClauses = append(setClauses, key+" = ?")
		args = append(args, nullable(val))
	}
	if estado, ok := fields["estado"]; ok {
		switch strings.ToLower(strings.TrimSpace(estado)) {
		case model.EstadoConfirmada:
			setClauses = append(setClauses, "fecha_confirmacion = ?")
			args = append(args, nowStamp())
		case model.EstadoCancelada:
			setClauses = append(setClauses, "fecha_cancelacion = ?")
			args = append(args, nowStamp())
		}
	}
	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}
	q := fmt.Sprintf("UPDATE reservas SET %s WHERE id = ?", strings.Join(setClauses, ", "))
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		if isDuplicate(err) {
			return model.Reserva{}, ErrNumeroReservaExists
		}
		return model.Reserva{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdateEstado transitions a reservation to the given estado and returns
// the updated row.  Convenience wrapper used by the lifecycle service.
func (r *ReservaRepo) UpdateEstado(ctx context.Context, id uint64, estado string) (model.Reserva, error) {
	return r.Update(ctx, id, map[string]string{"estado": estado})
}

// Delete removes a reservation permanently.  It reports whether a row
// was actually deleted.
func (r *ReservaRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservas WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ReservaRepo) list(ctx context.Context, q string) ([]model.Reserva, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reserva, 0, 32)
	for rows.Next() {
		res, err := scanReserva(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReserva(row rowScanner) (model.Reserva, error) {
	var (
		res model.Reserva

		numero, email, telefono, servicio, notas    sql.NullString
		rangoDesde, rangoHasta, archivo             sql.NullString
		cajas, responsable, documento, fConf, fCanc sql.NullString
	)
	err := row.Scan(
		&res.ID, &numero, &res.Nombre, &email, &telefono, &res.Fecha, &res.Hora,
		&servicio, &notas, &rangoDesde, &rangoHasta, &archivo, &cajas,
		&responsable, &documento, &res.Estado, &fConf, &fCanc, &res.CreadoEn,
	)
	if err == sql.ErrNoRows {
		return model.Reserva{}, ErrNotFound
	}
	if err != nil {
		return model.Reserva{}, err
	}
	res.NumeroReserva = ptr(numero)
	res.Email = ptr(email)
	res.Telefono = ptr(telefono)
	res.Servicio = ptr(servicio)
	res.Notas = ptr(notas)
	res.RangoDesde = ptr(rangoDesde)
	res.RangoHasta = ptr(rangoHasta)
	res.NombreArchivo = ptr(archivo)
	res.Cajas = ptr(cajas)
	res.Responsable = ptr(responsable)
	res.Documento = ptr(documento)
	res.FechaConfirmacion = ptr(fConf)
	res.FechaCancelacion = ptr(fCanc)
	return res, nil
}

func ptr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// MySQL reports unique-index violations as error 1062.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
