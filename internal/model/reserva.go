package model

import (
	"strings"
	"time"
)

// Estado values for a reservation.  A reservation starts as 'pendiente'
// and ends in exactly one of the two terminal states.  The comparison is
// always done lowercased because legacy rows may carry mixed casing.
const (
	EstadoPendiente  = "pendiente"
	EstadoConfirmada = "confirmada"
	EstadoCancelada  = "cancelada"
)

// Reserva mirrors the `reservas` table.  A row is either a single
// reservation (numero_reserva set by the submitter) or a ranged order
// (rango_desde/rango_hasta set, numero_reserva holding a synthesized
// placeholder until confirmation).  Optional columns are pointers so
// NULL survives the JSON round trip.
//
// fecha/hora are the submission date and time as sent by the form
// ("2006-01-02" / "15:04:05").  fecha_confirmacion and fecha_cancelacion
// are stamped by the lifecycle service in server-local time using the
// same "2006-01-02 15:04:05" layout; once set they are never cleared.
type Reserva struct {
	ID                uint64    `json:"id"`
	NumeroReserva     *string   `json:"numero_reserva"`
	Nombre            string    `json:"nombre"`
	Email             *string   `json:"email"`
	Telefono          *string   `json:"telefono"`
	Fecha             string    `json:"fecha"`
	Hora              string    `json:"hora"`
	Servicio          *string   `json:"servicio"`
	Notas             *string   `json:"notas"`
	RangoDesde        *string   `json:"rango_desde"`
	RangoHasta        *string   `json:"rango_hasta"`
	NombreArchivo     *string   `json:"nombre_archivo"`
	Cajas             *string   `json:"cajas"`
	Responsable       *string   `json:"responsable"`
	Documento         *string   `json:"documento"`
	Estado            string    `json:"estado"`
	FechaConfirmacion *string   `json:"fecha_confirmacion"`
	FechaCancelacion  *string   `json:"fecha_cancelacion"`
	CreadoEn          time.Time `json:"creado_en"`
}

// EsPedido reports whether the record is a ranged order, i.e. at least
// one range bound is non-empty.  Records without a range are single
// reservations.
func (r *Reserva) EsPedido() bool {
	return strPresent(r.RangoDesde) || strPresent(r.RangoHasta)
}

// EstadoNormalizado returns the estado lowercased, defaulting to
// 'pendiente' when the column is empty.
func (r *Reserva) EstadoNormalizado() string {
	e := strings.ToLower(strings.TrimSpace(r.Estado))
	if e == "" {
		return EstadoPendiente
	}
	return e
}

// Archivos splits nombre_archivo into its individual stored blob names.
func (r *Reserva) Archivos() []string {
	if !strPresent(r.NombreArchivo) {
		return nil
	}
	var out []string
	for _, f := range strings.Split(*r.NombreArchivo, ";") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func strPresent(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
