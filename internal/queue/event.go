// Package queue defines message payloads exchanged over the message broker
// plus the publisher and the audit-log consumer.
package queue

// ReservaConfirmadaEvent is published when a reservation is confirmed.
// It carries enough information for downstream consumers to log or
// trigger follow-ups without querying the primary database.
type ReservaConfirmadaEvent struct {
	ReservaID     uint64 `json:"reserva_id"`
	NumeroReserva string `json:"numero_reserva"`
	Nombre        string `json:"nombre"`
	Email         string `json:"email,omitempty"`
	RangoDesde    string `json:"rango_desde,omitempty"`
	RangoHasta    string `json:"rango_hasta,omitempty"`
	ConfirmadaEn  string `json:"confirmada_en"`
}
