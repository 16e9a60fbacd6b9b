package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sp(s string) *string { return &s }

func TestEsPedido(t *testing.T) {
	assert.False(t, (&Reserva{NumeroReserva: sp("100")}).EsPedido())
	assert.True(t, (&Reserva{RangoDesde: sp("100")}).EsPedido())
	assert.True(t, (&Reserva{RangoHasta: sp("200")}).EsPedido())
	assert.False(t, (&Reserva{RangoDesde: sp("  ")}).EsPedido(), "blank bounds do not count")
}

func TestEstadoNormalizado(t *testing.T) {
	assert.Equal(t, EstadoPendiente, (&Reserva{}).EstadoNormalizado())
	assert.Equal(t, EstadoPendiente, (&Reserva{Estado: "  "}).EstadoNormalizado())
	assert.Equal(t, EstadoConfirmada, (&Reserva{Estado: "Confirmada"}).EstadoNormalizado())
	assert.Equal(t, EstadoCancelada, (&Reserva{Estado: "CANCELADA "}).EstadoNormalizado())
}

func TestArchivos(t *testing.T) {
	assert.Nil(t, (&Reserva{}).Archivos())
	assert.Nil(t, (&Reserva{NombreArchivo: sp(" ; ;")}).Archivos())

	r := Reserva{NombreArchivo: sp("a.pdf; b.pdf ;c.pdf")}
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, r.Archivos())
}
