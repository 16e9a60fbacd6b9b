package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prebel/reservas-service/internal/model"
)

func sp(s string) *string { return &s }

func sample() []model.Reserva {
	return []model.Reserva{
		{ID: 1, Nombre: "Ana López", NumeroReserva: sp("100"), Fecha: "2025-06-01", Hora: "09:00:00", Estado: "pendiente"},
		{ID: 2, Nombre: "Luis Gómez", NumeroReserva: sp("9"), Fecha: "2025-06-02", Hora: "10:00:00", Estado: "confirmada"},
		{ID: 3, Nombre: "María Ruiz", NumeroReserva: sp("RANGO-1-1"), RangoDesde: sp("500"), RangoHasta: sp("510"), Fecha: "2025-06-03", Hora: "11:00:00", Estado: "pendiente"},
		{ID: 4, Nombre: "Pedro Díaz", NumeroReserva: sp("20"), Fecha: "bad-date", Hora: "12:00:00", Estado: "Cancelada"},
		{ID: 5, Nombre: "Sofía Torres", NumeroReserva: sp("3"), Fecha: "2025-06-05", Hora: "08:00:00", Estado: ""},
	}
}

func ids(rs []model.Reserva) []uint64 {
	out := make([]uint64, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestLoadKeepsOrderAndDropsDuplicates(t *testing.T) {
	p := NewProjector()
	rows := sample()
	rows = append(rows, rows[0]) // duplicate id delivered twice
	p.Load(rows)

	assert.Equal(t, 5, p.Len())
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ids(p.All()))
}

func TestLoadPrunesStaleSelection(t *testing.T) {
	p := NewProjector()
	p.Load(sample())
	p.Select(1)
	p.Select(4)

	p.Load(sample()[:2]) // record 4 is gone
	assert.Equal(t, []uint64{1}, p.Selected())
	assert.False(t, p.IsSelected(4))
}

func TestUpsertReconcilesSingleRecord(t *testing.T) {
	p := NewProjector()
	p.Load(sample())

	r, ok := p.Get(2)
	require.True(t, ok)
	r.Estado = "cancelada"
	p.Upsert(r)

	got, _ := p.Get(2)
	assert.Equal(t, "cancelada", got.Estado)
	assert.Equal(t, 5, p.Len(), "upsert of a known id must not grow the collection")

	p.Upsert(model.Reserva{ID: 9, Nombre: "Nuevo", Fecha: "2025-06-09", Hora: "07:00:00"})
	assert.Equal(t, 6, p.Len())
	assert.Equal(t, uint64(9), ids(p.All())[5], "new records append at the end")
}

func TestRemoveDropsRecordOrderAndSelection(t *testing.T) {
	p := NewProjector()
	p.Load(sample())
	p.Select(3)

	p.Remove(3)
	_, ok := p.Get(3)
	assert.False(t, ok)
	assert.Equal(t, []uint64{1, 2, 4, 5}, ids(p.All()))
	assert.Empty(t, p.Selected())

	p.Remove(3) // idempotent
	assert.Equal(t, 4, p.Len())
}

func TestSelectionIgnoresUnknownIDsAndSortsAscending(t *testing.T) {
	p := NewProjector()
	p.Load(sample())

	p.Select(42) // not cached
	p.Select(5)
	p.Select(1)
	assert.Equal(t, []uint64{1, 5}, p.Selected())

	p.Deselect(5)
	assert.Equal(t, []uint64{1}, p.Selected())

	p.ClearSelection()
	assert.Empty(t, p.Selected())
}

func TestBulkMutateReconcilesAndKeepsFailuresSelected(t *testing.T) {
	p := NewProjector()
	p.Load(sample())
	p.Select(1)
	p.Select(2)
	p.Select(5)

	res := p.BulkMutate(func(id uint64) (model.Reserva, error) {
		if id == 2 {
			return model.Reserva{}, assert.AnError
		}
		r, _ := p.Get(id)
		r.Estado = "confirmada"
		return r, nil
	})
	assert.Equal(t, BulkResult{OK: 2, Failed: 1}, res)

	got, _ := p.Get(1)
	assert.Equal(t, "confirmada", got.Estado)
	assert.Equal(t, []uint64{2}, p.Selected(), "failed ids stay selected for retry")
}

func TestBulkRemoveDropsOnlySuccesses(t *testing.T) {
	p := NewProjector()
	p.Load(sample())
	p.Select(3)
	p.Select(4)

	res := p.BulkRemove(func(id uint64) error {
		if id == 4 {
			return assert.AnError
		}
		return nil
	})
	assert.Equal(t, BulkResult{OK: 1, Failed: 1}, res)

	_, ok := p.Get(3)
	assert.False(t, ok)
	_, ok = p.Get(4)
	assert.True(t, ok)
	assert.Equal(t, []uint64{4}, p.Selected())
}

func TestFilterByEstadoNormalizesCase(t *testing.T) {
	got := ApplyFilter(sample(), Filter{Estado: "cancelada"})
	require.Len(t, got, 1)
	assert.Equal(t, uint64(4), got[0].ID, "mixed-case estado must still match")

	got = ApplyFilter(sample(), Filter{Estado: "pendiente"})
	assert.Equal(t, []uint64{1, 3, 5}, ids(got), "empty estado counts as pendiente")
}

func TestFilterByTexto(t *testing.T) {
	got := ApplyFilter(sample(), Filter{Texto: "gómez"})
	require.Len(t, got, 1)
	assert.Equal(t, uint64(2), got[0].ID)

	got = ApplyFilter(sample(), Filter{Texto: "510"})
	require.Len(t, got, 1)
	assert.Equal(t, uint64(3), got[0].ID, "range bounds participate in text search")

	assert.Empty(t, ApplyFilter(sample(), Filter{Texto: "no-existe"}))
}

func TestFilterByDateRange(t *testing.T) {
	got := ApplyFilter(sample(), Filter{FechaDesde: "2025-06-02", FechaHasta: "2025-06-03"})
	// Record 4 has an unparseable fecha and passes permissively.
	assert.Equal(t, []uint64{2, 3, 4}, ids(got))

	got = ApplyFilter(sample(), Filter{FechaHasta: "2025-06-01"})
	assert.Equal(t, []uint64{1, 4}, ids(got), "hasta is inclusive of its full day")
}

func TestSortByFechaComposesHora(t *testing.T) {
	rows := []model.Reserva{
		{ID: 1, Fecha: "2025-06-01", Hora: "10:00:00"},
		{ID: 2, Fecha: "2025-06-01", Hora: "08:00:00"},
		{ID: 3, Fecha: "2025-05-31", Hora: "23:00:00"},
	}
	got := ApplySort(rows, Sort{Key: "fecha"})
	assert.Equal(t, []uint64{3, 2, 1}, ids(got))

	got = ApplySort(rows, Sort{Key: "fecha", Desc: true})
	assert.Equal(t, []uint64{1, 2, 3}, ids(got))
}

func TestSortNumeroReservaIsNumericWhenBothParse(t *testing.T) {
	got := ApplySort(sample(), Sort{Key: "numero_reserva"})
	// Non-numeric "RANGO-1-1" falls back to string comparison against its
	// neighbors; the numeric ones order 3 < 9 < 20 < 100.
	order := ids(got)
	posOf := func(id uint64) int {
		for i, v := range order {
			if v == id {
				return i
			}
		}
		return -1
	}
	assert.Less(t, posOf(5), posOf(2), `"3" sorts before "9" numerically`)
	assert.Less(t, posOf(2), posOf(4), `"9" sorts before "20" numerically`)
	assert.Less(t, posOf(4), posOf(1), `"20" sorts before "100" numerically`)
}

func TestSortUnknownKeyKeepsOrder(t *testing.T) {
	got := ApplySort(sample(), Sort{Key: "columna_fantasma"})
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ids(got), "unknown keys compare as empty and stable sort keeps order")

	got = ApplySort(sample(), Sort{})
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ids(got))
}

func TestPartitionSplitsRangedOrders(t *testing.T) {
	reservas, pedidos := Partition(sample())
	assert.Equal(t, []uint64{1, 2, 4, 5}, ids(reservas))
	assert.Equal(t, []uint64{3}, ids(pedidos))
}

func TestPaginateClampsAndDefaults(t *testing.T) {
	rows := sample()

	pg := Paginate(rows, 1, 2)
	assert.Equal(t, 3, pg.TotalPages)
	assert.Equal(t, 5, pg.TotalItems)
	assert.Equal(t, []uint64{1, 2}, ids(pg.Items))

	pg = Paginate(rows, 99, 2) // clamped to last page
	assert.Equal(t, 3, pg.Current)
	assert.Equal(t, []uint64{5}, ids(pg.Items))

	pg = Paginate(rows, 0, 0) // defaults: page 1, size 25
	assert.Equal(t, 1, pg.Current)
	assert.Len(t, pg.Items, 5)

	pg = Paginate(nil, 1, 10)
	assert.Equal(t, 1, pg.TotalPages)
	assert.Empty(t, pg.Items)
}

func TestDerivedViews(t *testing.T) {
	p := NewProjector()
	p.Load(sample())

	res := p.Reservas(Filter{}, Sort{}, 1, 25)
	assert.Equal(t, []uint64{1, 2, 4, 5}, ids(res.Items))

	ped := p.Pedidos(Filter{}, Sort{}, 1, 25)
	assert.Equal(t, []uint64{3}, ids(ped.Items))

	hist := p.Historial(Filter{Estado: "confirmada"}, Sort{}, 1, 25)
	assert.Equal(t, []uint64{2}, ids(hist.Items))
}
