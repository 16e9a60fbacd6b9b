// Package view projects reservation collections into the filtered,
// sorted, partitioned and paginated lists the admin panel displays.
// Records live in a single normalized collection keyed by id; the
// active/history, single/ranged and paged views are all derived on read
// instead of being hand-synchronized arrays.
package view

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prebel/reservas-service/internal/model"
)

// Filter narrows a record list.  Texto is a case-insensitive substring
// match over a fixed field set; Estado matches exactly; the date bounds
// are inclusive, with Hasta extended to the end of its day.
type Filter struct {
	Texto      string
	Estado     string
	FechaDesde string // "2006-01-02"
	FechaHasta string // "2006-01-02"
}

// Sort orders by a single key.  id and numero_reserva compare
// numerically when both values parse as numbers, fecha composes
// "fecha hora", everything else compares as lowercased strings.
type Sort struct {
	Key  string
	Desc bool
}

// Page is one slice of a derived view.
type Page struct {
	Items      []model.Reserva `json:"items"`
	Current    int             `json:"current"`
	TotalPages int             `json:"total_pages"`
	TotalItems int             `json:"total_items"`
}

// Projector is the client-held cache: a normalized collection plus a
// selection set for bulk actions.  It is not safe for concurrent use;
// each caller owns its own instance.
type Projector struct {
	records  map[uint64]model.Reserva
	order    []uint64 // server-delivered ordering
	selected map[uint64]struct{}
}

func NewProjector() *Projector {
	return &Projector{
		records:  make(map[uint64]model.Reserva),
		selected: make(map[uint64]struct{}),
	}
}

// Load replaces the cached collection, keeping the delivered order.
// Selected ids that no longer exist are dropped.
func (p *Projector) Load(rs []model.Reserva) {
	p.records = make(map[uint64]model.Reserva, len(rs))
	p.order = p.order[:0]
	for _, r := range rs {
		if _, dup := p.records[r.ID]; dup {
			continue
		}
		p.records[r.ID] = r
		p.order = append(p.order, r.ID)
	}
	for id := range p.selected {
		if _, ok := p.records[id]; !ok {
			delete(p.selected, id)
		}
	}
}

// Upsert reconciles a single record after a successful remote mutation.
func (p *Projector) Upsert(r model.Reserva) {
	if _, ok := p.records[r.ID]; !ok {
		p.order = append(p.order, r.ID)
	}
	p.records[r.ID] = r
}

// Remove drops a record and its selection entry, used after a confirmed
// remote delete (or when a record moved to the other partition).
func (p *Projector) Remove(id uint64) {
	if _, ok := p.records[id]; !ok {
		return
	}
	delete(p.records, id)
	delete(p.selected, id)
	for i, v := range p.order {
		if v == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Get returns a cached record.
func (p *Projector) Get(id uint64) (model.Reserva, bool) {
	r, ok := p.records[id]
	return r, ok
}

// All returns the collection in delivered order.
func (p *Projector) All() []model.Reserva {
	out := make([]model.Reserva, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.records[id])
	}
	return out
}

// Len reports the number of cached records.
func (p *Projector) Len() int { return len(p.records) }

// Select marks a record for bulk actions; unknown ids are ignored.
func (p *Projector) Select(id uint64) {
	if _, ok := p.records[id]; ok {
		p.selected[id] = struct{}{}
	}
}

// Deselect removes a record from the selection set.
func (p *Projector) Deselect(id uint64) { delete(p.selected, id) }

// ClearSelection empties the selection set.
func (p *Projector) ClearSelection() { p.selected = make(map[uint64]struct{}) }

// Selected returns the selected ids in ascending order so bulk loops
// mutate the cache deterministically.
func (p *Projector) Selected() []uint64 {
	out := make([]uint64, 0, len(p.selected))
	for id := range p.selected {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsSelected reports whether a record is in the selection set.
func (p *Projector) IsSelected(id uint64) bool {
	_, ok := p.selected[id]
	return ok
}

// BulkResult summarizes a sequential bulk operation over the selection.
type BulkResult struct {
	OK     int
	Failed int
}

// BulkMutate runs op over each selected id in ascending order and
// reconciles the cache with the returned record on success.  Failed ids
// stay selected so the operator can retry them.
func (p *Projector) BulkMutate(op func(id uint64) (model.Reserva, error)) BulkResult {
	var res BulkResult
	for _, id := range p.Selected() {
		r, err := op(id)
		if err != nil {
			res.Failed++
			continue
		}
		p.Upsert(r)
		p.Deselect(id)
		res.OK++
	}
	return res
}

// BulkRemove runs op over each selected id in ascending order and drops
// the record from the cache on success.
func (p *Projector) BulkRemove(op func(id uint64) error) BulkResult {
	var res BulkResult
	for _, id := range p.Selected() {
		if err := op(id); err != nil {
			res.Failed++
			continue
		}
		p.Remove(id)
		res.OK++
	}
	return res
}

// Reservas derives the single-reservation view: filter, sort, drop
// ranged orders, paginate.
func (p *Projector) Reservas(f Filter, s Sort, page, size int) Page {
	singles, _ := Partition(ApplySort(ApplyFilter(p.All(), f), s))
	return Paginate(singles, page, size)
}

// Pedidos derives the ranged-order view.
func (p *Projector) Pedidos(f Filter, s Sort, page, size int) Page {
	_, pedidos := Partition(ApplySort(ApplyFilter(p.All(), f), s))
	return Paginate(pedidos, page, size)
}

// Historial derives the unsplit view used for the history tab.
func (p *Projector) Historial(f Filter, s Sort, page, size int) Page {
	return Paginate(ApplySort(ApplyFilter(p.All(), f), s), page, size)
}

// textFields is the fixed field set the free-text filter matches.
func textFields(r *model.Reserva) []string {
	return []string{
		r.Nombre,
		deref(r.Email),
		deref(r.NumeroReserva),
		deref(r.Notas),
		deref(r.RangoDesde),
		deref(r.RangoHasta),
		r.Fecha,
		r.Hora,
		deref(r.NombreArchivo),
		deref(r.Documento),
	}
}

// ApplyFilter returns the records matching all active filter clauses.
func ApplyFilter(list []model.Reserva, f Filter) []model.Reserva {
	texto := strings.ToLower(strings.TrimSpace(f.Texto))
	estado := strings.ToLower(strings.TrimSpace(f.Estado))

	out := make([]model.Reserva, 0, len(list))
	for _, r := range list {
		if estado != "" && r.EstadoNormalizado() != estado {
			continue
		}
		if !inDateRange(r.Fecha, f.FechaDesde, f.FechaHasta) {
			continue
		}
		if texto != "" {
			hay := strings.ToLower(strings.Join(textFields(&r), " "))
			if !strings.Contains(hay, texto) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Unparseable record dates pass the filter, matching the panel's
// permissive behavior for legacy rows.
func inDateRange(fecha, desde, hasta string) bool {
	if fecha == "" {
		return true
	}
	t, err := time.Parse("2006-01-02", fecha)
	if err != nil {
		return true
	}
	if desde != "" {
		if from, err := time.Parse("2006-01-02", desde); err == nil && t.Before(from) {
			return false
		}
	}
	if hasta != "" {
		if to, err := time.Parse("2006-01-02", hasta); err == nil {
			endOfDay := to.Add(24*time.Hour - time.Nanosecond)
			if t.After(endOfDay) {
				return false
			}
		}
	}
	return true
}

// ApplySort returns a sorted copy; an empty key keeps the input order.
func ApplySort(list []model.Reserva, s Sort) []model.Reserva {
	if s.Key == "" {
		return list
	}
	out := make([]model.Reserva, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		less := compare(&out[i], &out[j], s.Key)
		if s.Desc {
			return less > 0
		}
		return less < 0
	})
	return out
}

func compare(a, b *model.Reserva, key string) int {
	switch key {
	case "fecha":
		return strings.Compare(
			strings.ToLower(a.Fecha+" "+a.Hora),
			strings.ToLower(b.Fecha+" "+b.Hora))
	case "id":
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	case "numero_reserva":
		va, vb := deref(a.NumeroReserva), deref(b.NumeroReserva)
		na, errA := strconv.ParseFloat(va, 64)
		nb, errB := strconv.ParseFloat(vb, 64)
		if errA == nil && errB == nil {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			}
			return 0
		}
		return strings.Compare(strings.ToLower(va), strings.ToLower(vb))
	default:
		return strings.Compare(
			strings.ToLower(fieldValue(a, key)),
			strings.ToLower(fieldValue(b, key)))
	}
}

func fieldValue(r *model.Reserva, key string) string {
	switch key {
	case "nombre":
		return r.Nombre
	case "email":
		return deref(r.Email)
	case "telefono":
		return deref(r.Telefono)
	case "hora":
		return r.Hora
	case "servicio":
		return deref(r.Servicio)
	case "notas":
		return deref(r.Notas)
	case "rango_desde":
		return deref(r.RangoDesde)
	case "rango_hasta":
		return deref(r.RangoHasta)
	case "nombre_archivo":
		return deref(r.NombreArchivo)
	case "cajas":
		return deref(r.Cajas)
	case "responsable":
		return deref(r.Responsable)
	case "documento":
		return deref(r.Documento)
	case "estado":
		return r.EstadoNormalizado()
	case "fecha_confirmacion":
		return deref(r.FechaConfirmacion)
	case "fecha_cancelacion":
		return deref(r.FechaCancelacion)
	}
	return ""
}

// Partition splits a list into single reservations and ranged orders.
func Partition(list []model.Reserva) (reservas, pedidos []model.Reserva) {
	for _, r := range list {
		if r.EsPedido() {
			pedidos = append(pedidos, r)
		} else {
			reservas = append(reservas, r)
		}
	}
	return reservas, pedidos
}

// Paginate slices a list into one page, clamping page into range.  A
// non-positive size defaults to 25.
func Paginate(list []model.Reserva, page, size int) Page {
	if size <= 0 {
		size = 25
	}
	totalItems := len(list)
	totalPages := (totalItems + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * size
	end := start + size
	if end > totalItems {
		end = totalItems
	}
	items := make([]model.Reserva, end-start)
	copy(items, list[start:end])
	return Page{Items: items, Current: page, TotalPages: totalPages, TotalItems: totalItems}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
