package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/calendar"
)

// Etiquetas mostradas cuando el item o el usuario ya no existen.
const (
	UnknownItemName  = "Desconocido"
	UnknownActorName = "N/D"
)

// MovementFilter filtro conjuntivo del historial. Campos vacíos no filtran.
type MovementFilter struct {
	Kind     entity.MovementKind // "" = todos
	ItemID   string
	DateFrom calendar.Date
	DateTo   calendar.Date
	ItemName string // substring, sin distinguir mayúsculas
	Limit    int    // recorta la lista, no los totales
}

// Totals agregados del subconjunto filtrado.
type Totals struct {
	EntryQty int64
	ExitQty  int64
	Count    int
}

// MovementPage resultado de ListMovements.
type MovementPage struct {
	Movements []entity.Movement
	Totals    Totals
}

// ParseMovementKind acepta "", "all"/"todas", "entrada"/"entry", "salida"/"exit".
func ParseMovementKind(s string) (entity.MovementKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todas", "todos":
		return "", nil
	case "entrada", "entradas", "entry":
		return entity.MovementKindEntry, nil
	case "salida", "salidas", "saida", "exit":
		return entity.MovementKindExit, nil
	}
	return "", domain.NewValidationError("kind", "tipo de movimiento desconocido: "+s)
}

// Match evalúa el filtro sobre un movimiento ya resuelto (con ItemName).
func (f MovementFilter) Match(m entity.Movement) bool {
	if f.Kind != "" && m.Kind != f.Kind {
		return false
	}
	if f.ItemID != "" && m.ItemID != f.ItemID {
		return false
	}
	if !f.DateFrom.IsZero() && m.OccurredOn.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && m.OccurredOn.After(f.DateTo) {
		return false
	}
	return entity.ContainsFold(m.ItemName, f.ItemName)
}

// MergeMovements une entradas y salidas y las ordena para el historial.
func MergeMovements(entries []*entity.Entry, exits []*entity.Exit) []entity.Movement {
	out := make([]entity.Movement, 0, len(entries)+len(exits))
	for _, e := range entries {
		out = append(out, entity.MovementFromEntry(e))
	}
	for _, x := range exits {
		out = append(out, entity.MovementFromExit(x))
	}
	SortMovements(out)
	return out
}

// SortMovements fecha descendente; en el mismo día, el último registrado primero.
func SortMovements(ms []entity.Movement) {
	sort.SliceStable(ms, func(i, j int) bool {
		if c := ms[i].OccurredOn.Compare(ms[j].OccurredOn); c != 0 {
			return c > 0
		}
		return ms[i].Seq > ms[j].Seq
	})
}

// ComputeTotals suma entradas y salidas por separado.
func ComputeTotals(ms []entity.Movement) Totals {
	var t Totals
	for _, m := range ms {
		switch m.Kind {
		case entity.MovementKindEntry:
			t.EntryQty += m.Quantity
		case entity.MovementKindExit:
			t.ExitQty += m.Quantity
		}
	}
	t.Count = len(ms)
	return t
}

// HistoryView historial combinado y filtrable de movimientos.
type HistoryView struct {
	entries  EntryLog
	exits    ExitLog
	items    ItemCatalog
	profiles ProfileDirectory
}

// NewHistoryView construye la vista. profiles puede ser nil (todos los usuarios quedan "N/D").
func NewHistoryView(entries EntryLog, exits ExitLog, items ItemCatalog, profiles ProfileDirectory) *HistoryView {
	return &HistoryView{entries: entries, exits: exits, items: items, profiles: profiles}
}

// ListMovements devuelve los movimientos que cumplen el filtro, ordenados, con totales.
func (h *HistoryView) ListMovements(ctx context.Context, f MovementFilter) (*MovementPage, error) {
	q := repository.MovementQuery{ItemID: f.ItemID, From: f.DateFrom, To: f.DateTo}

	var entries []*entity.Entry
	var exits []*entity.Exit
	var err error
	if f.Kind != entity.MovementKindExit {
		if entries, err = h.entries.List(ctx, q); err != nil {
			return nil, &domain.PersistenceError{Op: "listar entradas", Err: err}
		}
	}
	if f.Kind != entity.MovementKindEntry {
		if exits, err = h.exits.List(ctx, q); err != nil {
			return nil, &domain.PersistenceError{Op: "listar salidas", Err: err}
		}
	}

	itemNames, err := h.itemNames(ctx)
	if err != nil {
		return nil, err
	}
	actorNames, err := h.actorNames(ctx)
	if err != nil {
		return nil, err
	}

	merged := MergeMovements(entries, exits)
	filtered := make([]entity.Movement, 0, len(merged))
	for _, m := range merged {
		m.ItemName = lookupName(itemNames, m.ItemID, UnknownItemName)
		m.ActorName = lookupName(actorNames, m.ActorID, UnknownActorName)
		if f.Match(m) {
			filtered = append(filtered, m)
		}
	}

	page := &MovementPage{Movements: filtered, Totals: ComputeTotals(filtered)}
	if f.Limit > 0 && len(page.Movements) > f.Limit {
		page.Movements = page.Movements[:f.Limit]
	}
	return page, nil
}

func (h *HistoryView) itemNames(ctx context.Context) (map[string]string, error) {
	items, err := h.items.List(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar items", Err: err}
	}
	out := make(map[string]string, len(items))
	for _, it := range items {
		out[it.ID] = it.Name
	}
	return out, nil
}

func (h *HistoryView) actorNames(ctx context.Context) (map[string]string, error) {
	if h.profiles == nil {
		return map[string]string{}, nil
	}
	profiles, err := h.profiles.List(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar perfiles", Err: err}
	}
	out := make(map[string]string, len(profiles))
	for _, p := range profiles {
		out[p.ID] = p.Name
	}
	return out, nil
}

func lookupName(names map[string]string, id, fallback string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return fallback
}
