package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/pkg/calendar"
)

const (
	dashboardRecentMovements = 5 // movimientos recientes en el widget
	dashboardDefaultTopN     = 5
)

// Dashboard genera el resumen del día: items, entradas/salidas de hoy, alertas y
// últimos movimientos.
type Dashboard struct {
	items   ItemCatalog
	alerts  *AlertEvaluator
	history *HistoryView
	loc     *time.Location
	now     func() time.Time
	topN    int
}

// NewDashboard construye el caso de uso. topN <= 0 usa 5.
func NewDashboard(items ItemCatalog, alerts *AlertEvaluator, history *HistoryView, loc *time.Location, topN int) *Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	if topN <= 0 {
		topN = dashboardDefaultTopN
	}
	return &Dashboard{items: items, alerts: alerts, history: history, loc: loc, now: time.Now, topN: topN}
}

// WithClock reemplaza el reloj (tests).
func (d *Dashboard) WithClock(now func() time.Time) *Dashboard {
	d.now = now
	return d
}

// Summary tres lecturas en paralelo:
//  1. catálogo + alertas
//  2. movimientos de hoy (solo totales)
//  3. últimos movimientos
func (d *Dashboard) Summary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	today := calendar.FromTime(d.now(), d.loc)

	type alertsResult struct {
		total int
		count int
		top   []LowStockItem
		err   error
	}
	type pageResult struct {
		page *MovementPage
		err  error
	}

	alertsCh := make(chan alertsResult, 1)
	todayCh := make(chan pageResult, 1)
	recentCh := make(chan pageResult, 1)

	go func() {
		items, err := d.items.List(ctx)
		if err != nil {
			alertsCh <- alertsResult{err: &domain.PersistenceError{Op: "listar items", Err: err}}
			return
		}
		low, err := d.alerts.LowStockItems(ctx, items, AlertOptions{SortByQuantity: true})
		if err != nil {
			alertsCh <- alertsResult{err: err}
			return
		}
		top := low
		if len(top) > d.topN {
			top = top[:d.topN]
		}
		alertsCh <- alertsResult{total: len(items), count: len(low), top: top}
	}()
	go func() {
		page, err := d.history.ListMovements(ctx, MovementFilter{DateFrom: today, DateTo: today})
		todayCh <- pageResult{page, err}
	}()
	go func() {
		page, err := d.history.ListMovements(ctx, MovementFilter{Limit: dashboardRecentMovements})
		recentCh <- pageResult{page, err}
	}()

	alerts := <-alertsCh
	todays := <-todayCh
	recent := <-recentCh

	if alerts.err != nil {
		return nil, fmt.Errorf("dashboard: alertas: %w", alerts.err)
	}
	if todays.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos de hoy: %w", todays.err)
	}
	if recent.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos recientes: %w", recent.err)
	}

	return &dto.DashboardSummaryDTO{
		Date:            today.String(),
		TotalItems:      alerts.total,
		EntriesToday:    todays.page.Totals.EntryQty,
		ExitsToday:      todays.page.Totals.ExitQty,
		LowStockCount:   alerts.count,
		LowStock:        ToLowStockDTOs(alerts.top),
		RecentMovements: dto.ToMovementDTOs(recent.page.Movements),
	}, nil
}

// ToLowStockDTOs convierte alertas a DTO.
func ToLowStockDTOs(items []LowStockItem) []dto.LowStockItemDTO {
	out := make([]dto.LowStockItemDTO, 0, len(items))
	for _, l := range items {
		out = append(out, toLowStockDTO(l.Item, l.Quantity))
	}
	return out
}

func toLowStockDTO(it *entity.Item, qty int64) dto.LowStockItemDTO {
	return dto.LowStockItemDTO{
		ItemID:          it.ID,
		ItemName:        it.Name,
		Category:        it.Category,
		UnitOfMeasure:   it.UnitOfMeasure,
		CurrentQuantity: qty,
		MinimumQuantity: it.MinimumQuantity,
	}
}
