package ledger

import (
	"context"
	"sort"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// AlertOptions controla el listado de alertas.
type AlertOptions struct {
	SortByQuantity bool // menor cantidad primero, empate por nombre
	Limit          int  // <= 0 sin límite
}

// LowStockItem item en o por debajo de su mínimo.
type LowStockItem struct {
	Item     *entity.Item
	Quantity int64
}

// AlertEvaluator deriva alertas de estoque bajo a partir de la proyección.
type AlertEvaluator struct {
	projection *Projection
}

// NewAlertEvaluator construye el evaluador.
func NewAlertEvaluator(projection *Projection) *AlertEvaluator {
	return &AlertEvaluator{projection: projection}
}

// IsLowStock cantidad actual <= mínimo (inclusivo).
func (a *AlertEvaluator) IsLowStock(ctx context.Context, item *entity.Item) (bool, error) {
	qty, err := a.projection.CurrentQuantity(ctx, item.ID)
	if err != nil {
		return false, err
	}
	return item.IsLowStock(qty), nil
}

// LowStockItems filtra los items en alerta. Con una sola lectura de la proyección.
func (a *AlertEvaluator) LowStockItems(ctx context.Context, items []*entity.Item, opts AlertOptions) ([]LowStockItem, error) {
	levels, err := a.projection.Levels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]LowStockItem, 0)
	for _, it := range items {
		qty := levels[it.ID].CurrentQuantity
		if it.IsLowStock(qty) {
			out = append(out, LowStockItem{Item: it, Quantity: qty})
		}
	}
	if opts.SortByQuantity {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Quantity != out[j].Quantity {
				return out[i].Quantity < out[j].Quantity
			}
			return out[i].Item.Name < out[j].Item.Name
		})
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}
