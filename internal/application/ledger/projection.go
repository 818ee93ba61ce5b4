package ledger

import (
	"context"
	"sort"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// Projection lecturas de la cantidad materializada por item.
// No tiene escritores públicos: solo el Engine modifica el estoque.
type Projection struct {
	stock StockReader
	items ItemCatalog
}

// StockRow item del catálogo con su cantidad actual.
type StockRow struct {
	Item     *entity.Item
	Level    entity.StockLevel
	LowStock bool
}

// NewProjection construye la proyección.
func NewProjection(stock StockReader, items ItemCatalog) *Projection {
	return &Projection{stock: stock, items: items}
}

// CurrentQuantity cantidad actual; 0 si el item no tiene registro.
func (p *Projection) CurrentQuantity(ctx context.Context, itemID string) (int64, error) {
	level, err := p.stock.Get(ctx, itemID)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "leer estoque", Err: err}
	}
	if level == nil {
		return 0, nil
	}
	return level.CurrentQuantity, nil
}

// Levels todas las cantidades indexadas por item.
func (p *Projection) Levels(ctx context.Context) (map[string]entity.StockLevel, error) {
	list, err := p.stock.List(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar estoque", Err: err}
	}
	out := make(map[string]entity.StockLevel, len(list))
	for _, l := range list {
		out[l.ItemID] = *l
	}
	return out, nil
}

// Catalog une cada item con su cantidad y su marca de estoque bajo, ordenado por nombre.
func (p *Projection) Catalog(ctx context.Context) ([]StockRow, error) {
	items, err := p.items.List(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar items", Err: err}
	}
	levels, err := p.Levels(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]StockRow, 0, len(items))
	for _, it := range items {
		lvl, ok := levels[it.ID]
		if !ok {
			lvl = entity.StockLevel{ItemID: it.ID}
		}
		rows = append(rows, StockRow{Item: it, Level: lvl, LowStock: it.IsLowStock(lvl.CurrentQuantity)})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Item.Name < rows[j].Item.Name })
	return rows, nil
}
