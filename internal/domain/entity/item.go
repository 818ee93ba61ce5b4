package entity

import "time"

// DefaultMinimumQuantity mínimo de estoque cuando el item se crea sin informarlo.
const DefaultMinimumQuantity int64 = 5

// Item artículo del catálogo. El ledger solo lo lee.
type Item struct {
	ID              string
	Name            string
	Category        string
	UnitOfMeasure   string
	Description     string
	MinimumQuantity int64 // >= 0
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsLowStock indica si qty está en o por debajo del mínimo (límite inclusivo).
func (i *Item) IsLowStock(qty int64) bool {
	return qty <= i.MinimumQuantity
}
