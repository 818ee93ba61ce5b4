package entity

import "time"

// StockLevel cantidad materializada de un item. Solo la modifica el motor del ledger.
type StockLevel struct {
	ItemID          string
	CurrentQuantity int64
	UpdatedAt       time.Time
}
