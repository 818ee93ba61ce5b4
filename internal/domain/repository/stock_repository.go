package repository

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// StockRepository puerto de la proyección de estoque por item.
// Los métodos de escritura solo se usan dentro de transacciones del ledger.
type StockRepository interface {
	// Get devuelve un nivel en cero si el item aún no tiene registro.
	Get(ctx context.Context, itemID string) (*entity.StockLevel, error)
	// GetForUpdate como Get pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, itemID string) (*entity.StockLevel, error)
	// Increment suma qty creando el registro si no existe; devuelve la cantidad resultante.
	Increment(ctx context.Context, itemID string, qty int64, at time.Time) (int64, error)
	// Decrement resta qty solo si current_quantity >= qty; si no, domain.ErrInsufficientStock.
	Decrement(ctx context.Context, itemID string, qty int64, at time.Time) (int64, error)
	List(ctx context.Context) ([]*entity.StockLevel, error)
}
