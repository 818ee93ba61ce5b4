package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// ItemRepository puerto de persistencia del catálogo de items.
type ItemRepository interface {
	// Create persiste el item y su StockLevel en cero en la misma operación.
	Create(ctx context.Context, item *entity.Item) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	// Delete devuelve domain.ErrConflict si el item tiene movimientos.
	Delete(ctx context.Context, id string) error
	// List ordenado por nombre.
	List(ctx context.Context) ([]*entity.Item, error)
}
