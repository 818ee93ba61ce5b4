package ledger

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// TxFunc recibe repositorios atados a una misma transacción.
type TxFunc func(
	entries repository.EntryRepository,
	exits repository.ExitRepository,
	stock repository.StockRepository,
) error

// TxRunner ejecuta una función dentro de una transacción del almacenamiento.
// Run confirma solo si fn devuelve nil; ante cualquier error no queda escritura parcial.
// View abre una lectura consistente (sin escrituras).
type TxRunner interface {
	Run(ctx context.Context, fn TxFunc) error
	View(ctx context.Context, fn TxFunc) error
}

// ItemCatalog lectura del catálogo. GetByID devuelve nil, nil si el item no existe.
type ItemCatalog interface {
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	List(ctx context.Context) ([]*entity.Item, error)
}

// StockReader lecturas de la proyección fuera de transacción.
type StockReader interface {
	Get(ctx context.Context, itemID string) (*entity.StockLevel, error)
	List(ctx context.Context) ([]*entity.StockLevel, error)
}

// EntryLog lectura del log de entradas.
type EntryLog interface {
	List(ctx context.Context, q repository.MovementQuery) ([]*entity.Entry, error)
}

// ExitLog lectura del log de salidas.
type ExitLog interface {
	List(ctx context.Context, q repository.MovementQuery) ([]*entity.Exit, error)
}

// ProfileDirectory resuelve nombres de usuarios para el historial.
type ProfileDirectory interface {
	List(ctx context.Context) ([]*entity.Profile, error)
}
