package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/pkg/calendar"
)

// MovementQuery filtros opcionales que el almacenamiento puede aplicar al leer el log.
// Campos vacíos no filtran. Limit <= 0 significa sin límite.
type MovementQuery struct {
	ItemID string
	From   calendar.Date
	To     calendar.Date
	Limit  int
}

// EntryRepository log append-only de entradas.
type EntryRepository interface {
	// Append asigna ID (si viene vacío), Seq y CreatedAt.
	Append(ctx context.Context, e *entity.Entry) error
	// List ordenado por fecha desc y Seq desc.
	List(ctx context.Context, q MovementQuery) ([]*entity.Entry, error)
	// SumByItem total de cantidades por item.
	SumByItem(ctx context.Context) (map[string]int64, error)
}

// ExitRepository log append-only de salidas.
type ExitRepository interface {
	Append(ctx context.Context, e *entity.Exit) error
	List(ctx context.Context, q MovementQuery) ([]*entity.Exit, error)
	SumByItem(ctx context.Context) (map[string]int64, error)
}
