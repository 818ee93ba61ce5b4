package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// ProfileRepository directorio de usuarios (solo lectura).
type ProfileRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	List(ctx context.Context) ([]*entity.Profile, error)
}
