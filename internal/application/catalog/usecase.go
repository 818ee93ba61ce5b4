// Package catalog casos de uso del catálogo de items. La cantidad en estoque no
// se edita aquí: solo cambia vía entradas y salidas.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// UseCase CRUD de items.
type UseCase struct {
	repo           repository.ItemRepository
	defaultMinimum int64
	now            func() time.Time
}

// NewUseCase construye el caso de uso. defaultMinimum < 0 usa entity.DefaultMinimumQuantity.
func NewUseCase(repo repository.ItemRepository, defaultMinimum int64) *UseCase {
	if defaultMinimum < 0 {
		defaultMinimum = entity.DefaultMinimumQuantity
	}
	return &UseCase{repo: repo, defaultMinimum: defaultMinimum, now: time.Now}
}

// Create crea el item con estoque inicial cero.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	minimum := uc.defaultMinimum
	if in.MinimumQuantity != nil {
		minimum = *in.MinimumQuantity
	}
	now := uc.now()
	item := &entity.Item{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(in.Name),
		Category:        strings.TrimSpace(in.Category),
		UnitOfMeasure:   strings.TrimSpace(in.UnitOfMeasure),
		Description:     strings.TrimSpace(in.Description),
		MinimumQuantity: minimum,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := validate(item); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, persistence("crear item", err)
	}
	return dto.ToItemResponse(item), nil
}

// GetByID devuelve NotFoundError si el item no existe.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToItemResponse(item), nil
}

// Update modifica solo los campos informados.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		item.Category = strings.TrimSpace(*in.Category)
	}
	if in.UnitOfMeasure != nil {
		item.UnitOfMeasure = strings.TrimSpace(*in.UnitOfMeasure)
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.MinimumQuantity != nil {
		item.MinimumQuantity = *in.MinimumQuantity
	}
	if err := validate(item); err != nil {
		return nil, err
	}
	item.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, persistence("actualizar item", err)
	}
	return dto.ToItemResponse(item), nil
}

// List items ordenados por nombre. query vacío devuelve todos; si no, filtra
// por nombre, categoría o unidad sin distinguir mayúsculas.
func (uc *UseCase) List(ctx context.Context, query string) (*dto.ItemListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, persistence("listar items", err)
	}
	out := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		if !it.Matches(query) {
			continue
		}
		out = append(out, *dto.ToItemResponse(it))
	}
	return &dto.ItemListResponse{Items: out}, nil
}

// Delete elimina el item. Con movimientos registrados devuelve domain.ErrConflict.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return persistence("eliminar item", err)
	}
	return nil
}

func (uc *UseCase) get(ctx context.Context, id string) (*entity.Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewValidationError("id", "el item es obligatorio")
	}
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, persistence("buscar item", err)
	}
	if item == nil {
		return nil, &domain.NotFoundError{Resource: "item", ID: id}
	}
	return item, nil
}

func validate(it *entity.Item) error {
	switch {
	case it.Name == "":
		return domain.NewValidationError("name", "el nombre es obligatorio")
	case it.Category == "":
		return domain.NewValidationError("category", "la categoría es obligatoria")
	case it.UnitOfMeasure == "":
		return domain.NewValidationError("unit_of_measure", "la unidad es obligatoria")
	case it.MinimumQuantity < 0:
		return domain.NewValidationError("minimum_quantity", "el mínimo no puede ser negativo")
	}
	return nil
}

// persistence deja pasar errores de dominio conocidos.
func persistence(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrPersistence):
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}
