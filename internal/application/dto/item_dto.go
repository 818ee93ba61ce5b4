package dto

import (
	"time"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// CreateItemRequest entrada para crear un item del catálogo.
// MinimumQuantity nil usa el mínimo por defecto (5).
type CreateItemRequest struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	UnitOfMeasure   string `json:"unit_of_measure"`
	Description     string `json:"description"`
	MinimumQuantity *int64 `json:"minimum_quantity"`
}

// UpdateItemRequest entrada para actualizar un item; campos nil no se modifican.
type UpdateItemRequest struct {
	Name            *string `json:"name"`
	Category        *string `json:"category"`
	UnitOfMeasure   *string `json:"unit_of_measure"`
	Description     *string `json:"description"`
	MinimumQuantity *int64  `json:"minimum_quantity"`
}

// ItemResponse salida de un item.
type ItemResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	UnitOfMeasure   string    `json:"unit_of_measure"`
	Description     string    `json:"description"`
	MinimumQuantity int64     `json:"minimum_quantity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ItemListResponse lista de items ordenada por nombre.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
}

// ToItemResponse convierte la entidad.
func ToItemResponse(i *entity.Item) *ItemResponse {
	if i == nil {
		return nil
	}
	return &ItemResponse{
		ID:              i.ID,
		Name:            i.Name,
		Category:        i.Category,
		UnitOfMeasure:   i.UnitOfMeasure,
		Description:     i.Description,
		MinimumQuantity: i.MinimumQuantity,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}
