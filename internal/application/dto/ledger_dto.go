package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// RecordEntryRequest body para POST /api/entries. occurred_on vacío = hoy.
type RecordEntryRequest struct {
	ItemID     string `json:"item_id"`
	Quantity   int64  `json:"quantity"`
	OccurredOn string `json:"occurred_on"`
	Note       string `json:"note"`
}

// RecordExitRequest body para POST /api/exits.
type RecordExitRequest struct {
	ItemID      string `json:"item_id"`
	Quantity    int64  `json:"quantity"`
	OccurredOn  string `json:"occurred_on"`
	Destination string `json:"destination"`
	Beneficiary string `json:"beneficiary"`
	Campaign    string `json:"campaign"`
	Note        string `json:"note"`
}

// MovementDTO movimiento tal como lo muestra el historial.
type MovementDTO struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"` // entrada | salida
	ItemID      string    `json:"item_id"`
	ItemName    string    `json:"item_name"`
	Quantity    int64     `json:"quantity"`
	OccurredOn  string    `json:"occurred_on"`
	ActorID     string    `json:"actor_id"`
	ActorName   string    `json:"actor_name"`
	Details     string    `json:"details"`
	Destination string    `json:"destination,omitempty"`
	Beneficiary string    `json:"beneficiary,omitempty"`
	Campaign    string    `json:"campaign,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MovementTotalsDTO totales del subconjunto filtrado.
type MovementTotalsDTO struct {
	EntryQty int64 `json:"entry_qty"`
	ExitQty  int64 `json:"exit_qty"`
	Count    int   `json:"count"`
}

// MovementListResponse respuesta de GET /api/history, /api/entries y /api/exits.
type MovementListResponse struct {
	Movements []MovementDTO     `json:"movements"`
	Totals    MovementTotalsDTO `json:"totals"`
}

// StockLevelDTO item con su cantidad actual (página de items).
type StockLevelDTO struct {
	ItemID          string    `json:"item_id"`
	ItemName        string    `json:"item_name"`
	Category        string    `json:"category"`
	UnitOfMeasure   string    `json:"unit_of_measure"`
	CurrentQuantity int64     `json:"current_quantity"`
	MinimumQuantity int64     `json:"minimum_quantity"`
	LowStock        bool      `json:"low_stock"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// LowStockItemDTO item en alerta de estoque bajo.
type LowStockItemDTO struct {
	ItemID          string `json:"item_id"`
	ItemName        string `json:"item_name"`
	Category        string `json:"category"`
	UnitOfMeasure   string `json:"unit_of_measure"`
	CurrentQuantity int64  `json:"current_quantity"`
	MinimumQuantity int64  `json:"minimum_quantity"`
}

// AlertListResponse respuesta de GET /api/alerts.
type AlertListResponse struct {
	Count int               `json:"count"`
	Items []LowStockItemDTO `json:"items"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un item en alerta.
type ReplenishmentSuggestionDTO struct {
	ItemID            string          `json:"item_id"`
	ItemName          string          `json:"item_name"`
	Category          string          `json:"category"`
	UnitOfMeasure     string          `json:"unit_of_measure"`
	CurrentQuantity   int64           `json:"current_quantity"`
	MinimumQuantity   int64           `json:"minimum_quantity"`
	IdealQuantity     int64           `json:"ideal_quantity"`     // ceil(mínimo * 1.5)
	SuggestedQuantity int64           `json:"suggested_quantity"` // ideal - actual
	Coverage          decimal.Decimal `json:"coverage"`           // actual / mínimo
	Priority          int             `json:"priority"`           // 1 = más urgente
}

// ToMovementDTO convierte un movimiento del historial.
func ToMovementDTO(m entity.Movement) MovementDTO {
	out := MovementDTO{
		ID:         m.ID,
		Kind:       string(m.Kind),
		ItemID:     m.ItemID,
		ItemName:   m.ItemName,
		Quantity:   m.Quantity,
		OccurredOn: m.OccurredOn.String(),
		ActorID:    m.ActorID,
		ActorName:  m.ActorName,
		Details:    m.Details,
		CreatedAt:  m.CreatedAt,
	}
	switch {
	case m.Exit != nil:
		out.Destination = m.Exit.Destination
		out.Beneficiary = m.Exit.Beneficiary
		out.Campaign = m.Exit.Campaign
		out.Note = m.Exit.Note
	case m.Entry != nil:
		out.Note = m.Entry.Note
	}
	return out
}

// ToMovementDTOs convierte una lista preservando el orden.
func ToMovementDTOs(ms []entity.Movement) []MovementDTO {
	out := make([]MovementDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, ToMovementDTO(m))
	}
	return out
}
