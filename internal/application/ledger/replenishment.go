package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
)

// idealStockFactor estoque ideal = mínimo * 1.5.
var idealStockFactor = decimal.NewFromFloat(1.5)

// ReplenishmentUseCase genera la lista de reposición de los items en alerta.
type ReplenishmentUseCase struct {
	items  ItemCatalog
	alerts *AlertEvaluator
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(items ItemCatalog, alerts *AlertEvaluator) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{items: items, alerts: alerts}
}

// GenerateReplenishmentList devuelve una sugerencia por item en o bajo el mínimo,
// priorizando la menor cobertura (actual / mínimo).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, err := uc.items.List(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar items", Err: err}
	}
	low, err := uc.alerts.LowStockItems(ctx, items, AlertOptions{})
	if err != nil {
		return nil, err
	}
	if len(low) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(low))
	for _, l := range low {
		minimum := decimal.NewFromInt(l.Item.MinimumQuantity)
		current := decimal.NewFromInt(l.Quantity)

		ideal := minimum.Mul(idealStockFactor).Ceil()
		suggested := ideal.Sub(current)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		coverage := decimal.Zero
		if minimum.IsPositive() {
			coverage = current.Div(minimum).Round(2)
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ItemID:            l.Item.ID,
			ItemName:          l.Item.Name,
			Category:          l.Item.Category,
			UnitOfMeasure:     l.Item.UnitOfMeasure,
			CurrentQuantity:   l.Quantity,
			MinimumQuantity:   l.Item.MinimumQuantity,
			IdealQuantity:     ideal.IntPart(),
			SuggestedQuantity: suggested.IntPart(),
			Coverage:          coverage,
		})
	}

	// Menor cobertura primero; luego mayor cantidad sugerida; luego nombre.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.Coverage.Equal(b.Coverage) {
			return a.Coverage.LessThan(b.Coverage)
		}
		if a.SuggestedQuantity != b.SuggestedQuantity {
			return a.SuggestedQuantity > b.SuggestedQuantity
		}
		return a.ItemName < b.ItemName
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
