package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain"
)

// StockHandler lecturas de la proyección: niveles, alertas, reposición y verificación.
type StockHandler struct {
	items         ledger.ItemCatalog
	projection    *ledger.Projection
	alerts        *ledger.AlertEvaluator
	replenishment *ledger.ReplenishmentUseCase
	verifier      *ledger.Verifier
	log           zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(
	items ledger.ItemCatalog,
	projection *ledger.Projection,
	alerts *ledger.AlertEvaluator,
	replenishment *ledger.ReplenishmentUseCase,
	verifier *ledger.Verifier,
	log zerolog.Logger,
) *StockHandler {
	return &StockHandler{
		items:         items,
		projection:    projection,
		alerts:        alerts,
		replenishment: replenishment,
		verifier:      verifier,
		log:           log,
	}
}

// List godoc
// @Summary      Estoque actual de todos los items
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockLevelDTO
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	rows, err := h.projection.Catalog(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.StockLevelDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StockLevelDTO{
			ItemID:          r.Item.ID,
			ItemName:        r.Item.Name,
			Category:        r.Item.Category,
			UnitOfMeasure:   r.Item.UnitOfMeasure,
			CurrentQuantity: r.Level.CurrentQuantity,
			MinimumQuantity: r.Item.MinimumQuantity,
			LowStock:        r.LowStock,
			UpdatedAt:       r.Level.UpdatedAt,
		})
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Estoque actual de un item
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del item"
// @Success      200  {object}  dto.StockLevelDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{id} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")
	item, err := h.items.GetByID(ctx, id)
	if err != nil {
		return writeError(c, h.log, &domain.PersistenceError{Op: "buscar item", Err: err})
	}
	if item == nil {
		return writeError(c, h.log, &domain.NotFoundError{Resource: "item", ID: id})
	}
	qty, err := h.projection.CurrentQuantity(ctx, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockLevelDTO{
		ItemID:          item.ID,
		ItemName:        item.Name,
		Category:        item.Category,
		UnitOfMeasure:   item.UnitOfMeasure,
		CurrentQuantity: qty,
		MinimumQuantity: item.MinimumQuantity,
		LowStock:        item.IsLowStock(qty),
	})
}

// Alerts godoc
// @Summary      Items con estoque bajo
// @Description  Items con cantidad actual menor o igual al mínimo, menor cantidad primero.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de items (0 = todos)"
// @Success      200  {object}  dto.AlertListResponse
// @Router       /api/alerts [get]
func (h *StockHandler) Alerts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	items, err := h.items.List(ctx)
	if err != nil {
		return writeError(c, h.log, &domain.PersistenceError{Op: "listar items", Err: err})
	}
	all, err := h.alerts.LowStockItems(ctx, items, ledger.AlertOptions{SortByQuantity: true})
	if err != nil {
		return writeError(c, h.log, err)
	}
	shown := all
	if limit := c.QueryInt("limit", 0); limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	return c.JSON(dto.AlertListResponse{Count: len(all), Items: ledger.ToLowStockDTOs(shown)})
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Sugerencia por item en alerta: ideal = mínimo × 1.5, ordenada por cobertura.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/replenishment [get]
func (h *StockHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// Verify godoc
// @Summary      Verificar consistencia del ledger
// @Description  Recalcula entradas menos salidas por item y lo compara con la proyección.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  ledger.VerificationReport
// @Router       /api/stock/verify [get]
func (h *StockHandler) Verify(c *fiber.Ctx) error {
	report, err := h.verifier.Verify(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !report.OK {
		h.log.Warn().Int("discrepancies", len(report.Discrepancies)).Msg("ledger inconsistente")
	}
	return c.JSON(report)
}
