package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/pkg/calendar"
)

// MovementHandler registra y lista entradas y salidas (protegido).
type MovementHandler struct {
	engine  *ledger.Engine
	history *ledger.HistoryView
	log     zerolog.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(engine *ledger.Engine, history *ledger.HistoryView, log zerolog.Logger) *MovementHandler {
	return &MovementHandler{engine: engine, history: history, log: log}
}

// RecordEntry godoc
// @Summary      Registrar entrada
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordEntryRequest  true  "item_id, quantity, occurred_on (vacío = hoy), note"
// @Success      201   {object}  dto.MovementDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/entries [post]
func (h *MovementHandler) RecordEntry(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c.UserContext())
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario no identificado"})
	}
	var in dto.RecordEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	on, err := parseDate("occurred_on", in.OccurredOn)
	if err != nil {
		return writeError(c, h.log, err)
	}
	entry, err := h.engine.RecordEntry(c.UserContext(), ledger.EntryInput{
		ItemID:     in.ItemID,
		Quantity:   in.Quantity,
		OccurredOn: on,
		Note:       in.Note,
		ActorID:    actor.ID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementDTO(entity.MovementFromEntry(entry)))
}

// RecordExit godoc
// @Summary      Registrar salida
// @Description  Rechazada con 409 INSUFFICIENT_STOCK si la cantidad supera el estoque actual.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordExitRequest  true  "item_id, quantity, destination, beneficiary, campaign, occurred_on, note"
// @Success      201   {object}  dto.MovementDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/exits [post]
func (h *MovementHandler) RecordExit(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c.UserContext())
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario no identificado"})
	}
	var in dto.RecordExitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	on, err := parseDate("occurred_on", in.OccurredOn)
	if err != nil {
		return writeError(c, h.log, err)
	}
	exit, err := h.engine.RecordExit(c.UserContext(), ledger.ExitInput{
		ItemID:      in.ItemID,
		Quantity:    in.Quantity,
		OccurredOn:  on,
		Destination: in.Destination,
		Beneficiary: in.Beneficiary,
		Campaign:    in.Campaign,
		Note:        in.Note,
		ActorID:     actor.ID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementDTO(entity.MovementFromExit(exit)))
}

// ListEntries godoc
// @Summary      Listar entradas
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        item_id    query  string  false  "Filtrar por item"
// @Param        date_from  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        date_to    query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit      query  int     false  "Límite de la lista (los totales no se recortan)"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/entries [get]
func (h *MovementHandler) ListEntries(c *fiber.Ctx) error {
	return h.list(c, entity.MovementKindEntry)
}

// ListExits godoc
// @Summary      Listar salidas
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        item_id    query  string  false  "Filtrar por item"
// @Param        date_from  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        date_to    query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit      query  int     false  "Límite de la lista"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/exits [get]
func (h *MovementHandler) ListExits(c *fiber.Ctx) error {
	return h.list(c, entity.MovementKindExit)
}

func (h *MovementHandler) list(c *fiber.Ctx, kind entity.MovementKind) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	f.Kind = kind
	page, err := h.history.ListMovements(c.UserContext(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toListResponse(page))
}

// filterFromQuery lee kind, item_id, item_name, date_from, date_to y limit.
func filterFromQuery(c *fiber.Ctx) (ledger.MovementFilter, error) {
	kind, err := ledger.ParseMovementKind(c.Query("kind"))
	if err != nil {
		return ledger.MovementFilter{}, err
	}
	from, err := parseDate("date_from", c.Query("date_from"))
	if err != nil {
		return ledger.MovementFilter{}, err
	}
	to, err := parseDate("date_to", c.Query("date_to"))
	if err != nil {
		return ledger.MovementFilter{}, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return ledger.MovementFilter{}, domain.NewValidationError("date_to", "date_to anterior a date_from")
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		limit = 0
	}
	return ledger.MovementFilter{
		Kind:     kind,
		ItemID:   c.Query("item_id"),
		DateFrom: from,
		DateTo:   to,
		ItemName: c.Query("item_name"),
		Limit:    limit,
	}, nil
}

func parseDate(field, s string) (calendar.Date, error) {
	d, err := calendar.ParseOptional(s)
	if err != nil {
		return calendar.Date{}, domain.NewValidationError(field, "fecha inválida, formato YYYY-MM-DD")
	}
	return d, nil
}

func toListResponse(page *ledger.MovementPage) dto.MovementListResponse {
	return dto.MovementListResponse{
		Movements: dto.ToMovementDTOs(page.Movements),
		Totals: dto.MovementTotalsDTO{
			EntryQty: page.Totals.EntryQty,
			ExitQty:  page.Totals.ExitQty,
			Count:    page.Totals.Count,
		},
	}
}
