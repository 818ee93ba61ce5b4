package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/infrastructure/pdf"
)

// HistoryPDFGenerator genera el informe PDF del historial.
type HistoryPDFGenerator interface {
	GenerateHistoryPDF(ctx context.Context, r pdf.HistoryReport) ([]byte, error)
}

// HistoryHandler historial combinado de movimientos (protegido).
type HistoryHandler struct {
	history *ledger.HistoryView
	pdf     HistoryPDFGenerator
	loc     *time.Location
	now     func() time.Time
	log     zerolog.Logger
}

// NewHistoryHandler construye el handler. pdf nil deshabilita el informe.
// loc es la zona del ledger (nil = UTC); now nil usa time.Now.
func NewHistoryHandler(history *ledger.HistoryView, gen HistoryPDFGenerator, loc *time.Location, now func() time.Time, log zerolog.Logger) *HistoryHandler {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &HistoryHandler{history: history, pdf: gen, loc: loc, now: now, log: log}
}

// List godoc
// @Summary      Historial de movimientos
// @Description  Entradas y salidas combinadas, fecha descendente, con totales del filtro.
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        kind       query  string  false  "entrada | salida | todas"
// @Param        item_id    query  string  false  "Filtrar por item"
// @Param        item_name  query  string  false  "Substring del nombre, sin distinguir mayúsculas"
// @Param        date_from  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        date_to    query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit      query  int     false  "Límite de la lista (los totales no se recortan)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/history [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	page, err := h.history.ListMovements(c.UserContext(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toListResponse(page))
}

// Report godoc
// @Summary      Historial en PDF
// @Tags         history
// @Security     Bearer
// @Produce      application/pdf
// @Param        kind       query  string  false  "entrada | salida | todas"
// @Param        item_name  query  string  false  "Substring del nombre"
// @Param        date_from  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        date_to    query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/history/report.pdf [get]
func (h *HistoryHandler) Report(c *fiber.Ctx) error {
	if h.pdf == nil {
		return c.SendStatus(fiber.StatusNotImplemented)
	}
	f, err := filterFromQuery(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	limit := f.Limit
	f.Limit = 0
	page, err := h.history.ListMovements(c.UserContext(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if limit > 0 && len(page.Movements) > limit {
		page.Movements = page.Movements[:limit]
	}
	// Fecha de emisión en la zona del ledger, igual que "hoy".
	now := h.now().In(h.loc)
	out, err := h.pdf.GenerateHistoryPDF(c.UserContext(), pdf.HistoryReport{GeneratedAt: now, Filter: f, Page: page})
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="historial-%s.pdf"`, now.Format("20060102")))
	return c.Send(out)
}
