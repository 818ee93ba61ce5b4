package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/application/catalog"
	"github.com/jhoicas/estoque-api/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog       *catalog.UseCase
	Items         ledger.ItemCatalog
	Engine        *ledger.Engine
	Projection    *ledger.Projection
	Alerts        *ledger.AlertEvaluator
	History       *ledger.HistoryView
	Dashboard     *ledger.Dashboard
	Replenishment *ledger.ReplenishmentUseCase
	Verifier      *ledger.Verifier
	HistoryPDF    HistoryPDFGenerator
	Location      *time.Location   // zona del ledger; nil = UTC
	Clock         func() time.Time // nil = time.Now
	JWTSecret     string
	Logger        zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Todas las rutas de /api requieren Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(auth.RoleAdmin)

	itemHandler := NewItemHandler(deps.Catalog, deps.Logger)
	items := api.Group("/items")
	items.Get("/", itemHandler.List)
	items.Post("/", itemHandler.Create)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", adminOnly, itemHandler.Delete)

	movementHandler := NewMovementHandler(deps.Engine, deps.History, deps.Logger)
	api.Post("/entries", movementHandler.RecordEntry)
	api.Get("/entries", movementHandler.ListEntries)
	api.Post("/exits", movementHandler.RecordExit)
	api.Get("/exits", movementHandler.ListExits)

	stockHandler := NewStockHandler(deps.Items, deps.Projection, deps.Alerts, deps.Replenishment, deps.Verifier, deps.Logger)
	stock := api.Group("/stock")
	stock.Get("/", stockHandler.List)
	stock.Get("/verify", adminOnly, stockHandler.Verify)
	stock.Get("/:id", stockHandler.Get)
	api.Get("/alerts", stockHandler.Alerts)
	api.Get("/replenishment", stockHandler.Replenishment)

	historyHandler := NewHistoryHandler(deps.History, deps.HistoryPDF, deps.Location, deps.Clock, deps.Logger)
	api.Get("/history", historyHandler.List)
	api.Get("/history/report.pdf", historyHandler.Report)

	dashboardHandler := NewDashboardHandler(deps.Dashboard, deps.Logger)
	api.Get("/dashboard/summary", dashboardHandler.GetSummary)
}
