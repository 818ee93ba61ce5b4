// Package bootstrap arma los casos de uso del ledger sobre un almacenamiento abierto.
// Lo comparten la API y la CLI.
package bootstrap

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-api/internal/application/catalog"
	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/infrastructure/storage"
	"github.com/jhoicas/estoque-api/pkg/config"
)

// Services casos de uso listos para usar.
type Services struct {
	Location      *time.Location
	Catalog       *catalog.UseCase
	Engine        *ledger.Engine
	Projection    *ledger.Projection
	Alerts        *ledger.AlertEvaluator
	History       *ledger.HistoryView
	Dashboard     *ledger.Dashboard
	Replenishment *ledger.ReplenishmentUseCase
	Verifier      *ledger.Verifier
}

// Build construye los servicios. Falla solo si la zona configurada no existe.
func Build(b *storage.Backend, cfg config.LedgerConfig, log zerolog.Logger) (*Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	projection := ledger.NewProjection(b.Stock, b.Items)
	alerts := ledger.NewAlertEvaluator(projection)
	history := ledger.NewHistoryView(b.Entries, b.Exits, b.Items, b.Profiles)

	return &Services{
		Location: loc,
		Catalog:  catalog.NewUseCase(b.Items, cfg.DefaultMinimum),
		Engine: ledger.NewEngine(b.Tx, b.Items, ledger.Options{
			Location:   loc,
			MaxRetries: cfg.MaxRetries,
			Logger:     log,
		}),
		Projection:    projection,
		Alerts:        alerts,
		History:       history,
		Dashboard:     ledger.NewDashboard(b.Items, alerts, history, loc, cfg.AlertsTopN),
		Replenishment: ledger.NewReplenishmentUseCase(b.Items, alerts),
		Verifier:      ledger.NewVerifier(b.Tx, b.Items),
	}, nil
}
