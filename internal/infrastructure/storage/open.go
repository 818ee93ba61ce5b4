// Package storage elige el almacenamiento del ledger según la configuración.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-api/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/estoque-api/pkg/config"
)

// Backend repositorios y transacciones de un almacenamiento abierto.
type Backend struct {
	Driver   string
	Items    repository.ItemRepository
	Entries  repository.EntryRepository
	Exits    repository.ExitRepository
	Stock    repository.StockRepository
	Profiles repository.ProfileRepository
	Tx       ledger.TxRunner

	close func() error
}

// Close libera conexiones. Seguro de llamar con Backend nil.
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// Open abre el driver configurado y aplica el esquema.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.DB, log)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg.Storage.SQLitePath, log)
	case config.DriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return OpenMemory(), nil
	}
	return nil, fmt.Errorf("storage: driver %q no soportado", cfg.Storage.Driver)
}

// OpenMemory backend en memoria, vacío.
func OpenMemory() *Backend {
	s := memory.NewStore()
	return &Backend{
		Driver:   config.DriverMemory,
		Items:    s.Items(),
		Entries:  s.Entries(),
		Exits:    s.Exits(),
		Stock:    s.Stock(),
		Profiles: s.Profiles(),
		Tx:       s,
	}
}

func openPostgres(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*Backend, error) {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: postgres: %w", err)
	}
	log.Info().Str("driver", config.DriverPostgres).Msg("almacenamiento listo")
	return &Backend{
		Driver:   config.DriverPostgres,
		Items:    postgres.NewItemRepository(pool),
		Entries:  postgres.NewEntryRepository(pool),
		Exits:    postgres.NewExitRepository(pool),
		Stock:    postgres.NewStockRepository(pool),
		Profiles: postgres.NewProfileRepository(pool),
		Tx:       postgres.NewTxRunner(pool),
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func openSQLite(ctx context.Context, path string, log zerolog.Logger) (*Backend, error) {
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("storage: sqlite: %w", err)
	}
	s := sqlite.NewStore(db)
	log.Info().Str("driver", config.DriverSQLite).Str("path", path).Msg("almacenamiento listo")
	return &Backend{
		Driver:   config.DriverSQLite,
		Items:    s.Items(),
		Entries:  s.Entries(),
		Exits:    s.Exits(),
		Stock:    s.Stock(),
		Profiles: s.Profiles(),
		Tx:       s,
		close:    s.Close,
	}, nil
}
