package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/infrastructure/ledgertest"
	"github.com/jhoicas/estoque-api/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-api/pkg/config"
)

// TestStoreContract requiere TEST_DATABASE_URL apuntando a una base descartable.
func TestStoreContract(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))

	ledgertest.Run(t, func(t *testing.T) ledgertest.Backend {
		reset(t, pool)
		profiles := postgres.NewProfileRepository(pool)
		return ledgertest.Backend{
			Items:      postgres.NewItemRepository(pool),
			Entries:    postgres.NewEntryRepository(pool),
			Exits:      postgres.NewExitRepository(pool),
			Stock:      postgres.NewStockRepository(pool),
			Profiles:   profiles,
			Tx:         postgres.NewTxRunner(pool),
			PutProfile: profiles.Upsert,
		}
	})
}

func reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE entries, exits, stock_levels, items, profiles RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}
