package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/infrastructure/ledgertest"
	"github.com/jhoicas/estoque-api/internal/infrastructure/storage"
	"github.com/jhoicas/estoque-api/pkg/config"
)

func TestOpen_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{Storage: config.StorageConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "estoque.db"),
	}}

	b, err := storage.Open(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLite, b.Driver)

	require.NoError(t, b.Items.Create(ctx, ledgertest.NewItem("rice", "Arroz", 5)))
	eng := ledger.NewEngine(b.Tx, b.Items, ledger.Options{Logger: zerolog.Nop()})
	_, err = eng.RecordEntry(ctx, ledger.EntryInput{ItemID: "rice", Quantity: 4, ActorID: "u1"})
	require.NoError(t, err)
	require.NoError(t, b.Close())

	// Reabrir conserva los datos.
	b, err = storage.Open(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()
	level, err := b.Stock.Get(ctx, "rice")
	require.NoError(t, err)
	assert.Equal(t, int64(4), level.CurrentQuantity)
}

func TestOpen_Memory(t *testing.T) {
	b, err := storage.Open(context.Background(), config.Config{Storage: config.StorageConfig{Driver: config.DriverMemory}}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, b.Driver)
	assert.NoError(t, b.Close())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), config.Config{Storage: config.StorageConfig{Driver: "mongo"}}, zerolog.Nop())
	assert.Error(t, err)

	var nilBackend *storage.Backend
	assert.NoError(t, nilBackend.Close())
}
