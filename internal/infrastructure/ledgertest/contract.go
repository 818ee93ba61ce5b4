// Package ledgertest batería de pruebas común a todos los almacenamientos del ledger.
// Cada implementación la ejecuta desde su propio _test.go.
package ledgertest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/calendar"
)

// Backend repositorios de un almacenamiento recién creado y vacío.
type Backend struct {
	Items    repository.ItemRepository
	Entries  repository.EntryRepository
	Exits    repository.ExitRepository
	Stock    repository.StockRepository
	Profiles repository.ProfileRepository
	Tx       ledger.TxRunner
	// PutProfile opcional: carga un perfil para las pruebas de nombres.
	PutProfile func(ctx context.Context, p *entity.Profile) error
}

var errBoom = errors.New("boom")

// Run ejecuta la batería. newBackend se llama una vez por subtest.
func Run(t *testing.T, newBackend func(t *testing.T) Backend) {
	t.Run("item con nivel cero", func(t *testing.T) { testItemCreateLevel(t, newBackend(t)) })
	t.Run("catálogo ordenado y update", func(t *testing.T) { testItemListUpdate(t, newBackend(t)) })
	t.Run("borrado de item con movimientos", func(t *testing.T) { testItemDelete(t, newBackend(t)) })
	t.Run("commit de entrada", func(t *testing.T) { testCommit(t, newBackend(t)) })
	t.Run("rollback sin escrituras parciales", func(t *testing.T) { testRollback(t, newBackend(t)) })
	t.Run("decremento condicional", func(t *testing.T) { testConditionalDecrement(t, newBackend(t)) })
	t.Run("orden y filtros del log", func(t *testing.T) { testListOrderAndFilters(t, newBackend(t)) })
	t.Run("movimiento de item inexistente", func(t *testing.T) { testAppendUnknownItem(t, newBackend(t)) })
	t.Run("sumas por item", func(t *testing.T) { testSums(t, newBackend(t)) })
	t.Run("motor de punta a punta", func(t *testing.T) { testEngineEndToEnd(t, newBackend(t)) })
	t.Run("perfiles", func(t *testing.T) { testProfiles(t, newBackend(t)) })
}

// NewItem item de prueba con mínimo dado.
func NewItem(id, name string, min int64) *entity.Item {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &entity.Item{
		ID:              id,
		Name:            name,
		Category:        "Alimentos",
		UnitOfMeasure:   "kg",
		MinimumQuantity: min,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func mustCreate(t *testing.T, b Backend, items ...*entity.Item) {
	t.Helper()
	for _, it := range items {
		require.NoError(t, b.Items.Create(context.Background(), it))
	}
}

func entry(itemID string, qty int64, on string) *entity.Entry {
	return &entity.Entry{ItemID: itemID, Quantity: qty, OccurredOn: calendar.MustParse(on), ActorID: "u-1"}
}

func exit(itemID string, qty int64, on string) *entity.Exit {
	return &entity.Exit{ItemID: itemID, Quantity: qty, OccurredOn: calendar.MustParse(on), Destination: "Cozinha", ActorID: "u-1"}
}

func record(t *testing.T, b Backend, e *entity.Entry, x *entity.Exit) {
	t.Helper()
	ctx := context.Background()
	err := b.Tx.Run(ctx, func(entries repository.EntryRepository, exits repository.ExitRepository, stock repository.StockRepository) error {
		if e != nil {
			if err := entries.Append(ctx, e); err != nil {
				return err
			}
			_, err := stock.Increment(ctx, e.ItemID, e.Quantity, time.Now())
			return err
		}
		if err := exits.Append(ctx, x); err != nil {
			return err
		}
		_, err := stock.Decrement(ctx, x.ItemID, x.Quantity, time.Now())
		return err
	})
	require.NoError(t, err)
}

func quantity(t *testing.T, b Backend, itemID string) int64 {
	t.Helper()
	lvl, err := b.Stock.Get(context.Background(), itemID)
	require.NoError(t, err)
	return lvl.CurrentQuantity
}

func testItemCreateLevel(t *testing.T, b Backend) {
	ctx := context.Background()
	mustCreate(t, b, NewItem("i-1", "Arroz", 5))

	got, err := b.Items.GetByID(ctx, "i-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Arroz", got.Name)
	assert.Equal(t, int64(5), got.MinimumQuantity)

	levels, err := b.Stock.List(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 1, "el item nace con su nivel en cero")
	assert.Equal(t, int64(0), levels[0].CurrentQuantity)

	missing, err := b.Items.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	lvl, err := b.Stock.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Equal(t, int64(0), lvl.CurrentQuantity, "sin registro la cantidad es 0")

	assert.ErrorIs(t, b.Items.Create(ctx, NewItem("i-1", "Otro", 1)), domain.ErrDuplicate)
}

func testItemListUpdate(t *testing.T, b Backend) {
	ctx := context.Background()
	mustCreate(t, b, NewItem("i-2", "Feijão", 5), NewItem("i-1", "Arroz", 5), NewItem("i-3", "Óleo", 5))

	list, err := b.Items.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Arroz", list[0].Name)
	assert.Equal(t, "Feijão", list[1].Name)

	it := list[0]
	it.MinimumQuantity = 12
	it.Description = "tipo 1"
	it.UpdatedAt = it.UpdatedAt.Add(time.Hour)
	require.NoError(t, b.Items.Update(ctx, it))

	got, err := b.Items.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.MinimumQuantity)
	assert.Equal(t, "tipo 1", got.Description)
}

func testItemDelete(t *testing.T, b Backend) {
	ctx := context.Background()
	mustCreate(t, b, NewItem("i-1", "Arroz", 5), NewItem("i-2", "Feijão", 5))
	record(t, b, entry("i-1", 3, "2024-01-02"), nil)

	assert.ErrorIs(t, b.Items.Delete(ctx, "i-1"), domain.ErrConflict)
	still, err := b.Items.GetByID(ctx, "i-1")
	require.NoError(t, err)
	assert.NotNil(t, still)
	assert.Equal(t, int64(3), quantity(t, b, "i-1"))

	require.NoError(t, b.Items.Delete(ctx, "i-2"))
	gone, err := b.Items.GetByID(ctx, "i-2")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func testCommit(t *testing.T, b Backend) {
	ctx := context.Background()
	mustCreate(t, b, NewItem("i-1", "Arroz", 5))

	e := entry("i-1", 50, "2024-01-05")
	record(t, b, e, nil)
	assert.NotEmpty(t, e.ID, "Append asigna ID")
	assert.Positive(t, e.Seq, "Append asigna Seq")
	assert.Equal(t, int64(50), quantity(t, b, "i-1"))

	x := exit("i-1", 20, "2024-01-05")
	record(t, b, nil, x)
	assert.Greater(t, x.Seq, e.Seq, "Seq crece entre entradas y salidas")
	assert.Equal(t, int64(30), quantity(t, b, "i-1"))

	got, err := b.Exits.List(ctx, repository.MovementQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cozinha", got[0].Destination)
	assert.Equal(t, "2024-01-05", got[0].OccurredOn.String())
}

func testRollback(t *testing.T, b Backend) {
	ctx := context.Background()
	mustCreate(t, b, NewItem("i-1", "Arroz", 5))
	record(t, b, entry("i-1", 10, "2024-01-05"), nil)

	err := b.Tx.Run(ctx, func(entries repository.EntryRepository, _ repository.ExitRepository, stock repository.StockRepository) error {
		if err := entries.Append(ctx, entry("i-1", 7, "2024-01-06")); err != nil {
			return err
		}
		if _, err := stock.Increment(ctx, "i-1", 7, time.Now()); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	assert.Equal(t, int64(10), quantity(t, b, "i-1"))
	list, err := b.Entries.List(ctx, repository.MovementQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 1, "la entrada de la transacción fallida no queda")
}

func testConditionalDecrement(t *testing.T, b Backend) {
	ctx := context.Background()
	mustCreate(t, b, NewItem("i-1", "Arroz", 5))
	record(t, b, entry("i-1", 5, "2024-01-05"), nil)

	err := b.Tx.Run(ctx, func(_ repository.EntryRepository, _ repository.ExitRepository, stock repository.StockRepository) error {
		_, err := stock.Decrement(ctx, "i-1", 6, time.Now())
		return err
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(5), quantity(t, b, "i-1"))

	var left int64
	err = b.Tx.Run(ctx, func(_ repository.EntryRepository, _ repository.ExitRepository, stock repository.StockRepository) error {
		lvl, err := stock.GetForUpdate(ctx, "i-1")
		if err != nil {
			return err
		}
		assert.Equal(t, int64(5), lvl.CurrentQuantity)
		left, err = stock.Decrement(ctx, "i-1", 5, time.Now())
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), left, "se puede llegar exactamente a cero")
}

func testListOrderAndFilters(t *testing.T, b Backend) {
	ctx := context.Background()
	mustCreate(t, b, NewItem("i-1", "Arroz", 5), NewItem("i-2", "Feijão", 5))

	first := entry("i-1", 1, "2024-01-03")
	second := entry("i-2", 2, "2024-01-03")
	older := entry("i-1", 3, "2024-01-01")
	newer := entry("i-1", 4, "2024-01-09")
	for _, e := range []*entity.Entry{first, second, older, newer} {
		record(t, b, e, nil)
	}

	all, err := b.Entries.List(ctx, repository.MovementQuery{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []int64{4, 2, 1, 3}, quantities(all), "fecha desc y, en el mismo día, el último registrado primero")

	ranged, err := b.Entries.List(ctx, repository.MovementQuery{
		From: calendar.MustParse("2024-01-02"),
		To:   calendar.MustParse("2024-01-03"),
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, quantities(ranged))

	byItem, err := b.Entries.List(ctx, repository.MovementQuery{ItemID: "i-1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 1}, quantities(byItem))
}

func quantities(es []*entity.Entry) []int64 {
	out := make([]int64, 0, len(es))
	for _, e := range es {
		out = append(out, e.Quantity)
	}
	return out
}

func testAppendUnknownItem(t *testing.T, b Backend) {
	ctx := context.Background()
	err := b.Tx.Run(ctx, func(entries repository.EntryRepository, _ repository.ExitRepository, _ repository.StockRepository) error {
		return entries.Append(ctx, entry("ghost", 1, "2024-01-01"))
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testSums(t *testing.T, b Backend) {
	ctx := context.Background()
	mustCreate(t, b, NewItem("i-1", "Arroz", 5), NewItem("i-2", "Feijão", 5))
	record(t, b, entry("i-1", 10, "2024-01-01"), nil)
	record(t, b, entry("i-1", 5, "2024-01-02"), nil)
	record(t, b, entry("i-2", 7, "2024-01-02"), nil)
	record(t, b, nil, exit("i-1", 4, "2024-01-03"))

	err := b.Tx.View(ctx, func(entries repository.EntryRepository, exits repository.ExitRepository, _ repository.StockRepository) error {
		in, err := entries.SumByItem(ctx)
		require.NoError(t, err)
		out, err := exits.SumByItem(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"i-1": 15, "i-2": 7}, in)
		assert.Equal(t, map[string]int64{"i-1": 4}, out)
		return nil
	})
	require.NoError(t, err)
}

// testEngineEndToEnd escenario del arroz sobre el almacenamiento real.
func testEngineEndToEnd(t *testing.T, b Backend) {
	ctx := context.Background()
	mustCreate(t, b, NewItem("rice", "Arroz", 10))
	eng := ledger.NewEngine(b.Tx, b.Items, ledger.Options{Logger: zerolog.Nop()})
	proj := ledger.NewProjection(b.Stock, b.Items)

	_, err := eng.RecordEntry(ctx, ledger.EntryInput{ItemID: "rice", Quantity: 50, ActorID: "u-1"})
	require.NoError(t, err)
	_, err = eng.RecordExit(ctx, ledger.ExitInput{ItemID: "rice", Quantity: 20, Destination: "Cozinha", ActorID: "u-1"})
	require.NoError(t, err)

	_, err = eng.RecordExit(ctx, ledger.ExitInput{ItemID: "rice", Quantity: 40, Destination: "Cozinha", ActorID: "u-1"})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, int64(30), ise.Available)
	assert.Equal(t, int64(40), ise.Requested)

	qty, err := proj.CurrentQuantity(ctx, "rice")
	require.NoError(t, err)
	assert.Equal(t, int64(30), qty)

	report, err := ledger.NewVerifier(b.Tx, b.Items).Verify(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK, "la proyección coincide con el log: %+v", report.Discrepancies)
}

func testProfiles(t *testing.T, b Backend) {
	if b.PutProfile == nil || b.Profiles == nil {
		t.Skip("el almacenamiento no permite cargar perfiles")
	}
	ctx := context.Background()
	require.NoError(t, b.PutProfile(ctx, &entity.Profile{ID: "u-1", Name: "Maria", Email: "maria@example.org"}))

	p, err := b.Profiles.GetByID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Maria", p.Name)

	missing, err := b.Profiles.GetByID(ctx, "u-x")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := b.Profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
