package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

func ids(ms []entity.Movement) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

func TestHistory_OrderDateDescThenInsertionDesc(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz", 1)
	e1 := f.in(t, "rice", 10, "2024-01-05")
	x1 := f.out(t, "rice", 1, "2024-01-05")
	e2 := f.in(t, "rice", 3, "2024-01-07")
	x2 := f.out(t, "rice", 2, "2024-01-02") // retroactiva

	page, err := f.history.ListMovements(context.Background(), ledger.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{e2.ID, x1.ID, e1.ID, x2.ID}, ids(page.Movements))

	// idempotente
	again, err := f.history.ListMovements(context.Background(), ledger.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, ids(page.Movements), ids(again.Movements))
}

func TestHistory_DateRangeIsInclusive(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz", 1)
	for d := 1; d <= 10; d++ {
		f.in(t, "rice", int64(d), date("2024-01-01").AddDays(d-1).String())
	}

	page, err := f.history.ListMovements(context.Background(), ledger.MovementFilter{
		DateFrom: date("2024-01-05"),
	})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Totals.Count)
	assert.Equal(t, "2024-01-10", page.Movements[0].OccurredOn.String())
	assert.Equal(t, "2024-01-05", page.Movements[5].OccurredOn.String())

	page, err = f.history.ListMovements(context.Background(), ledger.MovementFilter{
		DateFrom: date("2024-01-03"), DateTo: date("2024-01-04"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3+4), page.Totals.EntryQty)
}

func TestHistory_FiltersAndTotals(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz Integral", 1)
	f.item(t, "beans", "Feijão", 1)
	f.in(t, "rice", 50, "2024-01-02")
	f.in(t, "beans", 20, "2024-01-02")
	f.out(t, "rice", 5, "2024-01-03")
	f.out(t, "beans", 7, "2024-01-03")
	ctx := context.Background()

	page, err := f.history.ListMovements(ctx, ledger.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, ledger.Totals{EntryQty: 70, ExitQty: 12, Count: 4}, page.Totals)

	page, err = f.history.ListMovements(ctx, ledger.MovementFilter{Kind: entity.MovementKindExit})
	require.NoError(t, err)
	assert.Equal(t, ledger.Totals{ExitQty: 12, Count: 2}, page.Totals)
	for _, m := range page.Movements {
		assert.Equal(t, entity.MovementKindExit, m.Kind)
		assert.Contains(t, m.Details, "Destino: Cozinha")
	}

	page, err = f.history.ListMovements(ctx, ledger.MovementFilter{ItemName: "INTEGRAL"})
	require.NoError(t, err)
	assert.Equal(t, ledger.Totals{EntryQty: 50, ExitQty: 5, Count: 2}, page.Totals)

	page, err = f.history.ListMovements(ctx, ledger.MovementFilter{ItemName: "feijão"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Totals.Count)

	page, err = f.history.ListMovements(ctx, ledger.MovementFilter{ItemID: "beans", Kind: entity.MovementKindEntry})
	require.NoError(t, err)
	assert.Equal(t, ledger.Totals{EntryQty: 20, Count: 1}, page.Totals)
}

func TestHistory_LimitTrimsListNotTotals(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz", 1)
	for i := 0; i < 8; i++ {
		f.in(t, "rice", 1, "2024-01-02")
	}
	page, err := f.history.ListMovements(context.Background(), ledger.MovementFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Movements, 3)
	assert.Equal(t, 8, page.Totals.Count)
	assert.Equal(t, int64(8), page.Totals.EntryQty)
}

func TestHistory_ResolvesNamesWithFallbacks(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz", 1)
	f.store.PutProfile(&entity.Profile{ID: actor, Name: "Maria", Email: "maria@example.com"})
	f.in(t, "rice", 5, "2024-01-02")
	ctx := context.Background()

	page, err := f.history.ListMovements(ctx, ledger.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, page.Movements, 1)
	assert.Equal(t, "Arroz", page.Movements[0].ItemName)
	assert.Equal(t, "Maria", page.Movements[0].ActorName)

	// Sin directorio de perfiles todos los usuarios quedan sin nombre.
	noProfiles := ledger.NewHistoryView(f.store.Entries(), f.store.Exits(), f.store.Items(), nil)
	page, err = noProfiles.ListMovements(ctx, ledger.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, ledger.UnknownActorName, page.Movements[0].ActorName)

	// Catálogo que no conoce el item.
	blind := ledger.NewHistoryView(f.store.Entries(), f.store.Exits(), emptyCatalog{}, nil)
	page, err = blind.ListMovements(ctx, ledger.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, ledger.UnknownItemName, page.Movements[0].ItemName)
}

type emptyCatalog struct{}

func (emptyCatalog) GetByID(context.Context, string) (*entity.Item, error) { return nil, nil }
func (emptyCatalog) List(context.Context) ([]*entity.Item, error)         { return nil, nil }

func TestParseMovementKind(t *testing.T) {
	for in, want := range map[string]entity.MovementKind{
		"":        "",
		"todas":   "",
		"ALL":     "",
		"entrada": entity.MovementKindEntry,
		"entry":   entity.MovementKindEntry,
		" Salida": entity.MovementKindExit,
		"saida":   entity.MovementKindExit,
	} {
		got, err := ledger.ParseMovementKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ledger.ParseMovementKind("transferencia")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComputeTotals_Empty(t *testing.T) {
	assert.Equal(t, ledger.Totals{}, ledger.ComputeTotals(nil))
}
