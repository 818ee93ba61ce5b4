package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-api/pkg/calendar"
)

const actor = "00000000-0000-0000-0000-000000000001"

// fixedNow 2024-01-10 10:00 en São Paulo.
var fixedNow = time.Date(2024, 1, 10, 13, 0, 0, 0, time.UTC)

type fixture struct {
	store      *memory.Store
	engine     *ledger.Engine
	projection *ledger.Projection
	alerts     *ledger.AlertEvaluator
	history    *ledger.HistoryView
	loc        *time.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	s := memory.NewStore()
	proj := ledger.NewProjection(s.Stock(), s.Items())
	return &fixture{
		store: s,
		engine: ledger.NewEngine(s, s.Items(), ledger.Options{
			Location: loc,
			Clock:    func() time.Time { return fixedNow },
			Logger:   zerolog.Nop(),
		}),
		projection: proj,
		alerts:     ledger.NewAlertEvaluator(proj),
		history:    ledger.NewHistoryView(s.Entries(), s.Exits(), s.Items(), s.Profiles()),
		loc:        loc,
	}
}

func (f *fixture) item(t *testing.T, id, name string, min int64) *entity.Item {
	t.Helper()
	it := &entity.Item{
		ID:              id,
		Name:            name,
		Category:        "Alimentos",
		UnitOfMeasure:   "kg",
		MinimumQuantity: min,
		CreatedAt:       fixedNow,
		UpdatedAt:       fixedNow,
	}
	require.NoError(t, f.store.Items().Create(context.Background(), it))
	return it
}

func (f *fixture) in(t *testing.T, itemID string, qty int64, on string) *entity.Entry {
	t.Helper()
	e, err := f.engine.RecordEntry(context.Background(), ledger.EntryInput{
		ItemID: itemID, Quantity: qty, OccurredOn: date(on), ActorID: actor,
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) out(t *testing.T, itemID string, qty int64, on string) *entity.Exit {
	t.Helper()
	x, err := f.engine.RecordExit(context.Background(), ledger.ExitInput{
		ItemID: itemID, Quantity: qty, OccurredOn: date(on), Destination: "Cozinha", ActorID: actor,
	})
	require.NoError(t, err)
	return x
}

func (f *fixture) qty(t *testing.T, itemID string) int64 {
	t.Helper()
	q, err := f.projection.CurrentQuantity(context.Background(), itemID)
	require.NoError(t, err)
	return q
}

// date "" = fecha cero (el motor usa hoy).
func date(s string) calendar.Date {
	if s == "" {
		return calendar.Date{}
	}
	return calendar.MustParse(s)
}
