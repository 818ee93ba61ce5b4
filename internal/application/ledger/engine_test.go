package ledger_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
)

// Escenario del arroz: 0 → +50 → −20 = 30 → −40 rechazada, sigue en 30.
func TestEngine_RiceScenario(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz", 10)
	ctx := context.Background()

	assert.Equal(t, int64(0), f.qty(t, "rice"))
	f.in(t, "rice", 50, "2024-01-02")
	assert.Equal(t, int64(50), f.qty(t, "rice"))
	f.out(t, "rice", 20, "2024-01-03")
	assert.Equal(t, int64(30), f.qty(t, "rice"))

	_, err := f.engine.RecordExit(ctx, ledger.ExitInput{
		ItemID: "rice", Quantity: 40, Destination: "Cozinha", ActorID: actor,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, int64(30), ise.Available)
	assert.Equal(t, int64(40), ise.Requested)
	assert.Contains(t, ise.Error(), "Arroz", "el mensaje nombra el item")

	assert.Equal(t, int64(30), f.qty(t, "rice"))
	exits, err := f.store.Exits().List(ctx, repository.MovementQuery{})
	require.NoError(t, err)
	assert.Len(t, exits, 1, "la salida rechazada no se registra")
}

func TestEngine_Validation(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz", 10)
	f.in(t, "rice", 5, "2024-01-02")
	ctx := context.Background()

	cases := []struct {
		name  string
		field string
		run   func() error
	}{
		{"entrada cantidad cero", "quantity", func() error {
			_, err := f.engine.RecordEntry(ctx, ledger.EntryInput{ItemID: "rice", Quantity: 0, ActorID: actor})
			return err
		}},
		{"entrada cantidad negativa", "quantity", func() error {
			_, err := f.engine.RecordEntry(ctx, ledger.EntryInput{ItemID: "rice", Quantity: -3, ActorID: actor})
			return err
		}},
		{"entrada sin item", "item_id", func() error {
			_, err := f.engine.RecordEntry(ctx, ledger.EntryInput{ItemID: "  ", Quantity: 1, ActorID: actor})
			return err
		}},
		{"entrada sin usuario", "actor_id", func() error {
			_, err := f.engine.RecordEntry(ctx, ledger.EntryInput{ItemID: "rice", Quantity: 1})
			return err
		}},
		{"salida sin destino", "destination", func() error {
			_, err := f.engine.RecordExit(ctx, ledger.ExitInput{ItemID: "rice", Quantity: 1, Destination: "   ", ActorID: actor})
			return err
		}},
		{"salida cantidad cero", "quantity", func() error {
			_, err := f.engine.RecordExit(ctx, ledger.ExitInput{ItemID: "rice", Quantity: 0, Destination: "x", ActorID: actor})
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	assert.Equal(t, int64(5), f.qty(t, "rice"), "ningún rechazo modifica el estoque")
}

func TestEngine_UnknownItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordEntry(ctx, ledger.EntryInput{ItemID: "ghost", Quantity: 1, ActorID: actor})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.RecordExit(ctx, ledger.ExitInput{ItemID: "ghost", Quantity: 1, Destination: "x", ActorID: actor})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_DefaultsDateToTodayInLedgerZone(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz", 10)

	e := f.in(t, "rice", 5, "")
	assert.Equal(t, "2024-01-10", e.OccurredOn.String())

	// 01:00 UTC del día 11 todavía es día 10 en São Paulo.
	late := time.Date(2024, 1, 11, 1, 0, 0, 0, time.UTC)
	eng := ledger.NewEngine(f.store, f.store.Items(), ledger.Options{
		Location: f.loc, Clock: func() time.Time { return late }, Logger: zerolog.Nop(),
	})
	x, err := eng.RecordExit(context.Background(), ledger.ExitInput{ItemID: "rice", Quantity: 1, Destination: "x", ActorID: actor})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", x.OccurredOn.String())
}

func TestEngine_StoresExitDetailsVerbatim(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz", 10)
	f.in(t, "rice", 10, "2024-01-02")

	x, err := f.engine.RecordExit(context.Background(), ledger.ExitInput{
		ItemID: "rice", Quantity: 2, OccurredOn: date("2024-01-03"),
		Destination: " Escola ", Beneficiary: "Turma A", Campaign: "Natal", ActorID: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, "Escola", x.Destination)
	assert.Equal(t, actor, x.ActorID)
	assert.Equal(t, "Destino: Escola, Beneficiario: Turma A, Campaña: Natal", x.Details())
}

// failingStock falla en Increment después de que la entrada ya fue agregada.
type failingStock struct {
	repository.StockRepository
}

func (failingStock) Increment(context.Context, string, int64, time.Time) (int64, error) {
	return 0, errors.New("disco lleno")
}

type failingRunner struct{ inner ledger.TxRunner }

func (r failingRunner) Run(ctx context.Context, fn ledger.TxFunc) error {
	return r.inner.Run(ctx, func(en repository.EntryRepository, ex repository.ExitRepository, st repository.StockRepository) error {
		return fn(en, ex, failingStock{st})
	})
}

func (r failingRunner) View(ctx context.Context, fn ledger.TxFunc) error { return r.inner.View(ctx, fn) }

func TestEngine_AtomicOnPersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz", 10)
	eng := ledger.NewEngine(failingRunner{f.store}, f.store.Items(), ledger.Options{Logger: zerolog.Nop()})

	_, err := eng.RecordEntry(context.Background(), ledger.EntryInput{ItemID: "rice", Quantity: 5, ActorID: actor})
	require.ErrorIs(t, err, domain.ErrPersistence)

	entries, err := f.store.Entries().List(context.Background(), repository.MovementQuery{})
	require.NoError(t, err)
	assert.Empty(t, entries, "sin escritura parcial")
	assert.Equal(t, int64(0), f.qty(t, "rice"))
}

// conflictRunner devuelve conflicto las primeras n veces.
type conflictRunner struct {
	inner ledger.TxRunner
	left  int32
	calls int32
}

func (r *conflictRunner) Run(ctx context.Context, fn ledger.TxFunc) error {
	atomic.AddInt32(&r.calls, 1)
	if atomic.AddInt32(&r.left, -1) >= 0 {
		return domain.ErrConcurrencyConflict
	}
	return r.inner.Run(ctx, fn)
}

func (r *conflictRunner) View(ctx context.Context, fn ledger.TxFunc) error { return r.inner.View(ctx, fn) }

func TestEngine_RetriesOnConflict(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz", 10)

	r := &conflictRunner{inner: f.store, left: 2}
	eng := ledger.NewEngine(r, f.store.Items(), ledger.Options{MaxRetries: 3, Logger: zerolog.Nop()})
	_, err := eng.RecordEntry(context.Background(), ledger.EntryInput{ItemID: "rice", Quantity: 5, ActorID: actor})
	require.NoError(t, err)
	assert.Equal(t, int32(3), r.calls)
	assert.Equal(t, int64(5), f.qty(t, "rice"))
}

func TestEngine_GivesUpAfterMaxRetries(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz", 10)

	r := &conflictRunner{inner: f.store, left: 100}
	eng := ledger.NewEngine(r, f.store.Items(), ledger.Options{MaxRetries: 2, Logger: zerolog.Nop()})
	_, err := eng.RecordEntry(context.Background(), ledger.EntryInput{ItemID: "rice", Quantity: 5, ActorID: actor})
	require.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	var cce *domain.ConcurrencyConflictError
	require.ErrorAs(t, err, &cce)
	assert.Equal(t, "rice", cce.ItemID)
	assert.Equal(t, int32(3), r.calls, "intento inicial + 2 reintentos")
	assert.Equal(t, int64(0), f.qty(t, "rice"))
}

// N salidas concurrentes de q sobre Q: exactamente floor(Q/q) aceptadas.
func TestEngine_ConcurrentExitsNeverOverdraw(t *testing.T) {
	for _, tc := range []struct {
		stock, qty int64
		workers    int
	}{
		{stock: 10, qty: 3, workers: 20},
		{stock: 100, qty: 7, workers: 50},
		{stock: 5, qty: 5, workers: 8},
	} {
		f := newFixture(t)
		f.item(t, "rice", "Arroz", 10)
		f.in(t, "rice", tc.stock, "2024-01-01")

		var ok, rejected int64
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < tc.workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := f.engine.RecordExit(context.Background(), ledger.ExitInput{
					ItemID: "rice", Quantity: tc.qty, Destination: "x", ActorID: actor,
				})
				switch {
				case err == nil:
					atomic.AddInt64(&ok, 1)
				case errors.Is(err, domain.ErrInsufficientStock):
					atomic.AddInt64(&rejected, 1)
				default:
					t.Errorf("error inesperado: %v", err)
				}
			}()
		}
		close(start)
		wg.Wait()

		assert.Equal(t, tc.stock/tc.qty, ok)
		assert.Equal(t, int64(tc.workers)-ok, rejected)
		assert.Equal(t, tc.stock%tc.qty, f.qty(t, "rice"))
	}
}

func TestEngine_DifferentItemsInParallel(t *testing.T) {
	f := newFixture(t)
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		f.item(t, id, "Item "+id, 1)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := f.engine.RecordEntry(context.Background(), ledger.EntryInput{ItemID: id, Quantity: 2, ActorID: actor})
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()
	for _, id := range ids {
		assert.Equal(t, int64(50), f.qty(t, id))
	}
}

// Secuencia aleatoria: la proyección siempre es Σ entradas − Σ salidas y nunca negativa.
func TestEngine_RandomSequenceKeepsInvariant(t *testing.T) {
	f := newFixture(t)
	f.item(t, "a", "Arroz", 5)
	f.item(t, "b", "Feijão", 5)
	rng := rand.New(rand.NewSource(42))
	ctx := context.Background()

	expected := map[string]int64{}
	for i := 0; i < 300; i++ {
		id := []string{"a", "b"}[rng.Intn(2)]
		q := int64(rng.Intn(10) + 1)
		if rng.Intn(2) == 0 {
			_, err := f.engine.RecordEntry(ctx, ledger.EntryInput{ItemID: id, Quantity: q, ActorID: actor})
			require.NoError(t, err)
			expected[id] += q
			continue
		}
		_, err := f.engine.RecordExit(ctx, ledger.ExitInput{ItemID: id, Quantity: q, Destination: "x", ActorID: actor})
		if expected[id] >= q {
			require.NoError(t, err)
			expected[id] -= q
		} else {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
		require.GreaterOrEqual(t, f.qty(t, id), int64(0))
	}

	for id, want := range expected {
		assert.Equal(t, want, f.qty(t, id))
	}
	report, err := ledger.NewVerifier(f.store, f.store.Items()).Verify(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK)
}

func TestEngine_CancelledContextLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	f.item(t, "rice", "Arroz", 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.engine.RecordEntry(ctx, ledger.EntryInput{ItemID: "rice", Quantity: 5, ActorID: actor})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), f.qty(t, "rice"))
}

var _ ledger.TxRunner = (*memory.Store)(nil)
