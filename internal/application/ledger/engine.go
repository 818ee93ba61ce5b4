// Package ledger contiene el motor de estoque: registra entradas y salidas sobre
// el log append-only, mantiene la proyección de cantidades y expone las lecturas
// derivadas (alertas, historial, dashboard, reposición y verificación).
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/calendar"
)

const defaultMaxRetries = 3

// EntryInput datos de una entrada candidata.
type EntryInput struct {
	ItemID     string
	Quantity   int64
	OccurredOn calendar.Date // cero = hoy en la zona del ledger
	Note       string
	ActorID    string
}

// ExitInput datos de una salida candidata.
type ExitInput struct {
	ItemID      string
	Quantity    int64
	OccurredOn  calendar.Date
	Destination string
	Beneficiary string
	Campaign    string
	Note        string
	ActorID     string
}

// Options configuración del motor.
type Options struct {
	Location   *time.Location   // zona usada para "hoy"; nil = UTC
	MaxRetries int              // reintentos ante conflicto de concurrencia; < 0 = sin reintentos
	Clock      func() time.Time // nil = time.Now
	Logger     zerolog.Logger
}

// Engine valida y aplica movimientos. Cada movimiento aceptado actualiza el log
// y la proyección en la misma transacción.
type Engine struct {
	tx         TxRunner
	items      ItemCatalog
	locker     *ItemLocker
	loc        *time.Location
	maxRetries int
	now        func() time.Time
	log        zerolog.Logger
}

// NewEngine construye el motor.
func NewEngine(tx TxRunner, items ItemCatalog, opts Options) *Engine {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	retries := opts.MaxRetries
	if retries == 0 {
		retries = defaultMaxRetries
	}
	if retries < 0 {
		retries = 0
	}
	return &Engine{
		tx:         tx,
		items:      items,
		locker:     NewItemLocker(),
		loc:        loc,
		maxRetries: retries,
		now:        now,
		log:        opts.Logger,
	}
}

// Today fecha actual en la zona del ledger.
func (e *Engine) Today() calendar.Date { return calendar.FromTime(e.now(), e.loc) }

// RecordEntry registra una entrada y suma la cantidad al estoque del item.
func (e *Engine) RecordEntry(ctx context.Context, in EntryInput) (*entity.Entry, error) {
	in.ItemID = strings.TrimSpace(in.ItemID)
	if err := validateCommon(in.ItemID, in.Quantity, in.ActorID); err != nil {
		return nil, err
	}
	item, err := e.lookupItem(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}

	entry := &entity.Entry{
		ID:         newMovementID(),
		ItemID:     item.ID,
		Quantity:   in.Quantity,
		OccurredOn: e.dateOrToday(in.OccurredOn),
		Note:       strings.TrimSpace(in.Note),
		ActorID:    in.ActorID,
	}

	var balance int64
	err = e.apply(ctx, item.ID, "registrar entrada", func(entries repository.EntryRepository, _ repository.ExitRepository, stock repository.StockRepository) error {
		entry.CreatedAt = e.now()
		if err := entries.Append(ctx, entry); err != nil {
			return err
		}
		b, err := stock.Increment(ctx, item.ID, entry.Quantity, entry.CreatedAt)
		balance = b
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("item_id", item.ID).
		Str("entry_id", entry.ID).
		Int64("quantity", entry.Quantity).
		Int64("balance", balance).
		Str("actor_id", entry.ActorID).
		Msg("entrada registrada")
	return entry, nil
}

// RecordExit registra una salida si hay estoque suficiente.
//
// La lectura del saldo y la escritura ocurren bajo el lock del item y dentro de
// la transacción (fila bloqueada). El decremento además es condicional, así
// que dos salidas concurrentes no pueden dejar el saldo negativo aunque
// corran en procesos distintos.
func (e *Engine) RecordExit(ctx context.Context, in ExitInput) (*entity.Exit, error) {
	in.ItemID = strings.TrimSpace(in.ItemID)
	if err := validateCommon(in.ItemID, in.Quantity, in.ActorID); err != nil {
		return nil, err
	}
	destination := strings.TrimSpace(in.Destination)
	if destination == "" {
		return nil, domain.NewValidationError("destination", "el destino es obligatorio")
	}
	item, err := e.lookupItem(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}

	exit := &entity.Exit{
		ID:          newMovementID(),
		ItemID:      item.ID,
		Quantity:    in.Quantity,
		OccurredOn:  e.dateOrToday(in.OccurredOn),
		Destination: destination,
		Beneficiary: strings.TrimSpace(in.Beneficiary),
		Campaign:    strings.TrimSpace(in.Campaign),
		Note:        strings.TrimSpace(in.Note),
		ActorID:     in.ActorID,
	}

	var balance int64
	err = e.apply(ctx, item.ID, "registrar salida", func(_ repository.EntryRepository, exits repository.ExitRepository, stock repository.StockRepository) error {
		level, err := stock.GetForUpdate(ctx, item.ID)
		if err != nil {
			return err
		}
		if level.CurrentQuantity < exit.Quantity {
			return &domain.InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Available: level.CurrentQuantity,
				Requested: exit.Quantity,
			}
		}
		exit.CreatedAt = e.now()
		if err := exits.Append(ctx, exit); err != nil {
			return err
		}
		balance, err = stock.Decrement(ctx, item.ID, exit.Quantity, exit.CreatedAt)
		if errors.Is(err, domain.ErrInsufficientStock) {
			var ise *domain.InsufficientStockError
			if errors.As(err, &ise) {
				return err
			}
			return &domain.InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Available: level.CurrentQuantity,
				Requested: exit.Quantity,
			}
		}
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			e.log.Warn().
				Str("item_id", item.ID).
				Int64("quantity", exit.Quantity).
				Str("actor_id", exit.ActorID).
				Msg("salida rechazada por estoque insuficiente")
		}
		return nil, err
	}

	e.log.Info().
		Str("item_id", item.ID).
		Str("exit_id", exit.ID).
		Int64("quantity", exit.Quantity).
		Int64("balance", balance).
		Str("destination", exit.Destination).
		Str("actor_id", exit.ActorID).
		Msg("salida registrada")
	return exit, nil
}

// apply ejecuta fn bajo el lock del item, reintentando desde una lectura nueva
// cuando el almacenamiento reporta conflicto de concurrencia.
func (e *Engine) apply(ctx context.Context, itemID, op string, fn TxFunc) error {
	unlock, err := e.locker.Lock(ctx, itemID)
	if err != nil {
		return &domain.PersistenceError{Op: op, Err: err}
	}
	defer unlock()

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			e.log.Debug().Str("item_id", itemID).Int("attempt", attempt).Err(lastErr).Msg("reintentando tras conflicto")
			if err := sleepCtx(ctx, time.Duration(attempt)*10*time.Millisecond); err != nil {
				break
			}
		}
		err := e.tx.Run(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return e.classify(itemID, op, err)
		}
		lastErr = err
	}
	return &domain.ConcurrencyConflictError{ItemID: itemID, Err: lastErr}
}

// classify deja pasar los rechazos de dominio y envuelve el resto como fallo de persistencia.
func (e *Engine) classify(itemID, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrPersistence):
		return err
	}
	e.log.Error().Err(err).Str("item_id", itemID).Str("op", op).Msg("fallo de persistencia")
	return &domain.PersistenceError{Op: op, Err: err}
}

func (e *Engine) lookupItem(ctx context.Context, id string) (*entity.Item, error) {
	item, err := e.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Resource: "item", ID: id}
		}
		return nil, &domain.PersistenceError{Op: "buscar item", Err: err}
	}
	if item == nil {
		return nil, &domain.NotFoundError{Resource: "item", ID: id}
	}
	return item, nil
}

func (e *Engine) dateOrToday(d calendar.Date) calendar.Date {
	if d.IsZero() {
		return e.Today()
	}
	return d
}

func validateCommon(itemID string, qty int64, actorID string) error {
	if itemID == "" {
		return domain.NewValidationError("item_id", "el item es obligatorio")
	}
	if qty <= 0 {
		return domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
	}
	if strings.TrimSpace(actorID) == "" {
		return domain.NewValidationError("actor_id", "usuario no identificado")
	}
	return nil
}

// newMovementID UUIDv7: ordenable por tiempo de creación.
func newMovementID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
