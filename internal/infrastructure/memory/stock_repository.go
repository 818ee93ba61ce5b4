package memory

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo proyección de estoque en memoria.
type StockRepo struct {
	s  *Store
	tx *txState
}

func (r *StockRepo) Get(_ context.Context, itemID string) (*entity.StockLevel, error) {
	if r.tx == nil {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	lvl := r.current(itemID)
	return &lvl, nil
}

// GetForUpdate dentro de Run el lock de escritura ya está tomado.
func (r *StockRepo) GetForUpdate(ctx context.Context, itemID string) (*entity.StockLevel, error) {
	return r.Get(ctx, itemID)
}

func (r *StockRepo) Increment(ctx context.Context, itemID string, qty int64, at time.Time) (int64, error) {
	if r.tx == nil {
		var out int64
		err := r.s.Run(ctx, func(_ repository.EntryRepository, _ repository.ExitRepository, stock repository.StockRepository) error {
			var err error
			out, err = stock.Increment(ctx, itemID, qty, at)
			return err
		})
		return out, err
	}
	if r.tx.readOnly {
		return 0, errReadOnly
	}
	lvl := r.current(itemID)
	lvl.CurrentQuantity += qty
	lvl.UpdatedAt = at
	r.tx.levels[itemID] = lvl
	return lvl.CurrentQuantity, nil
}

// Decrement solo resta si hay saldo suficiente.
func (r *StockRepo) Decrement(ctx context.Context, itemID string, qty int64, at time.Time) (int64, error) {
	if r.tx == nil {
		var out int64
		err := r.s.Run(ctx, func(_ repository.EntryRepository, _ repository.ExitRepository, stock repository.StockRepository) error {
			var err error
			out, err = stock.Decrement(ctx, itemID, qty, at)
			return err
		})
		return out, err
	}
	if r.tx.readOnly {
		return 0, errReadOnly
	}
	lvl := r.current(itemID)
	if lvl.CurrentQuantity < qty {
		return lvl.CurrentQuantity, domain.ErrInsufficientStock
	}
	lvl.CurrentQuantity -= qty
	lvl.UpdatedAt = at
	r.tx.levels[itemID] = lvl
	return lvl.CurrentQuantity, nil
}

func (r *StockRepo) List(_ context.Context) ([]*entity.StockLevel, error) {
	if r.tx == nil {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	seen := make(map[string]struct{}, len(r.s.levels))
	out := make([]*entity.StockLevel, 0, len(r.s.levels))
	for id := range r.s.levels {
		lvl := r.current(id)
		out = append(out, &lvl)
		seen[id] = struct{}{}
	}
	if r.tx != nil {
		for id, lvl := range r.tx.levels {
			if _, ok := seen[id]; !ok {
				cp := lvl
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

// current nivel visible: cambios de la transacción sobre el estado confirmado.
func (r *StockRepo) current(itemID string) entity.StockLevel {
	if r.tx != nil {
		if lvl, ok := r.tx.levels[itemID]; ok {
			return lvl
		}
	}
	if lvl, ok := r.s.levels[itemID]; ok {
		return lvl
	}
	return entity.StockLevel{ItemID: itemID}
}
