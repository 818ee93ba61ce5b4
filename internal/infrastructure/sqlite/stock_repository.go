package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo proyección de estoque sobre SQLite.
type StockRepo struct {
	q Querier
}

func NewStockRepository(q Querier) *StockRepo { return &StockRepo{q: q} }

func (r *StockRepo) Get(ctx context.Context, itemID string) (*entity.StockLevel, error) {
	var s entity.StockLevel
	var updated string
	err := r.q.QueryRowContext(ctx,
		`SELECT item_id, current_quantity, updated_at FROM stock_levels WHERE item_id = ?`, itemID,
	).Scan(&s.ItemID, &s.CurrentQuantity, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &entity.StockLevel{ItemID: itemID}, nil
		}
		return nil, wrapErr("get stock", err)
	}
	if s.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetForUpdate SQLite no tiene bloqueo de fila; la transacción IMMEDIATE ya tiene el lock de escritura.
func (r *StockRepo) GetForUpdate(ctx context.Context, itemID string) (*entity.StockLevel, error) {
	return r.Get(ctx, itemID)
}

func (r *StockRepo) Increment(ctx context.Context, itemID string, qty int64, at time.Time) (int64, error) {
	var out int64
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO stock_levels (item_id, current_quantity, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (item_id)
		DO UPDATE SET current_quantity = current_quantity + excluded.current_quantity,
			updated_at = excluded.updated_at
		RETURNING current_quantity`,
		itemID, qty, formatTime(at),
	).Scan(&out)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, &domain.NotFoundError{Resource: "item", ID: itemID}
		}
		return 0, wrapErr("increment stock", err)
	}
	return out, nil
}

func (r *StockRepo) Decrement(ctx context.Context, itemID string, qty int64, at time.Time) (int64, error) {
	var out int64
	err := r.q.QueryRowContext(ctx, `
		UPDATE stock_levels
		SET current_quantity = current_quantity - ?, updated_at = ?
		WHERE item_id = ? AND current_quantity >= ?
		RETURNING current_quantity`,
		qty, formatTime(at), itemID, qty,
	).Scan(&out)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isCheckViolation(err) {
			return 0, domain.ErrInsufficientStock
		}
		return 0, wrapErr("decrement stock", err)
	}
	return out, nil
}

func (r *StockRepo) List(ctx context.Context) ([]*entity.StockLevel, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT item_id, current_quantity, updated_at FROM stock_levels`)
	if err != nil {
		return nil, wrapErr("list stock", err)
	}
	defer rows.Close()

	list := make([]*entity.StockLevel, 0)
	for rows.Next() {
		var s entity.StockLevel
		var updated string
		if err := rows.Scan(&s.ItemID, &s.CurrentQuantity, &updated); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		if s.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
