package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el estoque actual de un item (cero si no tiene registro).
func (r *StockRepo) Get(ctx context.Context, itemID string) (*entity.StockLevel, error) {
	return r.get(ctx, itemID, `SELECT item_id, current_quantity, updated_at FROM stock_levels WHERE item_id = $1`)
}

// GetForUpdate obtiene el estoque y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, itemID string) (*entity.StockLevel, error) {
	return r.get(ctx, itemID, `SELECT item_id, current_quantity, updated_at FROM stock_levels WHERE item_id = $1 FOR UPDATE`)
}

func (r *StockRepo) get(ctx context.Context, itemID, query string) (*entity.StockLevel, error) {
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, itemID).Scan(&s.ItemID, &s.CurrentQuantity, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{ItemID: itemID}, nil
		}
		return nil, wrapErr("get stock", err)
	}
	return &s, nil
}

// Increment suma qty creando la fila si no existe.
func (r *StockRepo) Increment(ctx context.Context, itemID string, qty int64, at time.Time) (int64, error) {
	query := `
		INSERT INTO stock_levels (item_id, current_quantity, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id)
		DO UPDATE SET current_quantity = stock_levels.current_quantity + EXCLUDED.current_quantity,
			updated_at = EXCLUDED.updated_at
		RETURNING current_quantity`
	var out int64
	if err := r.q.QueryRow(ctx, query, itemID, qty, at).Scan(&out); err != nil {
		if isForeignKeyViolation(err) {
			return 0, &domain.NotFoundError{Resource: "item", ID: itemID}
		}
		return 0, wrapErr("increment stock", err)
	}
	return out, nil
}

// Decrement resta qty solo si el saldo alcanza; si no, ErrInsufficientStock sin modificar nada.
func (r *StockRepo) Decrement(ctx context.Context, itemID string, qty int64, at time.Time) (int64, error) {
	query := `
		UPDATE stock_levels
		SET current_quantity = current_quantity - $2, updated_at = $3
		WHERE item_id = $1 AND current_quantity >= $2
		RETURNING current_quantity`
	var out int64
	err := r.q.QueryRow(ctx, query, itemID, qty, at).Scan(&out)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isCheckViolation(err) {
			return 0, domain.ErrInsufficientStock
		}
		return 0, wrapErr("decrement stock", err)
	}
	return out, nil
}

// List todos los niveles.
func (r *StockRepo) List(ctx context.Context) ([]*entity.StockLevel, error) {
	rows, err := r.q.Query(ctx, `SELECT item_id, current_quantity, updated_at FROM stock_levels`)
	if err != nil {
		return nil, wrapErr("list stock", err)
	}
	defer rows.Close()

	list := make([]*entity.StockLevel, 0)
	for rows.Next() {
		var s entity.StockLevel
		if err := rows.Scan(&s.ItemID, &s.CurrentQuantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
