package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo catálogo sobre SQLite.
type ItemRepo struct {
	db *sql.DB
}

const itemColumns = `id, name, category, unit_of_measure, description, minimum_quantity, created_at, updated_at`

// Create inserta item y nivel cero en la misma transacción.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("begin create item", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Category, item.UnitOfMeasure, item.Description,
		item.MinimumQuantity, formatTime(item.CreatedAt), formatTime(item.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert item", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO stock_levels (item_id, current_quantity, updated_at) VALUES (?, 0, ?)`,
		item.ID, formatTime(item.CreatedAt),
	)
	if err != nil {
		return wrapErr("insert stock level", err)
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("commit create item", err)
	}
	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get item", err)
	}
	return it, nil
}

func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE items SET name = ?, category = ?, unit_of_measure = ?, description = ?,
			minimum_quantity = ?, updated_at = ?
		WHERE id = ?`,
		item.Name, item.Category, item.UnitOfMeasure, item.Description,
		item.MinimumQuantity, formatTime(item.UpdatedAt), item.ID,
	)
	if err != nil {
		return wrapErr("update item", err)
	}
	return nil
}

// Delete rechaza con ErrConflict si el item tiene movimientos. La comprobación
// y el borrado van en la misma transacción; la FK RESTRICT queda como respaldo.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("begin delete item", err)
	}
	defer func() { _ = tx.Rollback() }()

	var used bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM entries WHERE item_id = ?)
		    OR EXISTS (SELECT 1 FROM exits WHERE item_id = ?)`, id, id).Scan(&used)
	if err != nil {
		return wrapErr("check item movements", err)
	}
	if used {
		return domain.ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return wrapErr("delete item", err)
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("commit delete item", err)
	}
	return nil
}

func (r *ItemRepo) List(ctx context.Context) ([]*entity.Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name, id`)
	if err != nil {
		return nil, wrapErr("list items", err)
	}
	defer rows.Close()

	var list []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*entity.Item, error) {
	var it entity.Item
	var created, updated string
	if err := row.Scan(&it.ID, &it.Name, &it.Category, &it.UnitOfMeasure, &it.Description,
		&it.MinimumQuantity, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if it.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if it.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &it, nil
}
