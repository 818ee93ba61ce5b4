package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/calendar"
)

var (
	_ repository.EntryRepository = (*EntryRepo)(nil)
	_ repository.ExitRepository  = (*ExitRepo)(nil)
)

// EntryRepo log de entradas sobre PostgreSQL.
type EntryRepo struct {
	q Querier
}

// NewEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEntryRepository(q Querier) *EntryRepo { return &EntryRepo{q: q} }

// Append inserta la entrada; seq viene de la secuencia compartida movement_seq.
func (r *EntryRepo) Append(ctx context.Context, e *entity.Entry) error {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO entries (id, item_id, quantity, occurred_on, note, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.ItemID, e.Quantity, e.OccurredOn.Time(), e.Note, e.ActorID, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return appendErr("insert entry", e.ItemID, err)
	}
	return nil
}

func (r *EntryRepo) List(ctx context.Context, q repository.MovementQuery) ([]*entity.Entry, error) {
	where, args := movementWhere(q)
	query := `SELECT id, seq, item_id, quantity, occurred_on, note, actor_id, created_at FROM entries` +
		where + ` ORDER BY occurred_on DESC, seq DESC` + limitClause(q.Limit)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list entries", err)
	}
	defer rows.Close()

	list := make([]*entity.Entry, 0)
	for rows.Next() {
		var e entity.Entry
		var on time.Time
		if err := rows.Scan(&e.ID, &e.Seq, &e.ItemID, &e.Quantity, &on, &e.Note, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.OccurredOn = calendar.FromTime(on, time.UTC)
		list = append(list, &e)
	}
	return list, rows.Err()
}

func (r *EntryRepo) SumByItem(ctx context.Context) (map[string]int64, error) {
	return sumByItem(ctx, r.q, "entries")
}

// ExitRepo log de salidas sobre PostgreSQL.
type ExitRepo struct {
	q Querier
}

// NewExitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExitRepository(q Querier) *ExitRepo { return &ExitRepo{q: q} }

func (r *ExitRepo) Append(ctx context.Context, x *entity.Exit) error {
	if x.ID == "" {
		x.ID = newID()
	}
	if x.CreatedAt.IsZero() {
		x.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO exits (id, item_id, quantity, occurred_on, destination, beneficiary, campaign, note, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		x.ID, x.ItemID, x.Quantity, x.OccurredOn.Time(), x.Destination, x.Beneficiary,
		x.Campaign, x.Note, x.ActorID, x.CreatedAt,
	).Scan(&x.Seq)
	if err != nil {
		return appendErr("insert exit", x.ItemID, err)
	}
	return nil
}

func (r *ExitRepo) List(ctx context.Context, q repository.MovementQuery) ([]*entity.Exit, error) {
	where, args := movementWhere(q)
	query := `SELECT id, seq, item_id, quantity, occurred_on, destination, beneficiary, campaign, note, actor_id, created_at FROM exits` +
		where + ` ORDER BY occurred_on DESC, seq DESC` + limitClause(q.Limit)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list exits", err)
	}
	defer rows.Close()

	list := make([]*entity.Exit, 0)
	for rows.Next() {
		var x entity.Exit
		var on time.Time
		if err := rows.Scan(&x.ID, &x.Seq, &x.ItemID, &x.Quantity, &on, &x.Destination, &x.Beneficiary,
			&x.Campaign, &x.Note, &x.ActorID, &x.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exit: %w", err)
		}
		x.OccurredOn = calendar.FromTime(on, time.UTC)
		list = append(list, &x)
	}
	return list, rows.Err()
}

func (r *ExitRepo) SumByItem(ctx context.Context) (map[string]int64, error) {
	return sumByItem(ctx, r.q, "exits")
}

// sumByItem SUM(bigint) devuelve NUMERIC; se lee como decimal.
func sumByItem(ctx context.Context, q Querier, table string) (map[string]int64, error) {
	rows, err := q.Query(ctx, `SELECT item_id, SUM(quantity) FROM `+table+` GROUP BY item_id`)
	if err != nil {
		return nil, wrapErr("sum "+table, err)
	}
	defer rows.Close()

	sums := make(map[string]int64)
	for rows.Next() {
		var id string
		var total decimal.Decimal
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("scan sum %s: %w", table, err)
		}
		sums[id] = total.IntPart()
	}
	return sums, rows.Err()
}

func movementWhere(q repository.MovementQuery) (string, []any) {
	var conds []string
	var args []any
	if q.ItemID != "" {
		args = append(args, q.ItemID)
		conds = append(conds, fmt.Sprintf("item_id = $%d", len(args)))
	}
	if !q.From.IsZero() {
		args = append(args, q.From.Time())
		conds = append(conds, fmt.Sprintf("occurred_on >= $%d", len(args)))
	}
	if !q.To.IsZero() {
		args = append(args, q.To.Time())
		conds = append(conds, fmt.Sprintf("occurred_on <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}

func appendErr(op, itemID string, err error) error {
	if isForeignKeyViolation(err) {
		return &domain.NotFoundError{Resource: "item", ID: itemID}
	}
	return wrapErr(op, err)
}

