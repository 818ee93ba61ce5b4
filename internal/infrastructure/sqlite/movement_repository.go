package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/calendar"
)

var (
	_ repository.EntryRepository = (*EntryRepo)(nil)
	_ repository.ExitRepository  = (*ExitRepo)(nil)
)

// nextSeq orden de inserción compartido por entradas y salidas.
const nextSeq = `(SELECT COALESCE(MAX(seq), 0) + 1 FROM (SELECT seq FROM entries UNION ALL SELECT seq FROM exits))`

// EntryRepo log de entradas sobre SQLite.
type EntryRepo struct {
	q Querier
}

func NewEntryRepository(q Querier) *EntryRepo { return &EntryRepo{q: q} }

func (r *EntryRepo) Append(ctx context.Context, e *entity.Entry) error {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO entries (id, seq, item_id, quantity, occurred_on, note, actor_id, created_at)
		VALUES (?, `+nextSeq+`, ?, ?, ?, ?, ?, ?)
		RETURNING seq`,
		e.ID, e.ItemID, e.Quantity, e.OccurredOn.String(), e.Note, e.ActorID, formatTime(e.CreatedAt),
	).Scan(&e.Seq)
	if err != nil {
		return appendErr("insert entry", e.ItemID, err)
	}
	return nil
}

func (r *EntryRepo) List(ctx context.Context, q repository.MovementQuery) ([]*entity.Entry, error) {
	where, args := movementWhere(q)
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, seq, item_id, quantity, occurred_on, note, actor_id, created_at FROM entries`+
			where+` ORDER BY occurred_on DESC, seq DESC`+limitClause(q.Limit), args...)
	if err != nil {
		return nil, wrapErr("list entries", err)
	}
	defer rows.Close()

	list := make([]*entity.Entry, 0)
	for rows.Next() {
		var e entity.Entry
		var on, created string
		if err := rows.Scan(&e.ID, &e.Seq, &e.ItemID, &e.Quantity, &on, &e.Note, &e.ActorID, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.OccurredOn, err = calendar.Parse(on); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

func (r *EntryRepo) SumByItem(ctx context.Context) (map[string]int64, error) {
	return sumByItem(ctx, r.q, "entries")
}

// ExitRepo log de salidas sobre SQLite.
type ExitRepo struct {
	q Querier
}

func NewExitRepository(q Querier) *ExitRepo { return &ExitRepo{q: q} }

func (r *ExitRepo) Append(ctx context.Context, x *entity.Exit) error {
	if x.ID == "" {
		x.ID = newID()
	}
	if x.CreatedAt.IsZero() {
		x.CreatedAt = time.Now()
	}
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO exits (id, seq, item_id, quantity, occurred_on, destination, beneficiary, campaign, note, actor_id, created_at)
		VALUES (?, `+nextSeq+`, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING seq`,
		x.ID, x.ItemID, x.Quantity, x.OccurredOn.String(), x.Destination, x.Beneficiary,
		x.Campaign, x.Note, x.ActorID, formatTime(x.CreatedAt),
	).Scan(&x.Seq)
	if err != nil {
		return appendErr("insert exit", x.ItemID, err)
	}
	return nil
}

func (r *ExitRepo) List(ctx context.Context, q repository.MovementQuery) ([]*entity.Exit, error) {
	where, args := movementWhere(q)
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, seq, item_id, quantity, occurred_on, destination, beneficiary, campaign, note, actor_id, created_at FROM exits`+
			where+` ORDER BY occurred_on DESC, seq DESC`+limitClause(q.Limit), args...)
	if err != nil {
		return nil, wrapErr("list exits", err)
	}
	defer rows.Close()

	list := make([]*entity.Exit, 0)
	for rows.Next() {
		var x entity.Exit
		var on, created string
		if err := rows.Scan(&x.ID, &x.Seq, &x.ItemID, &x.Quantity, &on, &x.Destination, &x.Beneficiary,
			&x.Campaign, &x.Note, &x.ActorID, &created); err != nil {
			return nil, fmt.Errorf("scan exit: %w", err)
		}
		if x.OccurredOn, err = calendar.Parse(on); err != nil {
			return nil, err
		}
		if x.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		list = append(list, &x)
	}
	return list, rows.Err()
}

func (r *ExitRepo) SumByItem(ctx context.Context) (map[string]int64, error) {
	return sumByItem(ctx, r.q, "exits")
}

func sumByItem(ctx context.Context, q Querier, table string) (map[string]int64, error) {
	rows, err := q.QueryContext(ctx, `SELECT item_id, SUM(quantity) FROM `+table+` GROUP BY item_id`)
	if err != nil {
		return nil, wrapErr("sum "+table, err)
	}
	defer rows.Close()

	sums := make(map[string]int64)
	for rows.Next() {
		var id string
		var total int64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("scan sum %s: %w", table, err)
		}
		sums[id] = total
	}
	return sums, rows.Err()
}

// Las fechas ISO en TEXT se comparan bien lexicográficamente.
func movementWhere(q repository.MovementQuery) (string, []any) {
	var conds []string
	var args []any
	if q.ItemID != "" {
		conds = append(conds, "item_id = ?")
		args = append(args, q.ItemID)
	}
	if !q.From.IsZero() {
		conds = append(conds, "occurred_on >= ?")
		args = append(args, q.From.String())
	}
	if !q.To.IsZero() {
		conds = append(conds, "occurred_on <= ?")
		args = append(args, q.To.String())
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
