package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/calendar"
)

var (
	_ repository.EntryRepository = (*EntryRepo)(nil)
	_ repository.ExitRepository  = (*ExitRepo)(nil)
)

var errReadOnly = errors.New("memory: escritura en transacción de solo lectura")

// EntryRepo log de entradas. Con tx == nil cada Append es su propia transacción.
type EntryRepo struct {
	s  *Store
	tx *txState
}

func (r *EntryRepo) Append(ctx context.Context, e *entity.Entry) error {
	if r.tx == nil {
		return r.s.Run(ctx, func(entries repository.EntryRepository, _ repository.ExitRepository, _ repository.StockRepository) error {
			return entries.Append(ctx, e)
		})
	}
	if r.tx.readOnly {
		return errReadOnly
	}
	if _, ok := r.s.items[e.ItemID]; !ok {
		return &domain.NotFoundError{Resource: "item", ID: e.ItemID}
	}
	if e.ID == "" {
		e.ID = newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.s.now()
	}
	r.tx.seq++
	e.Seq = r.tx.seq
	cp := *e
	r.tx.entries = append(r.tx.entries, &cp)
	return nil
}

func (r *EntryRepo) List(_ context.Context, q repository.MovementQuery) ([]*entity.Entry, error) {
	if r.tx == nil {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	all := r.s.entries
	if r.tx != nil && len(r.tx.entries) > 0 {
		all = append(append([]*entity.Entry(nil), r.s.entries...), r.tx.entries...)
	}
	out := make([]*entity.Entry, 0)
	for _, e := range all {
		if matches(q, e.ItemID, e.OccurredOn) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newerFirst(out[i].OccurredOn, out[i].Seq, out[j].OccurredOn, out[j].Seq)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *EntryRepo) SumByItem(_ context.Context) (map[string]int64, error) {
	if r.tx == nil {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	sums := make(map[string]int64)
	for _, e := range r.s.entries {
		sums[e.ItemID] += e.Quantity
	}
	if r.tx != nil {
		for _, e := range r.tx.entries {
			sums[e.ItemID] += e.Quantity
		}
	}
	return sums, nil
}

// ExitRepo log de salidas.
type ExitRepo struct {
	s  *Store
	tx *txState
}

func (r *ExitRepo) Append(ctx context.Context, x *entity.Exit) error {
	if r.tx == nil {
		return r.s.Run(ctx, func(_ repository.EntryRepository, exits repository.ExitRepository, _ repository.StockRepository) error {
			return exits.Append(ctx, x)
		})
	}
	if r.tx.readOnly {
		return errReadOnly
	}
	if _, ok := r.s.items[x.ItemID]; !ok {
		return &domain.NotFoundError{Resource: "item", ID: x.ItemID}
	}
	if x.ID == "" {
		x.ID = newID()
	}
	if x.CreatedAt.IsZero() {
		x.CreatedAt = r.s.now()
	}
	r.tx.seq++
	x.Seq = r.tx.seq
	cp := *x
	r.tx.exits = append(r.tx.exits, &cp)
	return nil
}

func (r *ExitRepo) List(_ context.Context, q repository.MovementQuery) ([]*entity.Exit, error) {
	if r.tx == nil {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	all := r.s.exits
	if r.tx != nil && len(r.tx.exits) > 0 {
		all = append(append([]*entity.Exit(nil), r.s.exits...), r.tx.exits...)
	}
	out := make([]*entity.Exit, 0)
	for _, x := range all {
		if matches(q, x.ItemID, x.OccurredOn) {
			cp := *x
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newerFirst(out[i].OccurredOn, out[i].Seq, out[j].OccurredOn, out[j].Seq)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *ExitRepo) SumByItem(_ context.Context) (map[string]int64, error) {
	if r.tx == nil {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	sums := make(map[string]int64)
	for _, x := range r.s.exits {
		sums[x.ItemID] += x.Quantity
	}
	if r.tx != nil {
		for _, x := range r.tx.exits {
			sums[x.ItemID] += x.Quantity
		}
	}
	return sums, nil
}

func matches(q repository.MovementQuery, itemID string, on calendar.Date) bool {
	if q.ItemID != "" && itemID != q.ItemID {
		return false
	}
	if !q.From.IsZero() && on.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && on.After(q.To) {
		return false
	}
	return true
}

func newerFirst(aOn calendar.Date, aSeq int64, bOn calendar.Date, bSeq int64) bool {
	if c := aOn.Compare(bOn); c != 0 {
		return c > 0
	}
	return aSeq > bSeq
}
