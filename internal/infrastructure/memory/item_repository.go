package memory

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo catálogo en memoria.
type ItemRepo struct {
	s *Store
}

// Create guarda el item y su nivel de estoque en cero.
func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if item.ID == "" {
		item.ID = newID()
	}
	if _, ok := r.s.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *item
	r.s.items[item.ID] = &cp
	if _, ok := r.s.levels[item.ID]; !ok {
		r.s.levels[item.ID] = entity.StockLevel{ItemID: item.ID, UpdatedAt: item.CreatedAt}
	}
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *ItemRepo) Update(_ context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; !ok {
		return nil
	}
	cp := *item
	r.s.items[item.ID] = &cp
	return nil
}

// Delete rechaza con ErrConflict si el item tiene movimientos.
func (r *ItemRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.entries {
		if e.ItemID == id {
			return domain.ErrConflict
		}
	}
	for _, x := range r.s.exits {
		if x.ItemID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.items, id)
	delete(r.s.levels, id)
	return nil
}

func (r *ItemRepo) List(_ context.Context) ([]*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		cp := *it
		out = append(out, &cp)
	}
	sortByName(out)
	return out, nil
}
