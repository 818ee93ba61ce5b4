// Package memory almacenamiento en memoria del ledger. Las escrituras se
// serializan con un único lock y cada transacción acumula sus cambios en un
// buffer que solo se aplica al confirmar.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

var _ ledger.TxRunner = (*Store)(nil)

// Store estado completo del ledger en memoria.
type Store struct {
	mu       sync.RWMutex
	items    map[string]*entity.Item
	profiles map[string]*entity.Profile
	levels   map[string]entity.StockLevel
	entries  []*entity.Entry
	exits    []*entity.Exit
	seq      int64
	now      func() time.Time
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		items:    make(map[string]*entity.Item),
		profiles: make(map[string]*entity.Profile),
		levels:   make(map[string]entity.StockLevel),
		now:      time.Now,
	}
}

func (s *Store) Items() *ItemRepo       { return &ItemRepo{s: s} }
func (s *Store) Entries() *EntryRepo    { return &EntryRepo{s: s} }
func (s *Store) Exits() *ExitRepo       { return &ExitRepo{s: s} }
func (s *Store) Stock() *StockRepo      { return &StockRepo{s: s} }
func (s *Store) Profiles() *ProfileRepo { return &ProfileRepo{s: s} }

// PutProfile registra o reemplaza un perfil (seed y tests).
func (s *Store) PutProfile(p *entity.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.profiles[p.ID] = &cp
}

// txState cambios pendientes de una transacción.
type txState struct {
	entries  []*entity.Entry
	exits    []*entity.Exit
	levels   map[string]entity.StockLevel
	seq      int64
	readOnly bool
}

// Run ejecuta fn con el lock de escritura tomado. Los cambios se aplican solo si fn devuelve nil.
func (s *Store) Run(ctx context.Context, fn ledger.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txState{levels: make(map[string]entity.StockLevel), seq: s.seq}
	if err := fn(&EntryRepo{s: s, tx: tx}, &ExitRepo{s: s, tx: tx}, &StockRepo{s: s, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.entries = append(s.entries, tx.entries...)
	s.exits = append(s.exits, tx.exits...)
	for id, lvl := range tx.levels {
		s.levels[id] = lvl
	}
	s.seq = tx.seq
	return nil
}

// View ejecuta fn con el lock de lectura tomado; las escrituras devuelven error.
func (s *Store) View(ctx context.Context, fn ledger.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx := &txState{readOnly: true}
	return fn(&EntryRepo{s: s, tx: tx}, &ExitRepo{s: s, tx: tx}, &StockRepo{s: s, tx: tx})
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func sortByName(items []*entity.Item) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
}
