package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain"
)

var _ ledger.TxRunner = (*Store)(nil)

// Store agrupa los repositorios sobre una misma base.
type Store struct {
	db *sql.DB
}

// NewStore envuelve una base ya abierta con Open o NewInMemory.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) DB() *sql.DB            { return s.db }
func (s *Store) Items() *ItemRepo       { return &ItemRepo{db: s.db} }
func (s *Store) Entries() *EntryRepo    { return NewEntryRepository(s.db) }
func (s *Store) Exits() *ExitRepo       { return NewExitRepository(s.db) }
func (s *Store) Stock() *StockRepo      { return NewStockRepository(s.db) }
func (s *Store) Profiles() *ProfileRepo { return NewProfileRepository(s.db) }

// Run abre BEGIN IMMEDIATE (ver DSN), ejecuta fn y confirma solo si no hubo error.
func (s *Store) Run(ctx context.Context, fn ledger.TxFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		if isBusy(err) {
			return wrapErr("begin transaction", err)
		}
		return &domain.PersistenceError{Op: "begin transaction", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(NewEntryRepository(tx), NewExitRepository(tx), NewStockRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

// View lectura consistente; siempre termina en rollback.
func (s *Store) View(ctx context.Context, fn ledger.TxFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.PersistenceError{Op: "begin transaction", Err: err}
	}
	defer func() { _ = tx.Rollback() }()
	return fn(NewEntryRepository(tx), NewExitRepository(tx), NewStockRepository(tx))
}

// Close cierra la base.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("cerrar sqlite: %w", err)
	}
	return nil
}
