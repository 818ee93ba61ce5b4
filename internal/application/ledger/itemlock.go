package ledger

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ItemLocker exclusión mutua por item dentro del proceso.
// Items distintos no se bloquean entre sí; las entradas sin uso se liberan.
type ItemLocker struct {
	mu    sync.Mutex
	locks map[string]*itemLock
}

type itemLock struct {
	sem  *semaphore.Weighted
	refs int
}

// NewItemLocker construye un locker vacío.
func NewItemLocker() *ItemLocker {
	return &ItemLocker{locks: make(map[string]*itemLock)}
}

// Lock espera el turno del item o la cancelación de ctx.
// La función devuelta libera el lock; llamarla más de una vez no tiene efecto.
func (l *ItemLocker) Lock(ctx context.Context, itemID string) (func(), error) {
	l.mu.Lock()
	il, ok := l.locks[itemID]
	if !ok {
		il = &itemLock{sem: semaphore.NewWeighted(1)}
		l.locks[itemID] = il
	}
	il.refs++
	l.mu.Unlock()

	if err := il.sem.Acquire(ctx, 1); err != nil {
		l.release(itemID, il)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			il.sem.Release(1)
			l.release(itemID, il)
		})
	}, nil
}

func (l *ItemLocker) release(itemID string, il *itemLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	il.refs--
	if il.refs == 0 {
		delete(l.locks, itemID)
	}
}

// size cantidad de items con lock tomado o en espera.
func (l *ItemLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
