/**
 * @description
 * Per-entity mutual exclusion. Every mutating operation locks the entity it
 * touches for its full duration, so two concurrent operations against the
 * same account/goal/campaign/group serialize while operations on different
 * entities proceed independently. A second entry into an already-locked
 * entity fails fast with ErrReentrantCall rather than deadlocking.
 */

package app

import (
	"sync"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
)

type entityLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (e *entityLocks) lockFor(id uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// acquire takes the entity's lock, failing with ErrReentrantCall if it is
// already held. The returned release function must run on every exit path.
func (e *entityLocks) acquire(id uuid.UUID) (func(), error) {
	l := e.lockFor(id)
	if !l.TryLock() {
		return nil, domain.ErrReentrantCall
	}
	return l.Unlock, nil
}
