package booking

import (
	"sync"

	"github.com/google/uuid"
)

// listingLocks serializes check-and-insert per listing inside one process.
// The database row lock covers multiple replicas on Postgres.
type listingLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*listingLock
}

type listingLock struct {
	mu   sync.Mutex
	refs int
}

func newListingLocks() *listingLocks {
	return &listingLocks{locks: make(map[uuid.UUID]*listingLock)}
}

// Lock blocks until the listing is free and returns the release func.
func (l *listingLocks) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &listingLock{}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()
	return func() {
		lk.mu.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
