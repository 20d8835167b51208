// Package lock serializes inventory and profile mutations per owner.
// The grant stacking algorithm is a read-modify-write and is not commutative
// under interleaving, so all mutations for one owner take the same lock.
package lock

import "sync"

// OwnerLocker hands out a mutex per owner key
type OwnerLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOwnerLocker creates a new OwnerLocker
func NewOwnerLocker() *OwnerLocker {
	return &OwnerLocker{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the lock for the given owner, creating it on first use
func (l *OwnerLocker) Lock(ownerID string) {
	l.ownerMutex(ownerID).Lock()
}

// Unlock releases the lock for the given owner
func (l *OwnerLocker) Unlock(ownerID string) {
	l.ownerMutex(ownerID).Unlock()
}

func (l *OwnerLocker) ownerMutex(ownerID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[ownerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ownerID] = m
	}
	return m
}
