// Package locker provides per-subject exclusive locks for serializing
// mutations that must observe a read-modify-write invariant, such as the
// "exactly one active key per user" rule.
package locker

import (
	"sync"
)

// KeyedMutex serializes work per subject key. Two calls with the same key
// run one after the other; calls with different keys run in parallel.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates a new KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entry)}
}

// Lock acquires the exclusive lock for the given subject key, blocking until
// it is available. The returned function releases the lock and must be called
// exactly once.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
