// Package keyedlock serializes operations per key. Work-order mutations must
// not interleave for the same order id: two staff clients editing the same
// order queue behind one another instead of racing to a last-writer-wins
// overwrite.
package keyedlock

import "sync"

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// KeyedLock provides one mutex per key, created on demand and reclaimed when
// the last holder releases it. Locks for different keys never contend.
type KeyedLock[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*lockEntry
}

// New creates an empty KeyedLock.
func New[K comparable]() *KeyedLock[K] {
	return &KeyedLock[K]{
		locks: make(map[K]*lockEntry),
	}
}

// Lock acquires the mutex for key, blocking until it is free, and returns
// the matching unlock function.
//
//	unlock := locks.Lock(orderID)
//	defer unlock()
func (kl *KeyedLock[K]) Lock(key K) (unlock func()) {
	kl.mu.Lock()
	e, ok := kl.locks[key]
	if !ok {
		e = &lockEntry{}
		kl.locks[key] = e
	}
	e.refs++
	kl.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		kl.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(kl.locks, key)
		}
		kl.mu.Unlock()
	}
}
