package storage

import (
	"slices"
	"sync"
)

// LockKey names a critical section. A user's cultist profile and adventure
// session share one key.
type LockKey string

// UserKey is the lock guarding a user's profile and session.
func UserKey(id string) LockKey { return LockKey("user/" + id) }

// ServerKey is the lock guarding a server profile.
func ServerKey(id string) LockKey { return LockKey("server/" + id) }

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// keyLocks hands out one mutex per key, dropping it when unused.
type keyLocks struct {
	mu    sync.Mutex
	locks map[LockKey]*keyLock
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[LockKey]*keyLock)}
}

// lockAll acquires every key in sorted order and returns the release func.
// Sorting gives every caller the same acquisition order, so two callers
// locking the same pair cannot deadlock.
func (k *keyLocks) lockAll(keys []LockKey) (sorted []LockKey, unlock func()) {
	sorted = slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]*keyLock, 0, len(sorted))
	for _, key := range sorted {
		l := k.acquire(key)
		l.mu.Lock()
		held = append(held, l)
	}
	return sorted, func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			k.release(sorted[i])
		}
	}
}

func (k *keyLocks) acquire(key LockKey) *keyLock {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	return l
}

func (k *keyLocks) release(key LockKey) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l := k.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}

func (k *keyLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
