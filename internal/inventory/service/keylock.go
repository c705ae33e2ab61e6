package service

import "sync"

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// keyLocks hands out one mutex per product id. Entries are dropped once no
// goroutine holds or waits on them.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

// lock blocks until key is free and returns the matching unlock func.
func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
