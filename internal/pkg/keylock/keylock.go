package keylock

import "sync"

// KeyedMutex hands out one mutex per key. Admission holds the auction's
// mutex for the whole read-validate-commit window; verification holds the
// order's mutex the same way. Locks for distinct keys never contend.
//
// Mutexes are kept for the life of the process. The key space here is
// bounded by live auctions and orders, so there is no eviction.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Get returns the mutex for key, creating it on first use.
func (k *KeyedMutex) Get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock locks the mutex for key and returns the unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	m := k.Get(key)
	m.Lock()
	return m.Unlock
}
