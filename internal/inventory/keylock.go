package inventory

import "sync"

// keyedMutex serializes load-check-mutate-save sequences per product, so
// concurrent reservations against one product cannot race past the stock
// check. Mutexes are created on first use and kept for the process lifetime;
// the product catalog is assumed to be bounded.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
