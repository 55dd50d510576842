package workflow

import "sync"

// keyLocks serializes transitions per transaction id. Workflows are never
// deleted, so entries live for the process lifetime; the per-entry mutex keeps
// at most one transition in flight per transaction while transitions for
// different transactions proceed in parallel.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: map[string]*sync.Mutex{}}
}

// acquire locks the mutex for key and returns its unlock function.
func (k *keyLocks) acquire(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
