package stripe

import "sync"

// LockManager serializes the processing of webhook deliveries that share a
// key, while deliveries with different keys run in parallel. A key is
// forgotten as soon as nobody holds or waits for it.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

// NewLockManager creates a new lock manager
func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]*keyLock)}
}

// Lock acquires the lock of the given key and returns the function that
// releases it.
func (lm *LockManager) Lock(key string) func() {
	lm.mu.Lock()
	lock, ok := lm.locks[key]
	if !ok {
		lock = &keyLock{}
		lm.locks[key] = lock
	}
	lock.refs++
	lm.mu.Unlock()

	lock.Lock()
	return func() {
		lock.Unlock()
		lm.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(lm.locks, key)
		}
		lm.mu.Unlock()
	}
}

// Size returns the number of keys currently held or waited for.
func (lm *LockManager) Size() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.locks)
}
