// Package lock provides per-user locking for points mutations.
// Every engine operation is a read-modify-write against the user record;
// holding the identity's lock for the duration makes the mutation atomic
// within the process.
package lock

import "sync"

// userMutex wraps a mutex with reference counting for cleanup.
type userMutex struct {
	mu       sync.Mutex
	refCount int
}

// UserLock provides per-identity locking to prevent race conditions
// during points mutations.
type UserLock struct {
	locks sync.Map // map[string]*userMutex
	pool  sync.Pool
}

// NewUserLock creates a new UserLock instance.
func NewUserLock() *UserLock {
	return &UserLock{
		pool: sync.Pool{
			New: func() any {
				return &userMutex{}
			},
		},
	}
}

// getLock retrieves or creates a mutex for the given identity.
func (ul *UserLock) getLock(identity string) *userMutex {
	if v, ok := ul.locks.Load(identity); ok {
		return v.(*userMutex)
	}

	newLock := ul.pool.Get().(*userMutex)
	newLock.refCount = 0

	actual, loaded := ul.locks.LoadOrStore(identity, newLock)
	if loaded {
		// Another goroutine created the lock first, return ours to pool
		ul.pool.Put(newLock)
	}
	return actual.(*userMutex)
}

// Lock acquires the lock for an identity.
// This should be called before any points-modifying operation.
func (ul *UserLock) Lock(identity string) {
	lock := ul.getLock(identity)
	lock.mu.Lock()
	lock.refCount++
}

// Unlock releases the lock for an identity.
func (ul *UserLock) Unlock(identity string) {
	if v, ok := ul.locks.Load(identity); ok {
		lock := v.(*userMutex)
		lock.refCount--
		lock.mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false otherwise.
func (ul *UserLock) TryLock(identity string) bool {
	lock := ul.getLock(identity)
	if lock.mu.TryLock() {
		lock.refCount++
		return true
	}
	return false
}

// WithLock executes a function while holding the identity's lock.
func (ul *UserLock) WithLock(identity string, fn func() error) error {
	ul.Lock(identity)
	defer ul.Unlock(identity)
	return fn()
}
