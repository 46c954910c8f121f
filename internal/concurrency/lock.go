package concurrency

import "sync"

// SessionLocks serializes work per session id. Operations on different ids
// never contend on each other's lock, only on the short map access.
type SessionLocks struct {
	locks map[string]*sync.Mutex
	mu    sync.Mutex
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

func (m *SessionLocks) Lock(sessionID string) {
	m.mu.Lock()
	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[sessionID] = lock
	}
	m.mu.Unlock()
	lock.Lock()
}

func (m *SessionLocks) Unlock(sessionID string) {
	m.mu.Lock()
	lock, ok := m.locks[sessionID]
	m.mu.Unlock()
	if ok {
		lock.Unlock()
	}
}

// Forget drops the lock entry for an ended session so the map does not grow
// without bound. Callers must not hold the lock when forgetting it.
func (m *SessionLocks) Forget(sessionID string) {
	m.mu.Lock()
	delete(m.locks, sessionID)
	m.mu.Unlock()
}
