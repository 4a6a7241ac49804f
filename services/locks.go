// services/locks.go - Per-game mutation serialization
package services

import "sync"

// SessionLocks hands out one mutex per public game id. Every service
// mutating the same game must go through the same SessionLocks instance
// so that joins, starts and advances serialize against each other.
// Locks are never removed; a stale entry is one idle mutex.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[string]*sync.Mutex)}
}

// Get returns the mutex serializing mutations of one game.
func (l *SessionLocks) Get(gameID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[gameID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[gameID] = m
	}
	return m
}
