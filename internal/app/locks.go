package app

import "sync"

// ClientLocks serializes commands per client id. Cores are lock-free; every
// load-decide-persist sequence in a service runs under the client's lock so two
// concurrent requests never interleave against the same client.
type ClientLocks struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// NewClientLocks creates an empty lock table.
func NewClientLocks() *ClientLocks {
	return &ClientLocks{locks: make(map[string]*refMutex)}
}

// Lock blocks until the client's lock is held and returns its release func.
func (l *ClientLocks) Lock(clientID string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[clientID]
	if !ok {
		m = &refMutex{}
		l.locks[clientID] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, clientID)
		}
		l.mu.Unlock()
	}
}

func (l *ClientLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
