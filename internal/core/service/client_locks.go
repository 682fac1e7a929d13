package service

import "sync"

// clientLocks hands out one mutex per client id. Entries live only while
// someone holds or waits on them, so idle clients cost nothing.
type clientLocks struct {
	mu    sync.Mutex
	locks map[string]*clientLock
}

type clientLock struct {
	mu   sync.Mutex
	refs int
}

func newClientLocks() *clientLocks {
	return &clientLocks{locks: make(map[string]*clientLock)}
}

// lock blocks until clientID is free and returns the matching unlock.
func (l *clientLocks) lock(clientID string) (unlock func()) {
	l.mu.Lock()
	cl, ok := l.locks[clientID]
	if !ok {
		cl = &clientLock{}
		l.locks[clientID] = cl
	}
	cl.refs++
	l.mu.Unlock()

	cl.mu.Lock()
	return func() {
		cl.mu.Unlock()
		l.mu.Lock()
		cl.refs--
		if cl.refs == 0 {
			delete(l.locks, clientID)
		}
		l.mu.Unlock()
	}
}

// held reports how many clients currently have a lock entry.
func (l *clientLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
