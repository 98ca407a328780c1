package claim

import "sync"

// donationLocks hands out one mutex per donation id so that claim attempts on
// the same donation serialize while claims on different donations never
// contend. Entries are reference counted and dropped once the last holder
// releases, keeping the map bounded by in-flight attempts.
type donationLocks struct {
	mu    sync.Mutex
	locks map[string]*donationLock
}

type donationLock struct {
	mu   sync.Mutex
	refs int
}

func newDonationLocks() *donationLocks {
	return &donationLocks{locks: make(map[string]*donationLock)}
}

func (l *donationLocks) lock(id string) {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &donationLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *donationLocks) unlock(id string) {
	l.mu.Lock()
	entry := l.locks[id]
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
