package services

import "sync"

// instanceLocks serializes decide/advance sequences per instance. Two
// approvers deciding the same instance concurrently take the same lock, so
// consensus is always evaluated against a settled set of approvals; decisions
// on different instances proceed independently. Entries are refcounted and
// removed once the last holder releases, so the map does not accumulate a
// mutex for every instance ever decided.
type instanceLocks struct {
	mu    sync.Mutex
	locks map[int64]*instanceLock
}

type instanceLock struct {
	mu   sync.Mutex
	refs int
}

func newInstanceLocks() *instanceLocks {
	return &instanceLocks{locks: make(map[int64]*instanceLock)}
}

// acquire blocks until the caller holds the instance's lock. Every acquire
// must be paired with release.
func (l *instanceLocks) acquire(instanceID int64) *instanceLock {
	l.mu.Lock()
	entry, ok := l.locks[instanceID]
	if !ok {
		entry = &instanceLock{}
		l.locks[instanceID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return entry
}

func (l *instanceLocks) release(instanceID int64, entry *instanceLock) {
	entry.mu.Unlock()

	l.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, instanceID)
	}
	l.mu.Unlock()
}
