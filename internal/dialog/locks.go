package dialog

import "sync"

// userLocks serializes engine invocations per user while letting different
// users proceed concurrently. Entries are created on first use and kept for
// the process lifetime; the per-user footprint is one mutex.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*sync.Mutex)}
}

// lock acquires the user's mutex and returns its unlock func.
func (u *userLocks) lock(userID int64) func() {
	u.mu.Lock()
	m, ok := u.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		u.locks[userID] = m
	}
	u.mu.Unlock()

	m.Lock()
	return m.Unlock
}
