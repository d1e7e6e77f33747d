package settlement

import "sync"

// UserLocks serializes every mutation touching one user's bankroll ledger
// and risk-limit counters. Settlement, placement, deposits, and the
// admission gate's reads all take the same per-user lock, so concurrent
// settlement of two bets for one user cannot race and gate reads never see
// torn state. Different users proceed independently.
type UserLocks struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: map[uint64]*sync.Mutex{}}
}

func (l *UserLocks) get(userID uint64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	return m
}

func (l *UserLocks) Lock(userID uint64) {
	l.get(userID).Lock()
}

func (l *UserLocks) Unlock(userID uint64) {
	l.get(userID).Unlock()
}
