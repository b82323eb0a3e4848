package application

import "sync"

// tradeLocker hands out one mutex per trade id. Reconciliation and
// cancellation of the same trade are serialized, unrelated trades proceed in
// parallel. Entries are never evicted, the active trade set stays small.
type tradeLocker struct {
	mtx   sync.Mutex
	locks map[string]*sync.Mutex
}

func newTradeLocker() *tradeLocker {
	return &tradeLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *tradeLocker) lockOf(tradeID string) *sync.Mutex {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	lock, ok := l.locks[tradeID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[tradeID] = lock
	}
	return lock
}
