package booking

import "sync"

// mentorLocker serializes booking attempts per mentor within this process.
// The database transaction in the repository is the cross-process guard;
// this keeps in-process contenders from both reaching the overlap recheck.
type mentorLocker struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newMentorLocker() *mentorLocker {
	return &mentorLocker{locks: make(map[int64]*sync.Mutex)}
}

func (l *mentorLocker) lock(mentorID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[mentorID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[mentorID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
