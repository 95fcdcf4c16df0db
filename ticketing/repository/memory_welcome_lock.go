package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryWelcomeLock is the in-process twin of ValkeyWelcomeLock, for
// single-node deployments without Valkey and for tests.
type MemoryWelcomeLock struct {
	mu        sync.Mutex
	deadlines map[uint]time.Time
	now       func() time.Time
}

func NewMemoryWelcomeLock() *MemoryWelcomeLock {
	return &MemoryWelcomeLock{
		deadlines: make(map[uint]time.Time),
		now:       time.Now,
	}
}

// NewMemoryWelcomeLockWithClock allows tests to control expiry.
func NewMemoryWelcomeLockWithClock(now func() time.Time) *MemoryWelcomeLock {
	return &MemoryWelcomeLock{
		deadlines: make(map[uint]time.Time),
		now:       now,
	}
}

func (l *MemoryWelcomeLock) Acquire(_ context.Context, ticketID uint, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if deadline, ok := l.deadlines[ticketID]; ok && now.Before(deadline) {
		return false
	}
	l.deadlines[ticketID] = now.Add(ttl)
	return true
}
