package application

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"github.com/projeto-rodrigo/chatia/ticketing/repository"
)

func TestWelcome_SendsMenuOnce(t *testing.T) {
	gateway := &fakeGateway{}
	svc := NewWelcomeService(repository.NewMemoryWelcomeLock(), gateway, 8*time.Second)
	ticket := &domain.Ticket{ID: 1, TenantID: 1}

	assert.True(t, svc.SendMenu(context.Background(), ticket, "Escolha uma opção"))
	assert.False(t, svc.SendMenu(context.Background(), ticket, "Escolha uma opção"))
	assert.Len(t, gateway.bodies(), 1)
	assert.Equal(t, "‎Escolha uma opção", gateway.bodies()[0])
}

// Una ráfaga de N envíos concurrentes sobre el mismo ticket: exactamente
// uno gana el lock y envía.
func TestWelcome_ConcurrentBurstSendsOne(t *testing.T) {
	gateway := &fakeGateway{}
	svc := NewWelcomeService(repository.NewMemoryWelcomeLock(), gateway, 8*time.Second)
	ticket := &domain.Ticket{ID: 1, TenantID: 1}

	const n = 16
	var sent int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.SendMenu(context.Background(), ticket, "menu") {
				atomic.AddInt32(&sent, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), sent)
	assert.Len(t, gateway.bodies(), 1)
}

func TestWelcome_ExpiredLockReacquires(t *testing.T) {
	now := time.Now()
	lock := repository.NewMemoryWelcomeLockWithClock(func() time.Time { return now })
	gateway := &fakeGateway{}
	svc := NewWelcomeService(lock, gateway, 8*time.Second)
	ticket := &domain.Ticket{ID: 1, TenantID: 1}

	assert.True(t, svc.SendMenu(context.Background(), ticket, "menu"))

	now = now.Add(9 * time.Second)
	assert.True(t, svc.SendMenu(context.Background(), ticket, "menu"), "expiry is the only unlock")
	assert.Len(t, gateway.bodies(), 2)
}

func TestWelcome_EmptyBodySkipsLock(t *testing.T) {
	lock := repository.NewMemoryWelcomeLock()
	svc := NewWelcomeService(lock, &fakeGateway{}, 8*time.Second)
	ticket := &domain.Ticket{ID: 1, TenantID: 1}

	assert.False(t, svc.SendMenu(context.Background(), ticket, ""))
	assert.True(t, lock.Acquire(context.Background(), ticket.ID, time.Second), "empty body must not consume the lock")
}
