package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/projeto-rodrigo/chatia/infrastructure/valkey"
	"github.com/sirupsen/logrus"
)

// ValkeyWelcomeLock implements domain.WelcomeLock on the shared Valkey
// store, so the cooldown holds across server instances.
type ValkeyWelcomeLock struct {
	client *valkey.Client
	prefix string
}

func NewValkeyWelcomeLock(client *valkey.Client) *ValkeyWelcomeLock {
	return &ValkeyWelcomeLock{
		client: client,
		prefix: client.Key("welcome-lock") + ":",
	}
}

func (l *ValkeyWelcomeLock) fullKey(ticketID uint) string {
	return l.prefix + strconv.FormatUint(uint64(ticketID), 10)
}

// Acquire does SET key NX EX ttl: the key is created only when absent and
// expires on its own. Returns true iff this call created it. When Valkey
// is unreachable the lock fails open so message processing never stalls
// on the cooldown.
func (l *ValkeyWelcomeLock) Acquire(ctx context.Context, ticketID uint, ttl time.Duration) bool {
	cmd := l.client.Inner().B().Set().
		Key(l.fullKey(ticketID)).
		Value("1").
		Nx().
		Ex(ttl).
		Build()

	err := l.client.Inner().Do(ctx, cmd).Error()
	if err == nil {
		return true
	}
	if valkey.IsNil(err) {
		// NX did not apply: another caller holds the cooldown.
		return false
	}

	logrus.Errorf("[WELCOME-LOCK] valkey error, failing open: %v", err)
	return true
}
