package domain

import (
	"context"
	"time"
)

// MessageGateway envía mensajes salientes por el canal del ticket.
// Todos los usos del núcleo son best-effort: los errores se registran y
// nunca abortan el pipeline de mensajes.
type MessageGateway interface {
	Send(ctx context.Context, ticket *Ticket, body string) error
}

// WelcomeLock is a short-TTL, distributed mutual exclusion per ticket.
// Acquire returns true iff this call created the lock; there is no
// release, expiry is the only unlock. When the backing store is down the
// lock fails open: chat flow availability beats perfect dedup.
type WelcomeLock interface {
	Acquire(ctx context.Context, ticketID uint, ttl time.Duration) bool
}
