package application

import (
	"context"
	"time"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"github.com/sirupsen/logrus"
)

// WelcomeService sends the greeting menu exactly once per ticket within
// the lock window. Concurrent message bursts on a fresh ticket race to
// acquire the lock; only the winner sends.
type WelcomeService struct {
	lock    domain.WelcomeLock
	gateway domain.MessageGateway
	ttl     time.Duration
}

func NewWelcomeService(lock domain.WelcomeLock, gateway domain.MessageGateway, ttl time.Duration) *WelcomeService {
	return &WelcomeService{lock: lock, gateway: gateway, ttl: ttl}
}

// SendMenu delivers the welcome menu body to the ticket's contact unless
// another worker already did within the TTL. Returns true when this call
// sent the message.
func (s *WelcomeService) SendMenu(ctx context.Context, ticket *domain.Ticket, body string) bool {
	if body == "" {
		return false
	}
	if !s.lock.Acquire(ctx, ticket.ID, s.ttl) {
		logrus.Debugf("[WELCOME] Menu suppressed for ticket %d, lock held", ticket.ID)
		return false
	}
	if err := s.gateway.Send(ctx, ticket, "‎"+body); err != nil {
		logrus.Warnf("[WELCOME] Menu send failed for ticket %d: %v", ticket.ID, err)
		return false
	}
	logrus.Infof("[WELCOME] Menu sent for ticket %d", ticket.ID)
	return true
}
