package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"github.com/sirupsen/logrus"
)

// LaneMover moves a ticket between kanban lanes: replaces the current
// kanban tag, clears any persisted lane timer, optionally sends the lane
// greeting and broadcasts the change.
type LaneMover struct {
	tickets     domain.TicketRepository
	lanes       domain.LaneRepository
	settings    domain.SettingsRepository
	users       domain.UserRepository
	gateway     domain.MessageGateway
	broadcaster domain.Broadcaster
}

func NewLaneMover(
	tickets domain.TicketRepository,
	lanes domain.LaneRepository,
	settings domain.SettingsRepository,
	users domain.UserRepository,
	gateway domain.MessageGateway,
	broadcaster domain.Broadcaster,
) *LaneMover {
	return &LaneMover{
		tickets:     tickets,
		lanes:       lanes,
		settings:    settings,
		users:       users,
		gateway:     gateway,
		broadcaster: broadcaster,
	}
}

func (m *LaneMover) Move(ctx context.Context, tenantID, ticketID, toLaneID uint, sendGreeting bool) (*domain.Ticket, error) {
	ticket, err := m.tickets.FindByID(ctx, tenantID, ticketID)
	if err != nil {
		return nil, err
	}

	toLane, err := m.lanes.FindKanbanLane(ctx, tenantID, toLaneID)
	if err != nil {
		return nil, err
	}

	if err := m.lanes.ReplaceKanbanLane(ctx, tenantID, ticketID, toLaneID); err != nil {
		return nil, fmt.Errorf("failed to replace kanban lane: %w", err)
	}

	if err := m.tickets.ClearLaneTimer(ctx, tenantID, ticketID); err != nil {
		logrus.Warnf("[LANE] Failed to clear lane timer for ticket %d: %v", ticketID, err)
	}

	logrus.Infof("[LANE] Ticket %d moved to lane %q (%d)", ticketID, toLane.Name, toLaneID)

	if sendGreeting && strings.TrimSpace(toLane.GreetingMessageLane) != "" {
		m.sendGreeting(ctx, ticket, toLane)
	}

	m.broadcaster.Publish(domain.NewTenantChannel(tenantID), domain.TicketEvent{
		Action: domain.ActionUpdate,
		Ticket: ticket,
	})
	return ticket, nil
}

func (m *LaneMover) sendGreeting(ctx context.Context, ticket *domain.Ticket, lane *domain.Tag) {
	body := lane.GreetingMessageLane

	settings, err := m.settings.TenantSettings(ctx, ticket.TenantID)
	if err != nil {
		logrus.Warnf("[LANE] Failed to load settings for greeting on ticket %d: %v", ticket.ID, err)
	} else if settings.SendSignMessage && ticket.UserID != nil {
		if agent, err := m.users.FindByID(ctx, ticket.TenantID, *ticket.UserID); err == nil && agent != nil {
			body = fmt.Sprintf("*%s:*\n%s", agent.Name, body)
		}
	}

	if err := m.gateway.Send(ctx, ticket, body); err != nil {
		logrus.Warnf("[LANE] Greeting send failed for ticket %d: %v", ticket.ID, err)
	}
}
