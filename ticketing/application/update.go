package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgError "github.com/projeto-rodrigo/chatia/pkg/error"
	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"github.com/sirupsen/logrus"
)

// UpdateInput describe una transición de estado pedida por un agente o
// por otro servicio del núcleo.
type UpdateInput struct {
	TenantID uint
	TicketID uint

	Status  domain.Status
	UserID  *uint
	QueueID *uint

	// SendFarewellMessage gates both the farewell and the NPS prompt on
	// close. The NPS flow passes false to avoid duplicate sends.
	SendFarewellMessage bool
}

// TicketUpdater is the generic status transition path. Manual agent
// actions and the NPS flow both close tickets through it.
type TicketUpdater struct {
	tickets     domain.TicketRepository
	trackings   domain.TrackingRepository
	settings    domain.SettingsRepository
	users       domain.UserRepository
	gateway     domain.MessageGateway
	broadcaster domain.Broadcaster
}

func NewTicketUpdater(
	tickets domain.TicketRepository,
	trackings domain.TrackingRepository,
	settings domain.SettingsRepository,
	users domain.UserRepository,
	gateway domain.MessageGateway,
	broadcaster domain.Broadcaster,
) *TicketUpdater {
	return &TicketUpdater{
		tickets:     tickets,
		trackings:   trackings,
		settings:    settings,
		users:       users,
		gateway:     gateway,
		broadcaster: broadcaster,
	}
}

// Update applies the requested transition. Closing a ticket may divert it
// to the NPS branch instead; the caller gets whichever ticket state
// resulted.
func (u *TicketUpdater) Update(ctx context.Context, in UpdateInput) (*domain.Ticket, error) {
	ticket, err := u.tickets.FindByID(ctx, in.TenantID, in.TicketID)
	if err != nil {
		return nil, err
	}

	if in.Status != "" && in.Status != ticket.Status && !ticket.Status.CanTransition(in.Status) {
		return nil, pkgError.ValidationError(fmt.Sprintf(
			"invalid status transition: %s -> %s", ticket.Status, in.Status))
	}

	if in.Status == domain.StatusClosed {
		return u.close(ctx, ticket, in)
	}

	if in.Status != "" {
		ticket.Status = in.Status
	}
	if in.UserID != nil {
		ticket.UserID = in.UserID
	}
	if in.QueueID != nil {
		ticket.QueueID = in.QueueID
	}
	if ticket.Status == domain.StatusOpen {
		ticket.IsBot = false
	}

	if err := u.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	u.broadcaster.Publish(domain.NewTenantChannel(in.TenantID), domain.TicketEvent{
		Action: domain.ActionUpdate,
		Ticket: ticket,
	})
	return ticket, nil
}

func (u *TicketUpdater) close(ctx context.Context, ticket *domain.Ticket, in UpdateInput) (*domain.Ticket, error) {
	settings, err := u.settings.TenantSettings(ctx, in.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant settings: %w", err)
	}
	channel, err := u.settings.ChannelAccount(ctx, in.TenantID, ticket.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel account: %w", err)
	}
	tracking, err := u.trackings.FindOrCreate(ctx, in.TenantID, ticket.ID, ticket.ChannelID)
	if err != nil {
		return nil, err
	}

	var agent *domain.User
	if id := firstNonNil(ticket.UserID, in.UserID); id != nil {
		agent, err = u.users.FindByID(ctx, in.TenantID, *id)
		if err != nil {
			logrus.Warnf("[UPDATE] Failed to load agent %d: %v", *id, err)
		}
	}

	now := time.Now().UTC()

	// NPS branch: instead of closing, park the ticket waiting for the
	// numeric reply. Asked at most once per tracking.
	canAskNps := settings.UserRating &&
		in.SendFarewellMessage &&
		channel.RatingMessage != "" &&
		!ticket.IsGroup &&
		!tracking.Rated &&
		tracking.RatingAt == nil

	if canAskNps {
		u.sendBestEffort(ctx, ticket, channel, "‎"+channel.RatingMessage)

		tracking.UserID = ticket.UserID
		tracking.ClosedAt = &now
		if err := u.trackings.Update(ctx, tracking); err != nil {
			return nil, err
		}

		ticket.Status = domain.StatusNps
		if err := u.tickets.Update(ctx, ticket); err != nil {
			return nil, err
		}

		logrus.Infof("[UPDATE] Ticket %d moved to nps, waiting for rating (tenant %d)", ticket.ID, in.TenantID)
		u.broadcaster.Publish(domain.NewTenantChannel(in.TenantID), domain.TicketEvent{
			Action:   domain.ActionDelete,
			TicketID: ticket.ID,
		})
		return ticket, nil
	}

	if in.SendFarewellMessage {
		if body := farewellBody(agent, channel); body != "" {
			canSendFarewell := ticket.Status != domain.StatusPending || settings.SendFarewellWaitingTicket
			if canSendFarewell && (!ticket.IsGroup || channel.GroupAsTicket) {
				u.sendBestEffort(ctx, ticket, channel, body)
			}
		}
	}

	tracking.UserID = ticket.UserID
	tracking.ClosedAt = &now
	tracking.FinishedAt = &now
	if err := u.trackings.Update(ctx, tracking); err != nil {
		return nil, err
	}

	ticket.Status = domain.StatusClosed
	ticket.ClosedAt = &now
	if err := u.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	logrus.Infof("[UPDATE] Ticket %d closed (tenant %d)", ticket.ID, in.TenantID)
	u.broadcaster.Publish(domain.NewTenantChannel(in.TenantID), domain.TicketEvent{
		Action:   domain.ActionDelete,
		TicketID: ticket.ID,
	})
	return ticket, nil
}

// farewellBody picks the agent's own farewell over the channel-wide
// completion message.
func farewellBody(agent *domain.User, channel *domain.ChannelAccount) string {
	if agent != nil && strings.TrimSpace(agent.FarewellMessage) != "" {
		return "‎" + agent.FarewellMessage
	}
	if strings.TrimSpace(channel.ComplationMessage) != "" {
		return "‎" + channel.ComplationMessage
	}
	return ""
}

func (u *TicketUpdater) sendBestEffort(ctx context.Context, ticket *domain.Ticket, channel *domain.ChannelAccount, body string) {
	if ticket.Channel != "whatsapp" || !channel.Connected {
		return
	}
	if err := u.gateway.Send(ctx, ticket, body); err != nil {
		logrus.Warnf("[UPDATE] Best-effort send failed for ticket %d: %v", ticket.ID, err)
	}
}

func firstNonNil(ids ...*uint) *uint {
	for _, id := range ids {
		if id != nil && *id != 0 {
			return id
		}
	}
	return nil
}
