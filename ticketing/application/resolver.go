package application

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	pkgError "github.com/projeto-rodrigo/chatia/pkg/error"
	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"github.com/sirupsen/logrus"
)

// ResolveInput describes one inbound event to be mapped to a ticket.
type ResolveInput struct {
	TenantID  uint
	ChannelID uint

	Contact *domain.Contact
	// GroupContact, when set, is the routing target instead of the
	// individual sender.
	GroupContact *domain.Contact

	UnreadMessages int
	QueueID        *uint
	UserID         *uint

	Channel    string // transport name, e.g. "whatsapp"
	IsImported bool
	IsForward  bool
	IsTransfer bool
	IsCampaign bool
}

// TicketResolver maps an inbound event to exactly one ticket, creating it
// when necessary. It never produces two live tickets for the same
// (tenant, channel, identity).
type TicketResolver struct {
	tickets     domain.TicketRepository
	settings    domain.SettingsRepository
	broadcaster domain.Broadcaster

	// stripes serialize concurrent resolves for the same identity inside
	// this process. Cross-process duplicates are handled by the
	// post-create re-check below.
	stripes []sync.Mutex
}

func NewTicketResolver(tickets domain.TicketRepository, settings domain.SettingsRepository, broadcaster domain.Broadcaster, stripeCount int) *TicketResolver {
	if stripeCount <= 0 {
		stripeCount = 64
	}
	return &TicketResolver{
		tickets:     tickets,
		settings:    settings,
		broadcaster: broadcaster,
		stripes:     make([]sync.Mutex, stripeCount),
	}
}

func (r *TicketResolver) stripeFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &r.stripes[h.Sum32()%uint32(len(r.stripes))]
}

// Resolve implements find-or-create with the precedence: existing live
// ticket > recently-updated ticket within the reopen window > new ticket.
func (r *TicketResolver) Resolve(ctx context.Context, in ResolveInput) (*domain.Ticket, error) {
	if in.Contact == nil {
		return nil, pkgError.ValidationError("contact: cannot be blank.")
	}

	keys := domain.IdentityOf(in.Contact, in.GroupContact)
	if keys.Empty() {
		return nil, domain.ErrNoIdentity
	}

	settings, err := r.settings.TenantSettings(ctx, in.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant settings: %w", err)
	}
	channel, err := r.settings.ChannelAccount(ctx, in.TenantID, in.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel account: %w", err)
	}

	mu := r.stripeFor(keys.StripeKey(in.TenantID, in.ChannelID))
	mu.Lock()
	defer mu.Unlock()

	// Step 1: existing live ticket
	ticket, err := r.tickets.FindLiveByKeys(ctx, in.TenantID, in.ChannelID, keys)
	if err != nil {
		return nil, err
	}
	if ticket != nil {
		return r.reuseLive(ctx, ticket, keys, in)
	}

	// Step 2: reopen window
	if channel.TimeCreateNewTicket != 0 {
		window := time.Duration(channel.TimeCreateNewTicket) * time.Minute
		recent, err := r.tickets.FindRecentByKeys(ctx, in.TenantID, in.ChannelID, keys, window)
		if err != nil {
			return nil, err
		}
		if recent != nil {
			if recent.Status == domain.StatusNps {
				// NPS tickets wait for the reply interpreter; never
				// reopened by inbound resolution.
				return recent, nil
			}
			return r.reopen(ctx, recent, in)
		}
	}

	// Step 3: create
	return r.create(ctx, keys, settings, channel, in)
}

func (r *TicketResolver) reuseLive(ctx context.Context, ticket *domain.Ticket, keys domain.IdentityKeys, in ResolveInput) (*domain.Ticket, error) {
	changed := ticket.MergeIdentityKeys(keys.Lid, keys.Jid)

	if !in.IsCampaign {
		ticket.UnreadMessages = in.UnreadMessages
		ticket.IsBot = false
		changed = true
	}

	if changed {
		if err := r.tickets.Update(ctx, ticket); err != nil {
			return nil, err
		}
	}

	// Reject silent takeover of a ticket already in service. This is a
	// deliberate race-safety measure: the caller must see the conflict.
	if !in.IsCampaign && !in.IsForward && ticket.HasAssignee(in.UserID, in.QueueID) {
		return nil, pkgError.ConflictError(fmt.Sprintf(
			"Ticket em outro atendimento. Atendente: %s - Fila: %s",
			formatAssignee(ticket.UserID), formatAssignee(ticket.QueueID)))
	}

	return ticket, nil
}

func (r *TicketResolver) reopen(ctx context.Context, ticket *domain.Ticket, in ResolveInput) (*domain.Ticket, error) {
	ticket.Status = domain.StatusPending
	ticket.UnreadMessages = in.UnreadMessages
	ticket.TenantID = in.TenantID
	ticket.ClosedAt = nil

	// Routing hints apply on reopen the same as on creation.
	if in.QueueID != nil && *in.QueueID != 0 {
		ticket.QueueID = in.QueueID
	}
	if in.UserID != nil && *in.UserID != 0 {
		ticket.UserID = in.UserID
	}

	if err := r.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	logrus.Infof("[RESOLVER] Reopened ticket %d as pending (tenant %d)", ticket.ID, in.TenantID)
	r.broadcaster.Publish(domain.NewTenantChannel(in.TenantID), domain.TicketEvent{
		Action: domain.ActionUpdate,
		Ticket: ticket,
	})
	return ticket, nil
}

func (r *TicketResolver) create(ctx context.Context, keys domain.IdentityKeys, settings *domain.TenantSettings, channel *domain.ChannelAccount, in ResolveInput) (*domain.Ticket, error) {
	target := in.Contact
	isGroup := false
	if in.GroupContact != nil {
		target = in.GroupContact
		isGroup = true
	}

	openAsLGPD := settings.EnableLGPD &&
		!in.IsCampaign &&
		!in.IsTransfer &&
		settings.LgpdMessage != "" &&
		(settings.LgpdConsentRequired || in.Contact.LgpdAcceptedAt == nil)

	ticket := &domain.Ticket{
		TenantID:           in.TenantID,
		ChannelID:          in.ChannelID,
		ContactID:          target.ID,
		IsGroup:            isGroup,
		IsBot:              !isGroup,
		Channel:            in.Channel,
		UnreadMessages:     in.UnreadMessages,
		Lid:                keys.Lid,
		Jid:                keys.Jid,
		AllowAutomaticMove: true,
	}
	if in.IsImported {
		now := time.Now().UTC()
		ticket.Imported = &now
	}

	// Initial status tie-break: LGPD first, then wallet routing and the
	// group track.
	switch {
	case !in.IsImported && openAsLGPD && !isGroup:
		ticket.Status = domain.StatusLgpd
	case channel.GroupAsTicket || !isGroup:
		ticket.Status = domain.StatusPending
		if settings.DirectTicketsToWallets && in.Contact.WalletUserID != nil {
			ticket.Status = domain.StatusOpen
			ticket.UserID = in.Contact.WalletUserID
		}
	default:
		ticket.Status = domain.StatusGroup
	}

	if in.QueueID != nil && *in.QueueID != 0 {
		ticket.QueueID = in.QueueID
	}
	if in.UserID != nil && *in.UserID != 0 {
		ticket.UserID = in.UserID
	}

	if err := r.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	// Re-check for a concurrent create from another process: the oldest
	// row wins, ours gets discarded.
	if winner, err := r.dedupe(ctx, ticket, keys, in); err == nil && winner != nil {
		return winner, nil
	}

	logrus.Infof("[RESOLVER] Created ticket %d with status %q (tenant %d, channel %d)",
		ticket.ID, ticket.Status, in.TenantID, in.ChannelID)
	r.broadcaster.Publish(domain.NewTenantChannel(in.TenantID), domain.TicketEvent{
		Action: domain.ActionCreate,
		Ticket: ticket,
	})
	return ticket, nil
}

// dedupe returns the surviving older ticket when the creation raced with
// another resolve, or nil when our row stands. The oldest live row is
// authoritative; only our own duplicate gets deleted, competing processes
// discard theirs the same way.
func (r *TicketResolver) dedupe(ctx context.Context, created *domain.Ticket, keys domain.IdentityKeys, in ResolveInput) (*domain.Ticket, error) {
	duplicates, err := r.tickets.FindLiveDuplicates(ctx, in.TenantID, in.ChannelID, keys)
	if err != nil || len(duplicates) <= 1 {
		return nil, err
	}

	winner := duplicates[0]
	if winner.ID == created.ID {
		return nil, nil
	}

	logrus.Warnf("[RESOLVER] Concurrent resolve detected for identity %s, discarding duplicate %d in favor of %d",
		keys.StripeKey(in.TenantID, in.ChannelID), created.ID, winner.ID)

	if err := r.tickets.Delete(ctx, in.TenantID, created.ID); err != nil {
		logrus.Errorf("[RESOLVER] Failed to delete duplicate ticket %d: %v", created.ID, err)
	}

	winner.MergeIdentityKeys(keys.Lid, keys.Jid)
	winner.UnreadMessages = in.UnreadMessages
	if err := r.tickets.Update(ctx, winner); err != nil {
		return nil, err
	}
	return winner, nil
}

func formatAssignee(id *uint) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("#%d", *id)
}
