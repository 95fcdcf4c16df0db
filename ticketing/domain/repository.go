package domain

import (
	"context"
	"time"
)

// TicketRepository persiste tickets. Las búsquedas por identidad hacen
// OR entre todas las claves presentes y devuelven el más reciente.
type TicketRepository interface {
	// FindLiveByKeys returns the newest ticket in the live status set
	// matching any candidate key, or nil when none exists.
	FindLiveByKeys(ctx context.Context, tenantID, channelID uint, keys IdentityKeys) (*Ticket, error)

	// FindLiveDuplicates returns every live ticket matching the keys,
	// oldest first. The resolver's post-create re-check uses it to pick
	// the surviving row when two resolves raced.
	FindLiveDuplicates(ctx context.Context, tenantID, channelID uint, keys IdentityKeys) ([]*Ticket, error)

	// FindRecentByKeys returns the most recently updated ticket (any
	// status) touched within the given window, or nil.
	FindRecentByKeys(ctx context.Context, tenantID, channelID uint, keys IdentityKeys, window time.Duration) (*Ticket, error)

	FindByID(ctx context.Context, tenantID, id uint) (*Ticket, error)
	Create(ctx context.Context, ticket *Ticket) error
	Update(ctx context.Context, ticket *Ticket) error

	// Delete removes a row outright. Only the resolver's duplicate
	// re-check uses it; closed tickets are otherwise kept forever.
	Delete(ctx context.Context, tenantID, id uint) error

	// SetLaneTimer / ClearLaneTimer persist the auto-advance schedule so
	// the sweep job can recover it after a restart.
	SetLaneTimer(ctx context.Context, tenantID, ticketID uint, startedAt, moveAt time.Time) error
	ClearLaneTimer(ctx context.Context, tenantID, ticketID uint) error

	// FindExpiredLaneTimers returns tickets whose persisted move-at time
	// has passed and that still allow automatic moves.
	FindExpiredLaneTimers(ctx context.Context, now time.Time) ([]*Ticket, error)
}

type ContactRepository interface {
	FindByID(ctx context.Context, tenantID, id uint) (*Contact, error)

	// FindByKeys busca por cualquier clave presente (number, lid, jid),
	// OR entre ellas. Devuelve nil sin error cuando no hay coincidencia.
	FindByKeys(ctx context.Context, tenantID uint, number, lid, jid string) (*Contact, error)

	Create(ctx context.Context, contact *Contact) error
	Update(ctx context.Context, contact *Contact) error
}

// LaneRepository maneja tags kanban y la pertenencia de tickets a lanes.
type LaneRepository interface {
	// FindKanbanLane returns the lane only if it exists, is kanban and
	// belongs to the tenant.
	FindKanbanLane(ctx context.Context, tenantID, laneID uint) (*Tag, error)

	// CurrentLane returns the ticket's active kanban lane, or nil when
	// the ticket is not on the board.
	CurrentLane(ctx context.Context, tenantID, ticketID uint) (*Tag, error)

	// ReplaceKanbanLane removes every kanban tag from the ticket and
	// attaches the given lane.
	ReplaceKanbanLane(ctx context.Context, tenantID, ticketID, laneID uint) error
}

type TrackingRepository interface {
	FindOrCreate(ctx context.Context, tenantID, ticketID, channelID uint) (*TicketTracking, error)

	// FindLatest returns the newest tracking for the ticket regardless
	// of state, or nil when the ticket never had one. The NPS handler
	// uses it so a finished tracking still blocks a second rating.
	FindLatest(ctx context.Context, tenantID, ticketID uint) (*TicketTracking, error)

	Update(ctx context.Context, tracking *TicketTracking) error
}

type RatingRepository interface {
	Create(ctx context.Context, rating *UserRating) error
}

// SettingsRepository carga la configuración del tenant y de la cuenta de
// canal que el resolver consulta en cada mensaje.
type SettingsRepository interface {
	TenantSettings(ctx context.Context, tenantID uint) (*TenantSettings, error)
	ChannelAccount(ctx context.Context, tenantID, channelID uint) (*ChannelAccount, error)
}
