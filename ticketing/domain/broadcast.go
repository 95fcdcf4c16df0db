package domain

import (
	"fmt"
	"regexp"
)

// TenantChannel is the validated name of a tenant-scoped event channel.
// It is constructed once per call site instead of string-concatenating
// channel names ad hoc.
type TenantChannel string

var tenantChannelPattern = regexp.MustCompile(`^tenant-[0-9]+-ticket$`)

// NewTenantChannel builds the ticket event channel for a tenant.
func NewTenantChannel(tenantID uint) TenantChannel {
	return TenantChannel(fmt.Sprintf("tenant-%d-ticket", tenantID))
}

// ParseTenantChannel validates a raw channel name against the allow-list
// pattern. Anything else is rejected.
func ParseTenantChannel(raw string) (TenantChannel, error) {
	if !tenantChannelPattern.MatchString(raw) {
		return "", fmt.Errorf("invalid tenant channel name: %q", raw)
	}
	return TenantChannel(raw), nil
}

// Event actions published on ticket channels.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// TicketEvent is the payload fanned out to tenant subscribers after every
// creation, transition or lane move.
type TicketEvent struct {
	Action   string  `json:"action"`
	Ticket   *Ticket `json:"ticket,omitempty"`
	TicketID uint    `json:"ticket_id,omitempty"` // set for delete events
}

// Broadcaster publishes ticket state changes to per-tenant subscriber
// groups. Implementations must never block the routing pipeline.
type Broadcaster interface {
	Publish(channel TenantChannel, event TicketEvent)
}

// NopBroadcaster descarta todos los eventos; útil en tests.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(TenantChannel, TicketEvent) {}
