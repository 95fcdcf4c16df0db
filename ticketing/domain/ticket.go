package domain

import "time"

// Ticket representa una sesión de conversación entre un canal del tenant
// y un contacto. La fila nunca se elimina; cerrar un ticket solo lo saca
// del conjunto "live".
type Ticket struct {
	ID        uint   `json:"id"`
	TenantID  uint   `json:"tenant_id"`
	ContactID uint   `json:"contact_id"`
	ChannelID uint   `json:"channel_id"` // whatsapp account id
	Status    Status `json:"status"`

	UserID  *uint `json:"user_id,omitempty"`  // assigned agent
	QueueID *uint `json:"queue_id,omitempty"` // assigned queue

	// Lid/Jid mirror the contact's alternate identity keys so the
	// resolver can match tickets even when the contact row changes.
	Lid string `json:"lid,omitempty"`
	Jid string `json:"jid,omitempty"`

	IsGroup        bool       `json:"is_group"`
	IsBot          bool       `json:"is_bot"`
	Channel        string     `json:"channel,omitempty"` // transport name, e.g. "whatsapp"
	UnreadMessages int        `json:"unread_messages"`
	Imported       *time.Time `json:"imported,omitempty"`

	// Lane timer bookkeeping, persisted so the sweep job can recover
	// timers across restarts.
	LaneTimerStartedAt *time.Time `json:"lane_timer_started_at,omitempty"`
	LaneNextMoveAt     *time.Time `json:"lane_next_move_at,omitempty"`
	AllowAutomaticMove bool       `json:"allow_automatic_move"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// MergeIdentityKeys copies the candidate lid/jid onto the ticket when the
// ticket does not have them yet. Existing keys are never overwritten.
// Returns true when anything changed.
func (t *Ticket) MergeIdentityKeys(lid, jid string) bool {
	changed := false
	if lid != "" && t.Lid == "" {
		t.Lid = lid
		changed = true
	}
	if jid != "" && t.Jid == "" {
		t.Jid = jid
		changed = true
	}
	return changed
}

// HasAssignee reports whether the ticket is already bound to an agent or
// queue different from the given hints. Nil/zero hints never conflict.
func (t *Ticket) HasAssignee(userID, queueID *uint) (conflict bool) {
	if userID != nil && *userID != 0 && t.UserID != nil && *t.UserID != *userID && !t.IsGroup {
		return true
	}
	if queueID != nil && *queueID != 0 && t.QueueID != nil && *t.QueueID != *queueID {
		return true
	}
	return false
}
