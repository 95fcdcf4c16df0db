package domain

import "time"

// TicketTracking acompaña un paso del ticket por la atención: quién
// atendió, cuándo cerró y si la evaluación NPS ya fue registrada.
type TicketTracking struct {
	ID        uint  `json:"id"`
	TicketID  uint  `json:"ticket_id"`
	TenantID  uint  `json:"tenant_id"`
	ChannelID uint  `json:"channel_id"`
	UserID    *uint `json:"user_id,omitempty"`

	Rated      bool       `json:"rated"`
	RatingAt   *time.Time `json:"rating_at,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRating es la nota de satisfacción (0-10) registrada por el contacto.
type UserRating struct {
	ID       uint  `json:"id"`
	TicketID uint  `json:"ticket_id"`
	TenantID uint  `json:"tenant_id"`
	UserID   *uint `json:"user_id,omitempty"`
	Rate     int   `json:"rate"`

	CreatedAt time.Time `json:"created_at"`
}
