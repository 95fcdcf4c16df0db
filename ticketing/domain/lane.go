package domain

import "time"

// Tag es una etiqueta genérica; con Kanban=true se vuelve una columna
// ("lane") del tablero kanban, opcionalmente con avance automático.
type Tag struct {
	ID       uint   `json:"id"`
	TenantID uint   `json:"tenant_id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	Kanban   bool   `json:"kanban"`

	// Auto-advance configuration. Only meaningful when Kanban is true.
	TimeLane            float64 `json:"time_lane"` // hours of agent-side silence before auto-move
	NextLaneID          *uint   `json:"next_lane_id,omitempty"`
	RollbackLaneID      *uint   `json:"rollback_lane_id,omitempty"`
	GreetingMessageLane string  `json:"greeting_message_lane,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAutoAdvance reports whether the lane is configured to move tickets
// forward on its own.
func (t *Tag) HasAutoAdvance() bool {
	return t.Kanban && t.TimeLane > 0 && t.NextLaneID != nil
}

// AdvanceAfter returns the agent-silence duration before the auto-move.
func (t *Tag) AdvanceAfter() time.Duration {
	return time.Duration(t.TimeLane * float64(time.Hour))
}

// TicketTag liga un ticket a una tag. En uso normal un ticket tiene como
// máximo una tag kanban activa a la vez.
type TicketTag struct {
	TicketID uint `json:"ticket_id"`
	TagID    uint `json:"tag_id"`
}
