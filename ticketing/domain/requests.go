package domain

// Request payloads of the ticket REST surface. They live here so the
// handlers and the validation layer share one definition.

type ContactPayload struct {
	ID      uint   `json:"id"`
	Name    string `json:"name,omitempty"`
	Number  string `json:"number,omitempty"`
	Lid     string `json:"lid,omitempty"`
	Jid     string `json:"jid,omitempty"`
	IsGroup bool   `json:"is_group,omitempty"`
}

type ResolveTicketRequest struct {
	TenantID  uint `json:"tenant_id"`
	ChannelID uint `json:"channel_id"`

	Contact      *ContactPayload `json:"contact"`
	GroupContact *ContactPayload `json:"group_contact,omitempty"`

	UnreadMessages int    `json:"unread_messages"`
	QueueID        *uint  `json:"queue_id,omitempty"`
	UserID         *uint  `json:"user_id,omitempty"`
	Channel        string `json:"channel,omitempty"`

	IsImported bool `json:"is_imported,omitempty"`
	IsForward  bool `json:"is_forward,omitempty"`
	IsTransfer bool `json:"is_transfer,omitempty"`
	IsCampaign bool `json:"is_campaign,omitempty"`
}

type UpdateTicketRequest struct {
	TenantID uint   `json:"tenant_id"`
	Status   string `json:"status"`
	UserID   *uint  `json:"user_id,omitempty"`
	QueueID  *uint  `json:"queue_id,omitempty"`

	SendFarewellMessage *bool `json:"send_farewell_message,omitempty"`
}

type MoveLaneRequest struct {
	TenantID     uint `json:"tenant_id"`
	LaneID       uint `json:"lane_id"`
	SendGreeting bool `json:"send_greeting,omitempty"`
}

type NpsReplyRequest struct {
	TenantID uint   `json:"tenant_id"`
	Body     string `json:"body"`
}

type WelcomeMenuRequest struct {
	TenantID uint   `json:"tenant_id"`
	Body     string `json:"body"`
}
