package domain

// TenantSettings agrupa la configuración del tenant que el ruteo de
// tickets consulta. Todo lo demás queda fuera del núcleo.
type TenantSettings struct {
	TenantID uint `json:"tenant_id"`

	// LGPD consent flow
	EnableLGPD          bool   `json:"enable_lgpd"`
	LgpdMessage         string `json:"lgpd_message,omitempty"`
	LgpdConsentRequired bool   `json:"lgpd_consent_required"` // when false, only contacts without a recorded consent enter the flow

	// Route new tickets straight to the contact's wallet owner.
	DirectTicketsToWallets bool `json:"direct_tickets_to_wallets"`

	// Post-conversation satisfaction collection.
	UserRating bool `json:"user_rating"`

	// Prefix outbound lane greetings with the agent's name.
	SendSignMessage bool `json:"send_sign_message"`

	// Allow farewell messages on tickets closed while still pending.
	SendFarewellWaitingTicket bool `json:"send_farewell_waiting_ticket"`
}

// ChannelAccount es la cuenta WhatsApp (u otro transporte) de un tenant.
type ChannelAccount struct {
	ID       uint   `json:"id"`
	TenantID uint   `json:"tenant_id"`
	Name     string `json:"name"`

	// TimeCreateNewTicket is the reopen window in minutes. Zero disables
	// reopening: every message outside a live ticket creates a new one.
	TimeCreateNewTicket int `json:"time_create_new_ticket"`

	// GroupAsTicket routes group chats through the normal pending flow.
	GroupAsTicket bool `json:"group_as_ticket"`

	RatingMessage     string `json:"rating_message,omitempty"`
	ComplationMessage string `json:"complation_message,omitempty"`

	Connected bool `json:"connected"`
}
