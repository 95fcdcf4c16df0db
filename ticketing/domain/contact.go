package domain

import (
	"fmt"
	"time"

	"github.com/projeto-rodrigo/chatia/pkg/phone"
)

// Contact es el registro de identidad de una parte remota. Dentro de un
// tenant existe como máximo un contacto por clave de identidad canónica.
type Contact struct {
	ID       uint   `json:"id"`
	TenantID uint   `json:"tenant_id"`
	Name     string `json:"name"`
	Number   string `json:"number,omitempty"` // E.164 or empty

	// Lid is the provider-assigned opaque id; Jid is the canonical
	// routing id. Both are optional fallback match keys.
	Lid string `json:"lid,omitempty"`
	Jid string `json:"jid,omitempty"`

	IsGroup        bool       `json:"is_group"`
	LgpdAcceptedAt *time.Time `json:"lgpd_accepted_at,omitempty"`
	WalletUserID   *uint      `json:"wallet_user_id,omitempty"` // owning agent for wallet routing

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IdentityKeys is the candidate match-key set the resolver builds from a
// contact (or group contact). Precedence contactId > lid > jid applies
// only to how the search filter is built; all present keys are OR'd.
type IdentityKeys struct {
	ContactID uint
	Lid       string
	Jid       string
}

// IdentityOf builds the candidate keys for the routing target. When a
// group contact is present it is the target, not the individual sender.
func IdentityOf(contact *Contact, groupContact *Contact) IdentityKeys {
	target := contact
	if groupContact != nil {
		target = groupContact
	}
	return IdentityKeys{
		ContactID: target.ID,
		Lid:       phone.NormalizeKey(target.Lid),
		Jid:       phone.NormalizeKey(target.Jid),
	}
}

// StripeKey returns a stable string for striped locking of concurrent
// resolves on the same identity.
func (k IdentityKeys) StripeKey(tenantID, channelID uint) string {
	return fmt.Sprintf("%d|%d|%d|%s|%s", tenantID, channelID, k.ContactID, k.Lid, k.Jid)
}

// Empty reports whether no usable key is present.
func (k IdentityKeys) Empty() bool {
	return k.ContactID == 0 && k.Lid == "" && k.Jid == ""
}
