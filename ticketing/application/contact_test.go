package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
)

func TestContactUpsert_NewNumberOnlyContactEntersRouting(t *testing.T) {
	contacts := newMemContactRepo()
	service := NewContactService(contacts)
	tickets := newMemTicketRepo()
	resolver := newTestResolver(tickets, &memSettingsRepo{})
	ctx := context.Background()

	contact, err := service.Upsert(ctx, 1, domain.ContactPayload{
		Name:   "Maria",
		Number: "(55) 11 99999-0000",
	})
	require.NoError(t, err)
	require.NotZero(t, contact.ID, "a first message by number must persist the contact")
	assert.Equal(t, "+5511999990000", contact.Number)

	ticket, err := resolver.Resolve(ctx, ResolveInput{
		TenantID:       1,
		ChannelID:      10,
		Contact:        contact,
		UnreadMessages: 1,
		Channel:        "whatsapp",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, ticket.Status)
	assert.Equal(t, contact.ID, ticket.ContactID)
}

func TestContactUpsert_ReusesExistingNumber(t *testing.T) {
	contacts := newMemContactRepo()
	service := NewContactService(contacts)
	ctx := context.Background()

	first, err := service.Upsert(ctx, 1, domain.ContactPayload{Number: "+5511999990000"})
	require.NoError(t, err)

	second, err := service.Upsert(ctx, 1, domain.ContactPayload{Number: "55 11 99999-0000"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "the same number in another format must not duplicate the contact")
	assert.Equal(t, 1, contacts.count())
}

func TestContactUpsert_InvalidNumberIsNoCandidate(t *testing.T) {
	contacts := newMemContactRepo()
	service := NewContactService(contacts)
	tickets := newMemTicketRepo()
	resolver := newTestResolver(tickets, &memSettingsRepo{})
	ctx := context.Background()

	contact, err := service.Upsert(ctx, 1, domain.ContactPayload{Number: "123"})
	require.NoError(t, err)
	assert.Zero(t, contact.ID, "a short number is no candidate, the contact stays ephemeral")
	assert.Equal(t, 0, contacts.count())

	_, err = resolver.Resolve(ctx, ResolveInput{TenantID: 1, ChannelID: 10, Contact: contact})
	assert.ErrorIs(t, err, domain.ErrNoIdentity)
	assert.Equal(t, 0, tickets.count())
}

func TestContactUpsert_MergesMissingKeys(t *testing.T) {
	contacts := newMemContactRepo()
	service := NewContactService(contacts)
	ctx := context.Background()

	first, err := service.Upsert(ctx, 1, domain.ContactPayload{Number: "+5511999990000"})
	require.NoError(t, err)

	second, err := service.Upsert(ctx, 1, domain.ContactPayload{
		Number: "+5511999990000",
		Lid:    "ABC123@lid",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "abc123@lid", second.Lid, "new keys merge onto the row, folded to canonical form")
	assert.Equal(t, 1, contacts.count())
}

func TestContactUpsert_KnownIDWins(t *testing.T) {
	contacts := newMemContactRepo()
	service := NewContactService(contacts)
	ctx := context.Background()

	wallet := uint(3)
	require.NoError(t, contacts.Create(ctx, &domain.Contact{
		TenantID:     1,
		Number:       "+5511999990000",
		WalletUserID: &wallet,
	}))

	contact, err := service.Upsert(ctx, 1, domain.ContactPayload{ID: 1, Number: "ignored"})
	require.NoError(t, err)
	require.NotNil(t, contact.WalletUserID)
	assert.Equal(t, wallet, *contact.WalletUserID)
}
