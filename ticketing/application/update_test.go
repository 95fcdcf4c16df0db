package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgError "github.com/projeto-rodrigo/chatia/pkg/error"
	"github.com/projeto-rodrigo/chatia/ticketing/domain"
)

type updaterFixture struct {
	tickets   *memTicketRepo
	trackings *memTrackingRepo
	settings  *memSettingsRepo
	users     *memUserRepo
	gateway   *fakeGateway
	bcast     *recordingBroadcaster
	updater   *TicketUpdater
}

func newUpdaterFixture(settings domain.TenantSettings, channel domain.ChannelAccount) *updaterFixture {
	f := &updaterFixture{
		tickets:   newMemTicketRepo(),
		trackings: newMemTrackingRepo(),
		settings:  &memSettingsRepo{settings: settings, channel: channel},
		users:     &memUserRepo{users: map[uint]*domain.User{}},
		gateway:   &fakeGateway{},
		bcast:     &recordingBroadcaster{},
	}
	f.updater = NewTicketUpdater(f.tickets, f.trackings, f.settings, f.users, f.gateway, f.bcast)
	return f
}

func (f *updaterFixture) seedTicket(t *testing.T, status domain.Status) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		TenantID:  1,
		ChannelID: 10,
		ContactID: 7,
		Status:    status,
		Channel:   "whatsapp",
		IsBot:     true,
	}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	return ticket
}

func TestUpdater_AcceptTicket(t *testing.T) {
	f := newUpdaterFixture(domain.TenantSettings{}, domain.ChannelAccount{Connected: true})
	ticket := f.seedTicket(t, domain.StatusPending)

	agent := uint(5)
	got, err := f.updater.Update(context.Background(), UpdateInput{
		TenantID: 1,
		TicketID: ticket.ID,
		Status:   domain.StatusOpen,
		UserID:   &agent,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOpen, got.Status)
	assert.Equal(t, &agent, got.UserID)
	assert.False(t, got.IsBot, "aceptar el ticket desactiva el bot")
	assert.Equal(t, []string{domain.ActionUpdate}, f.bcast.actions())
}

func TestUpdater_RejectsIllegalTransition(t *testing.T) {
	f := newUpdaterFixture(domain.TenantSettings{}, domain.ChannelAccount{})
	ticket := f.seedTicket(t, domain.StatusClosed)

	_, err := f.updater.Update(context.Background(), UpdateInput{
		TenantID: 1,
		TicketID: ticket.ID,
		Status:   domain.StatusOpen,
	})
	require.Error(t, err)
	var verr pkgError.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdater_CloseSendsFarewell(t *testing.T) {
	f := newUpdaterFixture(domain.TenantSettings{}, domain.ChannelAccount{
		Connected:         true,
		ComplationMessage: "Obrigado pelo contato!",
	})
	ticket := f.seedTicket(t, domain.StatusOpen)

	got, err := f.updater.Update(context.Background(), UpdateInput{
		TenantID:            1,
		TicketID:            ticket.ID,
		Status:              domain.StatusClosed,
		SendFarewellMessage: true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusClosed, got.Status)
	require.NotNil(t, got.ClosedAt)
	require.Len(t, f.gateway.bodies(), 1)
	assert.Equal(t, "‎Obrigado pelo contato!", f.gateway.bodies()[0])
	assert.Equal(t, []string{domain.ActionDelete}, f.bcast.actions())
}

func TestUpdater_AgentFarewellBeatsChannelMessage(t *testing.T) {
	f := newUpdaterFixture(domain.TenantSettings{}, domain.ChannelAccount{
		Connected:         true,
		ComplationMessage: "Obrigado pelo contato!",
	})
	agent := uint(5)
	f.users.users[agent] = &domain.User{ID: agent, Name: "Ana", FarewellMessage: "Até logo, conte comigo!"}

	ticket := f.seedTicket(t, domain.StatusOpen)
	ticket.UserID = &agent
	require.NoError(t, f.tickets.Update(context.Background(), ticket))

	_, err := f.updater.Update(context.Background(), UpdateInput{
		TenantID:            1,
		TicketID:            ticket.ID,
		Status:              domain.StatusClosed,
		SendFarewellMessage: true,
	})
	require.NoError(t, err)

	require.Len(t, f.gateway.bodies(), 1)
	assert.Equal(t, "‎Até logo, conte comigo!", f.gateway.bodies()[0])
}

func TestUpdater_NoFarewellOnPendingUnlessAllowed(t *testing.T) {
	f := newUpdaterFixture(domain.TenantSettings{}, domain.ChannelAccount{
		Connected:         true,
		ComplationMessage: "tchau",
	})
	ticket := f.seedTicket(t, domain.StatusPending)

	_, err := f.updater.Update(context.Background(), UpdateInput{
		TenantID:            1,
		TicketID:            ticket.ID,
		Status:              domain.StatusClosed,
		SendFarewellMessage: true,
	})
	require.NoError(t, err)
	assert.Empty(t, f.gateway.bodies(), "pending tickets only get a farewell when the tenant opts in")
}

func TestUpdater_CloseDivertsToNps(t *testing.T) {
	f := newUpdaterFixture(
		domain.TenantSettings{UserRating: true},
		domain.ChannelAccount{Connected: true, RatingMessage: "De 0 a 10, como foi o atendimento?"},
	)
	ticket := f.seedTicket(t, domain.StatusOpen)

	got, err := f.updater.Update(context.Background(), UpdateInput{
		TenantID:            1,
		TicketID:            ticket.ID,
		Status:              domain.StatusClosed,
		SendFarewellMessage: true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNps, got.Status)
	assert.Nil(t, got.ClosedAt, "nps tickets are parked, not closed")
	require.Len(t, f.gateway.bodies(), 1)
	assert.Equal(t, "‎De 0 a 10, como foi o atendimento?", f.gateway.bodies()[0])

	tracking, err := f.trackings.FindOrCreate(context.Background(), 1, ticket.ID, ticket.ChannelID)
	require.NoError(t, err)
	assert.NotNil(t, tracking.ClosedAt)
	assert.Nil(t, tracking.FinishedAt)
}

func TestUpdater_NpsNotAskedTwice(t *testing.T) {
	f := newUpdaterFixture(
		domain.TenantSettings{UserRating: true},
		domain.ChannelAccount{Connected: true, RatingMessage: "nota?"},
	)
	ticket := f.seedTicket(t, domain.StatusOpen)
	ctx := context.Background()

	got, err := f.updater.Update(ctx, UpdateInput{TenantID: 1, TicketID: ticket.ID, Status: domain.StatusClosed, SendFarewellMessage: true})
	require.NoError(t, err)
	require.Equal(t, domain.StatusNps, got.Status)

	// Force-close sin despedida: cierra de verdad, sin repetir la pregunta.
	got, err = f.updater.Update(ctx, UpdateInput{TenantID: 1, TicketID: ticket.ID, Status: domain.StatusClosed})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusClosed, got.Status)
	require.Len(t, f.gateway.bodies(), 1, "the rating prompt must go out at most once")
}

func TestUpdater_GroupsNeverGetNps(t *testing.T) {
	f := newUpdaterFixture(
		domain.TenantSettings{UserRating: true},
		domain.ChannelAccount{Connected: true, RatingMessage: "nota?", GroupAsTicket: true},
	)
	ticket := f.seedTicket(t, domain.StatusOpen)
	ticket.IsGroup = true
	require.NoError(t, f.tickets.Update(context.Background(), ticket))

	got, err := f.updater.Update(context.Background(), UpdateInput{
		TenantID:            1,
		TicketID:            ticket.ID,
		Status:              domain.StatusClosed,
		SendFarewellMessage: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, got.Status)
}

func TestUpdater_DisconnectedChannelSendsNothing(t *testing.T) {
	f := newUpdaterFixture(domain.TenantSettings{}, domain.ChannelAccount{
		Connected:         false,
		ComplationMessage: "tchau",
	})
	ticket := f.seedTicket(t, domain.StatusOpen)

	_, err := f.updater.Update(context.Background(), UpdateInput{
		TenantID:            1,
		TicketID:            ticket.ID,
		Status:              domain.StatusClosed,
		SendFarewellMessage: true,
	})
	require.NoError(t, err)
	assert.Empty(t, f.gateway.bodies())
}
