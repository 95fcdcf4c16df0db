package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
)

// In-memory repository fakes. Todos son seguros para uso concurrente
// porque los tests del resolver disparan goroutines contra ellos.

type memTicketRepo struct {
	mu      sync.Mutex
	nextID  uint
	tickets map[uint]*domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: make(map[uint]*domain.Ticket)}
}

func (r *memTicketRepo) clone(t *domain.Ticket) *domain.Ticket {
	c := *t
	return &c
}

func matchesKeys(t *domain.Ticket, keys domain.IdentityKeys) bool {
	if keys.ContactID != 0 && t.ContactID == keys.ContactID {
		return true
	}
	if keys.Lid != "" && t.Lid == keys.Lid {
		return true
	}
	if keys.Jid != "" && t.Jid == keys.Jid {
		return true
	}
	return false
}

func (r *memTicketRepo) FindLiveByKeys(_ context.Context, tenantID, channelID uint, keys domain.IdentityKeys) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *domain.Ticket
	for _, t := range r.tickets {
		if t.TenantID == tenantID && t.ChannelID == channelID && t.Status.IsLive() && matchesKeys(t, keys) {
			if newest == nil || t.ID > newest.ID {
				newest = t
			}
		}
	}
	if newest == nil {
		return nil, nil
	}
	return r.clone(newest), nil
}

func (r *memTicketRepo) FindLiveDuplicates(_ context.Context, tenantID, channelID uint, keys domain.IdentityKeys) ([]*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Ticket
	for _, t := range r.tickets {
		if t.TenantID == tenantID && t.ChannelID == channelID && t.Status.IsLive() && matchesKeys(t, keys) {
			out = append(out, r.clone(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTicketRepo) FindRecentByKeys(_ context.Context, tenantID, channelID uint, keys domain.IdentityKeys, window time.Duration) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().UTC().Add(-window)
	var newest *domain.Ticket
	for _, t := range r.tickets {
		if t.TenantID == tenantID && t.ChannelID == channelID && matchesKeys(t, keys) && t.UpdatedAt.After(cutoff) {
			if newest == nil || t.UpdatedAt.After(newest.UpdatedAt) {
				newest = t
			}
		}
	}
	if newest == nil {
		return nil, nil
	}
	return r.clone(newest), nil
}

func (r *memTicketRepo) FindByID(_ context.Context, tenantID, id uint) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok || t.TenantID != tenantID {
		return nil, domain.ErrTicketNotFound
	}
	return r.clone(t), nil
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ticket.ID = r.nextID
	now := time.Now().UTC()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = r.clone(ticket)
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return domain.ErrTicketNotFound
	}
	ticket.UpdatedAt = time.Now().UTC()
	r.tickets[ticket.ID] = r.clone(ticket)
	return nil
}

func (r *memTicketRepo) Delete(_ context.Context, tenantID, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok || t.TenantID != tenantID {
		return domain.ErrTicketNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *memTicketRepo) SetLaneTimer(_ context.Context, tenantID, ticketID uint, startedAt, moveAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[ticketID]
	if !ok || t.TenantID != tenantID {
		return domain.ErrTicketNotFound
	}
	t.LaneTimerStartedAt = &startedAt
	t.LaneNextMoveAt = &moveAt
	return nil
}

func (r *memTicketRepo) ClearLaneTimer(_ context.Context, tenantID, ticketID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[ticketID]
	if !ok || t.TenantID != tenantID {
		return domain.ErrTicketNotFound
	}
	t.LaneTimerStartedAt = nil
	t.LaneNextMoveAt = nil
	return nil
}

func (r *memTicketRepo) FindExpiredLaneTimers(_ context.Context, now time.Time) ([]*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Ticket
	for _, t := range r.tickets {
		if t.LaneTimerStartedAt != nil && t.LaneNextMoveAt != nil &&
			!t.LaneNextMoveAt.After(now) && t.AllowAutomaticMove && t.Status.IsLive() {
			out = append(out, r.clone(t))
		}
	}
	return out, nil
}

func (r *memTicketRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}

type memSettingsRepo struct {
	settings domain.TenantSettings
	channel  domain.ChannelAccount
}

func (r *memSettingsRepo) TenantSettings(_ context.Context, tenantID uint) (*domain.TenantSettings, error) {
	s := r.settings
	s.TenantID = tenantID
	return &s, nil
}

func (r *memSettingsRepo) ChannelAccount(_ context.Context, tenantID, channelID uint) (*domain.ChannelAccount, error) {
	c := r.channel
	c.ID = channelID
	c.TenantID = tenantID
	return &c, nil
}

type memLaneRepo struct {
	mu    sync.Mutex
	lanes map[uint]*domain.Tag // laneID -> lane
	board map[uint]uint        // ticketID -> laneID
}

func newMemLaneRepo(lanes ...*domain.Tag) *memLaneRepo {
	r := &memLaneRepo{lanes: make(map[uint]*domain.Tag), board: make(map[uint]uint)}
	for _, l := range lanes {
		r.lanes[l.ID] = l
	}
	return r
}

func (r *memLaneRepo) FindKanbanLane(_ context.Context, _, laneID uint) (*domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lane, ok := r.lanes[laneID]
	if !ok {
		return nil, domain.ErrLaneNotFound
	}
	return lane, nil
}

func (r *memLaneRepo) CurrentLane(_ context.Context, _, ticketID uint) (*domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	laneID, ok := r.board[ticketID]
	if !ok {
		return nil, nil
	}
	return r.lanes[laneID], nil
}

func (r *memLaneRepo) ReplaceKanbanLane(_ context.Context, _, ticketID, laneID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lanes[laneID]; !ok {
		return domain.ErrLaneNotFound
	}
	r.board[ticketID] = laneID
	return nil
}

func (r *memLaneRepo) place(ticketID, laneID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.board[ticketID] = laneID
}

type memTrackingRepo struct {
	mu        sync.Mutex
	nextID    uint
	trackings map[uint]*domain.TicketTracking // ticketID -> open tracking
}

func newMemTrackingRepo() *memTrackingRepo {
	return &memTrackingRepo{trackings: make(map[uint]*domain.TicketTracking)}
}

func (r *memTrackingRepo) FindOrCreate(_ context.Context, tenantID, ticketID, channelID uint) (*domain.TicketTracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tr, ok := r.trackings[ticketID]; ok && tr.FinishedAt == nil {
		c := *tr
		return &c, nil
	}
	r.nextID++
	tr := &domain.TicketTracking{ID: r.nextID, TicketID: ticketID, TenantID: tenantID, ChannelID: channelID}
	r.trackings[ticketID] = tr
	c := *tr
	return &c, nil
}

func (r *memTrackingRepo) FindLatest(_ context.Context, _, ticketID uint) (*domain.TicketTracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.trackings[ticketID]
	if !ok {
		return nil, nil
	}
	c := *tr
	return &c, nil
}

func (r *memTrackingRepo) Update(_ context.Context, tracking *domain.TicketTracking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *tracking
	r.trackings[tracking.TicketID] = &c
	return nil
}

type memRatingRepo struct {
	mu      sync.Mutex
	ratings []*domain.UserRating
}

func (r *memRatingRepo) Create(_ context.Context, rating *domain.UserRating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *rating
	r.ratings = append(r.ratings, &c)
	return nil
}

type memUserRepo struct {
	users map[uint]*domain.User
}

func (r *memUserRepo) FindByID(_ context.Context, _, id uint) (*domain.User, error) {
	if r == nil || r.users == nil {
		return nil, nil
	}
	return r.users[id], nil
}

type memContactRepo struct {
	mu       sync.Mutex
	nextID   uint
	contacts map[uint]*domain.Contact
}

func newMemContactRepo() *memContactRepo {
	return &memContactRepo{contacts: make(map[uint]*domain.Contact)}
}

func (r *memContactRepo) FindByID(_ context.Context, tenantID, id uint) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.TenantID != tenantID {
		return nil, domain.ErrContactNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memContactRepo) FindByKeys(_ context.Context, tenantID uint, number, lid, jid string) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *domain.Contact
	for _, c := range r.contacts {
		if c.TenantID != tenantID {
			continue
		}
		match := (number != "" && c.Number == number) ||
			(lid != "" && c.Lid == lid) ||
			(jid != "" && c.Jid == jid)
		if match && (found == nil || c.ID < found.ID) {
			found = c
		}
	}
	if found == nil {
		return nil, nil
	}
	cp := *found
	return &cp, nil
}

func (r *memContactRepo) Create(_ context.Context, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	contact.ID = r.nextID
	cp := *contact
	r.contacts[contact.ID] = &cp
	return nil
}

func (r *memContactRepo) Update(_ context.Context, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[contact.ID]; !ok {
		return domain.ErrContactNotFound
	}
	cp := *contact
	r.contacts[contact.ID] = &cp
	return nil
}

func (r *memContactRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contacts)
}

// fakeGateway records every outbound body.
type fakeGateway struct {
	mu    sync.Mutex
	sends []string
	err   error
}

func (g *fakeGateway) Send(_ context.Context, _ *domain.Ticket, body string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.sends = append(g.sends, body)
	return nil
}

func (g *fakeGateway) bodies() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.sends))
	copy(out, g.sends)
	return out
}

// recordingBroadcaster captures published events for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []domain.TicketEvent
}

func (b *recordingBroadcaster) Publish(_ domain.TenantChannel, event domain.TicketEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) actions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Action)
	}
	return out
}

// fakeClock drives the lane timer engine manually. Scheduled funcs fire
// only when the test advances past their deadline.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) TimerHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock and fires due timers synchronously.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

// fire runs a timer's callback directly, bypassing Stop, to simulate a
// fire that was already in flight when a cancel landed.
func (t *fakeTimer) fire() { t.f() }

func (c *fakeClock) lastTimer() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}
