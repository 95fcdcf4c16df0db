package application

import (
	"context"
	"sync"
	"time"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"github.com/sirupsen/logrus"
)

// Clock abstracts time for the lane timer engine so tests can drive
// scheduling deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) TimerHandle
}

// TimerHandle is the cancellable handle of a scheduled fire.
type TimerHandle interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

func (realClock) AfterFunc(d time.Duration, f func()) TimerHandle {
	return time.AfterFunc(d, f)
}

type laneTimerEntry struct {
	handle TimerHandle
	token  uint64
	laneID uint
}

// LaneTimerEngine implements kanban auto-advance: after TimeLane hours of
// agent-only activity a ticket moves to its lane's next lane; a customer
// reply cancels the pending move and may roll the ticket back.
//
// One pending timer per ticket. Cancellation is authoritative: a fire
// scheduled before a cancel never applies after it, enforced by the
// token check under the mutex.
type LaneTimerEngine struct {
	mu      sync.Mutex
	entries map[uint]*laneTimerEntry
	seq     uint64

	tickets domain.TicketRepository
	lanes   domain.LaneRepository
	mover   *LaneMover
	clock   Clock
}

func NewLaneTimerEngine(tickets domain.TicketRepository, lanes domain.LaneRepository, mover *LaneMover) *LaneTimerEngine {
	return &LaneTimerEngine{
		entries: make(map[uint]*laneTimerEntry),
		tickets: tickets,
		lanes:   lanes,
		mover:   mover,
		clock:   realClock{},
	}
}

// NewLaneTimerEngineWithClock is the test constructor.
func NewLaneTimerEngineWithClock(tickets domain.TicketRepository, lanes domain.LaneRepository, mover *LaneMover, clock Clock) *LaneTimerEngine {
	e := NewLaneTimerEngine(tickets, lanes, mover)
	e.clock = clock
	return e
}

// OnAgentMessage (re)starts the ticket's auto-advance timer when its
// current lane is configured for it. Errors never abort the message
// pipeline; they are logged and swallowed here.
func (e *LaneTimerEngine) OnAgentMessage(ctx context.Context, tenantID, ticketID uint) {
	lane, err := e.lanes.CurrentLane(ctx, tenantID, ticketID)
	if err != nil {
		logrus.Warnf("[LANE-TIMER] Lane lookup failed for ticket %d: %v", ticketID, err)
		return
	}
	if lane == nil || !lane.HasAutoAdvance() {
		return
	}

	now := e.clock.Now()
	moveAt := now.Add(lane.AdvanceAfter())

	if err := e.tickets.SetLaneTimer(ctx, tenantID, ticketID, now, moveAt); err != nil {
		logrus.Warnf("[LANE-TIMER] Failed to persist timer for ticket %d: %v", ticketID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if prev, ok := e.entries[ticketID]; ok {
		prev.handle.Stop()
	}

	e.seq++
	token := e.seq
	laneID := lane.ID
	entry := &laneTimerEntry{token: token, laneID: laneID}
	entry.handle = e.clock.AfterFunc(lane.AdvanceAfter(), func() {
		e.fire(tenantID, ticketID, laneID, token)
	})
	e.entries[ticketID] = entry

	logrus.Debugf("[LANE-TIMER] Timer set for ticket %d: lane %q, fire at %s", ticketID, lane.Name, moveAt)
}

// OnCustomerMessage cancels any pending timer and rolls the ticket back
// when the lane configures a rollback target.
func (e *LaneTimerEngine) OnCustomerMessage(ctx context.Context, tenantID, ticketID uint) {
	e.cancel(ticketID)

	if err := e.tickets.ClearLaneTimer(ctx, tenantID, ticketID); err != nil {
		logrus.Warnf("[LANE-TIMER] Failed to clear persisted timer for ticket %d: %v", ticketID, err)
	}

	lane, err := e.lanes.CurrentLane(ctx, tenantID, ticketID)
	if err != nil {
		logrus.Warnf("[LANE-TIMER] Lane lookup failed for ticket %d: %v", ticketID, err)
		return
	}
	if lane == nil || lane.RollbackLaneID == nil {
		return
	}

	if _, err := e.mover.Move(ctx, tenantID, ticketID, *lane.RollbackLaneID, false); err != nil {
		logrus.Warnf("[LANE-TIMER] Rollback move failed for ticket %d: %v", ticketID, err)
	}
}

// cancel invalidates the ticket's pending fire. Linearized with fire via
// the mutex: a fire that has not yet taken the lock will find its token
// gone and become a no-op.
func (e *LaneTimerEngine) cancel(ticketID uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.entries[ticketID]; ok {
		entry.handle.Stop()
		delete(e.entries, ticketID)
	}
}

func (e *LaneTimerEngine) fire(tenantID, ticketID, laneID uint, token uint64) {
	e.mu.Lock()
	entry, ok := e.entries[ticketID]
	if !ok || entry.token != token {
		// Cancelled or superseded while we were waiting for the lock.
		e.mu.Unlock()
		return
	}
	delete(e.entries, ticketID)
	e.mu.Unlock()

	ctx := context.Background()

	ticket, err := e.tickets.FindByID(ctx, tenantID, ticketID)
	if err != nil {
		logrus.Warnf("[LANE-TIMER] Fire lookup failed for ticket %d: %v", ticketID, err)
		return
	}
	if !ticket.Status.IsLive() {
		return
	}

	lane, err := e.lanes.CurrentLane(ctx, tenantID, ticketID)
	if err != nil {
		logrus.Warnf("[LANE-TIMER] Fire lane lookup failed for ticket %d: %v", ticketID, err)
		return
	}
	// Manual move in the interim: the fire is stale.
	if lane == nil || lane.ID != laneID || lane.NextLaneID == nil {
		return
	}

	logrus.Infof("[LANE-TIMER] Auto-advancing ticket %d from lane %d to %d", ticketID, laneID, *lane.NextLaneID)
	if _, err := e.mover.Move(ctx, tenantID, ticketID, *lane.NextLaneID, true); err != nil {
		logrus.Warnf("[LANE-TIMER] Auto-advance failed for ticket %d: %v", ticketID, err)
	}
}

// Stop cancels every pending timer; used on shutdown.
func (e *LaneTimerEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, entry := range e.entries {
		entry.handle.Stop()
		delete(e.entries, id)
	}
}
