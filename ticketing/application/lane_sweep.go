package application

import (
	"context"
	"time"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"github.com/sirupsen/logrus"
)

// LaneSweeper recovers auto-advance moves whose in-process timers were
// lost to a restart. It scans for tickets whose persisted move deadline
// has passed and replays them through the same mover the live engine
// uses.
type LaneSweeper struct {
	tickets  domain.TicketRepository
	lanes    domain.LaneRepository
	mover    *LaneMover
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewLaneSweeper(tickets domain.TicketRepository, lanes domain.LaneRepository, mover *LaneMover, interval time.Duration) *LaneSweeper {
	return &LaneSweeper{
		tickets:  tickets,
		lanes:    lanes,
		mover:    mover,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background loop. Call Stop on shutdown.
func (s *LaneSweeper) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		logrus.Infof("[LANE-SWEEP] Sweeper started, interval %s", s.interval)
		for {
			select {
			case <-ticker.C:
				s.RunOnce(context.Background())
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *LaneSweeper) Stop() {
	close(s.stop)
	<-s.done
}

// RunOnce processes every expired timer row. A failure on one ticket
// never blocks the rest of the batch.
func (s *LaneSweeper) RunOnce(ctx context.Context) {
	expired, err := s.tickets.FindExpiredLaneTimers(ctx, time.Now().UTC())
	if err != nil {
		logrus.Warnf("[LANE-SWEEP] Scan failed: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}
	logrus.Infof("[LANE-SWEEP] Found %d expired lane timer(s)", len(expired))

	for _, ticket := range expired {
		s.sweepTicket(ctx, ticket)
	}
}

func (s *LaneSweeper) sweepTicket(ctx context.Context, ticket *domain.Ticket) {
	lane, err := s.lanes.CurrentLane(ctx, ticket.TenantID, ticket.ID)
	if err != nil {
		logrus.Warnf("[LANE-SWEEP] Lane lookup failed for ticket %d: %v", ticket.ID, err)
		return
	}

	// The lane changed or no longer auto-advances: the persisted timer
	// is an orphan, drop it.
	if lane == nil || lane.NextLaneID == nil || !lane.HasAutoAdvance() {
		if err := s.tickets.ClearLaneTimer(ctx, ticket.TenantID, ticket.ID); err != nil {
			logrus.Warnf("[LANE-SWEEP] Failed to clear orphan timer for ticket %d: %v", ticket.ID, err)
		}
		return
	}

	if _, err := s.mover.Move(ctx, ticket.TenantID, ticket.ID, *lane.NextLaneID, true); err != nil {
		logrus.Warnf("[LANE-SWEEP] Move failed for ticket %d: %v", ticket.ID, err)
	}
}
