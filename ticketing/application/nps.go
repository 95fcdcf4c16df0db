package application

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"github.com/sirupsen/logrus"
)

var scoreTokenPattern = regexp.MustCompile(`\b[0-9]{1,2}\b`)

// ExtractScore returns the first whole-word integer 0-10 found in the
// text. Out-of-range and non-numeric tokens are skipped.
func ExtractScore(text string) (int, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}

	for _, token := range scoreTokenPattern.FindAllString(s, -1) {
		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		if n >= 0 && n <= 10 {
			return n, true
		}
	}
	return 0, false
}

// NpsReplyHandler interpreta la respuesta del contacto a un pedido de
// evaluación y cierra el ticket cuando la nota es válida.
type NpsReplyHandler struct {
	trackings domain.TrackingRepository
	ratings   domain.RatingRepository
	updater   *TicketUpdater
	gateway   domain.MessageGateway
	thankYou  string
}

func NewNpsReplyHandler(
	trackings domain.TrackingRepository,
	ratings domain.RatingRepository,
	updater *TicketUpdater,
	gateway domain.MessageGateway,
	thankYou string,
) *NpsReplyHandler {
	return &NpsReplyHandler{
		trackings: trackings,
		ratings:   ratings,
		updater:   updater,
		gateway:   gateway,
		thankYou:  thankYou,
	}
}

// HandleReply processes one inbound message on a ticket awaiting rating.
// Returns true when the message was consumed by the NPS flow (a score was
// stored now or earlier); false means the message is not a rating and
// should flow on.
func (h *NpsReplyHandler) HandleReply(ctx context.Context, ticket *domain.Ticket, text string) (bool, error) {
	score, ok := ExtractScore(text)
	if !ok {
		return false, nil
	}

	if ticket.Status != domain.StatusNps {
		return false, nil
	}

	// The latest tracking carries the rated flag even after the close
	// finished it; a second numeric reply is a no-op, but still counts
	// as consumed so the bot does not reprocess it.
	tracking, err := h.trackings.FindLatest(ctx, ticket.TenantID, ticket.ID)
	if err != nil {
		return false, err
	}
	if tracking != nil && (tracking.Rated || tracking.RatingAt != nil) {
		return true, nil
	}
	if tracking == nil {
		if tracking, err = h.trackings.FindOrCreate(ctx, ticket.TenantID, ticket.ID, ticket.ChannelID); err != nil {
			return false, err
		}
	}

	logrus.Infof("[NPS] Storing score %d for ticket %d", score, ticket.ID)

	if err := h.ratings.Create(ctx, &domain.UserRating{
		TicketID: ticket.ID,
		TenantID: ticket.TenantID,
		UserID:   tracking.UserID,
		Rate:     score,
	}); err != nil {
		return false, err
	}

	now := time.Now().UTC()
	tracking.Rated = true
	tracking.RatingAt = &now
	if err := h.trackings.Update(ctx, tracking); err != nil {
		return false, err
	}

	// Close through the generic path with the farewell suppressed, so
	// the contact does not get a second goodbye.
	if _, err := h.updater.Update(ctx, UpdateInput{
		TenantID:            ticket.TenantID,
		TicketID:            ticket.ID,
		Status:              domain.StatusClosed,
		SendFarewellMessage: false,
	}); err != nil {
		return false, err
	}

	if h.thankYou != "" {
		if err := h.gateway.Send(ctx, ticket, "‎"+h.thankYou); err != nil {
			logrus.Debugf("[NPS] Thank-you send failed for ticket %d: %v", ticket.ID, err)
		}
	}

	return true, nil
}
