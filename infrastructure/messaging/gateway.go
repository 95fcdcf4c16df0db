package messaging

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"github.com/sirupsen/logrus"
)

// outboundMessage is the payload delivered to the transport webhook.
type outboundMessage struct {
	TenantID  uint   `json:"tenant_id"`
	TicketID  uint   `json:"ticket_id"`
	ContactID uint   `json:"contact_id"`
	ChannelID uint   `json:"channel_id"`
	Channel   string `json:"channel,omitempty"`
	Body      string `json:"body"`
}

// WebhookGateway delivers outbound ticket messages to the transport
// service over HTTP. Deliveries are retried with exponential backoff;
// payloads are signed when a secret is configured.
type WebhookGateway struct {
	url    string
	secret string
	client *http.Client
}

func NewWebhookGateway(url, secret string) *WebhookGateway {
	return &WebhookGateway{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *WebhookGateway) Send(ctx context.Context, ticket *domain.Ticket, body string) error {
	payload, err := json.Marshal(outboundMessage{
		TenantID:  ticket.TenantID,
		TicketID:  ticket.ID,
		ContactID: ticket.ContactID,
		ChannelID: ticket.ChannelID,
		Channel:   ticket.Channel,
		Body:      body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal outbound message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, nil)
	if err != nil {
		return fmt.Errorf("error when create http object %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.secret != "" {
		mac := hmac.New(sha256.New, []byte(g.secret))
		mac.Write(payload)
		req.Header.Set("X-Hub-Signature-256", fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil))))
	}

	var attempt int
	var maxAttempts = 3
	var sleepDuration = 1 * time.Second

	for attempt = 0; attempt < maxAttempts; attempt++ {
		req.Body = io.NopCloser(bytes.NewBuffer(payload))
		resp, err := g.client.Do(req)
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
			err = fmt.Errorf("message webhook returned status %d", resp.StatusCode)
		}
		logrus.Warnf("[GATEWAY] Attempt %d to deliver message for ticket %d failed: %v", attempt+1, ticket.ID, err)
		if attempt < maxAttempts-1 {
			time.Sleep(sleepDuration)
			sleepDuration *= 2
		}
	}

	return fmt.Errorf("message delivery failed after %d attempts for ticket %d", attempt, ticket.ID)
}

// LogGateway is the placeholder used when no transport webhook is
// configured: every send is logged and succeeds.
type LogGateway struct{}

func (LogGateway) Send(_ context.Context, ticket *domain.Ticket, body string) error {
	logrus.Infof("[GATEWAY] (log only) ticket %d <- %q", ticket.ID, body)
	return nil
}

// FromConfig picks the webhook gateway when a URL is configured, the
// logging placeholder otherwise.
func FromConfig(url, secret string) domain.MessageGateway {
	if url == "" {
		return LogGateway{}
	}
	return NewWebhookGateway(url, secret)
}
