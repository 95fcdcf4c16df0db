package websocket

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/projeto-rodrigo/chatia/infrastructure/valkey"
	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	valkeylib "github.com/valkey-io/valkey-go"
)

const valkeyEventsChannel = "chatia:ticket_events"

// envelope is the wire frame, both to browser clients and between server
// instances over Valkey Pub/Sub.
type envelope struct {
	Channel  string             `json:"channel"`
	Event    domain.TicketEvent `json:"event"`
	SenderID string             `json:"sender_id,omitempty"`
}

type subscription struct {
	conn    *websocket.Conn
	channel domain.TenantChannel
}

// Hub fans ticket events out to tenant-scoped websocket subscribers. It
// implements domain.Broadcaster; when a Valkey client is present, events
// also propagate to the other server instances.
type Hub struct {
	clients map[*websocket.Conn]domain.TenantChannel

	register   chan subscription
	unregister chan *websocket.Conn
	broadcast  chan envelope

	vkClient *valkey.Client
	localID  string
}

func NewHub(vkClient *valkey.Client, serverID string) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]domain.TenantChannel),
		register:   make(chan subscription),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan envelope, 64),
		vkClient:   vkClient,
		localID:    serverID,
	}
}

// Publish implements domain.Broadcaster. It never blocks the routing
// pipeline: when the hub queue is full the event is dropped.
func (h *Hub) Publish(channel domain.TenantChannel, event domain.TicketEvent) {
	select {
	case h.broadcast <- envelope{Channel: string(channel), Event: event}:
	default:
		logrus.Warnf("[WS] Hub queue full, dropping %s event for %s", event.Action, channel)
	}
}

// Run is the hub loop; call it on its own goroutine.
func (h *Hub) Run() {
	if h.vkClient != nil {
		h.startValkeySubscriber()
	}

	for {
		select {
		case sub := <-h.register:
			h.clients[sub.conn] = sub.channel
			logrus.Debugf("[WS] Connection registered on %s", sub.channel)

		case conn := <-h.unregister:
			delete(h.clients, conn)
			logrus.Debug("[WS] Connection unregistered")

		case msg := <-h.broadcast:
			h.broadcastToLocal(msg)
			if h.vkClient != nil && msg.SenderID == "" {
				h.publishToValkey(msg)
			}
		}
	}
}

func (h *Hub) broadcastToLocal(msg envelope) {
	payload, err := json.Marshal(msg.Event)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return
	}

	for conn, channel := range h.clients {
		if string(channel) != msg.Channel {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logrus.Errorf("[WS] Write error: %v", err)
			h.closeConnection(conn)
		}
	}
}

func (h *Hub) publishToValkey(msg envelope) {
	msg.SenderID = h.localID

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	ctx := context.Background()
	cmd := h.vkClient.Inner().B().Publish().Channel(valkeyEventsChannel).Message(string(data)).Build()
	if err := h.vkClient.Inner().Do(ctx, cmd).Error(); err != nil {
		logrus.Errorf("[WS] Failed to publish to Valkey: %v", err)
	}
}

func (h *Hub) startValkeySubscriber() {
	logrus.Info("[WS] Starting Valkey Pub/Sub subscriber for distributed ticket events")
	go func() {
		err := h.vkClient.Inner().Receive(context.Background(), h.vkClient.Inner().B().Subscribe().Channel(valkeyEventsChannel).Build(), func(m valkeylib.PubSubMessage) {
			var msg envelope
			if err := json.Unmarshal([]byte(m.Message), &msg); err != nil {
				return
			}
			// Avoid loops: ignore messages sent by this same instance
			if msg.SenderID == h.localID {
				return
			}
			select {
			case h.broadcast <- msg:
			default:
			}
		})
		if err != nil {
			logrus.Errorf("[WS] Valkey subscriber failed: %v", err)
		}
	}()
}

func (h *Hub) closeConnection(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
	_ = conn.Close()
	delete(h.clients, conn)
}

// RegisterRoutes mounts GET /ws/:channel. The channel name is validated
// against the tenant-channel allow-list before the upgrade.
func (h *Hub) RegisterRoutes(app fiber.Router) {
	app.Use("/ws/:channel", func(c *fiber.Ctx) error {
		if _, err := domain.ParseTenantChannel(c.Params("channel")); err != nil {
			return c.SendStatus(fiber.StatusForbidden)
		}
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws/:channel", websocket.New(func(conn *websocket.Conn) {
		channel, err := domain.ParseTenantChannel(conn.Params("channel"))
		if err != nil {
			_ = conn.Close()
			return
		}

		defer func() {
			h.unregister <- conn
			_ = conn.Close()
		}()

		h.register <- subscription{conn: conn, channel: channel}

		// Subscribers are read-only; drain until the peer goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Debugf("[WS] Read error: %v", err)
				}
				return
			}
		}
	}))
}
