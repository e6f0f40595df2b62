// Package livefeed streams newly recorded audit entries to connected admin dashboards.
// With Redis configured every instance publishes to one channel and relays what it
// receives, so a dashboard sees entries recorded by any instance.
package livefeed

import (
	"context"
	"encoding/json"

	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/metrics"
	"complaintdesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Channel is the Redis pub/sub channel shared by all instances.
const Channel = "cms:logs"

const broadcastBuffer = 64

// Event is the frame sent to clients.
type Event struct {
	Type        string           `json:"type"`
	ActionLabel string           `json:"actionLabel,omitempty"`
	Data        *models.AuditLog `json:"data"`
}

type Hub struct {
	clients map[Client]struct{}

	registerCh   chan Client
	unregisterCh chan Client
	broadcastCh  chan []byte
	done         chan struct{}

	redis     *redis.Client
	localizer *localization.Localizer
	logger    *logrus.Logger
}

// NewHub creates a hub. rdb and localizer may be nil.
func NewHub(rdb *redis.Client, localizer *localization.Localizer, logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		clients:      make(map[Client]struct{}),
		registerCh:   make(chan Client),
		unregisterCh: make(chan Client),
		broadcastCh:  make(chan []byte, broadcastBuffer),
		done:         make(chan struct{}),
		redis:        rdb,
		localizer:    localizer,
		logger:       logger,
	}
}

// Run owns the client set. It returns when ctx is cancelled, closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	if h.redis != nil {
		go h.listen(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.registerCh:
			h.clients[c] = struct{}{}
			metrics.SetLiveFeedClients(len(h.clients))
			h.logger.WithField("client_id", c.GetID()).Debug("live feed client registered")

		case c := <-h.unregisterCh:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case payload := <-h.broadcastCh:
			for c := range h.clients {
				select {
				case c.GetSendChannel() <- payload:
				default:
					h.logger.WithField("client_id", c.GetID()).Warn("live feed client too slow, disconnecting")
					h.drop(c)
				}
			}
		}
	}
}

// Register adds c to the feed. It reports false once the hub has stopped; the caller then owns c.
func (h *Hub) Register(c Client) bool {
	select {
	case h.registerCh <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c if it is still registered. It never blocks after the hub has stopped.
func (h *Hub) Unregister(c Client) {
	select {
	case h.unregisterCh <- c:
	case <-h.done:
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) drop(c Client) {
	delete(h.clients, c)
	c.Close()
	metrics.SetLiveFeedClients(len(h.clients))
}

// listen relays entries published by any instance to local clients.
func (h *Hub) listen(ctx context.Context) {
	pubsub := h.redis.Subscribe(ctx, Channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.enqueue([]byte(msg.Payload))
		}
	}
}

func (h *Hub) enqueue(payload []byte) {
	select {
	case h.broadcastCh <- payload:
	default:
		h.logger.Warn("live feed broadcast queue full, dropping event")
	}
}

// Publish implements audit.Sink.
func (h *Hub) Publish(ctx context.Context, entry *models.AuditLog) {
	payload, err := json.Marshal(Event{
		Type:        "log",
		ActionLabel: h.localizer.Label(localization.DefaultLanguage, string(entry.Action)),
		Data:        entry,
	})
	if err != nil {
		h.logger.WithError(err).Error("failed to encode live feed event")
		return
	}

	if h.redis != nil {
		err := h.redis.Publish(ctx, Channel, payload).Err()
		if err == nil {
			return
		}
		h.logger.WithError(err).Warn("redis publish failed, delivering to local clients only")
	}
	h.enqueue(payload)
}
