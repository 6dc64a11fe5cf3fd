package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"retroboard-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub is the broadcast fan-out for live sessions. Connections pool by session
// id; each connection carries the set of sub-topics it cares about. Publishing
// is fire-and-forget: the state mutation has already committed by the time an
// event reaches the hub, so delivery failures are logged and dropped.
type Hub struct {
	// Registered clients map: SessionID -> set of clients (multi-tab safe)
	clients map[uuid.UUID]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger

	// instanceID tags redis messages so we can ignore our own echoes.
	instanceID string
}

// clusterChannel is the redis pub/sub channel sibling instances share.
const clusterChannel = "cluster_events"

type clusterPayload struct {
	// Origin lets an instance skip messages it published itself; local
	// delivery already happened before the redis hop.
	Origin    string          `json:"origin"`
	SessionID string          `json:"session_id"`
	Topic     string          `json:"topic"`
	Message   json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID]map[*Client]bool),
		rdb:        rdb,
		logger:     log,
		instanceID: uuid.New().String(),
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[*Client]bool)
			}
			h.clients[client.SessionID][client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"session_id": client.SessionID,
				"user_id":    client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
				}
				if len(clients) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{
				"session_id": client.SessionID,
				"user_id":    client.UserID,
			})
		}
	}
}

// Publish fans a serialized event out to every local subscriber of the
// session whose topic filter matches, then mirrors it to sibling instances
// via redis. The catch-all session topic always matches.
func (h *Hub) Publish(sessionID uuid.UUID, topic string, message []byte) {
	h.publishLocal(sessionID, topic, message)

	if h.rdb != nil {
		payload, err := json.Marshal(clusterPayload{
			Origin:    h.instanceID,
			SessionID: sessionID.String(),
			Topic:     topic,
			Message:   message,
		})
		if err != nil {
			return
		}
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) publishLocal(sessionID uuid.UUID, topic string, message []byte) {
	h.mu.RLock()
	clients := h.clients[sessionID]
	// Snapshot so we don't hold the lock while pushing to send buffers.
	targets := make([]*Client, 0, len(clients))
	for client := range clients {
		if client.WantsTopic(topic) {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- message:
		default:
			// Slow or dead client; drop it rather than stalling the session.
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{
				"session_id": client.SessionID,
				"user_id":    client.UserID,
			})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload clusterPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		if payload.Origin == h.instanceID {
			continue
		}

		sessionID, err := uuid.Parse(payload.SessionID)
		if err != nil {
			continue
		}

		h.publishLocal(sessionID, payload.Topic, payload.Message)
	}
}
