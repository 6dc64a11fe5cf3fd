package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs wires an upgraded connection into the hub and blocks until the
// connection dies. Topics is the optional sub-topic filter the client asked
// for; nil subscribes to everything in the session.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID, userID uuid.UUID, topics []string) {
	topicSet := make(map[string]bool, len(topics))
	for _, t := range topics {
		if t != "" {
			topicSet[t] = true
		}
	}

	client := &Client{
		Hub:       hub,
		Conn:      c,
		SessionID: sessionID,
		UserID:    userID,
		Topics:    topicSet,
		Send:      make(chan []byte, 256),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
