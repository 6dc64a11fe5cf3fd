// Package syncagent is the client-side counterpart of the broadcast hub. It
// keeps one long-lived websocket subscription per session alive, reconnects
// on failure and converges local timer state from server broadcasts.
package syncagent

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"retroboard-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

// DefaultReconnectDelay is a fixed backoff. Sessions are small, so there is
// no thundering herd to spread out.
const DefaultReconnectDelay = 5 * time.Second

type Config struct {
	// URL is the fully-formed ws endpoint including session id, token and
	// the optional topics filter.
	URL string

	// UserID filters self-originated events out of OnEvent; the local view
	// was already updated optimistically when the command was sent.
	UserID uuid.UUID

	ReconnectDelay time.Duration
	Clock          clockwork.Clock
	Logger         logger.ILogger

	// OnEvent receives every relevant broadcast. Unknown event types are
	// passed through; the consumer decides what to ignore.
	OnEvent func(eventType string, payload map[string]interface{})

	// OnReconnect fires after every successful re-dial (not the first one).
	// State-bearing views should re-fetch here instead of trusting missed
	// events.
	OnReconnect func()
}

type Agent struct {
	cfg    Config
	dialer *websocket.Dialer

	mu           sync.Mutex
	conn         *websocket.Conn
	reconnecting bool
	timerEnd     time.Time
}

func New(cfg Config) *Agent {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Agent{
		cfg:    cfg,
		dialer: websocket.DefaultDialer,
	}
}

// Run dials and reads until ctx is cancelled. Each connection failure closes
// the subscription and re-dials after the fixed delay.
func (a *Agent) Run(ctx context.Context) error {
	first := true
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !a.beginReconnect() {
			// Another goroutine is already re-dialing.
			return nil
		}

		conn, _, err := a.dialer.DialContext(ctx, a.cfg.URL, nil)
		a.endReconnect()
		if err != nil {
			a.logWarn("Dial failed", err)
			if !a.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}

		a.setConn(conn)
		if !first && a.cfg.OnReconnect != nil {
			a.cfg.OnReconnect()
		}
		first = false

		a.readLoop(ctx, conn)
		a.setConn(nil)
		conn.Close()

		if !a.sleep(ctx) {
			return ctx.Err()
		}
	}
}

// Close tears down the active connection. Run returns once its read loop
// observes the closed socket and ctx is cancelled.
func (a *Agent) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn != nil {
		a.conn.Close()
		a.conn = nil
	}
}

// TimerRemaining is the locally derived countdown, floored at zero. The
// display freezes at 0:00 instead of hiding when it runs out.
func (a *Agent) TimerRemaining() time.Duration {
	a.mu.Lock()
	end := a.timerEnd
	a.mu.Unlock()

	if end.IsZero() {
		return 0
	}
	if rem := end.Sub(a.cfg.Clock.Now()); rem > 0 {
		return rem
	}
	return 0
}

func (a *Agent) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				a.logWarn("Subscription dropped", err)
			}
			return
		}
		a.handleMessage(data)
	}
}

func (a *Agent) handleMessage(data []byte) {
	var envelope map[string]interface{}
	if err := json.Unmarshal(data, &envelope); err != nil {
		a.logWarn("Malformed broadcast", err)
		return
	}

	eventType, _ := envelope["type"].(string)
	if eventType == "" {
		return
	}

	// Timer events always resync the end time, even self-originated ones:
	// the server-supplied remaining seconds is the one source all clients
	// converge on after tab suspend.
	switch eventType {
	case "timer_started":
		if secs, ok := envelope["remaining_seconds"].(float64); ok {
			a.mu.Lock()
			a.timerEnd = a.cfg.Clock.Now().Add(time.Duration(secs) * time.Second)
			a.mu.Unlock()
		}
	case "timer_stopped":
		a.mu.Lock()
		a.timerEnd = time.Time{}
		a.mu.Unlock()
	}

	if actor, ok := envelope["user_id"].(string); ok && actor == a.cfg.UserID.String() {
		return
	}

	if a.cfg.OnEvent != nil {
		a.cfg.OnEvent(eventType, envelope)
	}
}

// beginReconnect flips the guard flag; false means a reconnect is already in
// flight and the caller must back off.
func (a *Agent) beginReconnect() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.reconnecting {
		return false
	}
	a.reconnecting = true
	return true
}

func (a *Agent) endReconnect() {
	a.mu.Lock()
	a.reconnecting = false
	a.mu.Unlock()
}

func (a *Agent) setConn(conn *websocket.Conn) {
	a.mu.Lock()
	a.conn = conn
	a.mu.Unlock()
}

func (a *Agent) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-a.cfg.Clock.After(a.cfg.ReconnectDelay):
		return true
	}
}

func (a *Agent) logWarn(msg string, err error) {
	if a.cfg.Logger == nil {
		return
	}
	a.cfg.Logger.Warn("SyncAgent", msg, map[string]interface{}{"error": err.Error()})
}
