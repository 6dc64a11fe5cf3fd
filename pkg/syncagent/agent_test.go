package syncagent

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

type received struct {
	eventType string
	payload   map[string]interface{}
}

func newTestAgent(userID uuid.UUID) (*Agent, *clockwork.FakeClock, *[]received) {
	clock := clockwork.NewFakeClock()
	var events []received
	agent := New(Config{
		URL:    "ws://localhost/api/ws/test",
		UserID: userID,
		Clock:  clock,
		OnEvent: func(eventType string, payload map[string]interface{}) {
			events = append(events, received{eventType, payload})
		},
	})
	return agent, clock, &events
}

func envelope(t *testing.T, fields map[string]interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(fields)
	assert.NoError(t, err)
	return data
}

func TestTimerResyncFromBroadcast(t *testing.T) {
	agent, clock, _ := newTestAgent(uuid.New())

	agent.handleMessage(envelope(t, map[string]interface{}{
		"type":              "timer_started",
		"remaining_seconds": 300,
	}))
	assert.Equal(t, 5*time.Minute, agent.TimerRemaining())

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 3*time.Minute, agent.TimerRemaining())

	// A repeat broadcast discards accumulated drift: the server's remaining
	// seconds wins over the locally derived value.
	agent.handleMessage(envelope(t, map[string]interface{}{
		"type":              "timer_started",
		"remaining_seconds": 300,
	}))
	assert.Equal(t, 5*time.Minute, agent.TimerRemaining())
}

func TestTimerFloorsAtZero(t *testing.T) {
	agent, clock, _ := newTestAgent(uuid.New())

	agent.handleMessage(envelope(t, map[string]interface{}{
		"type":              "timer_started",
		"remaining_seconds": 60,
	}))
	clock.Advance(10 * time.Minute)
	assert.Equal(t, time.Duration(0), agent.TimerRemaining())
}

func TestTimerStoppedClearsEndTime(t *testing.T) {
	agent, _, _ := newTestAgent(uuid.New())

	agent.handleMessage(envelope(t, map[string]interface{}{
		"type":              "timer_started",
		"remaining_seconds": 300,
	}))
	agent.handleMessage(envelope(t, map[string]interface{}{
		"type": "timer_stopped",
	}))
	assert.Equal(t, time.Duration(0), agent.TimerRemaining())
}

func TestSelfOriginatedEventsFiltered(t *testing.T) {
	me := uuid.New()
	agent, _, events := newTestAgent(me)

	// My own vote was already applied optimistically, so it is dropped.
	agent.handleMessage(envelope(t, map[string]interface{}{
		"type":       "vote_updated",
		"user_id":    me.String(),
		"vote_count": 2,
	}))
	assert.Empty(t, *events)

	// Someone else's vote is delivered.
	agent.handleMessage(envelope(t, map[string]interface{}{
		"type":       "vote_updated",
		"user_id":    uuid.New().String(),
		"vote_count": 1,
	}))
	assert.Len(t, *events, 1)
	assert.Equal(t, "vote_updated", (*events)[0].eventType)
}

func TestSelfTimerEventStillResyncs(t *testing.T) {
	me := uuid.New()
	agent, _, events := newTestAgent(me)

	// Timer events from the local user skip OnEvent but still set the end
	// time; every client converges on the server's clock.
	agent.handleMessage(envelope(t, map[string]interface{}{
		"type":              "timer_started",
		"remaining_seconds": 120,
		"user_id":           me.String(),
	}))
	assert.Empty(t, *events)
	assert.Equal(t, 2*time.Minute, agent.TimerRemaining())
}

func TestMalformedAndUnknownBroadcasts(t *testing.T) {
	agent, _, events := newTestAgent(uuid.New())

	agent.handleMessage([]byte("{not json"))
	agent.handleMessage(envelope(t, map[string]interface{}{"no_type": true}))
	assert.Empty(t, *events)

	// Unknown event types pass through; the consumer decides what to ignore.
	agent.handleMessage(envelope(t, map[string]interface{}{
		"type": "something_new",
	}))
	assert.Len(t, *events, 1)
}

func TestReconnectGuardFlag(t *testing.T) {
	agent, _, _ := newTestAgent(uuid.New())

	assert.True(t, agent.beginReconnect())
	assert.False(t, agent.beginReconnect(), "overlapping reconnects are refused")
	agent.endReconnect()
	assert.True(t, agent.beginReconnect())
}
