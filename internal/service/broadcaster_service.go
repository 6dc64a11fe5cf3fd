package service

import (
	"context"
	"encoding/json"

	"retroboard-be/internal/constant"
	"retroboard-be/internal/dto"
	"retroboard-be/internal/pkg/logger"
	"retroboard-be/internal/websocket"
	"retroboard-be/pkg/events"
	"retroboard-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IBroadcasterService drains the in-process bus and fans each event out to the
// websocket hub, the NATS mirror and the audit log. It is the only consumer of
// the session events topic.
type IBroadcasterService interface {
	Consume(ctx context.Context) error
}

type broadcasterService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	hub           *websocket.Hub
	natsPublisher *nats.Publisher
	audit         IAuditService
	logger        logger.ILogger
}

// NewBroadcasterService wires the consumer. audit may be nil when the durable
// NATS consumer owns the trail instead.
func NewBroadcasterService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	natsPublisher *nats.Publisher,
	audit IAuditService,
	log logger.ILogger,
) IBroadcasterService {
	return &broadcasterService{
		pubSub:        pubSub,
		topicName:     topicName,
		hub:           hub,
		natsPublisher: natsPublisher,
		audit:         audit,
		logger:        log,
	}
}

func (bs *broadcasterService) Consume(ctx context.Context) error {
	messages, err := bs.pubSub.Subscribe(ctx, bs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			bs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (bs *broadcasterService) processMessage(ctx context.Context, msg *message.Message) {
	// Every outcome acks: a malformed or undeliverable broadcast is dropped,
	// never retried. Clients recover missed state over REST.
	defer msg.Ack()

	var payload dto.BroadcastMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		bs.logger.Error("Broadcaster", "Failed to unmarshal broadcast message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	event := events.New(payload.Type, payload.SessionId, payload.Data)
	topic := constant.TopicForEvent(payload.Type)

	envelope, err := json.Marshal(events.Envelope(event))
	if err != nil {
		bs.logger.Error("Broadcaster", "Failed to marshal event envelope", map[string]interface{}{
			"type":  payload.Type,
			"error": err.Error(),
		})
		return
	}

	bs.hub.Publish(payload.SessionId, topic, envelope)

	if bs.natsPublisher != nil {
		if err := bs.natsPublisher.Publish(ctx, event); err != nil {
			bs.logger.Warn("Broadcaster", "Failed to mirror event to NATS", map[string]interface{}{
				"type":  payload.Type,
				"error": err.Error(),
			})
		}
	}

	if bs.audit != nil {
		if err := bs.audit.Record(ctx, event); err != nil {
			bs.logger.Warn("Broadcaster", "Failed to append board event", map[string]interface{}{
				"type":  payload.Type,
				"error": err.Error(),
			})
		}
	}
}
