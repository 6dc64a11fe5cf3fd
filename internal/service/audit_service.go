package service

import (
	"context"
	"encoding/json"

	"retroboard-be/internal/constant"
	"retroboard-be/internal/model"
	"retroboard-be/internal/pkg/logger"
	"retroboard-be/internal/repository"
	"retroboard-be/pkg/events"
)

// IAuditService persists the broadcast history, one row per event. The trail
// is what lets a finished retrospective be replayed or exported later. Record
// doubles as a NATS event handler, so the container can feed it either from
// the in-process broadcaster or from a durable JetStream consumer.
type IAuditService interface {
	Record(ctx context.Context, event events.Event) error
}

type auditService struct {
	eventRepo repository.BoardEventRepository
	logger    logger.ILogger
}

func NewAuditService(eventRepo repository.BoardEventRepository, log logger.ILogger) IAuditService {
	return &auditService{
		eventRepo: eventRepo,
		logger:    log,
	}
}

func (s *auditService) Record(ctx context.Context, event events.Event) error {
	envelope, err := json.Marshal(events.Envelope(event))
	if err != nil {
		return err
	}

	return s.eventRepo.Append(ctx, &model.BoardEvent{
		SessionId: event.SessionID(),
		Type:      event.EventType(),
		Topic:     constant.TopicForEvent(event.EventType()),
		Payload:   envelope,
	})
}
