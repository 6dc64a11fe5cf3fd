package service

import (
	"context"

	"retroboard-be/internal/constant"
	"retroboard-be/internal/dto"
	"retroboard-be/internal/pkg/logger"
	"retroboard-be/internal/pkg/serverutils"
	"retroboard-be/internal/repository"
	"retroboard-be/internal/repository/memory"
	"retroboard-be/pkg/events"
	"retroboard-be/pkg/store"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type IPresenceService interface {
	Heartbeat(ctx context.Context, sessionId uuid.UUID, user store.UserSnapshot) error
	Leave(ctx context.Context, sessionId, userId uuid.UUID) error
	List(ctx context.Context, sessionId uuid.UUID) (*dto.ConnectedUsersResponse, error)
}

type presenceService struct {
	sessionRepo      repository.SessionRepository
	presenceRepo     *memory.PresenceRepository
	publisherService IPublisherService
	clock            clockwork.Clock
	logger           logger.ILogger
}

func NewPresenceService(
	sessionRepo repository.SessionRepository,
	presenceRepo *memory.PresenceRepository,
	publisherService IPublisherService,
	clock clockwork.Clock,
	log logger.ILogger,
) IPresenceService {
	return &presenceService{
		sessionRepo:      sessionRepo,
		presenceRepo:     presenceRepo,
		publisherService: publisherService,
		clock:            clock,
		logger:           log,
	}
}

// Heartbeat doubles as join: the first call creates the record, repeats only
// refresh lastSeen. Every call broadcasts the full sorted snapshot rather
// than a delta.
func (s *presenceService) Heartbeat(ctx context.Context, sessionId uuid.UUID, user store.UserSnapshot) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionId)
	if err != nil {
		return err
	}
	if session == nil {
		return serverutils.NewNotFoundError("session not found")
	}

	s.presenceRepo.Upsert(sessionId, user, s.clock.Now())
	s.broadcastSnapshot(sessionId, session.OwnerId)
	return nil
}

func (s *presenceService) Leave(ctx context.Context, sessionId, userId uuid.UUID) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionId)
	if err != nil {
		return err
	}
	if session == nil {
		return serverutils.NewNotFoundError("session not found")
	}

	s.presenceRepo.Delete(sessionId, userId)
	s.broadcastSnapshot(sessionId, session.OwnerId)
	return nil
}

func (s *presenceService) List(ctx context.Context, sessionId uuid.UUID) (*dto.ConnectedUsersResponse, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFoundError("session not found")
	}

	return s.snapshot(sessionId, session.OwnerId), nil
}

// snapshot lists the live users owner-first, then in arrival order.
func (s *presenceService) snapshot(sessionId, ownerId uuid.UUID) *dto.ConnectedUsersResponse {
	records := s.presenceRepo.List(sessionId, s.clock.Now())

	users := make([]dto.ConnectedUserResponse, 0, len(records))
	for _, record := range records {
		user := dto.ConnectedUserResponse{
			Id:        record.User.Id,
			Name:      record.User.Name,
			AvatarURL: record.User.AvatarURL,
			Roles:     record.User.Roles,
			IsOwner:   record.User.Id == ownerId,
			JoinedAt:  record.JoinedAt,
		}
		if user.IsOwner {
			users = append([]dto.ConnectedUserResponse{user}, users...)
			continue
		}
		users = append(users, user)
	}
	return &dto.ConnectedUsersResponse{Users: users}
}

func (s *presenceService) broadcastSnapshot(sessionId, ownerId uuid.UUID) {
	snapshot := s.snapshot(sessionId, ownerId)
	emit(s.publisherService, s.logger, events.New(constant.EventConnectedUsersUpdated, sessionId, map[string]interface{}{
		"users": snapshot.Users,
	}))
}
