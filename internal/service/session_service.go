package service

import (
	"context"

	"retroboard-be/internal/constant"
	"retroboard-be/internal/dto"
	"retroboard-be/internal/model"
	"retroboard-be/internal/pkg/logger"
	"retroboard-be/internal/pkg/serverutils"
	"retroboard-be/internal/repository"
	"retroboard-be/internal/repository/memory"
	"retroboard-be/pkg/events"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// phaseOrder is the forward-only transition table. A phase maps to its
// successor; completed maps to nothing.
var phaseOrder = map[string]string{
	constant.PhaseFeedback: constant.PhaseReview,
	constant.PhaseReview:   constant.PhaseVoting,
	constant.PhaseVoting:   constant.PhaseActions,
	constant.PhaseActions:  constant.PhaseCompleted,
}

type ISessionService interface {
	Create(ctx context.Context, ownerId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowSessionResponse, error)
	NextStep(ctx context.Context, id uuid.UUID) (*dto.StepChangeResponse, error)
	StartTimer(ctx context.Context, id uuid.UUID, req *dto.StartTimerRequest) error
	StopTimer(ctx context.Context, id uuid.UUID) error
	TimerStatus(ctx context.Context, id uuid.UUID) (*dto.TimerStatusResponse, error)
	TimerLikeUpdate(ctx context.Context, id, userId uuid.UUID, req *dto.TimerLikeRequest) error
}

type sessionService struct {
	sessionRepo      repository.SessionRepository
	timerLikes       *memory.TimerLikeRepository
	publisherService IPublisherService
	clock            clockwork.Clock
	logger           logger.ILogger
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	timerLikes *memory.TimerLikeRepository,
	publisherService IPublisherService,
	clock clockwork.Clock,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		sessionRepo:      sessionRepo,
		timerLikes:       timerLikes,
		publisherService: publisherService,
		clock:            clock,
		logger:           log,
	}
}

func (s *sessionService) Create(ctx context.Context, ownerId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	budget := req.VoteBudget
	if budget == 0 {
		budget = constant.DefaultVoteBudget
	}

	session := model.Session{
		Id:         uuid.New(),
		Name:       req.Name,
		OwnerId:    ownerId,
		Phase:      constant.PhaseFeedback,
		VoteBudget: budget,
	}

	if err := s.sessionRepo.Create(ctx, &session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *sessionService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowSessionResponse, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowSessionResponse{
		Id:          session.Id,
		Name:        session.Name,
		OwnerId:     session.OwnerId,
		Phase:       session.Phase,
		VoteBudget:  session.VoteBudget,
		Completed:   session.Completed,
		CompletedAt: session.CompletedAt,
		CreatedAt:   session.CreatedAt,
	}, nil
}

// NextStep advances the session one phase forward. Advancing a completed
// session is a no-op success, never an error.
func (s *sessionService) NextStep(ctx context.Context, id uuid.UUID) (*dto.StepChangeResponse, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := phaseOrder[session.Phase]
	if !ok {
		return &dto.StepChangeResponse{Id: session.Id, Phase: session.Phase}, nil
	}

	// A running timer does not survive a phase change.
	if session.TimerRunning() {
		if err := s.stopTimer(ctx, session); err != nil {
			return nil, err
		}
	}

	fields := map[string]interface{}{"phase": next}
	if next == constant.PhaseCompleted {
		now := s.clock.Now()
		fields["completed"] = true
		fields["completed_at"] = &now
	}
	if err := s.sessionRepo.UpdateFields(ctx, session.Id, fields); err != nil {
		return nil, err
	}

	emit(s.publisherService, s.logger, events.New(constant.EventStepChanged, session.Id, map[string]interface{}{
		"phase": next,
	}))

	return &dto.StepChangeResponse{Id: session.Id, Phase: next}, nil
}

func (s *sessionService) StartTimer(ctx context.Context, id uuid.UUID, req *dto.StartTimerRequest) error {
	if req.DurationMin < 1 {
		return serverutils.NewValidationError("timer duration must be at least 1 minute")
	}

	session, err := s.getSession(ctx, id)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	err = s.sessionRepo.UpdateFields(ctx, session.Id, map[string]interface{}{
		"timer_duration_min": req.DurationMin,
		"timer_started_at":   &now,
	})
	if err != nil {
		return err
	}

	// Restarting replaces any previous countdown, so stale likes go too.
	s.timerLikes.ClearSession(session.Id)

	emit(s.publisherService, s.logger, events.New(constant.EventTimerStarted, session.Id, map[string]interface{}{
		"duration_min":      req.DurationMin,
		"remaining_seconds": req.DurationMin * 60,
	}))

	return nil
}

// StopTimer is idempotent; stopping an already-stopped timer still succeeds
// and still broadcasts, so late stop requests converge every client.
func (s *sessionService) StopTimer(ctx context.Context, id uuid.UUID) error {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return err
	}
	return s.stopTimer(ctx, session)
}

func (s *sessionService) stopTimer(ctx context.Context, session *model.Session) error {
	err := s.sessionRepo.UpdateFields(ctx, session.Id, map[string]interface{}{
		"timer_duration_min": 0,
		"timer_started_at":   nil,
	})
	if err != nil {
		return err
	}

	s.timerLikes.ClearSession(session.Id)

	emit(s.publisherService, s.logger, events.New(constant.EventTimerStopped, session.Id, map[string]interface{}{}))
	return nil
}

func (s *sessionService) TimerStatus(ctx context.Context, id uuid.UUID) (*dto.TimerStatusResponse, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &dto.TimerStatusResponse{
		Running: session.TimerRunning(),
	}
	if !res.Running {
		return res, nil
	}

	res.DurationMin = session.TimerDurationMin
	res.RemainingSeconds = int(session.TimerRemaining(s.clock.Now()).Seconds())
	res.Likes = make(map[string]bool)
	for userId, liked := range s.timerLikes.ListSession(session.Id) {
		res.Likes[userId.String()] = liked
	}
	return res, nil
}

func (s *sessionService) TimerLikeUpdate(ctx context.Context, id, userId uuid.UUID, req *dto.TimerLikeRequest) error {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return err
	}
	if !session.TimerRunning() {
		return serverutils.NewValidationError("no timer is running")
	}

	s.timerLikes.Set(session.Id, userId, req.Liked)

	emit(s.publisherService, s.logger, events.New(constant.EventTimerLikeUpdate, session.Id, map[string]interface{}{
		"user_id": userId,
		"liked":   req.Liked,
	}))

	return nil
}

func (s *sessionService) getSession(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFoundError("session not found")
	}
	return session, nil
}
