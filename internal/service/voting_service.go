package service

import (
	"context"
	"sort"

	"retroboard-be/internal/constant"
	"retroboard-be/internal/dto"
	"retroboard-be/internal/model"
	"retroboard-be/internal/pkg/logger"
	"retroboard-be/internal/pkg/serverutils"
	"retroboard-be/internal/repository"
	"retroboard-be/pkg/events"

	"github.com/google/uuid"
)

type IVotingService interface {
	Vote(ctx context.Context, sessionId, userId uuid.UUID, req *dto.VoteRequest) (*dto.VoteResponse, error)
	Aggregate(ctx context.Context, sessionId uuid.UUID) (*dto.AggregateResponse, error)
}

type votingService struct {
	sessionRepo      repository.SessionRepository
	boardRepo        repository.BoardRepository
	voteRepo         repository.VoteRepository
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewVotingService(
	sessionRepo repository.SessionRepository,
	boardRepo repository.BoardRepository,
	voteRepo repository.VoteRepository,
	publisherService IPublisherService,
	log logger.ILogger,
) IVotingService {
	return &votingService{
		sessionRepo:      sessionRepo,
		boardRepo:        boardRepo,
		voteRepo:         voteRepo,
		publisherService: publisherService,
		logger:           log,
	}
}

// Vote sets the user's weight on one target to exactly req.Count. Count zero
// withdraws the vote. The remaining budget is computed against what the user
// would spend after the change, so raising a vote never double-counts the old
// weight.
func (s *votingService) Vote(ctx context.Context, sessionId, userId uuid.UUID, req *dto.VoteRequest) (*dto.VoteResponse, error) {
	if req.Count < 0 || req.Count > constant.MaxVotesPerTarget {
		return nil, serverutils.NewValidationError("vote count must be between 0 and 2")
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFoundError("session not found")
	}

	if err := s.requireTarget(ctx, sessionId, req.TargetType, req.TargetId); err != nil {
		return nil, err
	}

	existing, err := s.voteRepo.Get(ctx, sessionId, userId, req.TargetType, req.TargetId)
	if err != nil {
		return nil, err
	}
	existingCount := 0
	if existing != nil {
		existingCount = existing.Count
	}

	spent, err := s.voteRepo.SumByUser(ctx, sessionId, userId)
	if err != nil {
		return nil, err
	}
	spentAfter := spent - existingCount + req.Count
	if spentAfter > session.VoteBudget {
		return nil, serverutils.NewValidationError("vote budget exceeded")
	}

	if req.Count == 0 {
		if existing != nil {
			if err := s.voteRepo.Delete(ctx, sessionId, userId, req.TargetType, req.TargetId); err != nil {
				return nil, err
			}
		}
	} else {
		vote := model.Vote{
			Id:         uuid.New(),
			SessionId:  sessionId,
			UserId:     userId,
			TargetType: req.TargetType,
			TargetId:   req.TargetId,
			Count:      req.Count,
		}
		if err := s.voteRepo.Upsert(ctx, &vote); err != nil {
			return nil, err
		}
	}

	emit(s.publisherService, s.logger, events.New(constant.EventVoteUpdated, sessionId, map[string]interface{}{
		"target_type": req.TargetType,
		"target_id":   req.TargetId,
		"user_id":     userId,
		"vote_count":  req.Count,
	}))

	return &dto.VoteResponse{
		TargetType:      req.TargetType,
		TargetId:        req.TargetId,
		Count:           req.Count,
		RemainingBudget: session.VoteBudget - spentAfter,
	}, nil
}

// Aggregate builds the discussion list: undiscussed entries first by
// descending total votes, discussed entries after, also by descending votes.
// Group totals include votes on the group itself plus votes that still sit on
// member items.
func (s *votingService) Aggregate(ctx context.Context, sessionId uuid.UUID) (*dto.AggregateResponse, error) {
	items, err := s.boardRepo.ListItems(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	groups, err := s.boardRepo.ListGroups(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	votes, err := s.voteRepo.ListBySession(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	itemVotes, groupVotes := tallyVotes(votes)

	var entries []dto.DiscussionEntry
	for _, item := range items {
		if item.GroupId != nil {
			groupVotes[*item.GroupId] += itemVotes[item.Id]
			continue
		}
		entries = append(entries, dto.DiscussionEntry{
			Type:      constant.TargetTypeItem,
			Id:        item.Id,
			Votes:     itemVotes[item.Id],
			Discussed: item.Discussed,
		})
	}
	for _, group := range groups {
		entries = append(entries, dto.DiscussionEntry{
			Type:      constant.TargetTypeGroup,
			Id:        group.Id,
			Votes:     groupVotes[group.Id],
			Discussed: group.Discussed,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Discussed != entries[j].Discussed {
			return !entries[i].Discussed
		}
		return entries[i].Votes > entries[j].Votes
	})

	return &dto.AggregateResponse{Entries: entries}, nil
}

func (s *votingService) requireTarget(ctx context.Context, sessionId uuid.UUID, targetType string, targetId uuid.UUID) error {
	switch targetType {
	case constant.TargetTypeItem:
		item, err := s.boardRepo.GetItem(ctx, sessionId, targetId)
		if err != nil {
			return err
		}
		if item == nil {
			return serverutils.NewNotFoundError("vote target not found")
		}
	case constant.TargetTypeGroup:
		group, err := s.boardRepo.GetGroup(ctx, sessionId, targetId)
		if err != nil {
			return err
		}
		if group == nil {
			return serverutils.NewNotFoundError("vote target not found")
		}
	default:
		return serverutils.NewValidationError("unknown vote target type")
	}
	return nil
}
