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
	"retroboard-be/pkg/store"

	"github.com/google/uuid"
)

type IBoardService interface {
	CreateItem(ctx context.Context, sessionId uuid.UUID, author store.UserSnapshot, req *dto.CreateItemRequest) (*dto.CreateItemResponse, error)
	UpdateItem(ctx context.Context, sessionId, userId uuid.UUID, req *dto.UpdateItemRequest) error
	DeleteItem(ctx context.Context, sessionId, userId, itemId uuid.UUID) error
	CreateGroup(ctx context.Context, sessionId uuid.UUID, req *dto.CreateGroupRequest) (*dto.CreateGroupResponse, error)
	AddItemToGroup(ctx context.Context, sessionId uuid.UUID, req *dto.GroupMembershipRequest) error
	SeparateItem(ctx context.Context, sessionId, itemId uuid.UUID) error
	MarkDiscussed(ctx context.Context, sessionId uuid.UUID, req *dto.MarkDiscussedRequest) error
	Reorder(ctx context.Context, sessionId uuid.UUID, req *dto.ReorderRequest) (*dto.ReorderResponse, error)
	Snapshot(ctx context.Context, sessionId, viewerId uuid.UUID) (*dto.BoardSnapshotResponse, error)
}

type boardService struct {
	sessionRepo      repository.SessionRepository
	boardRepo        repository.BoardRepository
	voteRepo         repository.VoteRepository
	tx               repository.Transactor
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewBoardService(
	sessionRepo repository.SessionRepository,
	boardRepo repository.BoardRepository,
	voteRepo repository.VoteRepository,
	tx repository.Transactor,
	publisherService IPublisherService,
	log logger.ILogger,
) IBoardService {
	return &boardService{
		sessionRepo:      sessionRepo,
		boardRepo:        boardRepo,
		voteRepo:         voteRepo,
		tx:               tx,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *boardService) CreateItem(ctx context.Context, sessionId uuid.UUID, author store.UserSnapshot, req *dto.CreateItemRequest) (*dto.CreateItemResponse, error) {
	if _, err := s.requireSession(ctx, sessionId); err != nil {
		return nil, err
	}

	maxPos, err := s.maxColumnPosition(ctx, sessionId, req.Category)
	if err != nil {
		return nil, err
	}

	item := model.Item{
		Id:         uuid.New(),
		SessionId:  sessionId,
		AuthorId:   author.Id,
		AuthorName: author.Name,
		Category:   req.Category,
		Content:    req.Content,
		Position:   maxPos + 1,
	}
	if err := s.boardRepo.CreateItem(ctx, &item); err != nil {
		return nil, err
	}

	emit(s.publisherService, s.logger, events.New(constant.EventItemAdded, sessionId, map[string]interface{}{
		"item_id":     item.Id,
		"author_id":   item.AuthorId,
		"author_name": item.AuthorName,
		"category":    item.Category,
		"content":     item.Content,
		"position":    item.Position,
	}))

	return &dto.CreateItemResponse{Id: item.Id, Position: item.Position}, nil
}

func (s *boardService) UpdateItem(ctx context.Context, sessionId, userId uuid.UUID, req *dto.UpdateItemRequest) error {
	item, err := s.requireItem(ctx, sessionId, req.Id)
	if err != nil {
		return err
	}
	if item.AuthorId != userId {
		return serverutils.NewForbiddenError("only the author can edit an item")
	}

	if err := s.boardRepo.UpdateItemFields(ctx, item.Id, map[string]interface{}{
		"content": req.Content,
	}); err != nil {
		return err
	}

	emit(s.publisherService, s.logger, events.New(constant.EventItemUpdated, sessionId, map[string]interface{}{
		"item_id": item.Id,
		"content": req.Content,
	}))
	return nil
}

func (s *boardService) DeleteItem(ctx context.Context, sessionId, userId, itemId uuid.UUID) error {
	item, err := s.requireItem(ctx, sessionId, itemId)
	if err != nil {
		return err
	}
	if item.AuthorId != userId {
		return serverutils.NewForbiddenError("only the author can delete an item")
	}

	// Row, votes and a possible group dissolution land together or not at all.
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.boardRepo.DeleteItem(ctx, item.Id); err != nil {
			return err
		}
		if err := s.voteRepo.DeleteByTargets(ctx, sessionId, constant.TargetTypeItem, []uuid.UUID{item.Id}); err != nil {
			return err
		}
		// Deleting the second-to-last member dissolves the group.
		if item.GroupId != nil {
			return s.dissolveIfUndersized(ctx, sessionId, *item.GroupId)
		}
		return nil
	})
	if err != nil {
		return err
	}

	emit(s.publisherService, s.logger, events.New(constant.EventItemDeleted, sessionId, map[string]interface{}{
		"item_id":  item.Id,
		"category": item.Category,
	}))
	return nil
}

func (s *boardService) CreateGroup(ctx context.Context, sessionId uuid.UUID, req *dto.CreateGroupRequest) (*dto.CreateGroupResponse, error) {
	if _, err := s.requireSession(ctx, sessionId); err != nil {
		return nil, err
	}

	items, err := s.boardRepo.GetItems(ctx, sessionId, req.ItemIds)
	if err != nil {
		return nil, err
	}
	if len(items) != len(req.ItemIds) {
		return nil, serverutils.NewNotFoundError("one or more items do not belong to the session")
	}
	for _, item := range items {
		if item.GroupId != nil {
			return nil, serverutils.NewValidationError("item is already grouped")
		}
	}

	var position int
	if req.Position == nil {
		maxPos, err := s.maxColumnPosition(ctx, sessionId, req.Category)
		if err != nil {
			return nil, err
		}
		position = maxPos + 1
	} else {
		position = *req.Position
	}

	group := model.Group{
		Id:        uuid.New(),
		SessionId: sessionId,
		Category:  req.Category,
		Position:  position,
	}

	// The whole mutation is one transaction; a group must never become
	// durable without its members.
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if req.Position != nil {
			if err := s.boardRepo.ShiftPositionsFrom(ctx, sessionId, req.Category, position); err != nil {
				return err
			}
		}
		if err := s.boardRepo.CreateGroup(ctx, &group); err != nil {
			return err
		}
		for _, item := range items {
			if err := s.boardRepo.UpdateItemFields(ctx, item.Id, map[string]interface{}{
				"group_id": group.Id,
			}); err != nil {
				return err
			}
		}
		// Grouping resets discussion weight to the group level: per-item
		// votes on the members are discarded, not transferred.
		return s.voteRepo.DeleteByTargets(ctx, sessionId, constant.TargetTypeItem, req.ItemIds)
	})
	if err != nil {
		return nil, err
	}

	emit(s.publisherService, s.logger, events.New(constant.EventGroupCreated, sessionId, map[string]interface{}{
		"group_id": group.Id,
		"category": group.Category,
		"position": group.Position,
		"item_ids": req.ItemIds,
	}))

	return &dto.CreateGroupResponse{Id: group.Id, Position: group.Position}, nil
}

func (s *boardService) AddItemToGroup(ctx context.Context, sessionId uuid.UUID, req *dto.GroupMembershipRequest) error {
	item, err := s.requireItem(ctx, sessionId, req.ItemId)
	if err != nil {
		return err
	}
	if item.GroupId != nil {
		return serverutils.NewValidationError("item is already grouped")
	}

	group, err := s.boardRepo.GetGroup(ctx, sessionId, req.GroupId)
	if err != nil {
		return err
	}
	if group == nil {
		return serverutils.NewNotFoundError("group not found")
	}

	if err := s.boardRepo.UpdateItemFields(ctx, item.Id, map[string]interface{}{
		"group_id": group.Id,
	}); err != nil {
		return err
	}

	emit(s.publisherService, s.logger, events.New(constant.EventGroupUpdated, sessionId, map[string]interface{}{
		"group_id": group.Id,
		"item_id":  item.Id,
		"action":   "added",
	}))
	return nil
}

func (s *boardService) SeparateItem(ctx context.Context, sessionId, itemId uuid.UUID) error {
	item, err := s.requireItem(ctx, sessionId, itemId)
	if err != nil {
		return err
	}
	if item.GroupId == nil {
		return serverutils.NewValidationError("item is not grouped")
	}
	groupId := *item.GroupId

	// Detach and dissolution commit together, so a failure cannot strand a
	// one-member group.
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.boardRepo.UpdateItemFields(ctx, item.Id, map[string]interface{}{
			"group_id": nil,
		}); err != nil {
			return err
		}
		return s.dissolveIfUndersized(ctx, sessionId, groupId)
	})
	if err != nil {
		return err
	}

	emit(s.publisherService, s.logger, events.New(constant.EventGroupUpdated, sessionId, map[string]interface{}{
		"group_id": groupId,
		"item_id":  item.Id,
		"action":   "separated",
	}))
	return nil
}

// dissolveIfUndersized removes the group when it has fewer than two members
// left, freeing the sole survivor back to standalone.
func (s *boardService) dissolveIfUndersized(ctx context.Context, sessionId, groupId uuid.UUID) error {
	members, err := s.boardRepo.ListItemsByGroup(ctx, sessionId, groupId)
	if err != nil {
		return err
	}
	if len(members) > 1 {
		return nil
	}

	for _, member := range members {
		if err := s.boardRepo.UpdateItemFields(ctx, member.Id, map[string]interface{}{
			"group_id": nil,
		}); err != nil {
			return err
		}
	}
	if err := s.boardRepo.DeleteGroup(ctx, groupId); err != nil {
		return err
	}
	return s.voteRepo.DeleteByTargets(ctx, sessionId, constant.TargetTypeGroup, []uuid.UUID{groupId})
}

func (s *boardService) MarkDiscussed(ctx context.Context, sessionId uuid.UUID, req *dto.MarkDiscussedRequest) error {
	switch req.Type {
	case constant.ElementTypeItem:
		item, err := s.requireItem(ctx, sessionId, req.Id)
		if err != nil {
			return err
		}
		if err := s.boardRepo.UpdateItemFields(ctx, item.Id, map[string]interface{}{
			"discussed": true,
		}); err != nil {
			return err
		}
	case constant.ElementTypeGroup:
		group, err := s.boardRepo.GetGroup(ctx, sessionId, req.Id)
		if err != nil {
			return err
		}
		if group == nil {
			return serverutils.NewNotFoundError("group not found")
		}
		if err := s.boardRepo.UpdateGroupFields(ctx, group.Id, map[string]interface{}{
			"discussed": true,
		}); err != nil {
			return err
		}
	default:
		return serverutils.NewValidationError("unknown element type")
	}

	emit(s.publisherService, s.logger, events.New(constant.EventItemDiscussed, sessionId, map[string]interface{}{
		"id":   req.Id,
		"type": req.Type,
	}))
	return nil
}

// Reorder rewrites the positions of a whole column from the submitted order.
// When the submitted order equals the stored order, nothing is written and
// nothing is broadcast, which keeps drags that end where they started silent.
func (s *boardService) Reorder(ctx context.Context, sessionId uuid.UUID, req *dto.ReorderRequest) (*dto.ReorderResponse, error) {
	if _, err := s.requireSession(ctx, sessionId); err != nil {
		return nil, err
	}

	items, err := s.boardRepo.ListItemsByCategory(ctx, sessionId, req.Category)
	if err != nil {
		return nil, err
	}
	groups, err := s.boardRepo.ListGroupsByCategory(ctx, sessionId, req.Category)
	if err != nil {
		return nil, err
	}

	standalone := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if item.GroupId == nil {
			standalone[item.Id] = true
		}
	}
	groupIds := make(map[uuid.UUID]bool, len(groups))
	for _, group := range groups {
		groupIds[group.Id] = true
	}

	itemPositions := make(map[uuid.UUID]int)
	groupPositions := make(map[uuid.UUID]int)
	var orderedItems, orderedGroups []uuid.UUID
	seen := make(map[uuid.UUID]bool, len(req.Elements))
	for pos, el := range req.Elements {
		if seen[el.Id] {
			return nil, serverutils.NewValidationError("duplicate element in order")
		}
		seen[el.Id] = true
		switch el.Type {
		case constant.ElementTypeItem:
			if !standalone[el.Id] {
				return nil, serverutils.NewNotFoundError("item does not belong to the column")
			}
			itemPositions[el.Id] = pos
			orderedItems = append(orderedItems, el.Id)
		case constant.ElementTypeGroup:
			if !groupIds[el.Id] {
				return nil, serverutils.NewNotFoundError("group does not belong to the column")
			}
			groupPositions[el.Id] = pos
			orderedGroups = append(orderedGroups, el.Id)
		default:
			return nil, serverutils.NewValidationError("unknown element type")
		}
	}
	if len(seen) != len(standalone)+len(groupIds) {
		return nil, serverutils.NewValidationError("order must list every element of the column exactly once")
	}

	if orderUnchanged(items, groups, req.Elements) {
		return &dto.ReorderResponse{Changed: false, ItemIds: orderedItems, GroupIds: orderedGroups}, nil
	}

	if err := s.boardRepo.ApplyOrder(ctx, sessionId, itemPositions, groupPositions); err != nil {
		return nil, err
	}

	emit(s.publisherService, s.logger, events.New(constant.EventItemsReordered, sessionId, map[string]interface{}{
		"category":  req.Category,
		"item_ids":  orderedItems,
		"group_ids": orderedGroups,
	}))

	return &dto.ReorderResponse{Changed: true, ItemIds: orderedItems, GroupIds: orderedGroups}, nil
}

// orderUnchanged compares the stored column order against the submitted one.
func orderUnchanged(items []model.Item, groups []model.Group, elements []dto.OrderedElement) bool {
	type slot struct {
		id       uuid.UUID
		elemType string
		position int
	}
	var current []slot
	for _, item := range items {
		if item.GroupId == nil {
			current = append(current, slot{item.Id, constant.ElementTypeItem, item.Position})
		}
	}
	for _, group := range groups {
		current = append(current, slot{group.Id, constant.ElementTypeGroup, group.Position})
	}
	sort.Slice(current, func(i, j int) bool {
		if current[i].position != current[j].position {
			return current[i].position < current[j].position
		}
		return current[i].id.String() < current[j].id.String()
	})

	if len(current) != len(elements) {
		return false
	}
	for i, el := range elements {
		if current[i].id != el.Id || current[i].elemType != el.Type {
			return false
		}
	}
	return true
}

// Snapshot returns the full board for a re-fetch. During the feedback phase
// other authors' items are withheld so participants write unbiased.
func (s *boardService) Snapshot(ctx context.Context, sessionId, viewerId uuid.UUID) (*dto.BoardSnapshotResponse, error) {
	session, err := s.requireSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}

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

	res := &dto.BoardSnapshotResponse{
		SessionId: sessionId,
		Phase:     session.Phase,
		Items:     []dto.ItemResponse{},
		Groups:    []dto.GroupResponse{},
	}

	membersByGroup := make(map[uuid.UUID][]dto.ItemResponse)
	for _, item := range items {
		if session.Phase == constant.PhaseFeedback && item.AuthorId != viewerId {
			continue
		}
		ir := toItemResponse(item, itemVotes[item.Id])
		if item.GroupId != nil {
			membersByGroup[*item.GroupId] = append(membersByGroup[*item.GroupId], ir)
			continue
		}
		res.Items = append(res.Items, ir)
	}

	for _, group := range groups {
		members := membersByGroup[group.Id]
		sort.Slice(members, func(i, j int) bool {
			if members[i].Position != members[j].Position {
				return members[i].Position < members[j].Position
			}
			return members[i].Id.String() < members[j].Id.String()
		})
		total := groupVotes[group.Id]
		for _, m := range members {
			total += m.Votes
		}
		res.Groups = append(res.Groups, dto.GroupResponse{
			Id:        group.Id,
			Category:  group.Category,
			Position:  group.Position,
			Discussed: group.Discussed,
			Votes:     total,
			Items:     members,
		})
	}

	sort.Slice(res.Items, func(i, j int) bool { return res.Items[i].Position < res.Items[j].Position })
	sort.Slice(res.Groups, func(i, j int) bool { return res.Groups[i].Position < res.Groups[j].Position })
	return res, nil
}

func toItemResponse(item model.Item, votes int) dto.ItemResponse {
	return dto.ItemResponse{
		Id:         item.Id,
		AuthorId:   item.AuthorId,
		AuthorName: item.AuthorName,
		Category:   item.Category,
		Content:    item.Content,
		Position:   item.Position,
		GroupId:    item.GroupId,
		Discussed:  item.Discussed,
		Votes:      votes,
		CreatedAt:  item.CreatedAt,
	}
}

func tallyVotes(votes []model.Vote) (map[uuid.UUID]int, map[uuid.UUID]int) {
	itemVotes := make(map[uuid.UUID]int)
	groupVotes := make(map[uuid.UUID]int)
	for _, v := range votes {
		switch v.TargetType {
		case constant.TargetTypeItem:
			itemVotes[v.TargetId] += v.Count
		case constant.TargetTypeGroup:
			groupVotes[v.TargetId] += v.Count
		}
	}
	return itemVotes, groupVotes
}

// maxColumnPosition is the highest position across standalone items and
// groups of the category, -1 when the column is empty.
func (s *boardService) maxColumnPosition(ctx context.Context, sessionId uuid.UUID, category string) (int, error) {
	max, err := s.boardRepo.MaxItemPosition(ctx, sessionId, category)
	if err != nil {
		return 0, err
	}
	groups, err := s.boardRepo.ListGroupsByCategory(ctx, sessionId, category)
	if err != nil {
		return 0, err
	}
	for _, g := range groups {
		if g.Position > max {
			max = g.Position
		}
	}
	return max, nil
}

func (s *boardService) requireSession(ctx context.Context, sessionId uuid.UUID) (*model.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFoundError("session not found")
	}
	return session, nil
}

func (s *boardService) requireItem(ctx context.Context, sessionId, itemId uuid.UUID) (*model.Item, error) {
	item, err := s.boardRepo.GetItem(ctx, sessionId, itemId)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, serverutils.NewNotFoundError("item not found")
	}
	return item, nil
}
