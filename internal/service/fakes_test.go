package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"retroboard-be/internal/model"
	"retroboard-be/pkg/events"

	"github.com/google/uuid"
)

// In-memory doubles for the gorm repositories. They implement just enough
// semantics for the services under test: partial field updates, position
// queries and vote upserts.

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*model.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.Id] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil
	}
	for key, value := range fields {
		switch key {
		case "phase":
			session.Phase = value.(string)
		case "completed":
			session.Completed = value.(bool)
		case "completed_at":
			session.CompletedAt = value.(*time.Time)
		case "timer_duration_min":
			session.TimerDurationMin = value.(int)
		case "timer_started_at":
			if value == nil {
				session.TimerStartedAt = nil
			} else {
				session.TimerStartedAt = value.(*time.Time)
			}
		}
	}
	return nil
}

type fakeBoardRepo struct {
	mu     sync.Mutex
	items  map[uuid.UUID]*model.Item
	groups map[uuid.UUID]*model.Group

	// failItemUpdate, when set, makes UpdateItemFields fail for that item.
	failItemUpdate uuid.UUID
}

func newFakeBoardRepo() *fakeBoardRepo {
	return &fakeBoardRepo{
		items:  make(map[uuid.UUID]*model.Item),
		groups: make(map[uuid.UUID]*model.Group),
	}
}

func (r *fakeBoardRepo) CreateItem(_ context.Context, item *model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *item
	r.items[item.Id] = &copied
	return nil
}

func (r *fakeBoardRepo) GetItem(_ context.Context, sessionID, itemID uuid.UUID) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok || item.SessionId != sessionID {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (r *fakeBoardRepo) GetItems(_ context.Context, sessionID uuid.UUID, itemIDs []uuid.UUID) ([]model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Item
	for _, id := range itemIDs {
		if item, ok := r.items[id]; ok && item.SessionId == sessionID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (r *fakeBoardRepo) ListItems(_ context.Context, sessionID uuid.UUID) ([]model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Item
	for _, item := range r.items {
		if item.SessionId == sessionID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (r *fakeBoardRepo) ListItemsByCategory(_ context.Context, sessionID uuid.UUID, category string) ([]model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Item
	for _, item := range r.items {
		if item.SessionId == sessionID && item.Category == category {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (r *fakeBoardRepo) ListItemsByGroup(_ context.Context, sessionID, groupID uuid.UUID) ([]model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Item
	for _, item := range r.items {
		if item.SessionId == sessionID && item.GroupId != nil && *item.GroupId == groupID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (r *fakeBoardRepo) MaxItemPosition(_ context.Context, sessionID uuid.UUID, category string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := -1
	for _, item := range r.items {
		if item.SessionId == sessionID && item.Category == category && item.Position > max {
			max = item.Position
		}
	}
	return max, nil
}

func (r *fakeBoardRepo) UpdateItemFields(_ context.Context, itemID uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failItemUpdate == itemID {
		return errors.New("update failed")
	}
	item, ok := r.items[itemID]
	if !ok {
		return nil
	}
	for key, value := range fields {
		switch key {
		case "content":
			item.Content = value.(string)
		case "discussed":
			item.Discussed = value.(bool)
		case "group_id":
			if value == nil {
				item.GroupId = nil
			} else {
				id := value.(uuid.UUID)
				item.GroupId = &id
			}
		case "position":
			item.Position = value.(int)
		}
	}
	return nil
}

func (r *fakeBoardRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, itemID)
	return nil
}

func (r *fakeBoardRepo) CreateGroup(_ context.Context, group *model.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *group
	r.groups[group.Id] = &copied
	return nil
}

func (r *fakeBoardRepo) GetGroup(_ context.Context, sessionID, groupID uuid.UUID) (*model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[groupID]
	if !ok || group.SessionId != sessionID {
		return nil, nil
	}
	copied := *group
	return &copied, nil
}

func (r *fakeBoardRepo) ListGroups(_ context.Context, sessionID uuid.UUID) ([]model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Group
	for _, group := range r.groups {
		if group.SessionId == sessionID {
			result = append(result, *group)
		}
	}
	return result, nil
}

func (r *fakeBoardRepo) ListGroupsByCategory(_ context.Context, sessionID uuid.UUID, category string) ([]model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Group
	for _, group := range r.groups {
		if group.SessionId == sessionID && group.Category == category {
			result = append(result, *group)
		}
	}
	return result, nil
}

func (r *fakeBoardRepo) UpdateGroupFields(_ context.Context, groupID uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[groupID]
	if !ok {
		return nil
	}
	for key, value := range fields {
		switch key {
		case "discussed":
			group.Discussed = value.(bool)
		case "position":
			group.Position = value.(int)
		}
	}
	return nil
}

func (r *fakeBoardRepo) DeleteGroup(_ context.Context, groupID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, groupID)
	return nil
}

func (r *fakeBoardRepo) ShiftPositionsFrom(_ context.Context, sessionID uuid.UUID, category string, from int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.SessionId == sessionID && item.Category == category && item.Position >= from {
			item.Position++
		}
	}
	for _, group := range r.groups {
		if group.SessionId == sessionID && group.Category == category && group.Position >= from {
			group.Position++
		}
	}
	return nil
}

func (r *fakeBoardRepo) ApplyOrder(_ context.Context, _ uuid.UUID, itemPositions, groupPositions map[uuid.UUID]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, pos := range itemPositions {
		if item, ok := r.items[id]; ok {
			item.Position = pos
		}
	}
	for id, pos := range groupPositions {
		if group, ok := r.groups[id]; ok {
			group.Position = pos
		}
	}
	return nil
}

type boardState struct {
	items  map[uuid.UUID]*model.Item
	groups map[uuid.UUID]*model.Group
}

func (r *fakeBoardRepo) snapshot() boardState {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := boardState{
		items:  make(map[uuid.UUID]*model.Item, len(r.items)),
		groups: make(map[uuid.UUID]*model.Group, len(r.groups)),
	}
	for id, item := range r.items {
		copied := *item
		state.items[id] = &copied
	}
	for id, group := range r.groups {
		copied := *group
		state.groups[id] = &copied
	}
	return state
}

func (r *fakeBoardRepo) restore(state boardState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = state.items
	r.groups = state.groups
}

type voteKey struct {
	user       uuid.UUID
	targetType string
	target     uuid.UUID
}

type fakeVoteRepo struct {
	mu    sync.Mutex
	votes map[uuid.UUID]map[voteKey]*model.Vote
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{votes: make(map[uuid.UUID]map[voteKey]*model.Vote)}
}

func (r *fakeVoteRepo) session(sessionID uuid.UUID) map[voteKey]*model.Vote {
	if r.votes[sessionID] == nil {
		r.votes[sessionID] = make(map[voteKey]*model.Vote)
	}
	return r.votes[sessionID]
}

func (r *fakeVoteRepo) Get(_ context.Context, sessionID, userID uuid.UUID, targetType string, targetID uuid.UUID) (*model.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vote, ok := r.session(sessionID)[voteKey{userID, targetType, targetID}]
	if !ok {
		return nil, nil
	}
	copied := *vote
	return &copied, nil
}

func (r *fakeVoteRepo) Upsert(_ context.Context, vote *model.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := voteKey{vote.UserId, vote.TargetType, vote.TargetId}
	copied := *vote
	r.session(vote.SessionId)[key] = &copied
	return nil
}

func (r *fakeVoteRepo) Delete(_ context.Context, sessionID, userID uuid.UUID, targetType string, targetID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.session(sessionID), voteKey{userID, targetType, targetID})
	return nil
}

func (r *fakeVoteRepo) SumByUser(_ context.Context, sessionID, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for key, vote := range r.session(sessionID) {
		if key.user == userID {
			total += vote.Count
		}
	}
	return total, nil
}

func (r *fakeVoteRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Vote
	for _, vote := range r.session(sessionID) {
		result = append(result, *vote)
	}
	return result, nil
}

func (r *fakeVoteRepo) DeleteByTargets(_ context.Context, sessionID uuid.UUID, targetType string, targetIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	targets := make(map[uuid.UUID]bool, len(targetIDs))
	for _, id := range targetIDs {
		targets[id] = true
	}
	session := r.session(sessionID)
	for key := range session {
		if key.targetType == targetType && targets[key.target] {
			delete(session, key)
		}
	}
	return nil
}

func (r *fakeVoteRepo) snapshot() map[uuid.UUID]map[voteKey]*model.Vote {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := make(map[uuid.UUID]map[voteKey]*model.Vote, len(r.votes))
	for sessionID, votes := range r.votes {
		copied := make(map[voteKey]*model.Vote, len(votes))
		for key, vote := range votes {
			v := *vote
			copied[key] = &v
		}
		state[sessionID] = copied
	}
	return state
}

func (r *fakeVoteRepo) restore(state map[uuid.UUID]map[voteKey]*model.Vote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes = state
}

// fakeTransactor mimics rollback by restoring the repo maps when fn fails.
type fakeTransactor struct {
	board *fakeBoardRepo
	votes *fakeVoteRepo
}

func (t *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	boardState := t.board.snapshot()
	voteState := t.votes.snapshot()
	err := fn(ctx)
	if err != nil {
		t.board.restore(boardState)
		t.votes.restore(voteState)
	}
	return err
}

type fakeEventRepo struct {
	mu      sync.Mutex
	records []*model.BoardEvent
}

func (r *fakeEventRepo) Append(_ context.Context, event *model.BoardEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, event)
	return nil
}

// spyPublisher records every event instead of putting it on the bus.
type spyPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *spyPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *spyPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func (p *spyPublisher) lastOfType(eventType string) events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].EventType() == eventType {
			return p.events[i]
		}
	}
	return nil
}

// nopLogger swallows everything; the services under test log only on
// publish failures, which the spy never produces.
type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }
