package service

import (
	"context"
	"testing"

	"retroboard-be/internal/constant"
	"retroboard-be/internal/dto"
	"retroboard-be/internal/model"
	"retroboard-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type boardFixture struct {
	svc       IBoardService
	sessions  *fakeSessionRepo
	board     *fakeBoardRepo
	votes     *fakeVoteRepo
	publisher *spyPublisher
	sessionId uuid.UUID
	owner     store.UserSnapshot
}

func newBoardFixture(t *testing.T) *boardFixture {
	t.Helper()
	sessions := newFakeSessionRepo()
	board := newFakeBoardRepo()
	votes := newFakeVoteRepo()
	publisher := &spyPublisher{}

	owner := store.UserSnapshot{Id: uuid.New(), Name: "alex"}
	session := &model.Session{
		Id:         uuid.New(),
		Name:       "retro",
		OwnerId:    owner.Id,
		Phase:      constant.PhaseReview,
		VoteBudget: constant.DefaultVoteBudget,
	}
	assert.NoError(t, sessions.Create(context.Background(), session))

	tx := &fakeTransactor{board: board, votes: votes}

	return &boardFixture{
		svc:       NewBoardService(sessions, board, votes, tx, publisher, nopLogger{}),
		sessions:  sessions,
		board:     board,
		votes:     votes,
		publisher: publisher,
		sessionId: session.Id,
		owner:     owner,
	}
}

func (f *boardFixture) addItem(t *testing.T, author store.UserSnapshot, category, content string) uuid.UUID {
	t.Helper()
	res, err := f.svc.CreateItem(context.Background(), f.sessionId, author, &dto.CreateItemRequest{
		Category: category,
		Content:  content,
	})
	assert.NoError(t, err)
	return res.Id
}

func TestCreateItemAppendsAtEndOfColumn(t *testing.T) {
	f := newBoardFixture(t)

	first, err := f.svc.CreateItem(context.Background(), f.sessionId, f.owner, &dto.CreateItemRequest{
		Category: constant.CategoryGood, Content: "shipped on time",
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, first.Position)

	second, err := f.svc.CreateItem(context.Background(), f.sessionId, f.owner, &dto.CreateItemRequest{
		Category: constant.CategoryGood, Content: "good pairing",
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, second.Position)

	// Columns are independent.
	other, err := f.svc.CreateItem(context.Background(), f.sessionId, f.owner, &dto.CreateItemRequest{
		Category: constant.CategoryBad, Content: "too many meetings",
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, other.Position)

	assert.NotNil(t, f.publisher.lastOfType(constant.EventItemAdded))
}

func TestUpdateItemOnlyByAuthor(t *testing.T) {
	f := newBoardFixture(t)
	itemId := f.addItem(t, f.owner, constant.CategoryGood, "original")
	stranger := uuid.New()

	err := f.svc.UpdateItem(context.Background(), f.sessionId, stranger, &dto.UpdateItemRequest{
		Id: itemId, Content: "hijacked",
	})
	assert.Error(t, err)

	err = f.svc.UpdateItem(context.Background(), f.sessionId, f.owner.Id, &dto.UpdateItemRequest{
		Id: itemId, Content: "edited",
	})
	assert.NoError(t, err)

	item, _ := f.board.GetItem(context.Background(), f.sessionId, itemId)
	assert.Equal(t, "edited", item.Content)
}

func TestCreateGroupRequiresTwoUngroupedItems(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a")
	b := f.addItem(t, f.owner, constant.CategoryGood, "b")

	res, err := f.svc.CreateGroup(context.Background(), f.sessionId, &dto.CreateGroupRequest{
		ItemIds: []uuid.UUID{a, b}, Category: constant.CategoryGood,
	})
	assert.NoError(t, err)

	// Regrouping an already-grouped item is rejected.
	c := f.addItem(t, f.owner, constant.CategoryGood, "c")
	_, err = f.svc.CreateGroup(context.Background(), f.sessionId, &dto.CreateGroupRequest{
		ItemIds: []uuid.UUID{a, c}, Category: constant.CategoryGood,
	})
	assert.Error(t, err)

	// Unknown item ids are rejected.
	_, err = f.svc.CreateGroup(context.Background(), f.sessionId, &dto.CreateGroupRequest{
		ItemIds: []uuid.UUID{c, uuid.New()}, Category: constant.CategoryGood,
	})
	assert.Error(t, err)

	group, _ := f.board.GetGroup(context.Background(), f.sessionId, res.Id)
	assert.NotNil(t, group)
}

func TestCreateGroupDiscardsMemberVotes(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a")
	b := f.addItem(t, f.owner, constant.CategoryGood, "b")

	voter := uuid.New()
	assert.NoError(t, f.votes.Upsert(context.Background(), &model.Vote{
		Id: uuid.New(), SessionId: f.sessionId, UserId: voter,
		TargetType: constant.TargetTypeItem, TargetId: a, Count: 2,
	}))

	_, err := f.svc.CreateGroup(context.Background(), f.sessionId, &dto.CreateGroupRequest{
		ItemIds: []uuid.UUID{a, b}, Category: constant.CategoryGood,
	})
	assert.NoError(t, err)

	vote, _ := f.votes.Get(context.Background(), f.sessionId, voter, constant.TargetTypeItem, a)
	assert.Nil(t, vote, "grouping resets discussion weight to the group level")
}

func TestCreateGroupInsertsAtPositionShiftingSiblings(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a") // pos 0
	b := f.addItem(t, f.owner, constant.CategoryGood, "b") // pos 1
	c := f.addItem(t, f.owner, constant.CategoryGood, "c") // pos 2
	d := f.addItem(t, f.owner, constant.CategoryGood, "d") // pos 3

	pos := 1
	res, err := f.svc.CreateGroup(context.Background(), f.sessionId, &dto.CreateGroupRequest{
		ItemIds: []uuid.UUID{c, d}, Category: constant.CategoryGood, Position: &pos,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Position)

	itemA, _ := f.board.GetItem(context.Background(), f.sessionId, a)
	itemB, _ := f.board.GetItem(context.Background(), f.sessionId, b)
	assert.Equal(t, 0, itemA.Position)
	assert.Equal(t, 2, itemB.Position, "siblings at and after the slot shift by one")
}

func TestSeparateItemDissolvesUndersizedGroup(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a")
	b := f.addItem(t, f.owner, constant.CategoryGood, "b")

	res, err := f.svc.CreateGroup(context.Background(), f.sessionId, &dto.CreateGroupRequest{
		ItemIds: []uuid.UUID{a, b}, Category: constant.CategoryGood,
	})
	assert.NoError(t, err)

	assert.NoError(t, f.svc.SeparateItem(context.Background(), f.sessionId, a))

	group, _ := f.board.GetGroup(context.Background(), f.sessionId, res.Id)
	assert.Nil(t, group, "a group never exists with fewer than two members")

	itemB, _ := f.board.GetItem(context.Background(), f.sessionId, b)
	assert.Nil(t, itemB.GroupId, "the survivor becomes standalone")
}

func TestDeleteItemDissolvesUndersizedGroup(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a")
	b := f.addItem(t, f.owner, constant.CategoryGood, "b")

	res, err := f.svc.CreateGroup(context.Background(), f.sessionId, &dto.CreateGroupRequest{
		ItemIds: []uuid.UUID{a, b}, Category: constant.CategoryGood,
	})
	assert.NoError(t, err)

	assert.NoError(t, f.svc.DeleteItem(context.Background(), f.sessionId, f.owner.Id, a))

	group, _ := f.board.GetGroup(context.Background(), f.sessionId, res.Id)
	assert.Nil(t, group)
}

func TestCreateGroupRollsBackWhenMemberUpdateFails(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a")
	b := f.addItem(t, f.owner, constant.CategoryGood, "b")

	voter := uuid.New()
	assert.NoError(t, f.votes.Upsert(context.Background(), &model.Vote{
		Id: uuid.New(), SessionId: f.sessionId, UserId: voter,
		TargetType: constant.TargetTypeItem, TargetId: a, Count: 1,
	}))

	f.board.failItemUpdate = b
	_, err := f.svc.CreateGroup(context.Background(), f.sessionId, &dto.CreateGroupRequest{
		ItemIds: []uuid.UUID{a, b}, Category: constant.CategoryGood,
	})
	assert.Error(t, err)

	// The failed grouping must not leave an empty group behind.
	groups, _ := f.board.ListGroups(context.Background(), f.sessionId)
	assert.Empty(t, groups)

	itemA, _ := f.board.GetItem(context.Background(), f.sessionId, a)
	assert.Nil(t, itemA.GroupId, "the first member's assignment rolls back too")

	vote, _ := f.votes.Get(context.Background(), f.sessionId, voter, constant.TargetTypeItem, a)
	assert.NotNil(t, vote, "member votes survive a failed grouping")

	assert.Nil(t, f.publisher.lastOfType(constant.EventGroupCreated))
}

func TestDeleteItemRollsBackWhenDissolutionFails(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a")
	b := f.addItem(t, f.owner, constant.CategoryGood, "b")

	res, err := f.svc.CreateGroup(context.Background(), f.sessionId, &dto.CreateGroupRequest{
		ItemIds: []uuid.UUID{a, b}, Category: constant.CategoryGood,
	})
	assert.NoError(t, err)

	// Deleting b dissolves the group, which frees a; make that step fail.
	f.board.failItemUpdate = a
	assert.Error(t, f.svc.DeleteItem(context.Background(), f.sessionId, f.owner.Id, b))

	deleted, _ := f.board.GetItem(context.Background(), f.sessionId, b)
	assert.NotNil(t, deleted, "the delete itself rolls back")

	group, _ := f.board.GetGroup(context.Background(), f.sessionId, res.Id)
	assert.NotNil(t, group)
	members, _ := f.board.ListItemsByGroup(context.Background(), f.sessionId, res.Id)
	assert.Len(t, members, 2)

	assert.Nil(t, f.publisher.lastOfType(constant.EventItemDeleted))
}

func TestAddItemToGroupThenGrowAndShrink(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a")
	b := f.addItem(t, f.owner, constant.CategoryGood, "b")
	c := f.addItem(t, f.owner, constant.CategoryGood, "c")

	res, err := f.svc.CreateGroup(context.Background(), f.sessionId, &dto.CreateGroupRequest{
		ItemIds: []uuid.UUID{a, b}, Category: constant.CategoryGood,
	})
	assert.NoError(t, err)

	assert.NoError(t, f.svc.AddItemToGroup(context.Background(), f.sessionId, &dto.GroupMembershipRequest{
		ItemId: c, GroupId: res.Id,
	}))

	// Separating one of three keeps the group alive.
	assert.NoError(t, f.svc.SeparateItem(context.Background(), f.sessionId, a))
	group, _ := f.board.GetGroup(context.Background(), f.sessionId, res.Id)
	assert.NotNil(t, group)

	members, _ := f.board.ListItemsByGroup(context.Background(), f.sessionId, res.Id)
	assert.Len(t, members, 2)
}

func TestReorderShortCircuitsWhenOrderUnchanged(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a")
	b := f.addItem(t, f.owner, constant.CategoryGood, "b")

	res, err := f.svc.Reorder(context.Background(), f.sessionId, &dto.ReorderRequest{
		Category: constant.CategoryGood,
		Elements: []dto.OrderedElement{
			{Type: constant.ElementTypeItem, Id: a},
			{Type: constant.ElementTypeItem, Id: b},
		},
	})
	assert.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Nil(t, f.publisher.lastOfType(constant.EventItemsReordered), "unchanged order must stay silent")
}

func TestReorderRewritesDensePositions(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a")
	b := f.addItem(t, f.owner, constant.CategoryGood, "b")
	c := f.addItem(t, f.owner, constant.CategoryGood, "c")

	res, err := f.svc.Reorder(context.Background(), f.sessionId, &dto.ReorderRequest{
		Category: constant.CategoryGood,
		Elements: []dto.OrderedElement{
			{Type: constant.ElementTypeItem, Id: c},
			{Type: constant.ElementTypeItem, Id: a},
			{Type: constant.ElementTypeItem, Id: b},
		},
	})
	assert.NoError(t, err)
	assert.True(t, res.Changed)

	itemC, _ := f.board.GetItem(context.Background(), f.sessionId, c)
	itemA, _ := f.board.GetItem(context.Background(), f.sessionId, a)
	itemB, _ := f.board.GetItem(context.Background(), f.sessionId, b)
	assert.Equal(t, 0, itemC.Position)
	assert.Equal(t, 1, itemA.Position)
	assert.Equal(t, 2, itemB.Position)

	assert.NotNil(t, f.publisher.lastOfType(constant.EventItemsReordered))
}

func TestReorderRejectsIncompleteOrder(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a")
	f.addItem(t, f.owner, constant.CategoryGood, "b")

	_, err := f.svc.Reorder(context.Background(), f.sessionId, &dto.ReorderRequest{
		Category: constant.CategoryGood,
		Elements: []dto.OrderedElement{
			{Type: constant.ElementTypeItem, Id: a},
		},
	})
	assert.Error(t, err)
}

func TestMarkDiscussed(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a")

	assert.NoError(t, f.svc.MarkDiscussed(context.Background(), f.sessionId, &dto.MarkDiscussedRequest{
		Id: a, Type: constant.ElementTypeItem,
	}))

	item, _ := f.board.GetItem(context.Background(), f.sessionId, a)
	assert.True(t, item.Discussed)
	assert.NotNil(t, f.publisher.lastOfType(constant.EventItemDiscussed))
}

func TestSnapshotHidesOthersItemsDuringFeedback(t *testing.T) {
	f := newBoardFixture(t)
	assert.NoError(t, f.sessions.UpdateFields(context.Background(), f.sessionId, map[string]interface{}{
		"phase": constant.PhaseFeedback,
	}))

	other := store.UserSnapshot{Id: uuid.New(), Name: "sam"}
	mine := f.addItem(t, f.owner, constant.CategoryGood, "mine")
	f.addItem(t, other, constant.CategoryGood, "theirs")

	snap, err := f.svc.Snapshot(context.Background(), f.sessionId, f.owner.Id)
	assert.NoError(t, err)
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, mine, snap.Items[0].Id)

	// From review onward everything is visible.
	assert.NoError(t, f.sessions.UpdateFields(context.Background(), f.sessionId, map[string]interface{}{
		"phase": constant.PhaseReview,
	}))
	snap, err = f.svc.Snapshot(context.Background(), f.sessionId, f.owner.Id)
	assert.NoError(t, err)
	assert.Len(t, snap.Items, 2)
}

func TestSnapshotSumsGroupVotes(t *testing.T) {
	f := newBoardFixture(t)
	a := f.addItem(t, f.owner, constant.CategoryGood, "a")
	b := f.addItem(t, f.owner, constant.CategoryGood, "b")

	res, err := f.svc.CreateGroup(context.Background(), f.sessionId, &dto.CreateGroupRequest{
		ItemIds: []uuid.UUID{a, b}, Category: constant.CategoryGood,
	})
	assert.NoError(t, err)

	voter := uuid.New()
	assert.NoError(t, f.votes.Upsert(context.Background(), &model.Vote{
		Id: uuid.New(), SessionId: f.sessionId, UserId: voter,
		TargetType: constant.TargetTypeGroup, TargetId: res.Id, Count: 2,
	}))

	snap, err := f.svc.Snapshot(context.Background(), f.sessionId, f.owner.Id)
	assert.NoError(t, err)
	assert.Len(t, snap.Groups, 1)
	assert.Equal(t, 2, snap.Groups[0].Votes)
	assert.Len(t, snap.Groups[0].Items, 2)
	assert.Empty(t, snap.Items, "grouped items leave the standalone list")
}
