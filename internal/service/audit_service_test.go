package service

import (
	"context"
	"encoding/json"
	"testing"

	"retroboard-be/internal/constant"
	"retroboard-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuditRecordPersistsEnvelope(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewAuditService(repo, nopLogger{})

	sessionId := uuid.New()
	event := events.New(constant.EventVoteUpdated, sessionId, map[string]interface{}{
		"vote_count": 2,
	})

	assert.NoError(t, svc.Record(context.Background(), event))
	assert.Len(t, repo.records, 1)

	record := repo.records[0]
	assert.Equal(t, sessionId, record.SessionId)
	assert.Equal(t, constant.EventVoteUpdated, record.Type)
	assert.Equal(t, constant.TopicDiscussion, record.Topic)

	var envelope map[string]interface{}
	assert.NoError(t, json.Unmarshal(record.Payload, &envelope))
	assert.Equal(t, constant.EventVoteUpdated, envelope["type"])
	assert.Equal(t, sessionId.String(), envelope["session_id"])
	assert.Equal(t, float64(2), envelope["vote_count"])
}

func TestAuditRecordTopicFollowsEventType(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewAuditService(repo, nopLogger{})
	sessionId := uuid.New()

	for eventType, topic := range map[string]string{
		constant.EventTimerStarted:          constant.TopicTimer,
		constant.EventGroupCreated:          constant.TopicReview,
		constant.EventStepChanged:           constant.TopicStep,
		constant.EventConnectedUsersUpdated: constant.TopicConnectedUsers,
	} {
		assert.NoError(t, svc.Record(context.Background(), events.New(eventType, sessionId, nil)))
		record := repo.records[len(repo.records)-1]
		assert.Equal(t, topic, record.Topic, eventType)
	}
}
