package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"retroboard-be/internal/constant"
	"retroboard-be/internal/model"
	"retroboard-be/internal/repository/implementation"
	"retroboard-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormRepositories(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())

	ctx := context.Background()
	sessionRepo := implementation.NewSessionRepository(gormDB)
	boardRepo := implementation.NewBoardRepository(gormDB)
	voteRepo := implementation.NewVoteRepository(gormDB)

	session := &model.Session{
		Id:         uuid.New(),
		Name:       "integration-" + uuid.New().String(),
		OwnerId:    uuid.New(),
		Phase:      constant.PhaseFeedback,
		VoteBudget: constant.DefaultVoteBudget,
	}
	assert.NoError(t, sessionRepo.Create(ctx, session))
	defer gormDB.Unscoped().Delete(session)

	t.Run("Session round trip and partial update", func(t *testing.T) {
		got, err := sessionRepo.GetByID(ctx, session.Id)
		assert.NoError(t, err)
		assert.Equal(t, session.Name, got.Name)

		assert.NoError(t, sessionRepo.UpdateFields(ctx, session.Id, map[string]interface{}{
			"phase": constant.PhaseReview,
		}))
		got, _ = sessionRepo.GetByID(ctx, session.Id)
		assert.Equal(t, constant.PhaseReview, got.Phase)
	})

	t.Run("Item positions per category", func(t *testing.T) {
		max, err := boardRepo.MaxItemPosition(ctx, session.Id, constant.CategoryGood)
		assert.NoError(t, err)
		assert.Equal(t, -1, max, "empty column starts below zero")

		item := &model.Item{
			Id:        uuid.New(),
			SessionId: session.Id,
			AuthorId:  session.OwnerId,
			Category:  constant.CategoryGood,
			Content:   "integration item",
			Position:  0,
		}
		assert.NoError(t, boardRepo.CreateItem(ctx, item))
		defer gormDB.Unscoped().Delete(item)

		max, err = boardRepo.MaxItemPosition(ctx, session.Id, constant.CategoryGood)
		assert.NoError(t, err)
		assert.Equal(t, 0, max)
	})

	t.Run("Vote upsert is idempotent per user and target", func(t *testing.T) {
		target := uuid.New()
		user := uuid.New()
		vote := &model.Vote{
			Id:         uuid.New(),
			SessionId:  session.Id,
			UserId:     user,
			TargetType: constant.TargetTypeItem,
			TargetId:   target,
			Count:      1,
		}
		assert.NoError(t, voteRepo.Upsert(ctx, vote))

		vote.Id = uuid.New()
		vote.Count = 2
		assert.NoError(t, voteRepo.Upsert(ctx, vote))
		defer voteRepo.Delete(ctx, session.Id, user, constant.TargetTypeItem, target)

		got, err := voteRepo.Get(ctx, session.Id, user, constant.TargetTypeItem, target)
		assert.NoError(t, err)
		assert.Equal(t, 2, got.Count)

		sum, err := voteRepo.SumByUser(ctx, session.Id, user)
		assert.NoError(t, err)
		assert.Equal(t, 2, sum, "the conflict clause replaces, never adds a second row")
	})
}
