package bootstrap

import (
	"context"
	"log"

	"retroboard-be/internal/config"
	"retroboard-be/internal/controller"
	"retroboard-be/internal/handler"
	"retroboard-be/internal/pkg/logger"
	"retroboard-be/internal/repository/implementation"
	"retroboard-be/internal/repository/memory"
	"retroboard-be/internal/service"
	"retroboard-be/internal/websocket"

	pktNats "retroboard-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const sessionEventsTopic = "session_events"

// The durable audit consumer follows every mirrored event.
const (
	auditSubject = "events.retro.>"
	auditDurable = "retroboard-audit"
)

type Container struct {
	// Controllers
	SessionController  controller.ISessionController
	BoardController    controller.IBoardController
	VoteController     controller.IVoteController
	PresenceController controller.IPresenceController

	// Background services (exposed for main.go to run)
	BroadcasterService service.IBroadcasterService

	// WebSockets
	BoardHandler *handler.BoardHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	clock := clockwork.NewRealClock()

	// Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Repositories
	sessionRepo := implementation.NewSessionRepository(db)
	boardRepo := implementation.NewBoardRepository(db)
	voteRepo := implementation.NewVoteRepository(db)
	boardEventRepo := implementation.NewBoardEventRepository(db)
	presenceRepo := memory.NewPresenceRepository(cfg.Presence.TTL)
	timerLikeRepo := memory.NewTimerLikeRepository()
	transactor := implementation.NewTransactor(db)

	// NATS mirror (optional; the engine runs without it)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	var natsSub *pktNats.Subscriber
	if natsPub != nil {
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		}
	}

	// Redis (bridges the hub across instances)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/broadcast.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Services
	publisherService := service.NewPublisherService(sessionEventsTopic, pubSub, sysLogger)
	auditService := service.NewAuditService(boardEventRepo, sysLogger)

	// Audit trail: prefer the durable JetStream consumer, which survives
	// restarts; without NATS the broadcaster appends in-process instead.
	broadcastAudit := auditService
	if natsSub != nil {
		if err := natsSub.Subscribe(auditSubject, auditDurable, auditService.Record); err != nil {
			log.Printf("[WARN] Failed to start NATS audit consumer: %v", err)
		} else {
			broadcastAudit = nil
		}
	}

	broadcasterService := service.NewBroadcasterService(
		pubSub,
		sessionEventsTopic,
		wsHub,
		natsPub,
		broadcastAudit,
		sysLogger,
	)

	sessionService := service.NewSessionService(sessionRepo, timerLikeRepo, publisherService, clock, sysLogger)
	boardService := service.NewBoardService(sessionRepo, boardRepo, voteRepo, transactor, publisherService, sysLogger)
	votingService := service.NewVotingService(sessionRepo, boardRepo, voteRepo, publisherService, sysLogger)
	presenceService := service.NewPresenceService(sessionRepo, presenceRepo, publisherService, clock, sysLogger)

	return &Container{
		SessionController:  controller.NewSessionController(sessionService),
		BoardController:    controller.NewBoardController(boardService),
		VoteController:     controller.NewVoteController(votingService),
		PresenceController: controller.NewPresenceController(presenceService),
		BroadcasterService: broadcasterService,
		BoardHandler:       handler.NewBoardHandler(wsHub, wsLogger),
		WebSocketHub:       wsHub,
	}
}
