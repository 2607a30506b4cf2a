package bootstrap

import (
	"context"
	"log"
	"time"

	"casechat-be/internal/config"
	"casechat-be/internal/controller"
	"casechat-be/internal/pkg/logger"
	"casechat-be/internal/repository/implementation"
	"casechat-be/internal/repository/memory"
	"casechat-be/internal/repository/unitofwork"
	"casechat-be/internal/service"
	"casechat-be/internal/websocket"
	"casechat-be/pkg/audit"
	"casechat-be/pkg/embedding"
	"casechat-be/pkg/llm/factory"
	pkgNats "casechat-be/pkg/nats"
	"casechat-be/pkg/rag/response"
	"casechat-be/pkg/rag/search"
	"casechat-be/pkg/rag/session"
	"casechat-be/pkg/risk"
	"casechat-be/pkg/storage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	AuditController    controller.IAuditController
	UploadController   controller.IUploadController

	// Background services (exposed for main.go to run)
	IngestService       service.IIngestService
	NotificationService service.INotificationService
	SessionManager      *session.Manager

	// WebSockets
	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Session store
	sessionRepo := memory.NewSessionRepository()
	sessionManager := session.NewManager(
		sessionRepo,
		time.Duration(cfg.Chat.SessionIdleTTLMins)*time.Minute,
		time.Duration(cfg.Chat.SessionSweepSecs)*time.Second,
	)

	// 5. Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

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

	storageProvider, err := storage.NewLocalProvider(cfg.Storage.BaseDir, cfg.App.BaseURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize storage: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 6. Audit ledger
	ledger := audit.NewLedger(implementation.NewAuditEntryRepository(db))
	auditRecorder := service.NewAuditRecorder(ledger, natsPub, sysLogger)

	// 7. Domain services
	searcher := search.NewOrchestrator(embeddingProvider, sysLogger)
	generator := response.NewGenerator(llmProvider, sysLogger)
	riskAnalyzer := risk.NewAnalyzer(llmProvider, sysLogger)

	publisherService := service.NewPublisherService(pubSub, cfg.Keys.IngestTopic)

	documentService := service.NewDocumentService(uowFactory, auditRecorder, natsPub, sysLogger)
	uploadService := service.NewUploadService(documentService, storageProvider, publisherService, natsPub, sysLogger)
	auditService := service.NewAuditService(ledger)

	chatService := service.NewChatService(
		uowFactory,
		sessionManager,
		searcher,
		generator,
		auditRecorder,
		service.ChatConfig{
			TopK:                 cfg.Chat.TopK,
			MaxHistoryTurns:      cfg.Chat.MaxHistoryTurns,
			GenerationTimeout:    time.Duration(cfg.Chat.GenerationTimeoutSecs) * time.Second,
			RetrievalRetryDelay:  200 * time.Millisecond,
			MaxConcurrentSearch:  cfg.Chat.MaxConcurrentSearch,
			MaxConcurrentGenerat: cfg.Chat.MaxConcurrentGeneration,
		},
		sysLogger,
	)

	ingestService := service.NewIngestService(
		pubSub,
		cfg.Keys.IngestTopic,
		uowFactory,
		documentService,
		storageProvider,
		embeddingProvider,
		riskAnalyzer,
		natsPub,
		sysLogger,
	)

	var notificationService service.INotificationService
	if natsSub != nil {
		notificationService = service.NewNotificationService(natsSub, wsHub, wsLogger)
	}

	return &Container{
		ChatController:      controller.NewChatController(chatService),
		DocumentController:  controller.NewDocumentController(documentService),
		AuditController:     controller.NewAuditController(auditService),
		UploadController:    controller.NewUploadController(uploadService),
		IngestService:       ingestService,
		NotificationService: notificationService,
		SessionManager:      sessionManager,
		WebSocketHub:        wsHub,
		Logger:              sysLogger,
	}
}
