package bootstrap

import (
	"context"
	"fmt"
	"log"

	"itinvent-bot/internal/config"
	"itinvent-bot/internal/controller"
	"itinvent-bot/internal/pkg/logger"
	"itinvent-bot/internal/pkg/mailer"
	"itinvent-bot/internal/pkg/metrics"
	"itinvent-bot/internal/pkg/serverutils"
	"itinvent-bot/internal/repository/memory"
	"itinvent-bot/internal/repository/unitofwork"
	"itinvent-bot/internal/service"
	"itinvent-bot/pkg/access"
	"itinvent-bot/pkg/conversation"
	"itinvent-bot/pkg/inventory"
	"itinvent-bot/pkg/location"
	"itinvent-bot/pkg/lock"
	"itinvent-bot/pkg/recognition"
	"itinvent-bot/pkg/suggest"

	pktNats "itinvent-bot/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	BotController controller.IBotController

	// Background services, started by the serve command
	ConsumerService service.IConsumerService
	AccessCache     *access.Cache

	Engine        *conversation.Engine
	Router        *inventory.Router
	Metrics       *metrics.Metrics
	AccessService service.IAccessService
	Logger        logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewAuditLogger(cfg.App.AuditLogPath)

	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() {
		_ = sysLogger.Sync()
		_ = auditLogger.Sync()
	})

	// 2. Inventory databases
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("database catalog: %w", err)
	}

	recordService := service.NewRecordService(uowFactory, sysLogger)
	router := inventory.NewRouter(
		catalog,
		inventory.OpenGorm,
		service.NewSelectionService(uowFactory),
		recordService,
		sysLogger,
		cfg.Inventory.HandleTTL,
	)
	c.closers = append(c.closers, router.Close)

	// 3. Access
	accessService := service.NewAccessService(uowFactory, cfg.Access.Users, cfg.Access.Groups)
	accessCache := access.NewCache(accessService, cfg.Access.Staleness, sysLogger)

	// 4. Per-user busy guard, shared through redis when configured
	var guard lock.Guard = lock.NewLocalGuard()
	if cfg.App.RedisURL != "" {
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
		guard = lock.NewRedisGuard(rdb, cfg.Session.BusyTTL)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 5. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var emailService mailer.IEmailService
	if cfg.SMTP.Enabled() {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
		)
	}

	publisherService := service.NewPublisherService(cfg.Keys.WorkflowTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.WorkflowTopic,
		forwarder,
		emailService,
		cfg.Documents.EmailTo,
		cfg.Documents.ActsDir,
	)

	// 6. Conversation engine
	sessions := memory.NewSessionRepository(cfg.Session.IdleTimeout)
	suggester := suggest.NewSuggester(cfg.Inventory.Threshold)
	appMetrics := metrics.New(sessions.Count)

	var recognizer conversation.Recognizer
	if cfg.Recognition.Enabled() {
		recognizer = recognition.NewOpenAIRecognizer(recognition.Config{
			APIKey:  cfg.Recognition.APIKey,
			BaseURL: cfg.Recognition.BaseURL,
			Model:   cfg.Recognition.Model,
		})
		log.Printf("[INFO] Photo recognition enabled")
	}

	exportService := service.NewExportService(recordService, sysLogger)

	engine := conversation.NewEngine(conversation.Dependencies{
		Access:     accessCache,
		Sessions:   sessions,
		Router:     router,
		Locations:  location.NewResolver(router, suggester, cfg.Session.ListPageSize),
		Suggester:  suggester,
		Guard:      guard,
		Documents:  service.NewDocumentService(cfg.Documents.ActsDir, sysLogger),
		Recognizer: recognizer,
		Exporter:   service.NewChatExporter(exportService, cfg.Documents.ActsDir),
		Publisher:  publisherService,
		Observer:   appMetrics,
		Logger:     sysLogger,
		Audit:      auditLogger,
	}, conversation.Options{
		ListPageSize: cfg.Session.ListPageSize,
		MaxItems:     cfg.Session.MaxItems,
	})

	// 7. HTTP surface
	botService := service.NewBotService(engine, router)

	c.BotController = controller.NewBotController(botService, serverutils.JwtMiddleware(cfg.App.JWTSecret))
	c.ConsumerService = consumerService
	c.AccessCache = accessCache
	c.Engine = engine
	c.Router = router
	c.Metrics = appMetrics
	c.AccessService = accessService

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
