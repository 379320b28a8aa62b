package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estate-market/pkg/cache"
	"estate-market/pkg/config"
	"estate-market/pkg/database"
	"estate-market/pkg/jwt"
	"estate-market/pkg/logger"
	"estate-market/pkg/middleware"
	"estate-market/pkg/queue"
	"estate-market/pkg/realtime"
	inquiryHTTP "estate-market/services/inquiry/internal/controller/http"
	"estate-market/services/inquiry/internal/repo/persistent"
	"estate-market/services/inquiry/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "estate-market/services/inquiry/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	queueClient *queue.Client
	jwtService  *jwt.Service
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		return nil, err
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		// Notifications are delivered in-process instead
		log.Error("Failed to connect to RabbitMQ: %v (continuing without queue)", err)
		queueClient = nil
	}

	jwtService := jwt.NewServiceWithTTL(cfg.JWTSecret, cfg.JWTTTL).
		WithRevocations(cache.NewTokenRevocations(redisClient))

	// Inquiry and inquiries_count changes reach listing service websockets through Redis.
	broker := realtime.NewBroker(redisClient, nil, log)
	if err := realtime.RegisterCallbacks(db, broker, realtime.TableInquiries, realtime.TableListings); err != nil {
		log.Error("Failed to register realtime callbacks: %v", err)
		return nil, err
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		queueClient: queueClient,
		jwtService:  jwtService,
	}, nil
}

type queueInspector interface {
	QueueLength() (int, error)
}

// healthHandler reports the task queue backlog when RabbitMQ is in use.
func healthHandler(inspector queueInspector, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{"status": "ok", "queue": "direct"}
		if inspector != nil {
			health["queue"] = "rabbitmq"
			if length, err := inspector.QueueLength(); err != nil {
				log.Warn("[RABBITMQ] Failed to inspect queue: %v", err)
				health["status"] = "degraded"
			} else {
				health["queue_length"] = length
			}
		}
		c.JSON(http.StatusOK, health)
	}
}

func (a *App) Run() error {
	// Initialize repositories
	inquiryRepo := persistent.NewInquiryRepository(a.db)

	// Initialize use cases
	notifier := usecase.NewNotifier(usecase.NewRedisInbox(a.redisClient, a.log), a.log)

	var publisher usecase.TaskPublisher = usecase.DirectPublisher{Notifier: notifier}
	if a.queueClient != nil {
		publisher = a.queueClient
		if err := a.queueClient.ConsumeTasks(notifier.HandleTask); err != nil {
			a.log.Error("Failed to start task consumer: %v", err)
			return err
		}
	}

	inquiryUseCase := usecase.NewInquiryUseCase(inquiryRepo, publisher, a.log)

	// Initialize HTTP handlers
	inquiryHandler := inquiryHTTP.NewInquiryHandler(inquiryUseCase, notifier, a.log)
	accountLookup := database.AccountStatus(a.db)
	streamHandler := inquiryHTTP.NewNotificationStreamHandler(notifier, a.jwtService, accountLookup, a.log)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var inspector queueInspector
	if a.queueClient != nil {
		inspector = a.queueClient
	}
	r.GET("/health", healthHandler(inspector, a.log))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	accountStatus := middleware.AccountStatusMiddleware(accountLookup)
	rateLimit := middleware.RateLimitMiddleware(a.redisClient, 30, time.Minute)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(a.jwtService), accountStatus)
	{
		api.POST("/listings/:id/inquiries", rateLimit, middleware.RequireRole(middleware.RoleBuyer, middleware.RoleAdmin), inquiryHandler.CreateInquiry)
		api.GET("/me/inquiries/sent", inquiryHandler.ListSent)
		api.GET("/me/inquiries/received", middleware.RequireRole(middleware.RoleSeller, middleware.RoleAdmin), inquiryHandler.ListReceived)
		api.GET("/me/notifications", inquiryHandler.ListNotifications)
		api.GET("/inquiries/:id", inquiryHandler.GetInquiry)
		api.PATCH("/inquiries/:id/status", inquiryHandler.UpdateStatus)
	}

	// WebSocket endpoint - header auth or ?token= for browsers
	r.GET("/api/v1/me/notifications/ws", middleware.OptionalAuthMiddleware(a.jwtService), accountStatus, streamHandler.HandleWebSocket)

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Inquiry service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down inquiry service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	if err := a.redisClient.Close(); err != nil {
		a.log.Error("Error closing Redis: %v", err)
	}

	a.log.Info("Inquiry service exited")
	return nil
}
