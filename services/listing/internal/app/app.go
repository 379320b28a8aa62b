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
	"estate-market/pkg/realtime"
	"estate-market/pkg/s3"
	listingHTTP "estate-market/services/listing/internal/controller/http"
	"estate-market/services/listing/internal/repo/persistent"
	"estate-market/services/listing/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "estate-market/services/listing/docs" // Swagger docs
)

const statsTTL = 5 * time.Minute

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	hub         *realtime.Hub
	broker      *realtime.Broker
	stopStats   func()
	cancel      context.CancelFunc
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
		// Without Redis: no rate limit, every view counts, events stay in-process
		log.Error("Failed to connect to redis: %v (continuing without cache)", err)
		redisClient = nil
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		return nil, err
	}

	jwtService := jwt.NewServiceWithTTL(cfg.JWTSecret, cfg.JWTTTL)
	if redisClient != nil {
		jwtService.WithRevocations(cache.NewTokenRevocations(redisClient))
	}

	hub := realtime.NewHub(cfg.RealtimeBufferSize, log)
	broker := realtime.NewBroker(redisClient, hub, log)
	if err := realtime.RegisterCallbacks(db, broker, realtime.WatchedTables...); err != nil {
		log.Error("Failed to register realtime callbacks: %v", err)
		return nil, err
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		jwtService:  jwtService,
		hub:         hub,
		broker:      broker,
	}, nil
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go func() {
		if err := a.broker.Run(ctx); err != nil {
			a.log.Error("[REALTIME] Broker stopped: %v", err)
		}
	}()

	// Initialize repositories
	listingRepo := persistent.NewListingRepository(a.db)

	// Initialize use cases
	statsCache := usecase.NewRedisStatsCache(a.redisClient, statsTTL, a.log)
	a.stopStats = usecase.InvalidateOnChange(a.hub, statsCache, a.cfg.RealtimeDebounce)

	listingUseCase := usecase.NewListingUseCase(
		listingRepo,
		a.s3Client,
		usecase.NewRedisViewTracker(a.redisClient),
		statsCache,
		a.log,
	)

	// Initialize HTTP handlers
	listingHandler := listingHTTP.NewListingHandler(listingUseCase, a.log)
	realtimeHandler := listingHTTP.NewRealtimeHandler(a.hub, a.jwtService, database.AccountStatus(a.db), a.cfg.RealtimeDebounce, a.log)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	accountStatus := middleware.AccountStatusMiddleware(database.AccountStatus(a.db))
	rateLimit := middleware.RateLimitMiddleware(a.redisClient, 100, time.Minute)

	api := r.Group("/api/v1")

	public := api.Group("")
	public.Use(middleware.OptionalAuthMiddleware(a.jwtService), accountStatus, rateLimit)
	{
		public.GET("/listings", listingHandler.ListListings)
		public.GET("/listings/:id", listingHandler.GetListing)
		public.POST("/listings/:id/view", listingHandler.RecordView)
		public.GET("/amenities", listingHandler.ListAmenities)
		public.GET("/realtime/ws", realtimeHandler.HandleWebSocket)
	}

	seller := api.Group("")
	seller.Use(middleware.AuthMiddleware(a.jwtService), accountStatus, rateLimit)
	seller.Use(middleware.RequireRole(middleware.RoleSeller, middleware.RoleAdmin))
	{
		seller.POST("/listings", listingHandler.CreateListing)
		seller.PUT("/listings/:id", listingHandler.UpdateListing)
		seller.DELETE("/listings/:id", listingHandler.DeleteListing)
		seller.POST("/listings/:id/submit", listingHandler.SubmitListing)
		seller.POST("/listings/:id/resubmit", listingHandler.ResubmitListing)
		seller.POST("/listings/:id/status", listingHandler.UpdateListingStatus)
		seller.POST("/listings/:id/images/:image_id/feature", listingHandler.SetFeaturedImage)
		seller.DELETE("/listings/:id/images/:image_id", listingHandler.DeleteImage)
		seller.GET("/me/listings", listingHandler.ListMyListings)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(a.jwtService), accountStatus, middleware.RequireRole(middleware.RoleAdmin))
	{
		admin.GET("/listings", listingHandler.ListListings)
		admin.GET("/stats", listingHandler.GetStats)
		admin.POST("/listings/:id/approve", listingHandler.ApproveListing)
		admin.POST("/listings/:id/reject", listingHandler.RejectListing)
		admin.POST("/listings/:id/suspend", listingHandler.SuspendListing)
		admin.POST("/listings/:id/featured", listingHandler.SetFeatured)
		admin.POST("/amenities", listingHandler.CreateAmenity)
	}

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Listing service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down listing service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	if a.stopStats != nil {
		a.stopStats()
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.hub.Close()

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	a.log.Info("Listing service exited")
	return nil
}
