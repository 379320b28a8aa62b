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
	authHTTP "estate-market/services/auth/internal/controller/http"
	"estate-market/services/auth/internal/repo/persistent"
	"estate-market/services/auth/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "estate-market/services/auth/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
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
		// Without Redis sign-out cannot revoke tokens and there is no rate limit
		log.Error("Failed to connect to redis: %v (continuing without cache)", err)
		redisClient = nil
	}

	jwtService := jwt.NewServiceWithTTL(cfg.JWTSecret, cfg.JWTTTL)
	if redisClient != nil {
		jwtService.WithRevocations(cache.NewTokenRevocations(redisClient))
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		jwtService:  jwtService,
	}, nil
}

func (a *App) Run() error {
	// Initialize repositories
	userRepo := persistent.NewUserRepository(a.db)

	// Initialize use cases
	authUseCase := usecase.NewAuthUseCase(userRepo, a.jwtService, a.log)

	// Initialize HTTP handlers
	authHandler := authHTTP.NewAuthHandler(authUseCase, a.log)

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
	authenticated := middleware.AuthMiddleware(a.jwtService)

	api := r.Group("/api/v1")
	{
		credentials := middleware.RateLimitMiddleware(a.redisClient, 10, time.Minute)
		api.POST("/register", credentials, authHandler.Register)
		api.POST("/login", credentials, authHandler.Login)

		// Suspended accounts can still sign out
		api.POST("/logout", authenticated, authHandler.Logout)

		protected := api.Group("")
		protected.Use(authenticated, accountStatus)
		{
			protected.POST("/refresh", authHandler.Refresh)
			protected.GET("/me", authHandler.Me)
			protected.PUT("/me", authHandler.UpdateMe)
		}

		admin := api.Group("/admin")
		admin.Use(authenticated, accountStatus, middleware.RequireRole(middleware.RoleAdmin))
		{
			admin.GET("/users", authHandler.ListUsers)
			admin.PATCH("/users/:id/status", authHandler.UpdateUserStatus)
			admin.PATCH("/users/:id/verify", authHandler.VerifyUser)
		}
	}

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Auth service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down auth service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

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

	a.log.Info("Auth service exited")
	return nil
}
