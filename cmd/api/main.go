package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/educonnect-pk/educonnect-api/api/swagger"
	"github.com/educonnect-pk/educonnect-api/internal/handler"
	"github.com/educonnect-pk/educonnect-api/internal/middleware"
	"github.com/educonnect-pk/educonnect-api/internal/models"
	"github.com/educonnect-pk/educonnect-api/internal/repository"
	"github.com/educonnect-pk/educonnect-api/internal/router"
	"github.com/educonnect-pk/educonnect-api/internal/service"
	"github.com/educonnect-pk/educonnect-api/pkg/cache"
	"github.com/educonnect-pk/educonnect-api/pkg/config"
	"github.com/educonnect-pk/educonnect-api/pkg/database"
	"github.com/educonnect-pk/educonnect-api/pkg/jobs"
	"github.com/educonnect-pk/educonnect-api/pkg/logger"
	corsmiddleware "github.com/educonnect-pk/educonnect-api/pkg/middleware/cors"
	reqidmiddleware "github.com/educonnect-pk/educonnect-api/pkg/middleware/requestid"
)

// @title EduConnect Pakistan API
// @version 1.0.0
// @description Tutoring marketplace backend
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, directory cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	tutorRepo := repository.NewTutorRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Directory.CacheTTL, logr, cfg.Directory.CacheEnabled && redisClient != nil)
	directorySvc := service.NewDirectoryService(tutorRepo, reviewRepo, cacheSvc, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "educonnect-api",
		SingleSession:      cfg.JWT.SingleSession,
	})
	reviewSvc := service.NewReviewService(reviewRepo, tutorRepo, userRepo, directorySvc, validate, logr)
	wishlistSvc := service.NewWishlistService(wishlistRepo, tutorRepo, logr)

	auditQueue := jobs.NewQueue("booking-audit", func(ctx context.Context, job jobs.Job) error {
		entry, ok := job.Payload.(*models.AuditLog)
		if !ok {
			return fmt.Errorf("unexpected audit payload %T", job.Payload)
		}
		return userRepo.CreateAuditLog(ctx, entry)
	}, jobs.QueueConfig{
		Workers:    cfg.Bookings.AuditWorkers,
		MaxRetries: cfg.Bookings.AuditMaxRetries,
		Logger:     logr,
	})
	auditQueue.Start(context.Background())
	defer auditQueue.Stop()

	bookingSvc := service.NewBookingService(bookingRepo, tutorRepo, auditQueue, metricsSvc, validate, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(bookingSvc, nil, nil, logr)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.Register(r, cfg.APIPrefix, router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc),
		Tutors:   handler.NewTutorHandler(directorySvc, reviewSvc),
		Bookings: handler.NewBookingHandler(bookingSvc, exportSvc),
		Wishlist: handler.NewWishlistHandler(wishlistSvc),
	}, authSvc, userRepo)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
