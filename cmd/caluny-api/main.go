package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/caluny-api/internal/handler"
	"github.com/noah-isme/caluny-api/internal/repository"
	"github.com/noah-isme/caluny-api/internal/service"
	"github.com/noah-isme/caluny-api/pkg/cache"
	"github.com/noah-isme/caluny-api/pkg/config"
	"github.com/noah-isme/caluny-api/pkg/database"
	"github.com/noah-isme/caluny-api/pkg/logger"
	"github.com/noah-isme/caluny-api/pkg/validation"
)

// @title Caluny API
// @version 1.0.0
// @description Accounts, devices and the university catalogue for the Caluny mobile app
// @BasePath /
// @schemes http
// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.DB, logr); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching and rate limiting disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metricsSvc := service.NewMetricsService()
	validate := validation.New()

	var cacheRepo *repository.CacheRepository
	var cacheRepoIface service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		cacheRepoIface = cacheRepo
		defer cacheRepo.Close() //nolint:errcheck
	}
	cacheSvc := service.NewCacheService(cacheRepoIface, metricsSvc, cfg.Cache.ListTTL, logr, redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	institutionRepo := repository.NewInstitutionRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	teachingRepo := repository.NewTeachingSubjectRepository(db)

	accountSvc := service.NewAccountService(userRepo, validate, cacheSvc, metricsSvc, logr, service.AccountConfig{
		TokenKeyBytes: cfg.Auth.TokenKeyBytes,
		BcryptCost:    cfg.Auth.BcryptCost,
		TokenCacheTTL: cfg.Cache.TokenTTL,
	})
	deviceSvc := service.NewDeviceService(deviceRepo, validate, metricsSvc, logr)
	institutionSvc := service.NewInstitutionService(institutionRepo, validate, cacheSvc, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, institutionSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, institutionSvc, subjectRepo, validate, logr)
	teachingSvc := service.NewTeachingSubjectService(teachingRepo, subjectSvc, courseSvc, userRepo, validate, logr)

	var limiter rateLimiter
	if cacheRepo != nil {
		limiter = cacheRepo
	}

	router := newRouter(cfg, logr, routes{
		accounts:         handler.NewAccountHandler(accountSvc, deviceSvc),
		institutions:     handler.NewInstitutionHandler(institutionSvc),
		subjects:         handler.NewSubjectHandler(subjectSvc),
		courses:          handler.NewCourseHandler(courseSvc),
		teachingSubjects: handler.NewTeachingSubjectHandler(teachingSvc),
		metrics:          handler.NewMetricsHandler(metricsSvc, db),
		authenticator:    accountSvc,
		metricsSvc:       metricsSvc,
		limiter:          limiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
