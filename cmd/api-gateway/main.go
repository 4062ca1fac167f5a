package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-announcements/api/swagger"
	"github.com/noah-isme/sma-announcements/internal/handler"
	"github.com/noah-isme/sma-announcements/internal/middleware"
	"github.com/noah-isme/sma-announcements/internal/repository"
	"github.com/noah-isme/sma-announcements/internal/service"
	"github.com/noah-isme/sma-announcements/pkg/cache"
	"github.com/noah-isme/sma-announcements/pkg/config"
	"github.com/noah-isme/sma-announcements/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-announcements/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-announcements/pkg/middleware/requestid"
)

// @title SMA Announcements API
// @version 1.0.0
// @description Time-bounded announcements published by teachers
// @BasePath /
// @schemes http

const shutdownTimeout = 10 * time.Second

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

	store, err := openBackend(cfg, logr)
	if err != nil {
		logr.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	redisClient, err := cache.NewRedis(cfg.Redis, cfg.Cache)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)
	teacherSvc := service.NewTeacherService(store.teachers, logr)
	announcementSvc := service.NewAnnouncementService(store.announcements, teacherSvc, cacheSvc, metricsSvc, validator.New(), logr, service.AnnouncementServiceConfig{
		Location: cfg.Location(),
		CacheTTL: cfg.Cache.TTL,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, store.announcements)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	handler.NewAnnouncementHandler(announcementSvc).Register(r)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	store.close(shutdownCtx)
}
