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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/weekcal-api/api/swagger"
	"github.com/noah-isme/weekcal-api/internal/calendar"
	"github.com/noah-isme/weekcal-api/internal/handler"
	"github.com/noah-isme/weekcal-api/internal/repository"
	"github.com/noah-isme/weekcal-api/internal/scheduler"
	"github.com/noah-isme/weekcal-api/internal/service"
	"github.com/noah-isme/weekcal-api/pkg/cache"
	"github.com/noah-isme/weekcal-api/pkg/config"
	"github.com/noah-isme/weekcal-api/pkg/database"
	"github.com/noah-isme/weekcal-api/pkg/jobs"
	"github.com/noah-isme/weekcal-api/pkg/logger"
)

// @title Weekcal API
// @version 1.0.0
// @description Week-view calendar: event store, week grid views and exports
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	grid := service.ViewGrid{
		GridConfig: calendar.GridConfig{
			StartHour:   cfg.Grid.StartHour,
			EndHour:     cfg.Grid.EndHour,
			RowHeightPx: cfg.Grid.RowHeightPx,
		},
		MinEventHeightPx: cfg.Grid.MinEventHeightPx,
	}
	if err := grid.Validate(); err != nil {
		return fmt.Errorf("grid config: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.ViewCache.Enabled {
		redisClient, err = cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, view cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.ViewCache.TTL, logr, cfg.ViewCache.Enabled && redisClient != nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	invalidator := service.NewViewInvalidator(cacheSvc, logr)
	if cacheSvc.Enabled() {
		queue := jobs.NewQueue("view-invalidation", invalidator.Handle, jobs.QueueConfig{
			Workers:    cfg.Invalidation.Workers,
			MaxRetries: cfg.Invalidation.Retries,
			RetryDelay: cfg.Invalidation.RetryDelay,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()
		invalidator.AttachQueue(queue)
	}

	rollover := scheduler.New(cfg.ViewCache.RolloverCron, loc, invalidator, logr)
	if err := rollover.Start(); err != nil {
		return err
	}
	defer rollover.Stop()

	eventRepo := repository.NewEventRepository(db)
	eventSvc := service.NewEventService(eventRepo, validator.New(), loc, logr,
		service.WithEventPalette(cfg.Events.Colors),
		service.WithEventMetrics(metricsSvc),
		service.WithViewInvalidator(invalidator),
	)
	viewSvc := service.NewViewService(eventRepo, cacheSvc, metricsSvc, logr, service.ViewServiceConfig{
		Grid:          grid,
		Location:      loc,
		UpcomingLimit: cfg.Events.UpcomingLimit,
		CacheTTL:      cfg.ViewCache.TTL,
	})
	exportSvc := service.NewExportService(eventRepo, loc, logr)

	deps := routerDeps{metricsSvc: metricsSvc}
	if cfg.Auth.Enabled {
		tokens, err := service.NewTokenService(cfg.Auth.Secret)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		deps.tokens = tokens
	}

	checks := map[string]handler.HealthCheck{
		"database": func(c *gin.Context) error { return pingDB(c.Request.Context(), db) },
	}
	if cacheSvc.Enabled() {
		checks["redis"] = func(c *gin.Context) error { return cacheRepo.Ping(c.Request.Context()) }
	}

	deps.events = handler.NewEventHandler(eventSvc)
	deps.views = handler.NewViewHandler(viewSvc)
	deps.exports = handler.NewExportHandler(exportSvc, viewSvc)
	deps.metrics = handler.NewMetricsHandler(metricsSvc, checks)
	r := newRouter(cfg, logr, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("timezone", loc.String()),
			zap.String("db_driver", cfg.Database.Driver),
			zap.Bool("view_cache", cacheSvc.Enabled()),
			zap.Bool("auth", deps.tokens != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func pingDB(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
