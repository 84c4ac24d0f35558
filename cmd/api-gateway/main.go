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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Abhinav-Chauhan1/ERP-sub011/api/swagger"
	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/handler"
	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/middleware"
	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/repository"
	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/service"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/cache"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/config"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/database"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/jobs"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/logger"
	corsmiddleware "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/middleware/cors"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/storage"
	reqidmiddleware "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/middleware/requestid"
)

// @title School ERP Timetabling API
// @version 1.0.0
// @description Timetable scheduling with conflict detection, exam ranking and merit lists
// @BasePath /api/v1
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
		logr.Sugar().Warnw("redis unavailable, grid caching disabled", "error", err)
		redisClient = nil
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Timetable.CacheEnabled, logr)

	timetableRepo := repository.NewTimetableRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	examRepo := repository.NewExamRepository(db)
	meritRepo := repository.NewMeritRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	timetableSvc := service.NewTimetableService(timetableRepo, slotRepo, cacheSvc, cfg.Timetable.GridCacheTTL, nil, logr)
	slotSvc := service.NewSlotService(slotRepo, timetableRepo, cacheSvc, metricsSvc, nil, logr)
	examSvc := service.NewExamService(examRepo, logr)

	var meritSvc *service.MeritService
	var meritQueue *jobs.Queue
	if cfg.Merit.Enabled {
		meritQueue = jobs.NewQueue("merit-refresh", func(ctx context.Context, job jobs.Job) error {
			payload, ok := job.Payload.(service.MeritRefreshPayload)
			if !ok {
				return fmt.Errorf("unexpected payload type %T for job %s", job.Payload, job.ID)
			}
			return meritSvc.HandleRefreshJob(ctx, payload)
		}, jobs.QueueConfig{
			Workers:    cfg.Merit.WorkerConcurrency,
			MaxRetries: cfg.Merit.WorkerRetries,
			Logger:     logr,
		})
		meritSvc = service.NewMeritService(meritRepo, meritQueue, nil, logr)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(middleware.Metrics(metricsSvc))
	}

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Timetables:  handler.NewTimetableHandler(timetableSvc),
		Slots:       handler.NewSlotHandler(slotSvc),
		Exams:       handler.NewExamHandler(examSvc),
		AuthService: authSvc,
	}
	if meritSvc != nil {
		handlers.Merit = handler.NewMeritHandler(meritSvc)
	}
	if cfg.Exports.Enabled {
		var archive *storage.ExportArchive
		if cfg.Exports.ArchiveDir != "" {
			archive, err = storage.NewExportArchive(cfg.Exports.ArchiveDir)
			if err != nil {
				logr.Sugar().Warnw("export archive unavailable", "error", err)
				archive = nil
			} else if removed, err := archive.CleanupOlderThan(cfg.Exports.ArchiveTTL); err != nil {
				logr.Sugar().Warnw("export archive cleanup failed", "error", err)
			} else if len(removed) > 0 {
				logr.Sugar().Infow("pruned archived exports", "count", len(removed))
			}
		}
		handlers.Exports = handler.NewExportHandler(service.NewExportService(timetableSvc, meritSvc, archive, logr))
	}
	handler.RegisterRoutes(r, cfg.APIPrefix, handlers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if meritQueue != nil {
		meritQueue.Start(ctx)
		defer meritQueue.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
