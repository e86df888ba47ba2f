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
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/career-readiness-api/api/swagger"
	"github.com/noah-isme/career-readiness-api/internal/handler"
	"github.com/noah-isme/career-readiness-api/internal/repository"
	"github.com/noah-isme/career-readiness-api/internal/scoring"
	"github.com/noah-isme/career-readiness-api/internal/service"
	"github.com/noah-isme/career-readiness-api/pkg/cache"
	"github.com/noah-isme/career-readiness-api/pkg/config"
	"github.com/noah-isme/career-readiness-api/pkg/database"
	"github.com/noah-isme/career-readiness-api/pkg/jobs"
	"github.com/noah-isme/career-readiness-api/pkg/logger"
)

// @title Career Readiness API
// @version 1.0.0
// @description Student readiness scoring, activity tracking and recruiter job matching.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := database.AutoMigrate(db.DB); err != nil {
			return err
		}
		logr.Info("migrations applied")
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	weights, err := scoring.LoadWeightsFile(cfg.Readiness.WeightsFile)
	if err != nil {
		return fmt.Errorf("load readiness weights: %w", err)
	}
	calculator, err := scoring.NewCalculator(weights)
	if err != nil {
		return fmt.Errorf("readiness weights: %w", err)
	}
	matcher, err := scoring.NewMatcher(scoring.DefaultMatchWeights())
	if err != nil {
		return fmt.Errorf("match weights: %w", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	studentRepo := repository.NewStudentRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	jobRepo := repository.NewJobRepository(db)
	userRepo := repository.NewUserRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Readiness.CacheTTL, logr, cfg.Cache.Enabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "career-readiness-api",
	})
	readinessSvc := service.NewReadinessService(studentRepo, historyRepo, calculator, cacheSvc, metrics, logr, service.ReadinessConfig{
		MaxRetries: cfg.Readiness.MaxRetries,
		CacheTTL:   cfg.Readiness.CacheTTL,
	})
	studentSvc := service.NewStudentService(studentRepo, userRepo, readinessSvc, validate, logr)
	jobSvc := service.NewJobService(jobRepo, validate, logr)
	matchingSvc := service.NewMatchingService(jobRepo, studentRepo, historyRepo, matcher, metrics, logr, service.MatchingConfig{
		Workers: cfg.Matching.Workers,
	})
	leaderboardSvc := service.NewLeaderboardService(studentRepo, cacheSvc, logr, service.LeaderboardConfig{
		DefaultLimit: cfg.Leaderboard.DefaultLimit,
		CacheTTL:     cfg.Leaderboard.CacheTTL,
	})
	exportSvc := service.NewExportService(jobSvc, leaderboardSvc, nil, logr)

	var queue *jobs.Queue
	queue = jobs.NewQueue(service.MatchingJobType, matchingSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Matching.QueueWorkers,
		BufferSize: cfg.Matching.QueueBuffer,
		MaxRetries: cfg.Matching.QueueRetries,
		RetryDelay: cfg.Matching.RetryDelay,
		Logger:     logr.Named("matching-queue"),
		OnComplete: func(job jobs.Job, err error, elapsed time.Duration) {
			metrics.SetQueueDepth(queue.Pending())
		},
	})
	matchingSvc.AttachQueue(queue)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	queue.Start(ctx)
	defer queue.Stop()

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(cfg, logr, routeDeps{
		auth:        authSvc,
		metrics:     metrics,
		authH:       handler.NewAuthHandler(authSvc),
		studentH:    handler.NewStudentHandler(studentSvc, readinessSvc),
		jobH:        handler.NewJobHandler(jobSvc, matchingSvc, exportSvc),
		leaderboard: handler.NewLeaderboardHandler(leaderboardSvc, exportSvc),
		metricsH:    handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
