package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/config"
	"taskboard/backend/internal/database"
	"taskboard/backend/internal/handlers"
	"taskboard/backend/internal/logging"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/monitoring"
	"taskboard/backend/internal/services"
	"taskboard/backend/internal/worker"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(!cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	poolConfig := database.DefaultPoolConfig()
	poolConfig.DSN = cfg.GetDatabaseDSN()
	poolConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	poolConfig.MaxIdleConns = cfg.Database.MaxIdleConns
	poolConfig.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime
	if cfg.IsProduction() {
		poolConfig.LogLevel = logger.Warn
	}

	db, err := database.NewDatabasePool(poolConfig)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate schema", zap.Error(err))
	}

	cacheConfig := cache.DefaultCacheConfig()
	cacheConfig.Addr = cfg.GetRedisAddr()
	cacheConfig.Password = cfg.Redis.Password
	cacheConfig.DB = cfg.Redis.DB
	cacheConfig.PoolSize = cfg.Redis.PoolSize
	cacheConfig.MinIdleConns = cfg.Redis.MinIdleConns
	redisCache := cache.NewRedisCache(cacheConfig)
	defer redisCache.Close()

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
		return redisCache.Health()
	})

	var taskService services.TaskService = services.NewTaskService()
	if err := redisCache.Health(); err != nil {
		log.Warn("redis unavailable, task caching disabled", zap.Error(err))
	} else {
		taskService = services.NewCachedTaskService(taskService, redisCache)
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		DB:            db,
		Config:        cfg,
		Logger:        log,
		TaskService:   taskService,
		ReportService: services.NewReportService(),
		AuthService:   services.NewAuthService(cfg.Auth),
		UserService:   services.NewUserService(),
	})

	jobWorker := worker.NewWorker(worker.Config{
		RedisClient: redisCache.Client(),
		Logger:      log,
		Queues:      cfg.Worker.Queues,
	})
	jobWorker.RegisterHandler(worker.JobTypeTokenCleanup, func(ctx context.Context, job *worker.Job) error {
		return cleanupExpiredTokens(db)
	})
	jobWorker.Start(cfg.Worker.Concurrency)
	defer jobWorker.Stop()

	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go scheduleTokenCleanup(cleanupCtx, jobWorker, cfg.Worker.CleanupInterval, log)

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

func cleanupExpiredTokens(db *gorm.DB) error {
	return db.Delete(&models.Token{}, "expires_at < ?", time.Now()).Error
}

func scheduleTokenCleanup(ctx context.Context, w *worker.Worker, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job := &worker.Job{
				ID:        uuid.Must(uuid.NewV4()).String(),
				Type:      worker.JobTypeTokenCleanup,
				CreatedAt: time.Now(),
			}
			if err := w.Enqueue("maintenance", job); err != nil {
				log.Error("failed to enqueue token cleanup", zap.Error(err))
			}
		}
	}
}
