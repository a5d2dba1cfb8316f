package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskvault/backend/api/handler"
	"github.com/taskvault/backend/internal/config"
	"github.com/taskvault/backend/internal/infrastructure/kvstore"
	"github.com/taskvault/backend/internal/infrastructure/monitor"
	redisInfra "github.com/taskvault/backend/internal/infrastructure/redis"
	"github.com/taskvault/backend/internal/middleware"
	"github.com/taskvault/backend/internal/router"
	"github.com/taskvault/backend/internal/services"
	"github.com/taskvault/backend/internal/services/lifecycle"
	"github.com/taskvault/backend/pkg/httpcontext"
	"github.com/taskvault/backend/pkg/logger"
	"github.com/taskvault/backend/repository/kv"
	redisRepo "github.com/taskvault/backend/repository/redis"
	authUC "github.com/taskvault/backend/usecase/auth"
	taskUC "github.com/taskvault/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	var (
		store       kvstore.Store
		storeHealth monitor.StoreHealth
	)
	if cfg.Store.Path != "" {
		boltStore, err := kvstore.OpenBolt(cfg.Store.Path, cfg.Store.Bucket)
		if err != nil {
			zapLogger.Fatal("failed to open task store", zap.Error(err))
		}
		store, storeHealth = boltStore, boltStore
	} else {
		zapLogger.Warn("STORE_PATH not set, tasks will not survive a restart")
		memStore := kvstore.NewMemory()
		store, storeHealth = memStore, memStore
	}
	manager.Register("store", func(ctx context.Context) error {
		return store.Close()
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	mon := monitor.New(storeHealth, redisClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskRepo := kv.NewTaskRepository(store, zapLogger)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)

	if cfg.Outbox.Enabled {
		outbox := services.NewSyncOutbox(
			taskRepo,
			nil, // no syncer wired yet; only the purge schedule does work
			mon,
			zapLogger,
			services.OutboxConfig{
				Interval:       cfg.Outbox.ScanInterval,
				BatchSize:      cfg.Outbox.BatchSize,
				PurgeRetention: cfg.Store.PurgeRetention,
			},
		)
		outbox.Start()
		manager.Register("sync_outbox", func(ctx context.Context) error {
			outbox.Stop(ctx)
			return nil
		})
	}

	authUseCase := authUC.New(sessionRepo, cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	taskUseCase := taskUC.New(taskRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.SessionTTL),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
