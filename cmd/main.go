package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Srinivas-559/chat-app/config"
	"github.com/Srinivas-559/chat-app/internal/bus"
	"github.com/Srinivas-559/chat-app/internal/postgres"
	"github.com/Srinivas-559/chat-app/internal/relay"
	"github.com/Srinivas-559/chat-app/internal/service"
	httpx "github.com/Srinivas-559/chat-app/internal/transport/http"
	"github.com/Srinivas-559/chat-app/internal/transport/ws"
	"github.com/Srinivas-559/chat-app/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting chat-app",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, postgres.PoolConfig{
		DSN:             cfg.Postgres.DSN,
		ApplicationName: cfg.Logging.Service,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// --- repos ---
	msgRepo := postgres.NewMessageRepository(db.Pool)
	userRepo := postgres.NewUserRepository(db.Pool)

	// --- services & core ---
	authSvc := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.TokenTTLDuration())
	msgSvc := service.NewMessageService(msgRepo)

	registry := relay.NewRegistry()
	presence := relay.NewPublisher(userRepo, msgRepo)
	engine := relay.NewEngine(registry, msgRepo, presence)

	// --- optional cross-instance bus ---
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		deliveryBus := bus.NewRedis(rdb, engine)
		engine.SetBus(deliveryBus)
		go deliveryBus.Run(ctx)
		slog.Info("delivery bus enabled", "addr", cfg.Redis.Addr)
	}

	// --- transports ---
	wsServer := ws.NewServer(engine, authSvc)
	handler := httpx.NewHandler(authSvc, msgSvc)
	router := httpx.NewRouter(handler, authSvc, wsServer, cfg.HTTP.AllowedOrigins)

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal")
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
