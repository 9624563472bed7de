package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rl1809/inventory-bot/internal/adapter/handler"
	"github.com/rl1809/inventory-bot/internal/adapter/storage"
	"github.com/rl1809/inventory-bot/internal/config"
	"github.com/rl1809/inventory-bot/internal/core/service"
	"github.com/rl1809/inventory-bot/internal/logging"
	"github.com/rl1809/inventory-bot/internal/metrics"
	"github.com/rl1809/inventory-bot/internal/port"
)

func main() {
	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize inventory backend
	repo, err := storage.Open(ctx, cfg.Storage())
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	defer repo.Close()
	logger.Info("inventory backend ready", "backend", cfg.Backend)

	store := service.NewInventoryStore(repo, logger)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}

	// Initialize metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize engine
	opts := []service.Option{service.WithLogger(logger), service.WithMetrics(m)}
	if cfg.Password == "" {
		logger.Warn("no access password configured, every user is authorized")
		opts = append(opts, service.WithOpenAccess())
	}
	engine := service.NewEngine(store, storage.NewMemorySessionRepository(), opts...)

	// Optional update de-duplication
	var dedupe port.UpdateDeduplicator
	if cfg.Dedupe {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, PoolSize: 10})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return fmt.Errorf("connect redis for de-duplication: %w", err)
		}
		cache := storage.NewRedisAdapter(rdb)
		defer cache.Close()
		dedupe = cache
		logger.Info("update de-duplication enabled", "redis", cfg.RedisAddr)
	}

	dispatcher := handler.NewDispatcher(engine, cfg.Password, dedupe, m, logger)

	// Initialize gRPC server
	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		grpcServer = grpc.NewServer()
		handler.RegisterBotServer(grpcServer, handler.NewGRPCHandler(dispatcher))

		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(dispatcher, cfg.WebhookSecret)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/telegram/webhook", httpHandler.Webhook)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cfg.WebhookURL != "" {
		regCtx, regCancel := context.WithTimeout(ctx, 10*time.Second)
		err := handler.RegisterWebhook(regCtx, nil, handler.TelegramAPI, cfg.BotToken, cfg.WebhookURL, cfg.WebhookSecret)
		regCancel()
		if err != nil {
			logger.Error("webhook registration failed", "error", err)
		} else {
			logger.Info("webhook registered", "url", cfg.WebhookURL)
		}
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
	case runErr = <-serveErr:
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	if grpcServer != nil {
		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
	}

	return runErr
}
