package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/mvaleed/catalog/internal/auth"
	"github.com/mvaleed/catalog/internal/config"
	"github.com/mvaleed/catalog/internal/event"
	"github.com/mvaleed/catalog/internal/service"
	"github.com/mvaleed/catalog/internal/storage"
	"github.com/mvaleed/catalog/internal/storage/postgres"
	"github.com/mvaleed/catalog/internal/storage/redis"
	grpcTransport "github.com/mvaleed/catalog/internal/transport/grpc"
	httpTransport "github.com/mvaleed/catalog/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("connecting to database")
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info("database connected")

	if cfg.DBMigrate {
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("database migrated")
	}

	var categoryRepo storage.CategoryRepository = db.Categories()
	if cfg.CacheEnabled() {
		client := redis.NewClient(redis.Options{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: cfg.RedisTimeout,
			Timeout:     cfg.RedisTimeout,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			// the cache degrades to misses, so keep going
			logger.Warn("redis unreachable", "addr", cfg.RedisAddr, "error", err)
		}
		categoryRepo = redis.NewCachedCategoryRepository(categoryRepo, client, cfg.CategoryTTL, logger)
		logger.Info("category cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CategoryTTL)
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		SecretKey: cfg.JWTSecretKey,
		Issuer:    cfg.JWTIssuer,
	})

	var publisher event.Publisher
	if cfg.KafkaEnabled() {
		publisher = event.NewKafkaPublisher(event.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		}, logger)
		logger.Info("publishing events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		publisher = event.NewLoggingPublisher(logger)
	}
	defer publisher.Close()

	categoryService := service.NewCategoryService(categoryRepo, db, publisher, logger)

	errChan := make(chan error, 2)

	httpServer := httpTransport.NewServer(categoryService, jwtManager, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		logger.Info("starting HTTP server", "addr", addr)
		if err := httpServer.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	grpcServer := grpcTransport.NewServer(categoryService, jwtManager, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.GRPCPort)
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen: %w", err)
			return
		}
		logger.Info("starting gRPC server", "addr", addr)
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errChan:
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	grpcServer.GracefulStop()

	logger.Info("shutdown complete")
	return nil
}
