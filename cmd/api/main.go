package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-dataset/internal/api/http"
	"github.com/spec-kit/ticket-dataset/internal/api/http/handlers"
	"github.com/spec-kit/ticket-dataset/internal/auth"
	"github.com/spec-kit/ticket-dataset/internal/bootstrap"
	"github.com/spec-kit/ticket-dataset/internal/config"
	"github.com/spec-kit/ticket-dataset/internal/observability"
	"github.com/spec-kit/ticket-dataset/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to wire services", zap.Error(err))
	}
	defer c.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	authService, err := service.NewAuthService(cfg.Auth.Clients, tokens)
	if err != nil {
		logger.Fatal("invalid client configuration", zap.Error(err))
	}
	if len(cfg.Auth.Clients) == 0 {
		logger.Warn("AUTH_CLIENTS not provided; no client can obtain a token")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, c.Metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": c.Postgres,
			"redis":    c.Redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Categorize:     handlers.NewCategorizeHandler(c.Classifier),
		Repair:         handlers.NewRepairHandler(c.Repair),
		Runs:           handlers.NewRunsHandler(c.Pipeline),
		Tickets:        handlers.NewTicketsHandler(c.Tickets),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        c.Metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	if c.Pipeline.Running() {
		logger.Info("waiting for pipeline run to finish")
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
