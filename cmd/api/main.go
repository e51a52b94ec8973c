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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/interview-scoring/docs"
	"github.com/johnquangdev/interview-scoring/internal/adapter/handler"
	"github.com/johnquangdev/interview-scoring/internal/bootstrap"
	"github.com/johnquangdev/interview-scoring/internal/infrastructure/external/assemblyai"
	"github.com/johnquangdev/interview-scoring/pkg/config"
	"github.com/johnquangdev/interview-scoring/pkg/jwt"
	"github.com/johnquangdev/interview-scoring/pkg/logger"
	pkgvalidator "github.com/johnquangdev/interview-scoring/pkg/validator"
)

// @title           Interview Scoring API
// @version         1.0
// @description     Scores interview transcripts with one or more AI backends, stores the canonical score and serves candidate reports.

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Server.LogJSON || cfg.IsProduction(), !cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zl.Info("🔧 Initializing dependencies...")
	app, err := bootstrap.New(ctx, cfg, zl, bootstrap.Options{Queue: true, Probe: true})
	if err != nil {
		zl.Fatal("Failed to initialize service", zap.Error(err))
	}

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	var webhook *handler.AIWebhookHandler
	if cfg.Assembly.APIKey != "" && cfg.Assembly.WebhookSecret != "" {
		importer := assemblyai.NewImporter(cfg.Assembly.APIKey, app.Interviews, zl.Named("assemblyai"))
		webhook = handler.NewAIWebhookHandler(importer, cfg.Assembly.WebhookSecret, cfg.Assembly.CandidateSpeaker, zl.Named("webhook"))
	}

	zl.Info("🛣️ Setting up routes...")
	router := handler.NewRouter(handler.RouterOptions{
		Tokens: jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.Issuer),
		Score:  handler.NewScore(app.Orchestrator, app.Scores, app.Reviews, zl.Named("http")),
		Report: handler.NewReport(app.Reports, zl.Named("http")),
		Health: handler.NewHealth(cfg.Server.Environment, app.Health, map[string]handler.PingFunc{
			"database": app.PingDB,
			"storage":  app.PingStorage,
		}, zl.Named("health")),
		Webhook: webhook,
		Swagger: !cfg.IsProduction(),
	})
	router.Setup(e)

	// Queue consumer
	consumerDone := make(chan struct{})
	if app.Queue != nil {
		go func() {
			defer close(consumerDone)
			zl.Info("🐇 Consuming scoring triggers", zap.String("queue", cfg.RabbitMQ.TriggerQueue))
			if err := app.Queue.Consume(ctx, app.HandleTrigger); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("❌ Trigger consumer stopped", zap.Error(err))
			}
		}()
	} else {
		close(consumerDone)
	}

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		zl.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	zl.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("❌ Server forced to shutdown", zap.Error(err))
	}
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
	}
	app.Close(shutdownCtx)

	zl.Info("✅ Server stopped gracefully")
}
