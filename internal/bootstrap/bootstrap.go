// Package bootstrap wires the scoring service from configuration. The API
// server and the scorectl tool share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/interview-scoring/internal/adapter/repository"
	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/domain/repositories"
	"github.com/johnquangdev/interview-scoring/internal/infrastructure/cache"
	"github.com/johnquangdev/interview-scoring/internal/infrastructure/database"
	"github.com/johnquangdev/interview-scoring/internal/infrastructure/lock"
	"github.com/johnquangdev/interview-scoring/internal/infrastructure/queue"
	"github.com/johnquangdev/interview-scoring/internal/infrastructure/storage"
	"github.com/johnquangdev/interview-scoring/internal/usecase/audit"
	"github.com/johnquangdev/interview-scoring/internal/usecase/dispatch"
	"github.com/johnquangdev/interview-scoring/internal/usecase/report"
	"github.com/johnquangdev/interview-scoring/internal/usecase/review"
	"github.com/johnquangdev/interview-scoring/internal/usecase/scoring"
	pkgai "github.com/johnquangdev/interview-scoring/pkg/ai"
	"github.com/johnquangdev/interview-scoring/pkg/config"
)

// Options toggles the optional parts of the wiring
type Options struct {
	// Queue connects to RabbitMQ when a URL is configured
	Queue bool
	// Probe starts the background backend health probes
	Probe bool
}

// App holds the wired service
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *gorm.DB

	Interviews   repositories.InterviewRepository
	Scores       repositories.ScoreRepository
	Applications repositories.ApplicationRepository

	Clients      []scoring.ScoringClient
	Health       *scoring.HealthTracker
	Orchestrator *scoring.Orchestrator
	Reviews      *review.Service
	Reports      *report.Service
	Archive      *storage.ReportArchive
	Queue        *queue.RabbitMQ

	redis   *redis.Client
	store   *cache.MemoryStore
	tasks   *dispatch.Dispatcher
	emitter *audit.Emitter
	cancel  context.CancelFunc
}

// New connects every configured dependency and builds the use cases
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{Config: cfg, Logger: logger}

	logger.Info("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.DB = db

	// AutoMigrate is a development convenience; production schemas are managed by sql-migrate
	if cfg.Database.AutoMigrate {
		if cfg.IsProduction() {
			app.Close(ctx)
			return nil, errors.New("DB_AUTO_MIGRATE is enabled in production; manage schema with scorectl migrate")
		}
		if err := database.AutoMigrate(db, logger); err != nil {
			app.Close(ctx)
			return nil, err
		}
	}

	app.Interviews = repository.NewInterviewRepository(db)
	app.Scores = repository.NewScoreRepository(db)
	app.Applications = repository.NewApplicationRepository(db)
	audits := repository.NewAuditRepository(db)

	var locker scoring.Locker = lock.NewLocalLocker()
	if cfg.Redis.Host != "" {
		logger.Info("📦 Connecting to Redis...")
		client, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		app.redis = client
		locker = lock.NewRedisLocker(client, "scoring:lock:", logger.Named("lock"))
	} else {
		logger.Warn("⚠️ REDIS_HOST not set; scoring runs are only serialized within this process")
	}

	sinks := dispatch.MultiSink{dispatch.NewLogSink(logger)}
	if opts.Queue && cfg.RabbitMQ.URL != "" {
		logger.Info("🐇 Connecting to RabbitMQ...")
		mq, err := queue.NewRabbitMQ(&cfg.RabbitMQ, logger.Named("queue"))
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		app.Queue = mq
		sinks = append(sinks, mq)
	}

	taskCfg := dispatch.DefaultConfig()
	taskCfg.Workers = cfg.Scoring.TaskWorkers
	taskCfg.QueueSize = cfg.Scoring.TaskQueueSize
	taskCfg.MaxRetries = cfg.Scoring.TaskMaxRetries
	app.tasks = dispatch.New(taskCfg, sinks, logger.Named("tasks"))
	app.emitter = audit.NewEmitter(audits, taskCfg, sinks, logger)

	clients, err := BuildClients(ctx, cfg, logger)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.Clients = clients

	app.store = cache.NewMemoryStore()
	app.Health = scoring.NewHealthTracker(clients, app.store, cfg.Scoring.HealthInterval, cfg.Scoring.HealthGrace, logger.Named("health"))
	if opts.Probe {
		probeCtx, cancel := context.WithCancel(context.Background())
		app.cancel = cancel
		go app.Health.Run(probeCtx)
	}

	var archive report.Archive
	if cfg.Storage.Enabled {
		logger.Info("🗄️ Connecting to report storage...")
		a, err := storage.NewReportArchive(ctx, &cfg.Storage)
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		app.Archive = a
		archive = a
	}
	app.Reports = report.NewService(report.NewAssembler(app.Interviews, app.Scores, app.Applications), archive, logger.Named("report"))

	deps := scoring.Dependencies{
		Interviews:   app.Interviews,
		Scores:       app.Scores,
		Applications: app.Applications,
		Clients:      clients,
		Locker:       locker,
		Health:       app.Health,
		Audit:        app.emitter,
		Tasks:        app.tasks,
		Logger:       logger.Named("scoring"),
	}
	if archive != nil {
		deps.Reports = app.Reports
	}
	app.Orchestrator = scoring.NewOrchestrator(deps, scoring.Options{
		TolerateFailures: cfg.Scoring.TolerateFailures,
		RunTimeout:       cfg.Scoring.RunTimeout,
		LockTTL:          cfg.Scoring.LockTTL,
		RetryDelay:       cfg.Scoring.RetryDelay,
		PromptVersion:    cfg.Scoring.PromptVersion,
		AuditFailures:    cfg.Scoring.AuditFailures,
		ReadyStatus:      entities.ApplicationStatusReviewReady,
	})
	app.Reviews = review.NewService(app.Interviews, app.Scores, locker, app.emitter, logger.Named("review"))

	return app, nil
}

// BuildClients creates the configured scoring backends in configured order
func BuildClients(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]scoring.ScoringClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	clients := make([]scoring.ScoringClient, 0, len(cfg.Scoring.Backends))
	for _, name := range cfg.Scoring.Backends {
		name = strings.TrimSpace(name)
		switch name {
		case config.BackendGroq:
			scale, err := entities.ParseScoreScale(cfg.Groq.Scale)
			if err != nil {
				return nil, fmt.Errorf("groq: %w", err)
			}
			clients = append(clients, pkgai.NewGroqBackend(pkgai.GroqOptions{
				APIKey:  cfg.Groq.APIKey,
				BaseURL: cfg.Groq.BaseURL,
				Model:   cfg.Groq.Model,
				Scale:   scale,
				Timeout: cfg.Groq.Timeout,
			}))
		case config.BackendGemini:
			scale, err := entities.ParseScoreScale(cfg.Gemini.Scale)
			if err != nil {
				return nil, fmt.Errorf("gemini: %w", err)
			}
			gemini, err := pkgai.NewGeminiBackend(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, scale, cfg.Gemini.Timeout)
			if err != nil {
				return nil, err
			}
			clients = append(clients, gemini)
		case config.BackendHTTP:
			scale, err := entities.ParseScoreScale(cfg.HTTPBackend.Scale)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", cfg.HTTPBackend.Name, err)
			}
			clients = append(clients, pkgai.NewHTTPBackend(pkgai.HTTPBackendOptions{
				Name:    cfg.HTTPBackend.Name,
				BaseURL: cfg.HTTPBackend.URL,
				Secret:  cfg.HTTPBackend.Secret,
				Scale:   scale,
				Timeout: cfg.HTTPBackend.Timeout,
			}))
		default:
			return nil, fmt.Errorf("%w: %q", entities.ErrUnknownBackend, name)
		}
		logger.Info("🤖 Scoring backend configured", zap.String("backend", name))
	}
	return clients, nil
}

// HandleTrigger runs one queued scoring request
func (a *App) HandleTrigger(ctx context.Context, msg queue.TriggerMessage) error {
	sc := msg.Context
	if msg.OrgID != "" {
		sc.OrgID = msg.OrgID
	}
	actor := msg.Actor
	if actor == "" {
		actor = "system:queue"
	}
	_, err := a.Orchestrator.Score(ctx, scoring.ScoreRequest{
		InterviewID: msg.InterviewID,
		Context:     sc,
		Backends:    msg.Backends,
		Actor:       actor,
	})
	return err
}

// PingDB checks the database connection
func (a *App) PingDB(context.Context) error {
	return database.Ping(a.DB)
}

// PingStorage checks the report archive
func (a *App) PingStorage(ctx context.Context) error {
	if a.Archive == nil {
		return nil
	}
	return a.Archive.Ping(ctx)
}

// Close drains background work and releases connections
func (a *App) Close(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	if a.tasks != nil {
		if err := a.tasks.Close(ctx); err != nil {
			a.Logger.Warn("⚠️ Pending tasks dropped on shutdown", zap.Error(err))
		}
	}
	if a.emitter != nil {
		if err := a.emitter.Close(ctx); err != nil {
			a.Logger.Warn("⚠️ Pending audit events dropped on shutdown", zap.Error(err))
		}
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.Queue != nil {
		if err := a.Queue.Close(); err != nil {
			a.Logger.Warn("⚠️ Failed to close RabbitMQ", zap.Error(err))
		}
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.DB != nil {
		if err := database.CloseDB(a.DB); err != nil {
			a.Logger.Warn("⚠️ Failed to close database", zap.Error(err))
		}
	}
}
