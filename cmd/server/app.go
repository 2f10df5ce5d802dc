package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/arborhq/arbor-api/internal/config"
	"github.com/arborhq/arbor-api/internal/events"
	"github.com/arborhq/arbor-api/internal/extract"
	"github.com/arborhq/arbor-api/internal/platform/gcs"
	"github.com/arborhq/arbor-api/internal/platform/gemini"
	"github.com/arborhq/arbor-api/internal/platform/postgres"
	"github.com/arborhq/arbor-api/internal/platform/vision"
	"github.com/arborhq/arbor-api/internal/service"
	"github.com/arborhq/arbor-api/internal/service/auth"
	"github.com/arborhq/arbor-api/internal/store"
	"github.com/arborhq/arbor-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore store.UserStore
	taskStore task.TaskStore

	// Platform clients
	bucket    *gcs.Bucket
	ocrClient *vision.Client

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	identityService  service.IdentityService
	goalService      service.GoalService
	journalService   service.JournalService
	documentService  service.DocumentService
	insightService   service.InsightService
	pathService      service.LearningPathService

	// Event system and background work
	eventEmitter events.EventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	seedStore := postgres.NewPostgresIdentitySeedStore(db, logger)
	goalStore := postgres.NewPostgresGoalStore(db, logger)
	journalStore := postgres.NewPostgresJournalStore(db, logger)
	documentStore := postgres.NewPostgresDocumentStore(db, logger)
	insightStore := postgres.NewPostgresInsightStore(db, logger)
	pathStore := postgres.NewPostgresLearningPathStore(db, logger)

	// LLM gateway. The same client serves generation and embeddings.
	generator, err := gemini.NewGenerator(ctx, logger.With("component", "llm_generator"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized", "model", cfg.LLM.ModelName)

	// Object storage for uploaded documents
	app.bucket, err = gcs.NewBucket(ctx, cfg.Storage.Bucket, cfg.Storage.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	// OCR is optional: without it the extraction pipeline skips the
	// scanned-document fallback.
	var ocr extract.OCRClient
	if cfg.Extraction.OCREnabled {
		app.ocrClient, err = vision.NewClient(ctx, cfg.Storage.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OCR client: %w", err)
		}
		ocr = app.ocrClient
		logger.Info("OCR client initialized")
	}

	pipeline := extract.NewPipeline(cfg.Extraction, ocr, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Services
	app.identityService, err = service.NewIdentityService(seedStore, db, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity service: %w", err)
	}

	app.goalService, err = service.NewGoalService(goalStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal service: %w", err)
	}

	app.journalService, err = service.NewJournalService(
		journalStore, insightStore, seedStore, generator, generator, db, logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal service: %w", err)
	}

	app.documentService, err = service.NewDocumentService(
		documentStore, insightStore, seedStore, app.bucket, app.eventEmitter, db, logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create document service: %w", err)
	}

	app.insightService, err = service.NewInsightService(insightStore, generator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create insight service: %w", err)
	}

	app.pathService, err = service.NewLearningPathService(
		pathStore, seedStore, app.eventEmitter, db, logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create learning path service: %w", err)
	}

	// Task factories and background runner. The reconstructor must be
	// installed before Start so crash recovery can rebuild persisted tasks.
	ingestionFactory := task.NewDocumentIngestionTaskFactory(
		app.documentService, app.bucket, pipeline, generator, generator, logger,
	)
	pathFactory := task.NewPathGenerationTaskFactory(app.pathService, generator, logger)

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:            cfg.Task.WorkerCount,
		QueueSize:              cfg.Task.QueueSize,
		StuckTaskAge:           time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
		StuckTaskCheckInterval: time.Duration(cfg.Task.StuckTaskCheckMinutes) * time.Minute,
	}, logger)
	app.taskRunner.SetReconstructor(task.NewReconstructor(ingestionFactory, pathFactory))

	taskFactoryHandler := task.NewTaskFactoryEventHandler(
		ingestionFactory, pathFactory, app.taskRunner, logger,
	)
	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(taskFactoryHandler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}

	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.ocrClient != nil {
		if err := app.ocrClient.Close(); err != nil {
			app.logger.Error("Error closing OCR client", "error", err)
		}
	}

	if app.bucket != nil {
		if err := app.bucket.Close(); err != nil {
			app.logger.Error("Error closing object storage client", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
