package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"ReviewIntake/internal/config"
	"ReviewIntake/internal/infrastructure/llm"
	"ReviewIntake/internal/infrastructure/storage"
	"ReviewIntake/internal/logging"
	"ReviewIntake/internal/metrics"
	"ReviewIntake/internal/ports"
	"ReviewIntake/internal/transport/httpapi"
	"ReviewIntake/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	server *httpapi.Server
	db     *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	repository, db, err := newRepository(cfg.Storage)
	if err != nil {
		return nil, err
	}

	var moderator ports.Moderator
	if cfg.Moderation.APIKey != "" {
		moderator = llm.NewGeminiClient(cfg.Moderation, nil)
	} else {
		baseLogger.Warn("moderation api key is not set, every review will use default moderation")
	}

	if cfg.Webhook.Secret == "" {
		baseLogger.Warn("webhook secret is not set, submissions are accepted without a secret check")
	}

	recorder := metrics.New()
	intake := usecase.NewIntake(usecase.IntakeDeps{
		Validator:  usecase.NewValidator(cfg.Webhook.Secret),
		Moderator:  moderator,
		Repository: repository,
		Recorder:   recorder,
		Logger:     baseLogger.With("component", "intake"),
	})

	server := httpapi.NewServer(cfg.HTTP, cfg.Webhook.Header, intake, recorder.Handler(), baseLogger.With("component", "http"))

	return &Application{cfg: cfg, logger: baseLogger, server: server, db: db}, nil
}

func newRepository(cfg config.StorageConfig) (ports.ReviewRepository, *sql.DB, error) {
	switch cfg.Driver {
	case "", config.DriverSupabase:
		return storage.NewSupabaseRepository(cfg.URL, cfg.ServiceKey, cfg.Table, &http.Client{}), nil, nil
	case config.DriverPostgres:
		db, err := storage.OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgresRepository(db, cfg.Table), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Handler exposes the HTTP router.
func (a *Application) Handler() http.Handler {
	return a.server.Handler()
}

// Run serves until ctx is cancelled, then drains within shutdownCtx's deadline.
func (a *Application) Run(ctx context.Context, shutdown func() (context.Context, context.CancelFunc)) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		_ = a.closeDB()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := shutdown()
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	if closeErr := a.closeDB(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}

func (a *Application) closeDB() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
