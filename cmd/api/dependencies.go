package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/raiox-score/internal/domain/chat"
	chathandler "github.com/FACorreiaa/raiox-score/internal/domain/chat/handler"
	"github.com/FACorreiaa/raiox-score/internal/domain/completion"
	"github.com/FACorreiaa/raiox-score/internal/domain/sheet"
	"github.com/FACorreiaa/raiox-score/internal/domain/store"
	storehandler "github.com/FACorreiaa/raiox-score/internal/domain/store/handler"
	storerepo "github.com/FACorreiaa/raiox-score/internal/domain/store/repository"

	"github.com/FACorreiaa/raiox-score/pkg/config"
	"github.com/FACorreiaa/raiox-score/pkg/cron"
	"github.com/FACorreiaa/raiox-score/pkg/db"
	"github.com/FACorreiaa/raiox-score/pkg/httpserver"
	"github.com/FACorreiaa/raiox-score/pkg/metrics"
	"github.com/FACorreiaa/raiox-score/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Repositories
	RefreshRepo *storerepo.PostgresRefreshRepository
	Cache       *store.SnapshotCache

	// Services
	DataSource *store.DataSource
	Completer  completion.Completer
	Router     *chat.Router
	Scheduler  *cron.Scheduler

	// Handlers
	StoreHandler *storehandler.StoreHandler
	ChatHandler  *chathandler.ChatHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Observability.MetricsEnabled {
		deps.Metrics = metrics.New()
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase connects and migrates when the refresh log is enabled.
func (d *Dependencies) initDatabase() error {
	if !d.Config.Database.Enabled {
		d.Logger.Info("database disabled, refresh log not persisted")
		return nil
	}

	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes the refresh log and the snapshot cache
func (d *Dependencies) initRepositories() error {
	if d.DB != nil {
		d.RefreshRepo = storerepo.NewPostgresRefreshRepository(d.DB.Pool)
	}

	if dir := d.Config.Sheet.CacheDir; dir != "" {
		st, err := storage.New(&storage.Config{
			Type:      storage.StorageTypeLocal,
			LocalPath: dir,
		})
		if err != nil {
			return fmt.Errorf("failed to init snapshot storage: %w", err)
		}
		d.Cache = store.NewSnapshotCache(st, d.Logger)
	}

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices builds the data source, the completion backend and the router.
func (d *Dependencies) initServices(ctx context.Context) error {
	fetcher := store.NewHTTPFetcher(d.Config.Sheet.URL, d.Config.Sheet.Timeout, nil)
	d.DataSource = store.NewDataSource(fetcher, sheet.NewBuilder(nil, nil), d.Logger).
		WithMaxAge(d.Config.Sheet.MaxAge).
		WithRetryBackoff(d.Config.Sheet.RetryBackoff).
		WithRefreshTimeout(d.Config.Sheet.Timeout*2).
		WithMetrics(d.Metrics)
	if d.Cache != nil {
		d.DataSource.WithCache(d.Cache)
	}
	if d.RefreshRepo != nil {
		d.DataSource.WithRefreshRecorder(d.RefreshRepo)
	}

	completer, err := d.newCompleter(ctx)
	if err != nil {
		return err
	}
	d.Completer = completer

	loc, err := chat.LoadZone(d.Config.Chat.TimeZone)
	if err != nil {
		d.Logger.Warn("unknown chat time zone, using default",
			slog.String("zone", d.Config.Chat.TimeZone),
			slog.Any("error", err),
		)
	}

	d.Router = chat.NewRouter(d.DataSource, d.Logger).
		WithLocation(loc).
		WithAssistantMode(d.Config.Chat.AssistantMode).
		WithLegacyPrompt(d.Config.Completion.LegacyPrompt).
		WithMetrics(d.Metrics)
	if d.Completer != nil {
		d.Router.WithCompleter(d.Completer)
	}

	if spec := d.Config.Sheet.RefreshCron; spec != "" {
		d.Scheduler = cron.NewScheduler(d.DataSource, spec, d.Config.Sheet.Timeout*2, d.Logger)
	}

	d.Logger.Info("services initialized",
		slog.String("completion_backend", d.Config.Completion.Backend),
		slog.Bool("assistant_mode", d.Config.Chat.AssistantMode),
	)
	return nil
}

// newCompleter returns nil when the completion fall-through is disabled.
func (d *Dependencies) newCompleter(ctx context.Context) (completion.Completer, error) {
	switch d.Config.Completion.Backend {
	case config.CompletionGemini:
		g, err := completion.NewGeminiCompleter(ctx, d.Config.Gemini.APIKey, d.Config.Gemini.Model, d.Config.Completion.Timeout, d.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to init gemini completer: %w", err)
		}
		return g.WithMetrics(d.Metrics), nil
	case config.CompletionHTTP:
		return completion.NewClient(d.Config.Completion.URL, d.Config.Completion.Timeout, nil, d.Logger).
			WithMetrics(d.Metrics), nil
	default:
		return nil, nil
	}
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.StoreHandler = storehandler.NewStoreHandler(d.DataSource, d.Logger)
	if d.RefreshRepo != nil {
		d.StoreHandler.WithRefreshLog(d.RefreshRepo)
	}
	d.ChatHandler = chathandler.NewChatHandler(d.Router, d.Logger)
	d.Logger.Info("handlers initialized")
}

// Handler mounts every route behind the shared middleware.
func (d *Dependencies) Handler() http.Handler {
	mux := http.NewServeMux()
	d.StoreHandler.Register(mux)
	d.ChatHandler.Register(mux)
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	return httpserver.Wrap(mux, httpserver.Options{
		AllowedOrigins:     d.Config.Server.AllowedOrigins,
		RateLimitPerSecond: d.Config.Server.RateLimitPerSecond,
		RateLimitBurst:     d.Config.Server.RateLimitBurst,
		Logger:             d.Logger,
		Metrics:            d.Metrics,
	})
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
