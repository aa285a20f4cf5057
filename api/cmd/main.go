package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/bookmarks"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/counter"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/events"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/reactions"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/reconciler"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/views"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/infrastructure/caching/breaker"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/infrastructure/caching/memory"
	rediscache "github.com/baechuer/real-time-ressys/services/engagement-service/internal/infrastructure/caching/redis"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/infrastructure/db/postgres"
	rabbitpub "github.com/baechuer/real-time-ressys/services/engagement-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/pkg/workerpool"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/handlers"
	authmw "github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/router"
)

// sysClock implements the application Clock interfaces using system time
type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// App holds all dependencies for the service
type App struct {
	Config *config.Config
	Server *http.Server
	DB     *sql.DB

	Redis      *rediscache.Client
	Publisher  *rabbitpub.Publisher
	Pool       *workerpool.Pool
	Reconciler *reconciler.Reconciler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Options{})
		zlog.Fatal().Err(err).Msg("config load failed")
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if u, err := url.Parse(cfg.DatabaseURL); err == nil {
		zlog.Info().
			Str("db_user", u.User.Username()).
			Str("db_host", u.Host).
			Str("db_db", u.Path).
			Msg("db config loaded")
	}

	db, err := postgres.Open(cfg.DatabaseURL, postgres.DefaultPoolConfig())
	if err != nil {
		zlog.Fatal().Err(err).Msg("db open failed")
	}
	defer db.Close()

	app, err := NewApp(cfg, db)
	if err != nil {
		zlog.Fatal().Err(err).Msg("app wiring failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Start(ctx)

	go func() {
		zlog.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server crashed")
		}
	}()

	<-ctx.Done()
	zlog.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	app.Shutdown(shutdownCtx)
}

func NewApp(cfg *config.Config, db *sql.DB) (*App, error) {
	app := &App{Config: cfg, DB: db}

	// 1) Infrastructure
	repo := postgres.New(db)
	deps := map[string]handlers.Pinger{"postgres": repo}

	var (
		hot   counter.HotStore
		cache reactions.Cache
	)
	if cfg.RedisURL != "" {
		rc, err := rediscache.New(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		app.Redis = rc
		hot = rediscache.NewHotStore(rc)
		cache = rc
		deps["redis"] = rc
	} else {
		zlog.Warn().Msg("REDIS_URL empty: using in-process counter store (single instance only)")
		store := memory.New(time.Now)
		hot = store
		cache = store.Cache()
	}

	// publisher wiring
	var pub events.EventPublisher = events.NoopPublisher{}
	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			app.closeInfra()
			return nil, err
		}
		app.Publisher = p
		pub = p
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: domain events will not be published")
	}

	// 2) Application
	app.Pool = workerpool.New(cfg.IngestWorkers, cfg.IngestQueueSize)
	ingestStore := breaker.Wrap(hot, breaker.Settings{Name: "hot-store"})

	viewsSvc := views.New(ingestStore, repo, app.Pool, views.Options{
		DedupTTL:  cfg.ViewDedupTTL,
		OpTimeout: cfg.IngestOpTimeout,
	})
	reactionsSvc := reactions.New(repo, cache, pub, cfg.ReactionCacheTTL)
	bookmarksSvc := bookmarks.New(repo, sysClock{}, pub)
	// the reconciler talks to the raw store so an outage surfaces as an error
	app.Reconciler = reconciler.New(hot, repo, pub, reconciler.Options{MaxDuration: cfg.SyncMaxDuration})

	// 3) Transport
	auth := authmw.NewAuth(cfg.JWTSecret, cfg.JWTIssuer)
	visitors := domain.NewVisitorResolver(cfg.VisitorHashSalt, cfg.VisitorUnknownBucket)

	// 4) Router
	httpHandler := router.New(router.Handlers{
		Views:     handlers.NewViewsHandler(viewsSvc),
		Reactions: handlers.NewReactionsHandler(reactionsSvc),
		Bookmarks: handlers.NewBookmarksHandler(bookmarksSvc),
		Sync:      handlers.NewSyncHandler(app.Reconciler),
		Health:    handlers.NewHealthHandler(deps),
	}, auth, visitors, cfg)

	// 5) Server
	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpHandler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return app, nil
}

// Start launches background work owned by the app.
func (a *App) Start(ctx context.Context) {
	if a.Config.SyncEnabled {
		a.Reconciler.Start(ctx, a.Config.SyncInterval)
	} else {
		zlog.Info().Msg("scheduled view sync disabled; use POST /internal/sync")
	}
}

// Shutdown stops accepting requests, drains queued view events and closes
// connections, in that order.
func (a *App) Shutdown(ctx context.Context) {
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			zlog.Error().Err(err).Msg("http shutdown failed")
		}
	}
	if a.Pool != nil {
		a.Pool.Stop()
	}
	a.closeInfra()
}

func (a *App) closeInfra() {
	if a.Publisher != nil {
		_ = a.Publisher.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}
