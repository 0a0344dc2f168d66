// Package server wires the storage backend, the synthesis client, event
// publishers, metrics and the gRPC transport, and runs them until a
// shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/careermemory/internal/dbx"
	"github.com/dmitrijs2005/careermemory/internal/logging"
	"github.com/dmitrijs2005/careermemory/internal/server/archive"
	"github.com/dmitrijs2005/careermemory/internal/server/config"
	"github.com/dmitrijs2005/careermemory/internal/server/events"
	"github.com/dmitrijs2005/careermemory/internal/server/flow"
	"github.com/dmitrijs2005/careermemory/internal/server/metrics"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/careermemory/internal/server/services"
	"github.com/dmitrijs2005/careermemory/internal/server/synthesis"
	"github.com/dmitrijs2005/careermemory/internal/timex"

	gs "github.com/dmitrijs2005/careermemory/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	metrics *metrics.Collectors
	writer  *services.AchievementWriter
	server  *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	app := &App{config: c, logger: logger, metrics: metrics.New()}

	loc, err := timex.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	clock := timex.NewSystemClock(loc)

	deps := services.Deps{
		Clock:    clock,
		Config:   c,
		Logger:   logger,
		Observer: app.metrics,
	}
	if err := app.initStore(ctx, &deps); err != nil {
		return nil, err
	}

	bus := events.NewBus()
	deps.Events = bus
	if c.RedisAddr != "" {
		client, err := events.NewRedisClient(c.RedisAddr)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.redis = client
		deps.Events = events.Multi{bus, events.NewRedisPublisher(client)}
	}

	if c.S3Bucket != "" {
		a, err := archive.NewS3Archive(ctx, c)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		deps.Archive = a
	}

	client := app.synthesisClient()
	app.writer = services.NewAchievementWriter(deps, services.NewRollupPropagator(deps, client))

	ctrl := flow.NewController(flow.Deps{
		Resolver: services.NewEntryResolver(deps),
		Writer:   app.writer,
		Client:   client,
		Clock:    clock,
		Config:   c,
		Logger:   logger,
		Events:   deps.Events,
		Observer: app.metrics,
	})
	registry := flow.NewRegistry(c.FlowSessionTTL, clock)
	app.server = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, registry, ctrl, services.NewProjectService(deps), c.SecretKey)

	return app, nil
}

func (app *App) initStore(ctx context.Context, deps *services.Deps) error {
	if app.config.InMemory() {
		app.logger.Warn(ctx, "using in-memory store, data is lost on exit")
		rm := repomanager.NewInMemoryRepositoryManager(nil)
		rm.Store().SetClock(deps.Clock)
		deps.Repomanager = rm
		deps.Tx = rm.Store()
		return nil
	}

	db, err := openDB(app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrations error: %w", err)
	}

	app.db = db
	deps.DB = db
	deps.Tx = dbx.NewSQLTxRunner(db, nil)
	deps.Repomanager = rm
	return nil
}

func (app *App) synthesisClient() synthesis.Client {
	c := app.config
	if c.SynthesisAPIKey == "" {
		app.logger.Warn(context.Background(), "synthesis API key not set, using offline synthesizer")
		return synthesis.NewMock()
	}
	return synthesis.NewAnthropicClient(synthesis.AnthropicConfig{
		BaseURL:   c.SynthesisBaseURL,
		APIKey:    c.SynthesisAPIKey,
		Model:     c.SynthesisModel,
		MaxTokens: c.SynthesisMaxTokens,
		Timeout:   c.SynthesisTimeout,
	}, nil, app.metrics, app.logger)
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := app.metrics.NewServer(app.config.MetricsAddr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "metrics server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is canceled or a signal arrives, then waits for
// in-flight rollups and releases resources.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()
	app.writer.Wait()
	app.Close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) Close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}
