// Package server wires the registry together: configuration, logging,
// tracing, the database, the submission pipeline and the HTTP and gRPC
// servers, and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/rdb/internal/logging"
	"github.com/dmitrijs2005/rdb/internal/server/config"
	"github.com/dmitrijs2005/rdb/internal/server/httpapi"
	"github.com/dmitrijs2005/rdb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rdb/internal/server/services"
	"github.com/dmitrijs2005/rdb/internal/server/validation"
	"github.com/dmitrijs2005/rdb/internal/telemetry"

	gs "github.com/dmitrijs2005/rdb/internal/server/grpc"
)

const serviceName = "rdb"

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	submissions *services.SubmissionService
	mods        *services.ModService
	shutdown    telemetry.Shutdown
}

// NewApp connects to the store, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	shutdown, err := telemetry.Setup(ctx, serviceName, c.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	db, err := repomanager.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		_ = db.Close()
		_ = shutdown(ctx)
		return nil, err
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		_ = shutdown(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	ms := services.NewModService(db, rm, c.CacheTTL, c.StoreTimeout, logger)
	hooks := []services.Hook{ms}

	if c.S3Bucket != "" {
		client, err := services.NewS3Client(ctx, c)
		if err != nil {
			_ = db.Close()
			_ = shutdown(ctx)
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		hooks = append(hooks, services.NewArchiver(client, c.S3Bucket, logger))
		logger.Info(ctx, "Archiving submissions", "bucket", c.S3Bucket)
	}

	resolver := validation.NewResolver(c.GitHubOwners)
	ss := services.NewSubmissionService(db, rm, resolver, c.StoreTimeout, logger, hooks...)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		submissions: ss,
		mods:        ms,
		shutdown:    shutdown,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.submissions, app.mods, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.HealthAddrGRPC, app.logger, app.db)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is canceled, a signal arrives or a server fails,
// then releases the database and flushes traces.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := app.db.Close(); err != nil {
		app.logger.Error(closeCtx, "closing database", "error", err)
	}
	if err := app.shutdown(closeCtx); err != nil {
		app.logger.Error(closeCtx, "flushing traces", "error", err)
	}

	app.logger.Info(closeCtx, "App stopped")
}
