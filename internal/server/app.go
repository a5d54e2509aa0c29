// Package server assembles the BlockKeeper server: database, migrations,
// services, the public gRPC endpoint and the admin HTTP endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/blockkeeper/internal/logging"
	"github.com/dmitrijs2005/blockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/blockkeeper/internal/server/config"
	"github.com/dmitrijs2005/blockkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/blockkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/blockkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/blockkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/blockkeeper/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     *logging.SlogLogger
	db         *sql.DB
	grpcServer *gs.GRPCServer
	httpServer *httpapi.Server
}

// openDB is a seam for tests.
var openDB = repomanager.OpenDB

// NewApp validates c, connects to the database, applies migrations and wires
// every component.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	hasher := auth.NewBcryptHasher(c.BcryptCost)
	external := auth.NewExternalVerifier(c.ExternalIdentitySecret)

	accounts := services.NewAccountService(db, rm, tokens, hasher, external, logger.With("module", "accounts"))
	blocks := services.NewBlockService(db, rm, accounts, logger.With("module", "blocks"))

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, accounts, blocks, tokens, m),
		httpServer: httpapi.New(c.EndpointAddrHTTP, db, reg, reg, logger.Slog()),
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

// Run serves until a termination signal arrives or either endpoint fails,
// then stops both and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.grpcServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "grpc server failed", "error", err)
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server failed", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
