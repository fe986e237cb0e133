// Package server wires the marketplace gateway together: database pool,
// redis-backed leases and cart sessions, object storage, external service
// clients, domain services and the public HTTP server. It also handles
// graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geotrade/marketplace/internal/logging"
	"github.com/geotrade/marketplace/internal/server/clients"
	"github.com/geotrade/marketplace/internal/server/config"
	"github.com/geotrade/marketplace/internal/server/filestore"
	"github.com/geotrade/marketplace/internal/server/lease"
	"github.com/geotrade/marketplace/internal/server/repositories/repomanager"
	"github.com/geotrade/marketplace/internal/server/services"
	"github.com/geotrade/marketplace/internal/server/session"
	"github.com/geotrade/marketplace/internal/server/web"
)

const (
	// cartSessionTTL is the sliding lifetime of an anonymous cart session.
	cartSessionTTL = 30 * 24 * time.Hour
	// checkoutGuardTTL bounds the idempotency window of a checkout attempt.
	checkoutGuardTTL = 2 * time.Minute

	shutdownTimeout = 10 * time.Second
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	handler http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	sessions := session.NewRedisStore(rdb, cfg.SecretKey, cartSessionTTL)
	draftLocks := lease.NewRedisManager(rdb, "draft:lock:", cfg.DraftLockTTL)
	checkoutGuard := lease.NewRedisManager(rdb, "checkout:", checkoutGuardTTL)
	files := filestore.NewS3Store(cfg)
	kycFiles := filestore.NewSealedStore(files, []byte(cfg.SecretKey), []byte("kyc-archive"))

	catalogue := clients.NewCatalogueClient(cfg.CatalogueBaseURL, cfg.ClientTimeout)
	payment := clients.NewPaymentClient(cfg.PaymentBaseURL, cfg.ClientTimeout)
	ratings := clients.NewRatingsClient(cfg.RatingsBaseURL, cfg.ClientTimeout)
	notebook := clients.NewNotebookClient(cfg.NotebookBaseURL, cfg.ClientTimeout)

	quotations := services.NewQuotationService()
	accounts := services.NewAccountService(db, rm, cfg)
	carts := services.NewCartService(db, rm, sessions, catalogue, quotations, logger.With("module", "carts"))
	checkout := services.NewCheckoutService(db, rm, sessions, carts, checkoutGuard, logger.With("module", "checkout"))
	payins := services.NewPayInService(db, rm, payment, sessions, logger.With("module", "payins"))
	drafts := services.NewDraftService(db, rm, draftLocks, files, catalogue, cfg, logger.With("module", "drafts"))
	verification := services.NewVerificationService(db, rm, payment, kycFiles, logger.With("module", "verification"))
	contracts := services.NewContractService(db, rm)

	handler := web.NewHandler(accounts, carts, checkout, payins, drafts,
		verification, contracts, catalogue, ratings, notebook, logger.With("module", "web"))

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		redis:   rdb,
		handler: web.NewRouter(handler, []byte(cfg.SecretKey)),
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
	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.handler,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.redis.Close(); err != nil {
		app.logger.Error(ctx, "redis close error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
