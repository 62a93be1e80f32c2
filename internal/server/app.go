// Package server initializes and runs the account service: storage and
// migrations, key material, the gRPC endpoint, and the ownership
// reconciler, with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dka-services/account-core/internal/logging"
	"github.com/dka-services/account-core/internal/server/config"
	"github.com/dka-services/account-core/internal/server/keys"
	"github.com/dka-services/account-core/internal/server/repositories/repomanager"
	"github.com/dka-services/account-core/internal/server/services"

	gs "github.com/dka-services/account-core/internal/server/grpc"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	accountService *services.AccountService
	sessionService *services.SessionService
	reconciler     *services.Reconciler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	kp := keys.NewProvider(cfg.KeyDir)
	if err := kp.Ensure(); err != nil {
		return nil, fmt.Errorf("key init error: %w", err)
	}

	as := services.NewAccountService(db, rm, logger)
	ss := services.NewSessionService(db, rm, kp, services.SessionParams{
		AccessTTL:      cfg.AccessTokenTTL,
		RefreshTTL:     cfg.RefreshTokenTTL,
		AccessIssuer:   cfg.AccessIssuer,
		AccessSubject:  cfg.AccessSubject,
		RefreshIssuer:  cfg.RefreshIssuer,
		RefreshSubject: cfg.RefreshSubject,
	}, logger)
	rec := services.NewReconciler(db, rm, cfg.ReconcilerPoll, logger)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		accountService: as,
		sessionService: ss,
		reconciler:     rec,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessionService)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.reconciler.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing db failed", "error", err.Error())
	}
}
