// Package server initializes and runs the bank server application.
// It selects the account store backend, loads the bank and terminal key
// material, opens the transaction log and serves ATM sessions over TCP
// until interrupted.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sbayu21/Secure-banking-system/internal/keys"
	"github.com/sbayu21/Secure-banking-system/internal/logging"
	"github.com/sbayu21/Secure-banking-system/internal/server/accounts"
	"github.com/sbayu21/Secure-banking-system/internal/server/config"
	"github.com/sbayu21/Secure-banking-system/internal/server/tcp"
	"github.com/sbayu21/Secure-banking-system/internal/server/translog"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	accounts *accounts.Service
	translog *translog.Writer
	server   *tcp.Server
}

func NewApp(c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	repo, err := newRepository(c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	tl, err := translog.Open(c.TransactionLog)
	if err != nil {
		return nil, fmt.Errorf("transaction log init error: %w", err)
	}

	ring, err := keys.LoadServerRing(c.CertsDir, c.TerminalIDs)
	if err != nil {
		return nil, fmt.Errorf("key ring init error: %w", err)
	}

	svc := accounts.NewService(repo, tl, logger)
	srv := tcp.NewServer(c.BindAddr, logger, svc, ring, c.AmountMode)

	return &App{config: c, logger: logger, accounts: svc, translog: tl, server: srv}, nil
}

func newRepository(c *config.Config) (accounts.Repository, error) {
	switch c.StoreBackend {
	case config.StoreMemory:
		return accounts.NewMemoryRepository(accounts.DefaultSeed()...), nil
	case config.StoreJSONFile:
		return accounts.NewJSONFileRepository(c.StoreFile, accounts.DefaultSeed()...)
	case config.StoreSQLite:
		return accounts.NewSQLiteRepository(context.Background(), c.DatabaseFile, accounts.DefaultSeed()...)
	case config.StorePostgres:
		return accounts.NewPostgresRepository(context.Background(), c.DatabaseDSN, accounts.DefaultSeed()...)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", c.StoreBackend)
	}
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

func (app *App) startTCPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
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
		app.startTCPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.translog.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
