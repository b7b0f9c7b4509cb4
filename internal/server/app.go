// Package server initializes and runs the chat server. It opens the account
// store, wires the auth and chat services, starts the WebSocket and gRPC
// endpoints and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/chatshield/internal/logging"
	"github.com/dmitrijs2005/chatshield/internal/server/auth"
	"github.com/dmitrijs2005/chatshield/internal/server/challenges"
	"github.com/dmitrijs2005/chatshield/internal/server/config"
	"github.com/dmitrijs2005/chatshield/internal/server/gemini"
	"github.com/dmitrijs2005/chatshield/internal/server/hub"
	"github.com/dmitrijs2005/chatshield/internal/server/mailer"
	"github.com/dmitrijs2005/chatshield/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/chatshield/internal/server/services"
	"github.com/dmitrijs2005/chatshield/internal/server/ws"

	gs "github.com/dmitrijs2005/chatshield/internal/server/grpc"
)

const (
	openTimeout     = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	dispatcher *services.Dispatcher
	ws         *ws.Handler
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	db, rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if c.MailUser == "" {
		logger.Warn(ctx, "EMAIL_USER not set, mail will be sent without authentication")
	}
	mail := mailer.NewSMTPMailer(c.SMTPAddr, c.MailUser, c.MailPassword)

	var gen services.Generator
	if c.GeminiKey != "" {
		client, err := gemini.New(ctx, c.GeminiKey, c.GeminiModel)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		gen = client
	} else {
		logger.Warn(ctx, "GEMINI_KEY not set, bot is disabled")
	}

	issuer := auth.NewIssuer(c.SecretKey, c.SessionTokenValidityDuration)

	h := hub.New(logger)
	dispatcher := services.NewDispatcher(context.Background(), h, gen, c.BotTimeout, logger)
	authService := services.NewAuthService(db, rm, challenges.NewRegistry(), mail, issuer, c.MailTimeout, logger)
	chatService := services.NewChatService(h, dispatcher, issuer, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		dispatcher: dispatcher,
		ws:         ws.NewHandler(authService, chatService, h, logger),
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
		Addr:              app.config.HTTPAddr,
		Handler:           ws.NewRouter(app.ws, app.logger),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, err.Error())
		}
		cancelFunc()
		return
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "http shutdown", "error", err)
	}

	// upgraded connections are not tracked by http.Server
	app.ws.Close()
	app.ws.Wait()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.db)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or an endpoint fails, then
// drains sessions and in-flight bot calls and closes the database.
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

	app.dispatcher.Wait()
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
