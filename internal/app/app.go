// Package app wires the application together and runs it: configuration,
// logging, database, migrations, the dispatcher, and the HTTP server with
// its background workers.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"golang.org/x/sync/errgroup"

	"github.com/hikoguma/raidbot/internal/adapter/postgres"
	activityrepo "github.com/hikoguma/raidbot/internal/adapter/postgres/activity"
	participantrepo "github.com/hikoguma/raidbot/internal/adapter/postgres/participant"
	"github.com/hikoguma/raidbot/internal/config"
	"github.com/hikoguma/raidbot/internal/dispatch"
	"github.com/hikoguma/raidbot/internal/state"
	"github.com/hikoguma/raidbot/internal/transport/line"
	"github.com/hikoguma/raidbot/internal/transport/middleware"
	"github.com/hikoguma/raidbot/internal/transport/rest"
	"github.com/hikoguma/raidbot/pkg/keymutex"
)

// Run is the application entry point. It blocks until the context ends or a
// termination signal arrives, then shuts the server down gracefully.
func Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting raidbot",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	api, err := messaging_api.NewMessagingApiAPI(
		cfg.Line.ChannelToken,
		messaging_api.WithHTTPClient(&http.Client{Timeout: cfg.Line.APITimeout}),
	)
	if err != nil {
		return fmt.Errorf("create messaging client: %w", err)
	}

	states := state.New(cfg.Bot.StateTTL)

	dispatcher := dispatch.New(
		logger,
		activityrepo.New(pool),
		participantrepo.New(pool),
		states,
		line.NewProfileClient(api),
		postgres.NewTxManager(pool),
		keymutex.New(),
		cfg.Bot,
	)

	webhook := line.NewWebhookHandler(logger, cfg.Line.ChannelSecret, dispatcher, line.NewSender(api))
	health := rest.NewHealthHandler(pool, BuildVersion())

	mux := http.NewServeMux()
	mux.Handle("POST /webhook", webhook)
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      chain(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return sweepStates(gCtx, logger, states, cfg.Bot.StateSweepInterval)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("stopped")
	return nil
}

// sweepStates purges expired creation flows until the context ends.
func sweepStates(ctx context.Context, logger *slog.Logger, states *state.Store, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if dropped := states.Sweep(); dropped > 0 {
				logger.Debug("expired creation flows purged", slog.Int("count", dropped))
			}
		}
	}
}
