package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/wagerpool/internal/api"
	"github.com/fastprodman/wagerpool/internal/infra/events"
	"github.com/fastprodman/wagerpool/internal/infra/logging"
	"github.com/fastprodman/wagerpool/internal/infra/pgutils"
	"github.com/fastprodman/wagerpool/internal/services/games"
	"github.com/fastprodman/wagerpool/pkg/envconf"
	"github.com/fastprodman/wagerpool/pkg/shutdownqueue"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := new(apiConfig)

	err = envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	shutdown := shutdownqueue.New()

	logCloser := logging.Setup(cfg.Log)
	shutdown.Add(func(context.Context) error { return logCloser.Close() })

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdown.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdown.Add(func(context.Context) error {
		slog.Info("Close database pool")
		return db.Close()
	})

	publisher, closePublisher, err := events.Connect(cfg.NATS)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}

	if closePublisher != nil {
		shutdown.Add(closePublisher)
	}

	gameSrv := games.New(db,
		games.WithRent(cfg.Rent.Rent()),
		games.WithPublisher(publisher),
	)

	// --- HTTP server ---
	srv := api.NewServer(cfg.API, gameSrv)

	shutdown.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started",
		"port", cfg.API.Port,
		"airdrop", cfg.API.AirdropEnabled,
		"events", closePublisher != nil,
	)

	select {
	case <-ctx.Done():
		// graceful path; deferred shutdown runs the queue
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
