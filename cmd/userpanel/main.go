package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	memoryadapter "github.com/ericfisherdev/userpanel/internal/adapter/driven/memory"
	sqliteadapter "github.com/ericfisherdev/userpanel/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/userpanel/internal/adapter/driving/http"
	"github.com/ericfisherdev/userpanel/internal/application"
	"github.com/ericfisherdev/userpanel/internal/config"
	"github.com/ericfisherdev/userpanel/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"store", cfg.Store,
		"db_path", cfg.DBPath,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the user store. The in-memory store is for tests and local
	// development; sqlite is the durable default.
	var userStore driven.UserStore
	switch cfg.Store {
	case config.StoreMemory:
		userStore = memoryadapter.NewUserRepo()
		slog.Info("in-memory store selected, data will not survive restarts")
	default:
		db, err := sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		slog.Info("database opened", "path", cfg.DBPath)

		// Run migrations on the writer connection.
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}
		slog.Info("migrations complete")

		userStore = sqliteadapter.NewUserRepo(db)
	}

	// 4. Wire the service and the HTTP adapter.
	userSvc := application.NewUserService(userStore, application.NewMapper())
	apiHandler := httphandler.NewHandler(userSvc, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("userpanel started", "listen_addr", cfg.ListenAddr)

	// 5. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 6. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
