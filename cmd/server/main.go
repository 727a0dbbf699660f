// cmd/server is the activities API entry point.
// It picks a storage backend, wires the layers and starts the HTTP server.
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
	"time"

	"github.com/Shivanand-hulikatti/school-activities/internal/config"
	"github.com/Shivanand-hulikatti/school-activities/internal/database"
	"github.com/Shivanand-hulikatti/school-activities/internal/handler"
	"github.com/Shivanand-hulikatti/school-activities/internal/repository"
	"github.com/Shivanand-hulikatti/school-activities/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx := context.Background()

	cfg, err := config.LoadServer()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// ── 1. Open storage ───────────────────────────────────────────────────
	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer closeStore()
	logger.Info("storage ready", slog.String("store", cfg.Store))

	// ── 2. Wire up layers ────────────────────────────────────────────────
	activitySvc := service.NewActivityService(repo)
	activityHandler := handler.NewActivityHandler(activitySvc, logger)

	// ── 3. Build the router ───────────────────────────────────────────────
	router := handler.NewRouter(activityHandler, handler.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		BoardURL:    cfg.BoardURL,
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serve(srv, logger)
}

// openStore returns the configured repository and a function releasing it.
func openStore(ctx context.Context, cfg config.Server, logger *slog.Logger) (repository.ActivityRepository, func(), error) {
	seed, err := repository.DefaultActivities()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Store {
	case config.StoreSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewSQLiteRepository(db)
		if err := repo.Seed(ctx, seed); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil

	case config.StorePostgres:
		pool, err := database.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewPostgresRepository(pool)
		if err := repo.Seed(ctx, seed); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil

	default:
		repo, err := repository.NewJSONFileRepository(cfg.ActivitiesFile, seed)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using activities file", slog.String("path", cfg.ActivitiesFile))
		return repo, func() {}, nil
	}
}

// serve runs srv until SIGINT or SIGTERM, then shuts it down gracefully.
func serve(srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
