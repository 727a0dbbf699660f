// cmd/board is the activity board entry point.
// It serves the board as HTML and talks to the activities API over HTTP.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/school-activities/internal/board"
	"github.com/Shivanand-hulikatti/school-activities/internal/client"
	"github.com/Shivanand-hulikatti/school-activities/internal/config"
	"github.com/Shivanand-hulikatti/school-activities/internal/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("board exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadBoard()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if cfg.CSRFKey == nil {
		cfg.CSRFKey = make([]byte, 32)
		if _, err := rand.Read(cfg.CSRFKey); err != nil {
			return fmt.Errorf("generate csrf key: %w", err)
		}
		logger.Warn("CSRF_KEY not set, using a random key")
	}

	// ── 1. API client ─────────────────────────────────────────────────────
	apiClient := client.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout})
	logger.Info("activities api", slog.String("base_url", cfg.APIBaseURL), slog.Duration("timeout", cfg.APITimeout))

	// ── 2. Per-session boards ─────────────────────────────────────────────
	boards := board.NewRegistry(func() *board.Board {
		return board.New(apiClient, logger)
	}, cfg.SessionTTL)

	// ── 3. Build the router ───────────────────────────────────────────────
	router := web.NewRouter(boards, logger, web.RouterConfig{
		CSRFKey: cfg.CSRFKey,
		Secure:  cfg.Production,
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("board listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down board")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("board stopped")
	return nil
}
