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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abdulachik/blogfront/internal/app"
	"github.com/abdulachik/blogfront/internal/web"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web front-end",
	Long: `Serve the post list, the create-post form, /healthz and /metrics on
LISTEN_ADDR until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cfg.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	a := app.New(cfg)

	go a.Sessions.Run(ctx, max(cfg.SessionIdleTimeout/2, time.Second))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           web.NewRouter(a.WebConfig()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting blogfront",
		"addr", cfg.ListenAddr,
		"api", cfg.APIBaseURL,
		"gin_mode", cfg.GinMode,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
