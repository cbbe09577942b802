package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/simple-easy-issues/internal/config"
	"github.com/ericfisherdev/simple-easy-issues/internal/container"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.AppConfig) error {
	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	app, err := container.New(ctx, cfg, container.Options{Version: Version})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			app.Logger.Error("failed to release resources", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.GetServerPort(),
		Handler:      app.Router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		IdleTimeout:  cfg.GetIdleTimeout(),
	}

	serveErr := make(chan error, 1)
	go func() {
		app.Logger.Info("starting server", "addr", server.Addr, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	select {
	case sig := <-sigChan:
		app.Logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		app.Logger.Info("context canceled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	default:
	}

	app.Logger.Info("server stopped")
	return nil
}

func newInitStoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-store",
		Short: "Create the Users, Projects and Issues containers and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := container.NewLogger(cfg, cmd.ErrOrStderr())
			db, err := container.OpenDatabase(cmd.Context(), cfg, nil, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = db.Close() }()

			if err := db.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Store ready (%s backend)\n", db.Provider().Name())
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

func printConfig(w io.Writer, cfg *config.AppConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Describe()); err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	return enc.Close()
}
