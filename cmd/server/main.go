// Package main is the entry point for the projection API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"duck-projection/internal/app"
	"duck-projection/internal/config"
	internaldb "duck-projection/internal/db"
	"duck-projection/internal/engine"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	store, err := internaldb.OpenStore(cfg.MetaDBPath)
	if err != nil {
		return fmt.Errorf("open projection store: %w", err)
	}
	defer func() { _ = store.Close() }()
	logger.Info("projection store ready", "path", cfg.MetaDBPath)

	duck, err := engine.Open(cfg.DuckDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = duck.Close() }()

	a, err := app.New(ctx, app.Deps{
		Cfg:     cfg,
		DuckDB:  duck,
		WriteDB: store.Write,
		ReadDB:  store.Read,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("wire app: %w", err)
	}

	if a.Maintenance != nil {
		if err := a.Maintenance.Start(ctx); err != nil {
			return err
		}
		defer a.Maintenance.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Router(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("HTTP API listening", "addr", cfg.ListenAddr,
		"try", fmt.Sprintf("curl http://%s/v1/projections", curlHostForListenAddr(cfg.ListenAddr)))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// curlHostForListenAddr turns a listen address into something a user can
// paste into curl: wildcard and empty hosts become localhost.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
