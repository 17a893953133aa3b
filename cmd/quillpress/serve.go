// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

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

	"github.com/spf13/cobra"

	"quillpress/internal/blog"
	"quillpress/internal/cache"
	"quillpress/internal/database"
	"quillpress/internal/events"
	"quillpress/internal/handlers"
	"quillpress/internal/middleware"
	"quillpress/internal/router"
	"quillpress/internal/session"
	"quillpress/internal/store"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	if serveMigrate {
		if err := database.Migrate(db.DB); err != nil {
			return err
		}
	}
	if cfg.IsDev() {
		if err := database.Seed(cmd.Context(), db); err != nil {
			return err
		}
	}

	// Valkey backs sessions and the shared level of the response cache.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return fmt.Errorf("connect to valkey: %w", err)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SecureCookies).WithTTL(cfg.SessionTTL)
	responses := cache.NewResponseCache(valkeyClient, cfg.CacheSize, cfg.CacheTTL)

	bus := events.NewBus()
	bus.Subscribe(cache.NewInvalidator(responses))

	svc := blog.NewService(blog.Deps{
		Posts:      store.NewPostStore(db),
		Categories: store.NewCategoryStore(db),
		Tags:       store.NewTagStore(db),
		Comments:   store.NewCommentStore(db),
		Users:      store.NewUserStore(db),
		Events:     bus,
	})
	api := handlers.NewAPI(svc, responses, sessionStore, !cfg.IsProd())

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	defer loginLimiter.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(sessionStore, api, loginLimiter, cfg.SecureCookies),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
