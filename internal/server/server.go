// Package server boots every storefront dependency from config and serves the
// HTTP API until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/schema"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/grpc"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/media"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"github.com/shashiranjanraj/storefront/pkg/sse"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// ShutdownTimeout bounds how long in-flight requests may take to drain.
const ShutdownTimeout = 10 * time.Second

// Start loads config, opens every backing service and blocks serving HTTP
// until ctx is cancelled.
func Start(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return err
	}

	if uri := config.LogMongoURI(); uri != "" {
		h, err := logger.NewMongoHandler(uri, "storefront", "logs", slog.LevelInfo)
		if err != nil {
			logger.Warn("server: mongo log sink disabled", "error", err)
		} else {
			logger.Tee(h)
			defer h.Close()
		}
	}

	db, err := database.Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := migration.New(db, io.Discard).Run(); err != nil {
		return fmt.Errorf("server: migrate: %w", err)
	}
	if config.SeedOnBoot() {
		if err := seeders.RunAll(db, io.Discard); err != nil {
			return fmt.Errorf("server: seed: %w", err)
		}
	}

	store, closeCache := openCache(ctx)
	defer closeCache()

	disks, err := storage.New(ctx, storage.ConfigFromEnv())
	if err != nil {
		return err
	}

	pool := workerpool.New(config.UploadWorkers())
	defer pool.Shutdown()

	bus := event.New()

	hub := ws.NewHub()
	go hub.Run(ctx)
	tracking := sse.NewBroker()
	listeners.Register(bus, hub, tracking)

	catalog := services.NewCatalogService(db, store)
	deps := routes.Deps{
		DB:       db,
		Cache:    store,
		Photos:   media.NewIntake(disks.Default(), pool),
		Events:   bus,
		Limits:   media.DefaultLimits(),
		Feed:     hub,
		Tracking: tracking,
	}

	gql, err := schema.New(catalog)
	if err != nil {
		return fmt.Errorf("server: graphql schema: %w", err)
	}

	opts := kernel.Options{
		Deps:       deps,
		Ping:       database.Ping(db),
		Schema:     &gql,
		UploadsDir: disks.Local().Root(),
	}
	cors := middleware.DefaultCORSOptions()
	cors.AllowedOrigins = middleware.ParseOrigins(config.CORSOrigins())
	opts.CORS = &cors
	if n := config.RateLimit(); n > 0 {
		opts.Limiter = middleware.NewLimiter(n, time.Minute)
		go opts.Limiter.Run(ctx)
	}

	if port := config.GRPCPort(); port != "" {
		gs, err := grpc.Start(ctx, port, opts.Ping)
		if err != nil {
			return err
		}
		defer gs.Stop()
	}

	return Serve(ctx, ":"+config.AppPort(), kernel.NewHTTPKernel(opts).Handler())
}

func openCache(ctx context.Context) (cache.Store, func()) {
	if !config.CacheEnabled() {
		return cache.NewMemory(), func() {}
	}
	rc, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("server: redis unavailable, caching in memory", "addr", config.RedisAddr(), "error", err)
		return cache.NewMemory(), func() {}
	}
	return rc, func() { _ = rc.Close() }
}

// Serve listens on addr and runs handler until ctx is done, then shuts the
// server down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}
	return serve(ctx, lis, handler)
}

func serve(ctx context.Context, lis net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	drain := make(chan struct{})
	srv.BaseContext = func(net.Listener) context.Context {
		return sse.WithDrain(context.Background(), drain)
	}
	srv.RegisterOnShutdown(func() { close(drain) })

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
