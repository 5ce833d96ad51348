package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/OrderSheet/internal/config"
	"github.com/JonMunkholm/OrderSheet/internal/core"
	"github.com/JonMunkholm/OrderSheet/internal/images"
	"github.com/JonMunkholm/OrderSheet/internal/logging"
	"github.com/JonMunkholm/OrderSheet/internal/web"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	closeLogs := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		SeqURL: cfg.Logging.SeqURL,
	})
	defer closeLogs()

	slog.Info("configuration loaded", "config", cfg.String())

	profile, err := config.LoadProfile(cfg.Build.ProfilePath)
	if err != nil {
		slog.Error("failed to load workflow profile", "path", cfg.Build.ProfilePath, "error", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var history core.HistoryStore
	if cfg.Database.Enabled() {
		pool, err := connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			return 1
		}
		defer pool.Close()

		h := core.NewHistory(pool)
		if err := h.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare build history", "error", err)
			return 1
		}
		history = h

		go core.StartRetentionScheduler(ctx, h, core.RetentionConfig{
			Days:          cfg.Database.RetentionDays,
			CheckInterval: cfg.Database.PruneInterval,
		})
	} else {
		slog.Info("DATABASE_URL not set, build history disabled")
	}

	opts := core.OptionsFrom(cfg.Build, profile)
	if cfg.Build.ImageFolder != "" {
		opts.Images = images.NewResolver(cfg.Build.ImageFolder)
		slog.Info("embedding product images", "folder", cfg.Build.ImageFolder)
	}
	service := core.NewService(opts, history)
	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancel()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := service.Status(); st.Active > 0 {
			slog.Info("waiting for builds to complete", "active", st.Active)
			if err := service.WaitForBuilds(shutdownCtx); err != nil {
				slog.Warn("builds did not complete in time", "error", err)
			} else {
				slog.Info("all builds completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		return 1
	}
	<-done
	slog.Info("server stopped")
	return 0
}

// connect opens and verifies the history database pool.
func connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
