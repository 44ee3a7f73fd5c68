package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"libraryhub/docs"
	"libraryhub/internal/app"
	"libraryhub/internal/auth"
	"libraryhub/internal/cache"
	"libraryhub/internal/config"
	"libraryhub/internal/store"
)

// @title Library Hub API
// @version 1.0
// @description Library management API with catalog, loans, reservations, reviews and session authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)})))
	logger := slog.Default().With("module", "server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error("database init", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := st.Reset(ctx); err != nil {
			logger.Error("reset database", "error", err)
			os.Exit(1)
		}
	}

	if cfg.SeedDemoData {
		report, err := st.Seed(ctx, store.DemoData())
		if err != nil {
			logger.Error("seed demo data", "error", err)
			os.Exit(1)
		}
		logger.Info("demo data loaded", "created", report.Created, "skipped", report.Skipped)
	}

	// Sessions and the book cache live in Redis when it answers; otherwise
	// sessions stay in process memory and caching is off.
	var (
		sessions    auth.SessionStore
		cacheClient *cache.Client
	)
	redisCache := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	err = redisCache.Ping(pingCtx)
	cancel()
	if err != nil {
		logger.Warn("redis unavailable, using in-memory sessions", "addr", cfg.RedisAddr, "error", err)
		_ = redisCache.Redis().Close()
		sessions = auth.NewMemorySessionStore()
	} else {
		defer redisCache.Redis().Close()
		sessions = auth.NewRedisSessionStore(redisCache.Redis())
		cacheClient = redisCache
	}

	e := app.New(app.Deps{
		Config:   cfg,
		Store:    st,
		Sessions: sessions,
		Cache:    cacheClient,
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info("swagger documentation available", "url", swaggerURL(cfg.SwaggerHost, cfg.ServerPort))

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	logger.Info("server stopped")
}

// swaggerURL builds the documentation address. SwaggerHost may already
// include the scheme.
func swaggerURL(host, port string) string {
	switch {
	case host == "":
		return "http://localhost:" + port + "/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
