package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"calendar/internal/auth"
	"calendar/internal/config"
	"calendar/internal/db"
	"calendar/internal/events"
	"calendar/internal/extract"
	httpx "calendar/internal/http"
	appLog "calendar/internal/log"
	"calendar/internal/quota"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		appLog.Error("failed to load config", err)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := httpx.Deps{}

	// model
	svc := &extract.Service{Timeout: cfg.ModelTimeout}
	gem, err := extract.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	switch {
	case errors.Is(err, extract.ErrModelUnavailable):
		appLog.Info("GEMINI_API_KEY not set, extraction requests will fail")
	case err != nil:
		appLog.Error("failed to create model client", err)
		os.Exit(1)
	default:
		svc.Model = gem
		defer gem.Close()
	}
	deps.Extract = svc

	// quota
	var store quota.Store = quota.NewLimiter(cfg.MaxDailyRequests)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			appLog.Error("redis unreachable", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		defer rdb.Close()
		store = quota.NewRedisStore(rdb, cfg.MaxDailyRequests)
	}
	deps.Quota = store

	sweeper, err := quota.NewSweeper(store, time.Local)
	if err != nil {
		appLog.Error("failed to schedule usage reset", err)
		os.Exit(1)
	}
	sweeper.Start()

	// accounts and events
	if cfg.DatabaseURL != "" {
		gdb, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			appLog.Error("failed to connect database", err)
			os.Exit(1)
		}
		if err := db.AutoMigrateAndIndexes(gdb); err != nil {
			appLog.Error("failed to migrate database", err)
			os.Exit(1)
		}
		deps.Users = &auth.GormUsers{DB: gdb}
		deps.Events = &events.Service{DB: gdb}
		deps.JWT = auth.NewJWT(cfg.JWTSecret)
	} else {
		appLog.Info("DATABASE_URL not set, account and event routes disabled")
	}

	r, err := httpx.NewRouter(cfg, deps)
	if err != nil {
		appLog.Error("failed to build router", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLog.Info("listening",
			"addr", cfg.HTTPAddr,
			"max_daily_requests", cfg.MaxDailyRequests,
			"model", cfg.GeminiModel,
			"redis", cfg.RedisAddr != "",
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("server stopped", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	appLog.Info("signal received, shutting down", "signal", sig.String())

	cancel()
	<-sweeper.Stop().Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
