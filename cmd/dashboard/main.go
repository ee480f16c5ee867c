// cmd/dashboard/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"kpi-dashboard/internal/common/airtable"
	"kpi-dashboard/internal/common/cache"
	"kpi-dashboard/internal/common/config"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/notion"
	"kpi-dashboard/internal/common/observability"
	"kpi-dashboard/internal/httpapi"
	"kpi-dashboard/pkg/registry"

	hrkpi "kpi-dashboard/internal/workers/kpi/hr-kpi"
	kpisummary "kpi-dashboard/internal/workers/kpi/kpi-summary"
	realestatekpi "kpi-dashboard/internal/workers/kpi/realestate-kpi"
	saleskpi "kpi-dashboard/internal/workers/kpi/sales-kpi"
	taskmanager "kpi-dashboard/internal/workers/tasks/task-manager"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	configPath := flag.String("config", "", "Path to a config file (defaults to configs/config.yaml lookup)")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting KPI dashboard...",
		zap.String("environment", cfg.App.Environment),
		zap.Stringer("airtable", cfg.Airtable),
		zap.String("timezone", cfg.App.Location().String()),
	)

	obs, err := observability.New(cfg.Observability.ServiceName, cfg.Observability.TraceSampleRate)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown()

	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("endpoint registry failed to load", zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("endpoint registry invalid", zap.Error(err))
	}

	// --- Record store clients, one per base ---
	newBase := func(baseID string) cache.Fetcher {
		client, err := airtable.NewClient(airtable.Config{
			BaseURL:    cfg.Airtable.BaseURL,
			BaseID:     baseID,
			APIKey:     cfg.Airtable.APIKey,
			PageSize:   cfg.Airtable.PageSize,
			Timeout:    config.GetDuration(cfg.Airtable.Timeout),
			MaxRetries: cfg.Airtable.MaxRetries,
			RateLimit:  cfg.Airtable.RateLimit,
		}, log)
		if err != nil {
			zapLog.Fatal("record store client init failed", zap.String("base", baseID), zap.Error(err))
		}
		return client
	}
	salesSource := newBase(cfg.Airtable.Bases.Sales)
	realestateSource := newBase(cfg.Airtable.Bases.Realestate)
	hrSource := newBase(cfg.Airtable.Bases.HR)

	// --- Record snapshot cache (optional) ---
	var (
		cacheCheck      func(ctx context.Context) error
		cacheInvalidate func(ctx context.Context) (int, error)
	)
	if cfg.Cache.Enabled {
		redisClient := cache.NewRedis(cfg.Cache.Redis)
		err = retryWithBackoff(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return redisClient.Ping(ctx)
		}, 5, time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unreachable, serving without record cache", zap.Error(err))
			_ = redisClient.Close()
		} else {
			defer redisClient.Close()
			zapLog.Info("Redis connected successfully")

			recordCache := cache.NewRecordCache(redisClient.Client, time.Duration(cfg.Cache.TTL)*time.Second, cfg.Cache.Prefix)
			salesSource = cache.NewCachedFetcher(salesSource, recordCache, cfg.Airtable.Bases.Sales, log)
			realestateSource = cache.NewCachedFetcher(realestateSource, recordCache, cfg.Airtable.Bases.Realestate, log)
			hrSource = cache.NewCachedFetcher(hrSource, recordCache, cfg.Airtable.Bases.HR, log)
			cacheCheck = redisClient.Ping
			cacheInvalidate = recordCache.Invalidate
		}
	}

	// --- Workers ---
	sales := saleskpi.NewHandler(saleskpi.LoadConfig(cfg), salesSource, log)
	realestate := realestatekpi.NewHandler(realestatekpi.LoadConfig(cfg), realestateSource, log)
	hr := hrkpi.NewHandler(hrkpi.LoadConfig(cfg), hrSource, log)
	summary := kpisummary.NewHandler(kpisummary.LoadConfig(), sales, realestate, hr, log)

	workspace, err := notion.NewClient(notion.Config{
		BaseURL: cfg.Notion.BaseURL,
		APIKey:  cfg.Notion.APIKey,
		Version: cfg.Notion.Version,
		Timeout: config.GetDuration(cfg.Notion.Timeout),
	}, log)
	if err != nil {
		zapLog.Fatal("workspace client init failed", zap.Error(err))
	}
	tasks, err := taskmanager.NewHandler(taskmanager.HandlerOptions{
		Config:    taskmanager.LoadConfig(cfg),
		Workspace: workspace,
		Registry:  reg,
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("failed to create task-manager handler", zap.Error(err))
	}
	zapLog.Info("All handlers registered successfully", zap.Int("endpoints", len(reg.Endpoints)))

	// --- HTTP Server ---
	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: httpapi.NewHandler(httpapi.Deps{
			Summary:         summary,
			Sales:           sales,
			Realestate:      realestate,
			HR:              hr,
			Tasks:           tasks,
			Registry:        reg,
			CacheCheck:      cacheCheck,
			CacheInvalidate: cacheInvalidate,
			Logger:          log,
			Observability:   obs,
		}),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("KPI dashboard stopped gracefully")
}
