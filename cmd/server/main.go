package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opsdeck/opsdeck-backend-go/internal/api"
	"github.com/opsdeck/opsdeck-backend-go/internal/api/handlers"
	"github.com/opsdeck/opsdeck-backend-go/internal/collector"
	"github.com/opsdeck/opsdeck-backend-go/internal/config"
	"github.com/opsdeck/opsdeck-backend-go/internal/core/kvstore"
	"github.com/opsdeck/opsdeck-backend-go/internal/core/monitoring"
	"github.com/opsdeck/opsdeck-backend-go/internal/core/ratelimit"
	"github.com/opsdeck/opsdeck-backend-go/internal/database"
	"github.com/opsdeck/opsdeck-backend-go/internal/scheduler"
	"github.com/opsdeck/opsdeck-backend-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	alertRepo, err := database.NewAlertRepository(db)
	if err != nil {
		log.Fatal("Failed to initialize alert repository: ", err)
	}

	var kv kvstore.Store
	if cfg.Redis.Enabled {
		redisStore, err := kvstore.NewRedis(cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis: ", err)
		}
		defer redisStore.Close()
		kv = redisStore
	} else {
		log.Info("Redis disabled, using in-memory KV store")
		kv = kvstore.NewMemory()
	}

	alerts := monitoring.NewManager(cfg.Monitoring.Alerts.Cooldown, kv, alertRepo, log)
	classifier := monitoring.NewClassifier(cfg.Monitoring.Trend.StableBandPercent)
	uptime := monitoring.UptimePolicy{DegradedFraction: cfg.Monitoring.Uptime.DegradedFraction}
	capacity := monitoring.CapacityPolicy{
		WarningPercent:    cfg.Monitoring.Capacity.WarningPercent,
		CriticalPercent:   cfg.Monitoring.Capacity.CriticalPercent,
		UrgentHorizonDays: cfg.Monitoring.Capacity.UrgentHorizonDays,
	}

	buffer := collector.New(cfg.Monitoring.TrendWindowSize, time.Duration(cfg.Monitoring.Uptime.WindowDays+1)*24*time.Hour)
	buffer.SetThresholds(thresholdsFromConfig(cfg.Monitoring.Thresholds))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evaluator := scheduler.New(scheduler.Config{
		Interval:   cfg.Monitoring.EvaluationInterval,
		WindowDays: cfg.Monitoring.Uptime.WindowDays,
	}, buffer, classifier, uptime, capacity, alerts, log)
	if err := evaluator.Start(ctx); err != nil {
		log.Fatal("Failed to start evaluator: ", err)
	}
	defer evaluator.Stop()

	// Reads fail open, writes fail closed; see router wiring for why.
	readLimiter := ratelimit.New(kv, ratelimit.FailOpen, log)
	writeLimiter := ratelimit.New(kv, ratelimit.FailClosed, log)

	h := handlers.New(evaluator, alerts, buffer, alertRepo, log)
	router := api.NewRouter(cfg, h, readLimiter, writeLimiter, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
}

func thresholdsFromConfig(items []config.ThresholdConfig) []monitoring.ThresholdConfig {
	out := make([]monitoring.ThresholdConfig, 0, len(items))
	for _, item := range items {
		direction := monitoring.HigherIsWorse
		if item.Direction == string(monitoring.LowerIsWorse) {
			direction = monitoring.LowerIsWorse
		}
		out = append(out, monitoring.ThresholdConfig{
			Resource:      item.Resource,
			WarningLevel:  item.Warning,
			CriticalLevel: item.Critical,
			Direction:     direction,
		})
	}
	return out
}
