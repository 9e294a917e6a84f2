// Package scheduler drives the pure evaluation core on a cadence. The core
// holds no timers and no mutable state; this package owns both, and feeds
// warning/critical classifications into the alert manager.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/opsdeck/opsdeck-backend-go/internal/core/metrics"
	"github.com/opsdeck/opsdeck-backend-go/internal/core/monitoring"
)

// Collector supplies the raw inputs for one evaluation tick. Implementations
// wrap whatever agent or store collects samples; the evaluator never does
// I/O itself beyond these calls.
type Collector interface {
	// Samples returns the latest reading per resource.
	Samples(ctx context.Context) ([]monitoring.MetricSample, error)
	// Windows returns the recent and prior value windows for trend
	// computation on one resource.
	Windows(ctx context.Context, resource string) (recent, prior []float64, err error)
	// Thresholds returns the configured thresholds keyed by resource.
	Thresholds(ctx context.Context) (map[string]monitoring.ThresholdConfig, error)
	// UptimeChecks returns checks since the given time.
	UptimeChecks(ctx context.Context, since time.Time) ([]monitoring.UptimeCheck, error)
	// CapacityUsage returns current usage per capacity-tracked resource.
	CapacityUsage(ctx context.Context) ([]monitoring.CapacityUsage, error)
}

// Snapshot is the output of the latest tick, served to the API handlers.
type Snapshot struct {
	Statuses      []monitoring.MetricStatus   `json:"statuses"`
	Uptime        []monitoring.DayStatus      `json:"uptime"`
	UptimePercent float64                     `json:"uptime_percent"`
	Capacity      []monitoring.CapacityMetric `json:"capacity"`
	EvaluatedAt   time.Time                   `json:"evaluated_at"`
}

type Config struct {
	Interval   time.Duration
	WindowDays int
}

// Evaluator runs the classification/rollup/capacity pipeline each tick.
type Evaluator struct {
	collector  Collector
	classifier *monitoring.Classifier
	uptime     monitoring.UptimePolicy
	capacity   monitoring.CapacityPolicy
	alerts     *monitoring.Manager
	interval   time.Duration
	windowDays int
	logger     *logrus.Logger

	cron    *cron.Cron
	mu      sync.RWMutex
	current Snapshot
}

func New(cfg Config, collector Collector, classifier *monitoring.Classifier, uptime monitoring.UptimePolicy, capacity monitoring.CapacityPolicy, alerts *monitoring.Manager, logger *logrus.Logger) *Evaluator {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	windowDays := cfg.WindowDays
	if windowDays <= 0 {
		windowDays = 90
	}
	return &Evaluator{
		collector:  collector,
		classifier: classifier,
		uptime:     uptime,
		capacity:   capacity,
		alerts:     alerts,
		interval:   interval,
		windowDays: windowDays,
		logger:     logger,
	}
}

// Start schedules evaluation ticks and runs one immediately so the snapshot
// is populated before the first request.
func (e *Evaluator) Start(ctx context.Context) error {
	e.cron = cron.New()
	_, err := e.cron.AddFunc(fmt.Sprintf("@every %s", e.interval), func() {
		e.Tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule evaluation: %w", err)
	}
	e.cron.Start()

	go e.Tick(ctx)

	e.logger.WithField("interval", e.interval).Info("Evaluation scheduler started")
	return nil
}

func (e *Evaluator) Stop() {
	if e.cron != nil {
		e.cron.Stop()
	}
}

// Snapshot returns the result of the latest tick.
func (e *Evaluator) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Tick runs one full evaluation pass. Collector failures degrade that part
// of the snapshot and are logged; a tick never aborts the process.
func (e *Evaluator) Tick(ctx context.Context) {
	metrics.EvaluationsTotal.Inc()
	now := time.Now()

	snapshot := Snapshot{EvaluatedAt: now}
	snapshot.Statuses = e.evaluateMetrics(ctx)
	snapshot.Uptime, snapshot.UptimePercent = e.evaluateUptime(ctx, now)
	snapshot.Capacity = e.evaluateCapacity(ctx, now)

	e.mu.Lock()
	e.current = snapshot
	e.mu.Unlock()
}

func (e *Evaluator) evaluateMetrics(ctx context.Context) []monitoring.MetricStatus {
	samples, err := e.collector.Samples(ctx)
	if err != nil {
		e.logger.WithError(err).Error("Failed to collect samples")
		return nil
	}
	thresholds, err := e.collector.Thresholds(ctx)
	if err != nil {
		e.logger.WithError(err).Error("Failed to load thresholds")
		thresholds = nil
	}

	statuses := make([]monitoring.MetricStatus, 0, len(samples))
	for _, sample := range samples {
		var threshold *monitoring.ThresholdConfig
		if t, ok := thresholds[sample.Resource]; ok {
			threshold = &t
		}

		recent, prior, err := e.collector.Windows(ctx, sample.Resource)
		if err != nil {
			e.logger.WithError(err).WithField("resource", sample.Resource).Warn("Failed to collect trend windows")
		}

		status := e.classifier.Classify(sample, threshold, recent, prior)
		statuses = append(statuses, status)

		e.raiseForStatus(ctx, status)
	}
	return statuses
}

// raiseForStatus converts warning/critical classifications into alert
// triggers. Good and unknown statuses raise nothing.
func (e *Evaluator) raiseForStatus(ctx context.Context, status monitoring.MetricStatus) {
	var level monitoring.AlertLevel
	switch status.Status {
	case monitoring.StatusCritical:
		level = monitoring.LevelCritical
	case monitoring.StatusWarning:
		level = monitoring.LevelWarning
	default:
		return
	}

	alert, created := e.alerts.Raise(ctx, monitoring.Trigger{
		Level:   level,
		Title:   fmt.Sprintf("%s is %s", status.Resource, status.Status),
		Message: fmt.Sprintf("%s at %.2f%s (trend %+.1f%%)", status.Resource, status.Value, status.Unit, status.TrendPercent),
		Source:  "metric:" + status.Resource,
	})
	if created {
		metrics.AlertsRaisedTotal.WithLabelValues(string(level)).Inc()
	} else if alert != nil {
		metrics.AlertsDedupedTotal.Inc()
	}
}

func (e *Evaluator) evaluateUptime(ctx context.Context, now time.Time) ([]monitoring.DayStatus, float64) {
	since := now.AddDate(0, 0, -e.windowDays)
	checks, err := e.collector.UptimeChecks(ctx, since)
	if err != nil {
		e.logger.WithError(err).Error("Failed to collect uptime checks")
		return nil, 0
	}
	return e.uptime.Rollup(checks, e.windowDays, now), monitoring.UptimePercent(checks)
}

func (e *Evaluator) evaluateCapacity(ctx context.Context, now time.Time) []monitoring.CapacityMetric {
	usages, err := e.collector.CapacityUsage(ctx)
	if err != nil {
		e.logger.WithError(err).Error("Failed to collect capacity usage")
		return nil
	}

	results := make([]monitoring.CapacityMetric, 0, len(usages))
	for _, usage := range usages {
		metric := e.capacity.ClassifyCapacity(usage, now)
		results = append(results, metric)

		if metric.Status == monitoring.CapacityCritical {
			_, created := e.alerts.Raise(ctx, monitoring.Trigger{
				Level:   monitoring.LevelCritical,
				Title:   fmt.Sprintf("%s capacity critical", metric.Resource),
				Message: metric.Recommendation,
				Source:  "capacity:" + metric.Resource,
			})
			if created {
				metrics.AlertsRaisedTotal.WithLabelValues(string(monitoring.LevelCritical)).Inc()
			}
		}
	}
	return results
}
