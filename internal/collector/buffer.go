// Package collector buffers the raw streams pushed by collection agents and
// serves them to the evaluator. It is the boundary between external I/O and
// the pure evaluation core.
package collector

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/opsdeck/opsdeck-backend-go/internal/core/monitoring"
)

const maxSamplesPerResource = 500

// Buffer is an in-memory store of recent samples, checks and capacity
// readings. It implements scheduler.Collector.
type Buffer struct {
	mu         sync.RWMutex
	samples    map[string][]monitoring.MetricSample
	checks     []monitoring.UptimeCheck
	capacity   map[string]monitoring.CapacityUsage
	thresholds map[string]monitoring.ThresholdConfig

	windowSize int
	retention  time.Duration
}

// New creates a buffer. windowSize is the number of samples in each trend
// window; retention bounds how long uptime checks are kept.
func New(windowSize int, retention time.Duration) *Buffer {
	if windowSize <= 0 {
		windowSize = 10
	}
	if retention <= 0 {
		retention = 91 * 24 * time.Hour
	}
	return &Buffer{
		samples:    make(map[string][]monitoring.MetricSample),
		capacity:   make(map[string]monitoring.CapacityUsage),
		thresholds: make(map[string]monitoring.ThresholdConfig),
		windowSize: windowSize,
		retention:  retention,
	}
}

// SetThresholds replaces the threshold configuration.
func (b *Buffer) SetThresholds(thresholds []monitoring.ThresholdConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.thresholds = make(map[string]monitoring.ThresholdConfig, len(thresholds))
	for _, t := range thresholds {
		b.thresholds[t.Resource] = t
	}
}

// AddSamples appends samples, keeping a bounded window per resource.
func (b *Buffer) AddSamples(samples []monitoring.MetricSample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range samples {
		series := append(b.samples[s.Resource], s)
		if len(series) > maxSamplesPerResource {
			series = series[len(series)-maxSamplesPerResource:]
		}
		b.samples[s.Resource] = series
	}
}

// AddChecks appends uptime checks and prunes those older than retention.
func (b *Buffer) AddChecks(checks []monitoring.UptimeCheck) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checks = append(b.checks, checks...)

	cutoff := time.Now().Add(-b.retention)
	kept := b.checks[:0]
	for _, c := range b.checks {
		if c.Timestamp.After(cutoff) {
			kept = append(kept, c)
		}
	}
	b.checks = kept
}

// AddCapacity records the latest capacity reading per resource.
func (b *Buffer) AddCapacity(usages []monitoring.CapacityUsage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range usages {
		b.capacity[u.Resource] = u
	}
}

// Samples returns the most recent sample per resource.
func (b *Buffer) Samples(_ context.Context) ([]monitoring.MetricSample, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]monitoring.MetricSample, 0, len(b.samples))
	for _, series := range b.samples {
		out = append(out, series[len(series)-1])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out, nil
}

// Windows returns the last windowSize values and the windowSize before them.
// Short series yield short or empty windows; the classifier treats an empty
// prior window as a stable trend.
func (b *Buffer) Windows(_ context.Context, resource string) ([]float64, []float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	series := b.samples[resource]
	values := make([]float64, len(series))
	for i, s := range series {
		values[i] = s.Value
	}

	recentStart := len(values) - b.windowSize
	if recentStart < 0 {
		recentStart = 0
	}
	priorStart := recentStart - b.windowSize
	if priorStart < 0 {
		priorStart = 0
	}

	return values[recentStart:], values[priorStart:recentStart], nil
}

// Thresholds returns the configured thresholds keyed by resource.
func (b *Buffer) Thresholds(_ context.Context) (map[string]monitoring.ThresholdConfig, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]monitoring.ThresholdConfig, len(b.thresholds))
	for k, v := range b.thresholds {
		out[k] = v
	}
	return out, nil
}

// UptimeChecks returns checks at or after since.
func (b *Buffer) UptimeChecks(_ context.Context, since time.Time) ([]monitoring.UptimeCheck, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []monitoring.UptimeCheck
	for _, c := range b.checks {
		if !c.Timestamp.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

// CapacityUsage returns the latest reading per capacity-tracked resource.
func (b *Buffer) CapacityUsage(_ context.Context) ([]monitoring.CapacityUsage, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]monitoring.CapacityUsage, 0, len(b.capacity))
	for _, u := range b.capacity {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out, nil
}
