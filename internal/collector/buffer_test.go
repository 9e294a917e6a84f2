package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/opsdeck-backend-go/internal/core/monitoring"
)

func TestBufferSamplesAndWindows(t *testing.T) {
	b := New(3, 0)
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	var samples []monitoring.MetricSample
	for i := 0; i < 8; i++ {
		samples = append(samples, monitoring.MetricSample{
			Resource:  "cpu",
			Value:     float64(10 * i),
			Unit:      "%",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
	b.AddSamples(samples)

	latest, err := b.Samples(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 70.0, latest[0].Value)

	recent, prior, err := b.Windows(context.Background(), "cpu")
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 60, 70}, recent)
	assert.Equal(t, []float64{20, 30, 40}, prior)
}

func TestBufferWindowsShortSeries(t *testing.T) {
	b := New(10, 0)
	b.AddSamples([]monitoring.MetricSample{
		{Resource: "cpu", Value: 1},
		{Resource: "cpu", Value: 2},
	})

	recent, prior, err := b.Windows(context.Background(), "cpu")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, recent)
	assert.Empty(t, prior)

	recent, prior, err = b.Windows(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, recent)
	assert.Empty(t, prior)
}

func TestBufferUptimeChecksSince(t *testing.T) {
	b := New(10, 0)
	now := time.Now()

	b.AddChecks([]monitoring.UptimeCheck{
		{Timestamp: now.Add(-48 * time.Hour), Status: monitoring.CheckUp},
		{Timestamp: now.Add(-1 * time.Hour), Status: monitoring.CheckDown},
		{Timestamp: now, Status: monitoring.CheckUp},
	})

	checks, err := b.UptimeChecks(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, checks, 2)
}

func TestBufferThresholdsAndCapacity(t *testing.T) {
	b := New(10, 0)

	b.SetThresholds([]monitoring.ThresholdConfig{
		{Resource: "cpu", WarningLevel: 75, CriticalLevel: 90, Direction: monitoring.HigherIsWorse},
	})
	thresholds, err := b.Thresholds(context.Background())
	require.NoError(t, err)
	require.Contains(t, thresholds, "cpu")
	assert.Equal(t, 90.0, thresholds["cpu"].CriticalLevel)

	b.AddCapacity([]monitoring.CapacityUsage{
		{Resource: "db_storage", Current: 50, Capacity: 100},
		{Resource: "db_storage", Current: 60, Capacity: 100},
	})
	usages, err := b.CapacityUsage(context.Background())
	require.NoError(t, err)
	require.Len(t, usages, 1)
	assert.Equal(t, 60.0, usages[0].Current) // latest reading wins
}
