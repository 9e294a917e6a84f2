package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyThresholds(t *testing.T) {
	higher := &ThresholdConfig{
		Resource:      "cpu",
		WarningLevel:  75,
		CriticalLevel: 90,
		Direction:     HigherIsWorse,
	}
	lower := &ThresholdConfig{
		Resource:      "disk_free",
		WarningLevel:  20,
		CriticalLevel: 10,
		Direction:     LowerIsWorse,
	}

	tests := []struct {
		name      string
		value     float64
		threshold *ThresholdConfig
		expected  Status
	}{
		{"below warning", 50, higher, StatusGood},
		{"at warning", 75, higher, StatusWarning},
		{"between levels", 85, higher, StatusWarning},
		{"at critical", 90, higher, StatusCritical},
		{"above critical", 99, higher, StatusCritical},
		{"lower-is-worse healthy", 50, lower, StatusGood},
		{"lower-is-worse warning", 15, lower, StatusWarning},
		{"lower-is-worse critical", 5, lower, StatusCritical},
		{"missing config", 99, nil, StatusUnknown},
	}

	c := NewClassifier(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := MetricSample{Resource: "cpu", Value: tt.value, Unit: "%"}
			status := c.Classify(sample, tt.threshold, nil, nil)
			assert.Equal(t, tt.expected, status.Status)
			assert.Equal(t, tt.value, status.Value)
		})
	}
}

func TestClassifyNeverPanicsOnMissingConfig(t *testing.T) {
	c := NewClassifier(5)
	for _, value := range []float64{-1e9, 0, 1e9} {
		status := c.Classify(MetricSample{Resource: "x", Value: value}, nil, nil, nil)
		assert.Equal(t, StatusUnknown, status.Status)
	}
}

func TestTrend(t *testing.T) {
	c := NewClassifier(5)

	tests := []struct {
		name          string
		recent, prior []float64
		wantPercent   float64
		wantDirection TrendDirection
	}{
		{"rising", []float64{110, 110}, []float64{100, 100}, 10, TrendUp},
		{"falling", []float64{90}, []float64{100}, -10, TrendDown},
		{"within band", []float64{104}, []float64{100}, 4, TrendStable},
		{"at band edge", []float64{105}, []float64{100}, 5, TrendUp},
		{"empty prior", []float64{100}, nil, 0, TrendStable},
		{"empty recent", nil, []float64{100}, 0, TrendStable},
		{"zero prior average", []float64{100}, []float64{0, 0}, 0, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			percent, direction := c.Trend(tt.recent, tt.prior)
			assert.InDelta(t, tt.wantPercent, percent, 1e-9)
			assert.Equal(t, tt.wantDirection, direction)
		})
	}
}

func TestTrendNeverNaN(t *testing.T) {
	c := NewClassifier(5)
	percent, direction := c.Trend([]float64{1, 2, 3}, []float64{0})
	assert.Equal(t, 0.0, percent)
	assert.Equal(t, TrendStable, direction)
}
