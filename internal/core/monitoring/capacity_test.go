package monitoring

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var capacityNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestClassifyCapacityStatus(t *testing.T) {
	tests := []struct {
		name            string
		current         float64
		capacity        float64
		wantUtilization float64
		wantStatus      CapacityStatus
	}{
		{"healthy", 50, 100, 50, CapacityHealthy},
		{"warning at 85", 85, 100, 85, CapacityWarning},
		{"warning boundary", 75, 100, 75, CapacityWarning},
		{"critical at 95", 95, 100, 95, CapacityCritical},
		{"critical boundary", 90, 100, 90, CapacityCritical},
		{"over capacity capped", 120, 100, 100, CapacityCritical},
		{"zero capacity", 10, 0, 0, CapacityHealthy},
	}

	policy := CapacityPolicy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := policy.ClassifyCapacity(CapacityUsage{
				Resource: "db_storage",
				Current:  tt.current,
				Capacity: tt.capacity,
			}, capacityNow)
			assert.InDelta(t, tt.wantUtilization, m.UtilizationPercent, 1e-9)
			assert.Equal(t, tt.wantStatus, m.Status)
		})
	}
}

func TestProjectedFullDate(t *testing.T) {
	policy := CapacityPolicy{}

	t.Run("positive trend projects a date", func(t *testing.T) {
		m := policy.ClassifyCapacity(CapacityUsage{
			Resource:            "db_storage",
			Current:             50,
			Capacity:            100,
			TrendPercentPerWeek: 10,
		}, capacityNow)
		require.NotNil(t, m.ProjectedFullDate)

		// 50% doubling at 10%/week: ln(2)/ln(1.1) ~ 7.27 weeks.
		wantDays := math.Log(2) / math.Log(1.1) * 7
		gotDays := m.ProjectedFullDate.Sub(capacityNow).Hours() / 24
		assert.InDelta(t, wantDays, gotDays, 0.1)
	})

	t.Run("flat or shrinking trend has no date", func(t *testing.T) {
		for _, trend := range []float64{0, -5} {
			m := policy.ClassifyCapacity(CapacityUsage{
				Resource:            "db_storage",
				Current:             95,
				Capacity:            100,
				TrendPercentPerWeek: trend,
			}, capacityNow)
			assert.Nil(t, m.ProjectedFullDate)
		}
	})

	t.Run("already full has no date", func(t *testing.T) {
		m := policy.ClassifyCapacity(CapacityUsage{
			Resource:            "db_storage",
			Current:             100,
			Capacity:            100,
			TrendPercentPerWeek: 10,
		}, capacityNow)
		assert.Nil(t, m.ProjectedFullDate)
	})
}

func TestRecommendationLookup(t *testing.T) {
	policy := CapacityPolicy{}

	urgent := policy.ClassifyCapacity(CapacityUsage{
		Resource:            "db_storage",
		Current:             92,
		Capacity:            100,
		TrendPercentPerWeek: 30,
	}, capacityNow)
	assert.Equal(t, CapacityCritical, urgent.Status)
	require.NotNil(t, urgent.ProjectedFullDate)
	assert.True(t, strings.Contains(urgent.Recommendation, "immediately"), urgent.Recommendation)

	critical := policy.ClassifyCapacity(CapacityUsage{
		Resource: "db_storage",
		Current:  92,
		Capacity: 100,
	}, capacityNow)
	assert.Contains(t, critical.Recommendation, "Scale out")

	healthy := policy.ClassifyCapacity(CapacityUsage{
		Resource: "db_storage",
		Current:  10,
		Capacity: 100,
	}, capacityNow)
	assert.Equal(t, "No action needed", healthy.Recommendation)

	// Same inputs, same text: a lookup, not generation.
	again := policy.ClassifyCapacity(CapacityUsage{
		Resource:            "db_storage",
		Current:             92,
		Capacity:            100,
		TrendPercentPerWeek: 30,
	}, capacityNow)
	assert.Equal(t, urgent.Recommendation, again.Recommendation)
}

func TestProject(t *testing.T) {
	p := Project("monthly_active_users", 1000, 100, 80)

	assert.Equal(t, "monthly_active_users", p.Metric)
	assert.Equal(t, 1000.0, p.CurrentValue)
	assert.Equal(t, 100.0, p.GrowthRatePerYear)
	assert.Equal(t, 80.0, p.ConfidencePercent)

	// 100%/year compounds to exactly double at 365 days.
	assert.InDelta(t, 2000, p.Projected365d, 1e-6)
	assert.Greater(t, p.Projected90d, p.Projected30d)
	assert.Greater(t, p.Projected30d, p.CurrentValue)
}

func TestProjectZeroGrowth(t *testing.T) {
	p := Project("subscriptions", 500, 0, 60)
	assert.InDelta(t, 500, p.Projected30d, 1e-9)
	assert.InDelta(t, 500, p.Projected365d, 1e-9)
	assert.Equal(t, 60.0, p.ConfidencePercent)
}

func TestProjectExtremeDecayStaysFinite(t *testing.T) {
	// At or past -100%/year there is nothing left to compound; the
	// projections must be zero, never NaN.
	for _, rate := range []float64{-100, -250} {
		p := Project("subscriptions", 500, rate, 60)
		assert.False(t, math.IsNaN(p.Projected30d), "rate %v", rate)
		assert.Equal(t, 0.0, p.Projected30d)
		assert.Equal(t, 0.0, p.Projected365d)
		assert.Equal(t, rate, p.GrowthRatePerYear)
	}

	// Just above the floor still decays smoothly.
	p := Project("subscriptions", 500, -99, 60)
	assert.Greater(t, p.Projected30d, 0.0)
	assert.Less(t, p.Projected30d, 500.0)
}

func TestGrowthFromHistory(t *testing.T) {
	start := capacityNow.AddDate(-1, 0, 0)

	t.Run("doubling over a year", func(t *testing.T) {
		history := []DataPoint{
			{Timestamp: start, Value: 100},
			{Timestamp: start.AddDate(1, 0, 0), Value: 200},
		}
		got := GrowthFromHistory(history)
		assert.InDelta(t, 100, got, 1.0)
	})

	t.Run("degenerate inputs report zero", func(t *testing.T) {
		assert.Equal(t, 0.0, GrowthFromHistory(nil))
		assert.Equal(t, 0.0, GrowthFromHistory([]DataPoint{{Timestamp: start, Value: 10}}))
		assert.Equal(t, 0.0, GrowthFromHistory([]DataPoint{
			{Timestamp: start, Value: 0},
			{Timestamp: start.AddDate(1, 0, 0), Value: 10},
		}))
		assert.Equal(t, 0.0, GrowthFromHistory([]DataPoint{
			{Timestamp: start, Value: 10},
			{Timestamp: start, Value: 20},
		}))
	})
}

func TestConfidenceFromHistory(t *testing.T) {
	start := capacityNow

	flat := []DataPoint{
		{Timestamp: start, Value: 100},
		{Timestamp: start.AddDate(0, 0, 1), Value: 100},
		{Timestamp: start.AddDate(0, 0, 2), Value: 100},
	}
	assert.Equal(t, 95.0, ConfidenceFromHistory(flat))

	noisy := []DataPoint{
		{Timestamp: start, Value: 10},
		{Timestamp: start.AddDate(0, 0, 1), Value: 500},
		{Timestamp: start.AddDate(0, 0, 2), Value: 3},
	}
	assert.Equal(t, 30.0, ConfidenceFromHistory(noisy))

	assert.Equal(t, 50.0, ConfidenceFromHistory(nil))
}
