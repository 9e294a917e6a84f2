package monitoring

import (
	"fmt"
	"math"
	"time"
)

// CapacityPolicy holds the utilization thresholds and the urgency horizon
// for recommendations. Zero value gives the 75/90/21-day defaults.
type CapacityPolicy struct {
	WarningPercent    float64
	CriticalPercent   float64
	UrgentHorizonDays int
}

func (p CapacityPolicy) withDefaults() CapacityPolicy {
	if p.WarningPercent <= 0 {
		p.WarningPercent = 75
	}
	if p.CriticalPercent <= 0 {
		p.CriticalPercent = 90
	}
	if p.UrgentHorizonDays <= 0 {
		p.UrgentHorizonDays = 21
	}
	return p
}

// ClassifyCapacity derives utilization, status, projected-full date and a
// recommendation for one resource. Pure function.
func (p CapacityPolicy) ClassifyCapacity(usage CapacityUsage, now time.Time) CapacityMetric {
	p = p.withDefaults()

	utilization := 0.0
	if usage.Capacity > 0 {
		utilization = usage.Current / usage.Capacity * 100
	}
	if utilization > 100 {
		utilization = 100
	}
	if utilization < 0 {
		utilization = 0
	}

	status := CapacityHealthy
	switch {
	case utilization >= p.CriticalPercent:
		status = CapacityCritical
	case utilization >= p.WarningPercent:
		status = CapacityWarning
	}

	metric := CapacityMetric{
		Resource:            usage.Resource,
		Current:             usage.Current,
		Capacity:            usage.Capacity,
		UtilizationPercent:  utilization,
		TrendPercentPerWeek: usage.TrendPercentPerWeek,
		Status:              status,
	}
	metric.ProjectedFullDate = projectedFullDate(utilization, usage.TrendPercentPerWeek, now)
	metric.Recommendation = p.recommendation(metric, now)
	return metric
}

// projectedFullDate solves utilization*(1+trend/100)^w >= 100 for the number
// of weeks w. A non-positive trend means capacity is not being approached,
// so there is no date.
func projectedFullDate(utilization, trendPercentPerWeek float64, now time.Time) *time.Time {
	if trendPercentPerWeek <= 0 || utilization <= 0 || utilization >= 100 {
		return nil
	}
	weeks := math.Log(100/utilization) / math.Log(1+trendPercentPerWeek/100)
	full := now.Add(time.Duration(weeks * 7 * 24 * float64(time.Hour)))
	return &full
}

// recommendation is a deterministic lookup on status and projected-full
// proximity, never free text.
func (p CapacityPolicy) recommendation(m CapacityMetric, now time.Time) string {
	urgent := false
	if m.ProjectedFullDate != nil {
		urgent = m.ProjectedFullDate.Sub(now) < time.Duration(p.UrgentHorizonDays)*24*time.Hour
	}

	switch {
	case m.Status == CapacityCritical && urgent:
		return fmt.Sprintf("Scale out %s immediately: projected full within %d days", m.Resource, p.UrgentHorizonDays)
	case m.Status == CapacityCritical:
		return fmt.Sprintf("Scale out %s: utilization above %.0f%%", m.Resource, p.CriticalPercent)
	case m.Status == CapacityWarning && urgent:
		return fmt.Sprintf("Plan capacity for %s now: projected full within %d days", m.Resource, p.UrgentHorizonDays)
	case m.Status == CapacityWarning:
		return fmt.Sprintf("Review capacity plan for %s: utilization above %.0f%%", m.Resource, p.WarningPercent)
	default:
		return "No action needed"
	}
}

// Project applies the compound growth model to a current value.
// growthRatePerYear is a percentage; the daily rate is derived as
// (1+annual)^(1/365)-1 so projections compose across horizons.
// confidencePercent is supplied by the caller and carried through untouched.
// An annual rate at or below -100% would make the base of the root negative,
// so it is treated as total decay: every projection goes to zero.
func Project(metric string, currentValue, growthRatePerYear, confidencePercent float64) GrowthProjection {
	daily := -1.0
	if growthRatePerYear > -100 {
		daily = math.Pow(1+growthRatePerYear/100, 1.0/365) - 1
	}

	projectAt := func(days float64) float64 {
		return currentValue * math.Pow(1+daily, days)
	}

	return GrowthProjection{
		Metric:            metric,
		CurrentValue:      currentValue,
		Projected30d:      projectAt(30),
		Projected90d:      projectAt(90),
		Projected365d:     projectAt(365),
		GrowthRatePerYear: growthRatePerYear,
		ConfidencePercent: confidencePercent,
	}
}

// GrowthFromHistory estimates an annualized growth rate (percent) from a
// series by comparing the endpoints. Fewer than two usable points, a
// non-positive starting value, or a zero time span report 0.
func GrowthFromHistory(history []DataPoint) float64 {
	if len(history) < 2 {
		return 0
	}
	first, last := history[0], history[len(history)-1]
	spanDays := last.Timestamp.Sub(first.Timestamp).Hours() / 24
	if spanDays <= 0 || first.Value <= 0 || last.Value <= 0 {
		return 0
	}
	// Annualize the observed compound rate over the span.
	annual := math.Pow(last.Value/first.Value, 365/spanDays) - 1
	return annual * 100
}

// ConfidenceFromHistory is an explicit, opt-in heuristic: confidence falls
// with the coefficient of variation of the series. Callers that have a
// better externally-derived confidence should pass that to Project instead.
func ConfidenceFromHistory(history []DataPoint) float64 {
	if len(history) < 2 {
		return 50
	}
	values := make([]float64, len(history))
	for i, p := range history {
		values[i] = p.Value
	}
	avg := mean(values)
	if avg == 0 {
		return 50
	}

	var variance float64
	for _, v := range values {
		variance += (v - avg) * (v - avg)
	}
	variance /= float64(len(values))
	cv := math.Sqrt(variance) / math.Abs(avg)

	confidence := 100 * (1 - cv)
	if confidence < 30 {
		confidence = 30
	}
	if confidence > 95 {
		confidence = 95
	}
	return confidence
}
