package monitoring

import "time"

// Classifier maps raw samples to a status and trend. It holds policy only,
// no state: Classify is pure and safe to call concurrently.
type Classifier struct {
	stableBand float64
}

// NewClassifier creates a classifier. stableBandPercent is the |trend| band
// reported as stable; pass <= 0 for the default of 5.
func NewClassifier(stableBandPercent float64) *Classifier {
	if stableBandPercent <= 0 {
		stableBandPercent = 5.0
	}
	return &Classifier{stableBand: stableBandPercent}
}

// Classify compares a sample against its thresholds and computes the trend
// between the two windows. A nil threshold config yields StatusUnknown,
// never an error: an unconfigured resource is not a failure.
func (c *Classifier) Classify(sample MetricSample, threshold *ThresholdConfig, recent, prior []float64) MetricStatus {
	status := StatusUnknown
	if threshold != nil {
		status = classifyValue(sample.Value, threshold)
	}

	trendPercent, direction := c.Trend(recent, prior)

	return MetricStatus{
		Resource:       sample.Resource,
		Value:          sample.Value,
		Unit:           sample.Unit,
		Status:         status,
		TrendDirection: direction,
		TrendPercent:   trendPercent,
		EvaluatedAt:    time.Now().UTC(),
	}
}

// Trend returns the percentage change between the averages of the recent and
// prior windows. An empty or zero-average prior window reports stable/0
// rather than dividing by zero.
func (c *Classifier) Trend(recent, prior []float64) (float64, TrendDirection) {
	priorAvg := mean(prior)
	if len(recent) == 0 || len(prior) == 0 || priorAvg == 0 {
		return 0, TrendStable
	}

	trend := (mean(recent) - priorAvg) / priorAvg * 100

	switch {
	case trend >= c.stableBand:
		return trend, TrendUp
	case trend <= -c.stableBand:
		return trend, TrendDown
	default:
		return trend, TrendStable
	}
}

func classifyValue(value float64, t *ThresholdConfig) Status {
	if t.Direction == LowerIsWorse {
		switch {
		case value <= t.CriticalLevel:
			return StatusCritical
		case value <= t.WarningLevel:
			return StatusWarning
		default:
			return StatusGood
		}
	}
	switch {
	case value >= t.CriticalLevel:
		return StatusCritical
	case value >= t.WarningLevel:
		return StatusWarning
	default:
		return StatusGood
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
