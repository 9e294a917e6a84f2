package monitoring

import "time"

// MetricStatus classification levels. The set is closed so consumers can
// switch exhaustively.
type Status string

const (
	StatusGood     Status = "good"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusUnknown  Status = "unknown"
)

type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// ThresholdDirection states which side of the thresholds is unhealthy.
type ThresholdDirection string

const (
	// HigherIsWorse: value >= critical is critical (CPU, error rate).
	HigherIsWorse ThresholdDirection = "higher_is_worse"
	// LowerIsWorse: value <= critical is critical (free disk, cache hit rate).
	LowerIsWorse ThresholdDirection = "lower_is_worse"
)

// MetricSample is a single reading from the external collector.
type MetricSample struct {
	Resource  string    `json:"resource"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Timestamp time.Time `json:"timestamp"`
}

// ThresholdConfig defines the warning/critical levels for one resource.
type ThresholdConfig struct {
	Resource      string             `json:"resource"`
	WarningLevel  float64            `json:"warning_level"`
	CriticalLevel float64            `json:"critical_level"`
	Direction     ThresholdDirection `json:"direction"`
}

// MetricStatus is the classification output for one resource. It is derived
// on every evaluation and never persisted by the core.
type MetricStatus struct {
	Resource       string         `json:"resource"`
	Value          float64        `json:"value"`
	Unit           string         `json:"unit"`
	Status         Status         `json:"status"`
	TrendDirection TrendDirection `json:"trend_direction"`
	TrendPercent   float64        `json:"trend_percent"`
	EvaluatedAt    time.Time      `json:"evaluated_at"`
}

type AlertLevel string

const (
	LevelInfo     AlertLevel = "info"
	LevelWarning  AlertLevel = "warning"
	LevelCritical AlertLevel = "critical"
)

type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
)

// Alert is owned by the Manager and mutated only through its transitions.
// Once resolved it is immutable.
type Alert struct {
	ID             string      `json:"id" db:"id"`
	DedupKey       string      `json:"dedup_key" db:"dedup_key"`
	Level          AlertLevel  `json:"level" db:"level"`
	Title          string      `json:"title" db:"title"`
	Message        string      `json:"message" db:"message"`
	Source         string      `json:"source" db:"source"`
	Status         AlertStatus `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	AcknowledgedBy string      `json:"acknowledged_by,omitempty" db:"acknowledged_by"`
	ResolvedBy     string      `json:"resolved_by,omitempty" db:"resolved_by"`
	ResolvedAt     *time.Time  `json:"resolved_at,omitempty" db:"resolved_at"`
}

// Trigger is the input to Manager.Raise, typically produced from a
// warning/critical MetricStatus.
type Trigger struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	Source  string     `json:"source"`
}

// AlertSummary aggregates alerts by level and status.
type AlertSummary struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Critical     int `json:"critical"`
	Warning      int `json:"warning"`
	Info         int `json:"info"`
	Acknowledged int `json:"acknowledged"`
	Resolved     int `json:"resolved"`
}

type CheckStatus string

const (
	CheckUp       CheckStatus = "up"
	CheckDown     CheckStatus = "down"
	CheckDegraded CheckStatus = "degraded"
)

// UptimeCheck is one probe result. Append-only input.
type UptimeCheck struct {
	Timestamp    time.Time     `json:"timestamp"`
	Status       CheckStatus   `json:"status"`
	ResponseTime time.Duration `json:"response_time"`
	Region       string        `json:"region"`
}

type DayState string

const (
	DayUp       DayState = "up"
	DayDegraded DayState = "degraded"
	DayDown     DayState = "down"
	DayNoData   DayState = "no-data"
)

// DayStatus is the per-calendar-day rollup for the health heatmap. It is a
// pure function of that day's checks and is recomputed, never edited.
type DayStatus struct {
	Date   string   `json:"date"` // YYYY-MM-DD
	Status DayState `json:"status"`
}

type CapacityStatus string

const (
	CapacityHealthy  CapacityStatus = "healthy"
	CapacityWarning  CapacityStatus = "warning"
	CapacityCritical CapacityStatus = "critical"
)

// CapacityUsage is the raw input for capacity classification, supplied by
// the external collector.
type CapacityUsage struct {
	Resource            string  `json:"resource"`
	Current             float64 `json:"current"`
	Capacity            float64 `json:"capacity"`
	TrendPercentPerWeek float64 `json:"trend_percent_per_week"`
}

// CapacityMetric is the classified view of one resource's headroom.
type CapacityMetric struct {
	Resource            string         `json:"resource"`
	Current             float64        `json:"current"`
	Capacity            float64        `json:"capacity"`
	UtilizationPercent  float64        `json:"utilization_percent"`
	TrendPercentPerWeek float64        `json:"trend_percent_per_week"`
	ProjectedFullDate   *time.Time     `json:"projected_full_date,omitempty"`
	Status              CapacityStatus `json:"status"`
	Recommendation      string         `json:"recommendation"`
}

// GrowthProjection carries a compound-growth forecast for a business metric.
// Confidence is supplied by the caller and carried through untouched.
type GrowthProjection struct {
	Metric            string  `json:"metric"`
	CurrentValue      float64 `json:"current_value"`
	Projected30d      float64 `json:"projected_30d"`
	Projected90d      float64 `json:"projected_90d"`
	Projected365d     float64 `json:"projected_365d"`
	GrowthRatePerYear float64 `json:"growth_rate_per_year"`
	ConfidencePercent float64 `json:"confidence_percent"`
}

// DataPoint is one observation in a historical series.
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}
