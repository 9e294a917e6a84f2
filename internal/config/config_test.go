package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Monitoring: MonitoringConfig{
			EvaluationInterval: time.Minute,
			Uptime:             UptimeConfig{DegradedFraction: 0.10, WindowDays: 90},
			Capacity:           CapacityConfig{WarningPercent: 75, CriticalPercent: 90},
		},
		RateLimit: RateLimitConfig{
			Enabled:     true,
			ReadWindow:  time.Minute,
			ReadMax:     300,
			WriteWindow: time.Minute,
			WriteMax:    30,
		},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, validate(validConfig()))
}

func TestValidateRejectsNonPositiveRateLimitWindows(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ReadWindow = 0
	assert.ErrorContains(t, validate(cfg), "rate_limit.read_window")

	cfg = validConfig()
	cfg.RateLimit.WriteWindow = -time.Second
	assert.ErrorContains(t, validate(cfg), "rate_limit.write_window")

	// Disabled limiting skips the window checks.
	cfg = validConfig()
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.ReadWindow = 0
	assert.NoError(t, validate(cfg))
}

func TestValidateRejectsBadMonitoringKnobs(t *testing.T) {
	cfg := validConfig()
	cfg.Monitoring.Uptime.DegradedFraction = 1.5
	assert.ErrorContains(t, validate(cfg), "degraded_fraction")

	cfg = validConfig()
	cfg.Monitoring.Capacity.WarningPercent = 95
	assert.ErrorContains(t, validate(cfg), "warning_percent")

	cfg = validConfig()
	cfg.Monitoring.EvaluationInterval = 0
	assert.ErrorContains(t, validate(cfg), "evaluation_interval")
}
