package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MonitoringConfig carries the policy knobs of the evaluation core. The
// defaults match operational practice but none of them is a business rule,
// so every threshold is overridable.
type MonitoringConfig struct {
	EvaluationInterval time.Duration     `mapstructure:"evaluation_interval"`
	Trend              TrendConfig       `mapstructure:"trend"`
	Alerts             AlertsConfig      `mapstructure:"alerts"`
	Uptime             UptimeConfig      `mapstructure:"uptime"`
	Capacity           CapacityConfig    `mapstructure:"capacity"`
	Thresholds         []ThresholdConfig `mapstructure:"thresholds"`
	// TrendWindowSize is the number of samples in each trend window.
	TrendWindowSize int `mapstructure:"trend_window_size"`
}

// ThresholdConfig defines the alerting thresholds for one resource.
// Direction is "higher_is_worse" or "lower_is_worse".
type ThresholdConfig struct {
	Resource  string  `mapstructure:"resource"`
	Warning   float64 `mapstructure:"warning"`
	Critical  float64 `mapstructure:"critical"`
	Direction string  `mapstructure:"direction"`
}

type TrendConfig struct {
	// StableBandPercent is the |trend| band treated as stable.
	StableBandPercent float64 `mapstructure:"stable_band_percent"`
}

type AlertsConfig struct {
	// Cooldown suppresses repeat triggers for the same dedup key.
	Cooldown  time.Duration `mapstructure:"cooldown"`
	Retention time.Duration `mapstructure:"retention"`
}

type UptimeConfig struct {
	// DegradedFraction is the fraction of degraded checks above which a day
	// is marked degraded. Strictly exceeded, not met.
	DegradedFraction float64 `mapstructure:"degraded_fraction"`
	WindowDays       int     `mapstructure:"window_days"`
}

type CapacityConfig struct {
	WarningPercent  float64 `mapstructure:"warning_percent"`
	CriticalPercent float64 `mapstructure:"critical_percent"`
	// UrgentHorizonDays drives urgent scale-out messaging when the projected
	// full date is closer than this.
	UrgentHorizonDays int `mapstructure:"urgent_horizon_days"`
}

type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Read limits protect dashboard endpoints; write limits protect
	// acknowledge/resolve and fail closed when the store is down.
	ReadWindow  time.Duration `mapstructure:"read_window"`
	ReadMax     int           `mapstructure:"read_max"`
	WriteWindow time.Duration `mapstructure:"write_window"`
	WriteMax    int           `mapstructure:"write_max"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.enabled", "REDIS_ENABLED")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine; defaults plus env cover everything.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.mode", "release")

	viper.SetDefault("database.path", "./data/opsdeck.db")
	viper.SetDefault("database.max_connections", 25)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("monitoring.evaluation_interval", time.Minute)
	viper.SetDefault("monitoring.trend_window_size", 10)
	viper.SetDefault("monitoring.trend.stable_band_percent", 5.0)
	viper.SetDefault("monitoring.alerts.cooldown", 15*time.Minute)
	viper.SetDefault("monitoring.alerts.retention", 7*24*time.Hour)
	viper.SetDefault("monitoring.uptime.degraded_fraction", 0.10)
	viper.SetDefault("monitoring.uptime.window_days", 90)
	viper.SetDefault("monitoring.capacity.warning_percent", 75.0)
	viper.SetDefault("monitoring.capacity.critical_percent", 90.0)
	viper.SetDefault("monitoring.capacity.urgent_horizon_days", 21)

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.read_window", time.Minute)
	viper.SetDefault("rate_limit.read_max", 300)
	viper.SetDefault("rate_limit.write_window", time.Minute)
	viper.SetDefault("rate_limit.write_max", 30)
}

func validate(cfg *Config) error {
	if cfg.Monitoring.Uptime.DegradedFraction < 0 || cfg.Monitoring.Uptime.DegradedFraction > 1 {
		return fmt.Errorf("monitoring.uptime.degraded_fraction must be in [0,1], got %v", cfg.Monitoring.Uptime.DegradedFraction)
	}
	if cfg.Monitoring.Capacity.WarningPercent > cfg.Monitoring.Capacity.CriticalPercent {
		return fmt.Errorf("monitoring.capacity.warning_percent must not exceed critical_percent")
	}
	if cfg.Monitoring.EvaluationInterval <= 0 {
		return fmt.Errorf("monitoring.evaluation_interval must be positive")
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.ReadWindow <= 0 {
			return fmt.Errorf("rate_limit.read_window must be positive, got %v", cfg.RateLimit.ReadWindow)
		}
		if cfg.RateLimit.WriteWindow <= 0 {
			return fmt.Errorf("rate_limit.write_window must be positive, got %v", cfg.RateLimit.WriteWindow)
		}
	}
	return nil
}
