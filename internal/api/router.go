package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/opsdeck/opsdeck-backend-go/internal/api/handlers"
	"github.com/opsdeck/opsdeck-backend-go/internal/api/middleware"
	"github.com/opsdeck/opsdeck-backend-go/internal/config"
	"github.com/opsdeck/opsdeck-backend-go/internal/core/ratelimit"
	"github.com/opsdeck/opsdeck-backend-go/pkg/utils"
)

// NewRouter builds the gin engine. Two limiters are wired deliberately:
// reads fail open (a store outage must not blank the dashboards), writes
// fail closed (acknowledge/resolve must not be brute-forceable while the
// limiter store is down).
func NewRouter(cfg *config.Config, h *handlers.Handlers, readLimiter, writeLimiter *ratelimit.Limiter, log *logrus.Logger) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logging(log))
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		utils.SendSuccess(c, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(readLimiter, "read", cfg.RateLimit.ReadWindow, cfg.RateLimit.ReadMax))
	}
	{
		v1.GET("/status", h.GetStatus)
		v1.GET("/uptime", h.GetUptime)
		v1.GET("/capacity", h.GetCapacity)
		v1.POST("/capacity/projection", h.PostProjection)
		v1.GET("/alerts", h.GetAlerts)
		v1.GET("/alerts/summary", h.GetAlertSummary)

		// Ingest shares the read limiter: a store outage must never cut off
		// the sample stream, so it fails open with the reads.
		v1.POST("/ingest/samples", h.IngestSamples)
		v1.POST("/ingest/checks", h.IngestChecks)
		v1.POST("/ingest/capacity", h.IngestCapacity)
	}

	writes := r.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		writes.Use(middleware.RateLimit(writeLimiter, "write", cfg.RateLimit.WriteWindow, cfg.RateLimit.WriteMax))
	}
	{
		writes.POST("/alerts/:id/acknowledge", h.AcknowledgeAlert)
		writes.POST("/alerts/:id/resolve", h.ResolveAlert)
	}

	return r
}
