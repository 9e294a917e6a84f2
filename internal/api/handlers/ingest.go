package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsdeck/opsdeck-backend-go/internal/core/monitoring"
	"github.com/opsdeck/opsdeck-backend-go/pkg/utils"
)

// IngestSamples accepts a batch of metric samples from a collection agent.
func (h *Handlers) IngestSamples(c *gin.Context) {
	var samples []monitoring.MetricSample
	if err := c.ShouldBindJSON(&samples); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid sample batch: "+err.Error())
		return
	}
	h.buffer.AddSamples(samples)
	utils.SendSuccess(c, gin.H{"accepted": len(samples)})
}

// IngestChecks accepts a batch of uptime checks.
func (h *Handlers) IngestChecks(c *gin.Context) {
	var checks []monitoring.UptimeCheck
	if err := c.ShouldBindJSON(&checks); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid check batch: "+err.Error())
		return
	}
	h.buffer.AddChecks(checks)
	utils.SendSuccess(c, gin.H{"accepted": len(checks)})
}

// IngestCapacity accepts capacity usage readings.
func (h *Handlers) IngestCapacity(c *gin.Context) {
	var usages []monitoring.CapacityUsage
	if err := c.ShouldBindJSON(&usages); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid capacity batch: "+err.Error())
		return
	}
	h.buffer.AddCapacity(usages)
	utils.SendSuccess(c, gin.H{"accepted": len(usages)})
}
