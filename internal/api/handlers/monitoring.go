package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsdeck/opsdeck-backend-go/internal/core/monitoring"
	"github.com/opsdeck/opsdeck-backend-go/pkg/utils"
)

// GetStatus returns the latest classification per resource.
func (h *Handlers) GetStatus(c *gin.Context) {
	snapshot := h.evaluator.Snapshot()
	utils.SendSuccessWithMeta(c, snapshot.Statuses, gin.H{"evaluated_at": snapshot.EvaluatedAt})
}

// GetUptime returns the day-status series and overall uptime percentage.
func (h *Handlers) GetUptime(c *gin.Context) {
	snapshot := h.evaluator.Snapshot()
	utils.SendSuccess(c, gin.H{
		"days":           snapshot.Uptime,
		"uptime_percent": snapshot.UptimePercent,
	})
}

// GetCapacity returns the classified capacity metrics.
func (h *Handlers) GetCapacity(c *gin.Context) {
	snapshot := h.evaluator.Snapshot()
	utils.SendSuccessWithMeta(c, snapshot.Capacity, gin.H{"evaluated_at": snapshot.EvaluatedAt})
}

type projectionRequest struct {
	Metric string `json:"metric" binding:"required"`
	// Pointer so a metric currently at 0 is not mistaken for a missing field.
	CurrentValue      *float64               `json:"current_value" binding:"required"`
	GrowthRatePerYear *float64               `json:"growth_rate_per_year"`
	ConfidencePercent *float64               `json:"confidence_percent"`
	History           []monitoring.DataPoint `json:"history"`
}

// PostProjection computes a compound growth projection. The growth rate and
// confidence may be given directly or derived from the supplied history;
// once chosen, confidence is carried through, never recomputed.
func (h *Handlers) PostProjection(c *gin.Context) {
	var req projectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid projection request: "+err.Error())
		return
	}

	growth := 0.0
	if req.GrowthRatePerYear != nil {
		growth = *req.GrowthRatePerYear
	} else {
		growth = monitoring.GrowthFromHistory(req.History)
	}

	confidence := 0.0
	if req.ConfidencePercent != nil {
		confidence = *req.ConfidencePercent
	} else {
		confidence = monitoring.ConfidenceFromHistory(req.History)
	}

	utils.SendSuccess(c, monitoring.Project(req.Metric, *req.CurrentValue, growth, confidence))
}
