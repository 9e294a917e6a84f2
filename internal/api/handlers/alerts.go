package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opsdeck/opsdeck-backend-go/internal/core/monitoring"
	apperrors "github.com/opsdeck/opsdeck-backend-go/pkg/errors"
	"github.com/opsdeck/opsdeck-backend-go/pkg/utils"
)

// GetAlerts lists alerts, optionally filtered by status. When a database is
// configured the history comes from it, so resolved alerts survive restarts.
func (h *Handlers) GetAlerts(c *gin.Context) {
	status := monitoring.AlertStatus(c.Query("status"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	if h.history != nil {
		alerts, err := h.history.List(c.Request.Context(), status, limit)
		if err != nil {
			h.logger.WithError(err).Error("Failed to list alert history")
			utils.SendError(c, http.StatusInternalServerError, "Failed to list alerts")
			return
		}
		utils.SendSuccess(c, alerts)
		return
	}

	alerts := h.alerts.List()
	if status != "" {
		filtered := alerts[:0]
		for _, alert := range alerts {
			if alert.Status == status {
				filtered = append(filtered, alert)
			}
		}
		alerts = filtered
	}
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	utils.SendSuccess(c, alerts)
}

// GetAlertSummary returns counts by level and status. With a database
// configured the counts come from persisted history, same as GetAlerts;
// if that read fails the in-process counts are served instead.
func (h *Handlers) GetAlertSummary(c *gin.Context) {
	if h.history != nil {
		summary, err := h.history.Summarize(c.Request.Context())
		if err == nil {
			utils.SendSuccess(c, summary)
			return
		}
		h.logger.WithError(err).Warn("Failed to summarize alert history, serving in-process counts")
	}
	utils.SendSuccess(c, monitoring.Summarize(h.alerts.List()))
}

type actorRequest struct {
	Actor string `json:"actor" binding:"required"`
}

// AcknowledgeAlert transitions an alert to acknowledged.
func (h *Handlers) AcknowledgeAlert(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "actor is required")
		return
	}

	alert, err := h.alerts.Acknowledge(c.Request.Context(), c.Param("id"), req.Actor)
	if err != nil {
		h.sendAlertError(c, err)
		return
	}
	utils.SendSuccess(c, alert)
}

// ResolveAlert transitions an alert to resolved.
func (h *Handlers) ResolveAlert(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "actor is required")
		return
	}

	alert, err := h.alerts.Resolve(c.Request.Context(), c.Param("id"), req.Actor)
	if err != nil {
		h.sendAlertError(c, err)
		return
	}
	utils.SendSuccess(c, alert)
}

func (h *Handlers) sendAlertError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		utils.SendError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrInvalidTransition):
		utils.SendError(c, http.StatusConflict, err.Error())
	default:
		h.logger.WithError(err).Error("Alert operation failed")
		utils.SendError(c, http.StatusInternalServerError, "Alert operation failed")
	}
}
