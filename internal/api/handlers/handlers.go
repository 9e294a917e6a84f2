package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/opsdeck/opsdeck-backend-go/internal/collector"
	"github.com/opsdeck/opsdeck-backend-go/internal/core/monitoring"
	"github.com/opsdeck/opsdeck-backend-go/internal/database"
	"github.com/opsdeck/opsdeck-backend-go/internal/scheduler"
)

// Handlers holds the dependencies of the HTTP surface.
type Handlers struct {
	evaluator *scheduler.Evaluator
	alerts    *monitoring.Manager
	buffer    *collector.Buffer
	history   *database.AlertRepository
	logger    *logrus.Logger
}

// New creates the handler set. history may be nil when no database is
// configured; the history endpoint then serves the in-memory alert list.
func New(evaluator *scheduler.Evaluator, alerts *monitoring.Manager, buffer *collector.Buffer, history *database.AlertRepository, logger *logrus.Logger) *Handlers {
	return &Handlers{
		evaluator: evaluator,
		alerts:    alerts,
		buffer:    buffer,
		history:   history,
		logger:    logger,
	}
}
