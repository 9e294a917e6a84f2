package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/opsdeck/opsdeck-backend-go/internal/core/monitoring"
)

const alertSchema = `
CREATE TABLE IF NOT EXISTS alerts (
	id              TEXT PRIMARY KEY,
	dedup_key       TEXT NOT NULL,
	level           TEXT NOT NULL,
	title           TEXT NOT NULL,
	message         TEXT NOT NULL,
	source          TEXT NOT NULL,
	status          TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL,
	acknowledged_by TEXT NOT NULL DEFAULT '',
	resolved_by     TEXT NOT NULL DEFAULT '',
	resolved_at     TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_alerts_dedup_key ON alerts(dedup_key);
CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status);
`

// AlertRepository persists alert history to sqlite. It implements
// monitoring.AlertStore.
type AlertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) (*AlertRepository, error) {
	if _, err := db.Exec(alertSchema); err != nil {
		return nil, fmt.Errorf("failed to create alerts schema: %w", err)
	}
	return &AlertRepository{db: db}, nil
}

func (r *AlertRepository) Save(ctx context.Context, alert *monitoring.Alert) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO alerts (id, dedup_key, level, title, message, source, status, created_at, acknowledged_by, resolved_by, resolved_at)
		VALUES (:id, :dedup_key, :level, :title, :message, :source, :status, :created_at, :acknowledged_by, :resolved_by, :resolved_at)`,
		alert)
	if err != nil {
		return fmt.Errorf("failed to save alert %s: %w", alert.ID, err)
	}
	return nil
}

func (r *AlertRepository) Update(ctx context.Context, alert *monitoring.Alert) error {
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE alerts
		SET status = :status, acknowledged_by = :acknowledged_by, resolved_by = :resolved_by, resolved_at = :resolved_at
		WHERE id = :id`,
		alert)
	if err != nil {
		return fmt.Errorf("failed to update alert %s: %w", alert.ID, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("alert %s not found in store", alert.ID)
	}
	return nil
}

// List returns persisted alerts, optionally filtered by status, newest first.
func (r *AlertRepository) List(ctx context.Context, status monitoring.AlertStatus, limit int) ([]monitoring.Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	var alerts []monitoring.Alert
	var err error
	if status == "" {
		err = r.db.SelectContext(ctx, &alerts,
			`SELECT * FROM alerts ORDER BY created_at DESC LIMIT ?`, limit)
	} else {
		err = r.db.SelectContext(ctx, &alerts,
			`SELECT * FROM alerts WHERE status = ? ORDER BY created_at DESC LIMIT ?`, status, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// Summarize aggregates the full persisted history by level and status, so
// counts stay correct across restarts.
func (r *AlertRepository) Summarize(ctx context.Context) (monitoring.AlertSummary, error) {
	var summary monitoring.AlertSummary
	var rows []struct {
		Level  monitoring.AlertLevel  `db:"level"`
		Status monitoring.AlertStatus `db:"status"`
		Count  int                    `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT level, status, COUNT(*) AS count FROM alerts GROUP BY level, status`)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize alerts: %w", err)
	}

	for _, row := range rows {
		summary.Total += row.Count
		switch row.Level {
		case monitoring.LevelCritical:
			summary.Critical += row.Count
		case monitoring.LevelWarning:
			summary.Warning += row.Count
		case monitoring.LevelInfo:
			summary.Info += row.Count
		}
		switch row.Status {
		case monitoring.AlertActive:
			summary.Active += row.Count
		case monitoring.AlertAcknowledged:
			summary.Acknowledged += row.Count
		case monitoring.AlertResolved:
			summary.Resolved += row.Count
		}
	}
	return summary, nil
}
