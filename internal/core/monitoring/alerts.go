package monitoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opsdeck/opsdeck-backend-go/internal/core/kvstore"
	apperrors "github.com/opsdeck/opsdeck-backend-go/pkg/errors"
)

// AlertStore persists alert history. The Manager remains authoritative for
// lifecycle state; persistence failures are logged, never block a raise.
type AlertStore interface {
	Save(ctx context.Context, alert *Alert) error
	Update(ctx context.Context, alert *Alert) error
}

// Manager owns the alert state machine:
//
//	active -> acknowledged -> resolved
//	active -> resolved
//
// resolved is terminal. At most one active alert exists per dedup key within
// the cooldown window; concurrent raises for the same key serialize on the
// manager lock so only one alert is created.
type Manager struct {
	mu          sync.RWMutex
	alerts      map[string]*Alert
	activeByKey map[string]*Alert

	cooldown time.Duration
	kv       kvstore.Store
	store    AlertStore
	logger   *logrus.Logger
	now      func() time.Time
}

// NewManager creates an alert manager. kv and store may be nil: kv adds a
// cross-process cooldown mark, store adds durable history, neither is
// required for correctness within one process.
func NewManager(cooldown time.Duration, kv kvstore.Store, store AlertStore, logger *logrus.Logger) *Manager {
	if cooldown <= 0 {
		cooldown = 15 * time.Minute
	}
	return &Manager{
		alerts:      make(map[string]*Alert),
		activeByKey: make(map[string]*Alert),
		cooldown:    cooldown,
		kv:          kv,
		store:       store,
		logger:      logger,
		now:         time.Now,
	}
}

// DedupKey derives the stable identifier used to collapse repeat triggers
// for the same condition.
func DedupKey(source, title string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + title))
	return hex.EncodeToString(sum[:8])
}

// Raise creates an active alert for the trigger, or returns the existing
// active alert when one for the same dedup key was created inside the
// cooldown window. The second return value reports whether a new alert was
// created.
func (m *Manager) Raise(ctx context.Context, trigger Trigger) (*Alert, bool) {
	key := DedupKey(trigger.Source, trigger.Title)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if existing, ok := m.activeByKey[key]; ok && existing.Status == AlertActive && now.Sub(existing.CreatedAt) < m.cooldown {
		m.logger.WithFields(logrus.Fields{
			"dedup_key": key,
			"alert_id":  existing.ID,
		}).Debug("Trigger suppressed by cooldown")
		return m.copyOf(existing), false
	}

	// Cross-process cooldown mark. Fail-open on store errors: when the KV
	// store is down we raise a possibly-duplicate alert rather than drop one.
	if m.kv != nil {
		acquired, err := m.kv.SetNX(ctx, "alerts:cooldown:"+key, m.cooldown)
		if err != nil {
			m.logger.WithError(err).Warn("Cooldown store unavailable, raising without dedup mark")
		} else if !acquired {
			if existing, ok := m.activeByKey[key]; ok {
				return m.copyOf(existing), false
			}
			// Mark held by another instance; that instance owns the alert.
			m.logger.WithField("dedup_key", key).Debug("Cooldown mark held elsewhere, suppressing")
			return nil, false
		}
	}

	alert := &Alert{
		ID:        uuid.New().String(),
		DedupKey:  key,
		Level:     trigger.Level,
		Title:     trigger.Title,
		Message:   trigger.Message,
		Source:    trigger.Source,
		Status:    AlertActive,
		CreatedAt: now,
	}
	m.alerts[alert.ID] = alert
	m.activeByKey[key] = alert

	m.persist(ctx, alert, true)

	m.logger.WithFields(logrus.Fields{
		"alert_id": alert.ID,
		"level":    alert.Level,
		"source":   alert.Source,
		"title":    alert.Title,
	}).Warn("Alert raised")

	return m.copyOf(alert), true
}

// Acknowledge moves an active alert to acknowledged and records the actor.
// Re-acknowledging by the same actor is a no-op success.
func (m *Manager) Acknowledge(ctx context.Context, alertID, actor string) (*Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, ok := m.alerts[alertID]
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", alertID, apperrors.ErrNotFound)
	}

	switch alert.Status {
	case AlertActive:
		alert.Status = AlertAcknowledged
		alert.AcknowledgedBy = actor
	case AlertAcknowledged:
		if alert.AcknowledgedBy != actor {
			return nil, fmt.Errorf("alert %s already acknowledged by %s: %w", alertID, alert.AcknowledgedBy, apperrors.ErrInvalidTransition)
		}
		return m.copyOf(alert), nil
	default:
		return nil, fmt.Errorf("alert %s is %s: %w", alertID, alert.Status, apperrors.ErrInvalidTransition)
	}

	m.persist(ctx, alert, false)

	m.logger.WithFields(logrus.Fields{
		"alert_id": alertID,
		"actor":    actor,
	}).Info("Alert acknowledged")

	return m.copyOf(alert), nil
}

// Resolve moves an active or acknowledged alert to resolved. Resolved alerts
// are immutable; resolving twice is an InvalidTransition.
func (m *Manager) Resolve(ctx context.Context, alertID, actor string) (*Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, ok := m.alerts[alertID]
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", alertID, apperrors.ErrNotFound)
	}
	if alert.Status == AlertResolved {
		return nil, fmt.Errorf("alert %s already resolved: %w", alertID, apperrors.ErrInvalidTransition)
	}

	now := m.now()
	alert.Status = AlertResolved
	alert.ResolvedBy = actor
	alert.ResolvedAt = &now
	// A newer alert may have taken over the dedup slot after the cooldown
	// lapsed; only clear the slot if it still points at this alert.
	if current, ok := m.activeByKey[alert.DedupKey]; ok && current.ID == alert.ID {
		delete(m.activeByKey, alert.DedupKey)
	}

	m.persist(ctx, alert, false)

	m.logger.WithFields(logrus.Fields{
		"alert_id": alertID,
		"actor":    actor,
	}).Info("Alert resolved")

	return m.copyOf(alert), nil
}

// Get returns a copy of the alert, or NotFound.
func (m *Manager) Get(alertID string) (*Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	alert, ok := m.alerts[alertID]
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", alertID, apperrors.ErrNotFound)
	}
	return m.copyOf(alert), nil
}

// List returns all alerts, newest first.
func (m *Manager) List() []Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Alert, 0, len(m.alerts))
	for _, alert := range m.alerts {
		out = append(out, *alert)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Active returns alerts currently in the active state.
func (m *Manager) Active() []Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Alert
	for _, alert := range m.alerts {
		if alert.Status == AlertActive {
			out = append(out, *alert)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Prune drops resolved alerts older than the retention period and returns
// how many were removed.
func (m *Manager) Prune(retention time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-retention)
	removed := 0
	for id, alert := range m.alerts {
		if alert.Status == AlertResolved && alert.ResolvedAt != nil && alert.ResolvedAt.Before(cutoff) {
			delete(m.alerts, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.WithField("count", removed).Info("Pruned resolved alerts")
	}
	return removed
}

// Summarize aggregates alerts by level and status. Pure function.
func Summarize(alerts []Alert) AlertSummary {
	var s AlertSummary
	s.Total = len(alerts)
	for _, alert := range alerts {
		switch alert.Status {
		case AlertActive:
			s.Active++
		case AlertAcknowledged:
			s.Acknowledged++
		case AlertResolved:
			s.Resolved++
		}
		switch alert.Level {
		case LevelCritical:
			s.Critical++
		case LevelWarning:
			s.Warning++
		case LevelInfo:
			s.Info++
		}
	}
	return s
}

func (m *Manager) persist(ctx context.Context, alert *Alert, create bool) {
	if m.store == nil {
		return
	}
	var err error
	if create {
		err = m.store.Save(ctx, alert)
	} else {
		err = m.store.Update(ctx, alert)
	}
	if err != nil {
		m.logger.WithError(err).WithField("alert_id", alert.ID).Error("Failed to persist alert")
	}
}

func (m *Manager) copyOf(alert *Alert) *Alert {
	cp := *alert
	if alert.ResolvedAt != nil {
		t := *alert.ResolvedAt
		cp.ResolvedAt = &t
	}
	return &cp
}
