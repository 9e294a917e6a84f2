// Package ratelimit implements fixed-window request counting over a shared
// KV store with atomic increment-and-expire.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opsdeck/opsdeck-backend-go/internal/core/kvstore"
)

// FailMode decides the outcome when the backing store is unreachable.
type FailMode int

const (
	// FailOpen allows the request. Use for low-risk read paths where
	// availability beats strictness.
	FailOpen FailMode = iota
	// FailClosed denies the request. Use for safety-relevant paths such as
	// rate limiting on auth or mutating endpoints.
	FailClosed
)

// defaultWindow replaces a non-positive window so a bad caller degrades to
// per-minute limiting instead of dividing by zero.
const defaultWindow = time.Minute

// Decision is the outcome of a limit check.
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

// Limiter counts requests per identifier in fixed windows. The window index
// is floor(now/window), so all callers land in the same buckets regardless
// of when they start.
type Limiter struct {
	store    kvstore.Store
	failMode FailMode
	logger   *logrus.Logger
	now      func() time.Time
}

func New(store kvstore.Store, failMode FailMode, logger *logrus.Logger) *Limiter {
	return &Limiter{
		store:    store,
		failMode: failMode,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckLimit counts one request for the identifier and reports whether it is
// within maxRequests for the current window. The store increment and its TTL
// are one atomic step, so a counter can never be incremented without gaining
// an expiry.
func (l *Limiter) CheckLimit(ctx context.Context, identifier string, window time.Duration, maxRequests int) Decision {
	if window <= 0 {
		window = defaultWindow
	}
	windowIndex := l.now().UnixMilli() / window.Milliseconds()
	resetTime := time.UnixMilli((windowIndex + 1) * window.Milliseconds())
	key := fmt.Sprintf("ratelimit:%s:%d", identifier, windowIndex)

	count, err := l.store.IncrWithTTL(ctx, key, window)
	if err != nil {
		allowed := l.failMode == FailOpen
		l.logger.WithError(err).WithFields(logrus.Fields{
			"identifier": identifier,
			"allowed":    allowed,
		}).Warn("Rate limit store unavailable")
		return Decision{Allowed: allowed, Remaining: 0, ResetTime: resetTime}
	}

	remaining := maxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= int64(maxRequests),
		Remaining: remaining,
		ResetTime: resetTime,
	}
}
