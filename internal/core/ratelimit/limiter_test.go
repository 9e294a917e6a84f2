package ratelimit

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/opsdeck/opsdeck-backend-go/internal/core/kvstore"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type failingStore struct{}

func (failingStore) IncrWithTTL(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection refused")
}

func (failingStore) SetNX(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func TestCheckLimitFixedWindow(t *testing.T) {
	l := New(kvstore.NewMemory(), FailClosed, testLogger())
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	window := time.Minute
	for i := 1; i <= 5; i++ {
		d := l.CheckLimit(context.Background(), "client-1", window, 5)
		assert.True(t, d.Allowed, "request %d should be allowed", i)
		assert.Equal(t, 5-i, d.Remaining)
	}

	// Sixth call in the same window is denied.
	d := l.CheckLimit(context.Background(), "client-1", window, 5)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	// Other identifiers are unaffected.
	other := l.CheckLimit(context.Background(), "client-2", window, 5)
	assert.True(t, other.Allowed)
	assert.Equal(t, 4, other.Remaining)
}

func TestCheckLimitWindowReset(t *testing.T) {
	l := New(kvstore.NewMemory(), FailClosed, testLogger())
	base := time.Date(2025, 6, 15, 12, 0, 30, 0, time.UTC)
	l.now = func() time.Time { return base }

	window := time.Minute
	for i := 0; i < 6; i++ {
		l.CheckLimit(context.Background(), "client-1", window, 5)
	}
	assert.False(t, l.CheckLimit(context.Background(), "client-1", window, 5).Allowed)

	// Next window: one increment leaves maxRequests-1 remaining.
	base = base.Add(window)
	d := l.CheckLimit(context.Background(), "client-1", window, 5)
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining)
}

func TestCheckLimitResetTime(t *testing.T) {
	l := New(kvstore.NewMemory(), FailClosed, testLogger())
	base := time.Date(2025, 6, 15, 12, 0, 17, 0, time.UTC)
	l.now = func() time.Time { return base }

	d := l.CheckLimit(context.Background(), "client-1", time.Minute, 5)

	// Reset is the start of the next fixed window, not now+window.
	want := time.Date(2025, 6, 15, 12, 1, 0, 0, time.UTC)
	assert.Equal(t, want.Unix(), d.ResetTime.Unix())
}

func TestCheckLimitNonPositiveWindow(t *testing.T) {
	l := New(kvstore.NewMemory(), FailClosed, testLogger())
	base := time.Date(2025, 6, 15, 12, 0, 17, 0, time.UTC)
	l.now = func() time.Time { return base }

	// A zero or negative window must not panic; it degrades to the default.
	for _, window := range []time.Duration{0, -time.Second} {
		d := l.CheckLimit(context.Background(), "client-1", window, 5)
		assert.True(t, d.Allowed)
		assert.True(t, d.ResetTime.After(base))
	}
}

func TestCheckLimitStoreFailure(t *testing.T) {
	open := New(failingStore{}, FailOpen, testLogger())
	closed := New(failingStore{}, FailClosed, testLogger())

	assert.True(t, open.CheckLimit(context.Background(), "client-1", time.Minute, 5).Allowed)
	assert.False(t, closed.CheckLimit(context.Background(), "client-1", time.Minute, 5).Allowed)
}
