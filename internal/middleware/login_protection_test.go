// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocourse/internal/cache"
)

// testLoginProtectionConfig returns a config suitable for fast testing.
func testLoginProtectionConfig(maxAttempts int, lockoutDuration, attemptWindow time.Duration) LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       10,  // High rate for testing
		IPBurst:           100, // High burst for testing
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockoutDuration,
		AttemptWindow:     attemptWindow,
	}
}

func newMemoryProtection(t *testing.T, cfg LoginProtectionConfig) *LoginProtection {
	t.Helper()
	counters := cache.NewMemoryCounter(0)
	t.Cleanup(func() { _ = counters.Close() })
	return NewLoginProtection(cfg, counters)
}

func newRedisProtection(t *testing.T, cfg LoginProtectionConfig) (*LoginProtection, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	counters, err := cache.NewRedisCounterFromURL("redis://"+mr.Addr(), "test:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = counters.Close() })
	return NewLoginProtection(cfg, counters), mr
}

func TestDefaultLoginProtectionConfig(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()

	assert.Equal(t, 0.5, cfg.IPRateLimit)
	assert.Equal(t, 5, cfg.IPBurst)
	assert.Equal(t, 5, cfg.MaxFailedAttempts)
	assert.Equal(t, 15*time.Minute, cfg.LockoutDuration)
	assert.Equal(t, 15*time.Minute, cfg.AttemptWindow)
}

func TestNewLoginProtectionDefaultValues(t *testing.T) {
	lp := newMemoryProtection(t, LoginProtectionConfig{})

	assert.Equal(t, 5, lp.maxFailedAttempts)
	assert.Equal(t, 15*time.Minute, lp.lockoutDuration)
	assert.Equal(t, 15*time.Minute, lp.attemptWindow)
}

func TestLoginProtectionLocksAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	lp := newMemoryProtection(t, testLoginProtectionConfig(3, time.Minute, time.Hour))
	login := "Admin@Example.com"

	locked, _, err := lp.IsAccountLocked(ctx, login)
	require.NoError(t, err)
	assert.False(t, locked, "account should not be locked initially")

	for i := 1; i < 3; i++ {
		locked, _, err = lp.RecordFailedAttempt(ctx, login)
		require.NoError(t, err)
		assert.False(t, locked, "attempt %d should not lock", i)
	}

	remaining, err := lp.RemainingAttempts(ctx, login)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	locked, dur, err := lp.RecordFailedAttempt(ctx, login)
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Equal(t, time.Minute, dur)

	// Lookups are case-insensitive on the login.
	locked, left, err := lp.IsAccountLocked(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Greater(t, left, time.Duration(0))
	assert.LessOrEqual(t, left, time.Minute)

	remaining, err = lp.RemainingAttempts(ctx, login)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining, "failure counter resets once locked")
}

func TestLoginProtectionSuccessfulLoginClears(t *testing.T) {
	ctx := context.Background()
	lp := newMemoryProtection(t, testLoginProtectionConfig(2, time.Minute, time.Hour))

	_, _, _ = lp.RecordFailedAttempt(ctx, "root")
	locked, _, err := lp.RecordFailedAttempt(ctx, "root")
	require.NoError(t, err)
	require.True(t, locked)

	lp.RecordSuccessfulLogin(ctx, "root")

	locked, _, err = lp.IsAccountLocked(ctx, "root")
	require.NoError(t, err)
	assert.False(t, locked)

	remaining, err := lp.RemainingAttempts(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestLoginProtectionExponentialBackoff(t *testing.T) {
	ctx := context.Background()
	lp, mr := newRedisProtection(t, testLoginProtectionConfig(2, time.Minute, time.Hour))

	lockOnce := func() time.Duration {
		t.Helper()
		_, _, err := lp.RecordFailedAttempt(ctx, "root")
		require.NoError(t, err)
		locked, dur, err := lp.RecordFailedAttempt(ctx, "root")
		require.NoError(t, err)
		require.True(t, locked)
		return dur
	}

	assert.Equal(t, time.Minute, lockOnce())

	mr.FastForward(2 * time.Minute)
	locked, _, err := lp.IsAccountLocked(ctx, "root")
	require.NoError(t, err)
	assert.False(t, locked, "lock should expire")

	assert.Equal(t, 2*time.Minute, lockOnce())
	assert.Equal(t, 4*time.Minute, lockOnce())
}

func TestLoginProtectionAttemptWindowExpires(t *testing.T) {
	ctx := context.Background()
	lp, mr := newRedisProtection(t, testLoginProtectionConfig(2, time.Minute, 10*time.Minute))

	locked, _, err := lp.RecordFailedAttempt(ctx, "root")
	require.NoError(t, err)
	require.False(t, locked)

	mr.FastForward(11 * time.Minute)

	locked, _, err = lp.RecordFailedAttempt(ctx, "root")
	require.NoError(t, err)
	assert.False(t, locked, "first failure should have aged out")
}

func TestLoginProtectionBackoffIsCapped(t *testing.T) {
	ctx := context.Background()
	lp := newMemoryProtection(t, testLoginProtectionConfig(1, 10*time.Hour, time.Hour))

	var last time.Duration
	for range 4 {
		_, last, _ = lp.RecordFailedAttempt(ctx, "root")
	}
	assert.Equal(t, maxLockoutDuration, last)
}

func TestLoginProtectionMiddleware(t *testing.T) {
	cfg := testLoginProtectionConfig(5, time.Minute, time.Hour)
	cfg.IPRateLimit = 0.001
	cfg.IPBurst = 2
	lp := newMemoryProtection(t, cfg)

	h := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(method string) int {
		req := httptest.NewRequest(method, "/admin/auth/sign_in", nil)
		req.RemoteAddr = "192.0.2.1:4321"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send(http.MethodPost))
	assert.Equal(t, http.StatusOK, send(http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodPost))
	assert.Equal(t, http.StatusOK, send(http.MethodGet), "non-POST requests are not limited")
}

func TestLoginProtectionCleanupLimiters(t *testing.T) {
	lp := newMemoryProtection(t, testLoginProtectionConfig(5, time.Minute, time.Hour))
	for i := range 10001 {
		lp.CheckIPRateLimit(string(rune(i)))
	}
	lp.cleanupLimiters()
	assert.Equal(t, 0, lp.ipLimiters.size())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:1234"
	assert.Equal(t, "198.51.100.7", clientIP(req))

	req.RemoteAddr = "198.51.100.7"
	assert.Equal(t, "198.51.100.7", clientIP(req))
}
