// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/cache"
)

// maxLockoutDuration caps the exponential lockout backoff.
const maxLockoutDuration = 24 * time.Hour

// LoginProtection provides combined IP rate limiting and account lockout protection.
type LoginProtection struct {
	// IP-based rate limiting (uses limiterCache from api.go)
	ipLimiters *limiterCache[string]

	// Failed attempt counters, in memory or shared through Redis
	counters cache.Counter

	maxFailedAttempts int           // Lock account after this many failures
	lockoutDuration   time.Duration // Base lockout duration (doubles with each lockout)
	attemptWindow     time.Duration // Window to count failed attempts
	now               func() time.Time
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is requests per second per IP (default: 0.5 = 1 request per 2 seconds)
	IPRateLimit float64
	// IPBurst is the maximum burst size for IP rate limiting (default: 5)
	IPBurst int
	// MaxFailedAttempts before account lockout (default: 5)
	MaxFailedAttempts int
	// LockoutDuration is base lockout time, doubles with each lockout (default: 15 minutes)
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts (default: 15 minutes)
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,              // 1 request per 2 seconds
		IPBurst:           5,                // Allow burst of 5 requests
		MaxFailedAttempts: 5,                // Lock after 5 failed attempts
		LockoutDuration:   15 * time.Minute, // 15 minute base lockout
		AttemptWindow:     15 * time.Minute, // 15 minute window
	}
}

// NewLoginProtection creates a new login protection instance backed by counters.
func NewLoginProtection(cfg LoginProtectionConfig, counters cache.Counter) *LoginProtection {
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = 0.5
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = 5
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = 15 * time.Minute
	}

	return &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		counters:          counters,
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		now:               time.Now,
	}
}

func failKey(login string) string    { return "login:fail:" + normalizeLogin(login) }
func lockKey(login string) string    { return "login:lock:" + normalizeLogin(login) }
func lockoutsKey(login string) string { return "login:lockouts:" + normalizeLogin(login) }

func normalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

// CheckIPRateLimit checks if the IP is rate limited.
// Returns true if the request should be allowed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	return lp.ipLimiters.get(ip).Allow()
}

// IsAccountLocked checks if an account is currently locked.
// Returns (locked, remainingTime).
func (lp *LoginProtection) IsAccountLocked(ctx context.Context, login string) (bool, time.Duration, error) {
	remaining, err := lp.counters.TTL(ctx, lockKey(login))
	if err != nil {
		return false, 0, fmt.Errorf("reading lockout: %w", err)
	}
	return remaining > 0, remaining, nil
}

// RecordFailedAttempt records a failed login attempt.
// Returns (locked, lockDuration) if the account is now locked.
func (lp *LoginProtection) RecordFailedAttempt(ctx context.Context, login string) (bool, time.Duration, error) {
	count, err := lp.counters.Incr(ctx, failKey(login), lp.attemptWindow)
	if err != nil {
		return false, 0, fmt.Errorf("recording failed attempt: %w", err)
	}
	slog.DebugContext(ctx, "login attempt recorded", "login", login, "count", count)

	if count < int64(lp.maxFailedAttempts) {
		return false, 0, nil
	}

	// Lockout history survives a full day so repeat offenders back off further.
	lockouts, err := lp.counters.Incr(ctx, lockoutsKey(login), maxLockoutDuration)
	if err != nil {
		return false, 0, fmt.Errorf("recording lockout: %w", err)
	}

	lockDuration := lp.lockoutDuration
	for i := int64(1); i < lockouts; i++ {
		lockDuration *= 2
		if lockDuration > maxLockoutDuration {
			lockDuration = maxLockoutDuration
			break
		}
	}

	if err := lp.counters.SetUntil(ctx, lockKey(login), 1, lp.now().Add(lockDuration)); err != nil {
		return false, 0, fmt.Errorf("locking account: %w", err)
	}
	_ = lp.counters.Delete(ctx, failKey(login))

	slog.WarnContext(ctx, "account locked due to failed login attempts",
		"category", "auth",
		"login", login,
		"lockouts", lockouts,
		"duration", lockDuration,
	)

	return true, lockDuration, nil
}

// RecordSuccessfulLogin clears failed attempt tracking for an account.
func (lp *LoginProtection) RecordSuccessfulLogin(ctx context.Context, login string) {
	for _, key := range []string{failKey(login), lockKey(login), lockoutsKey(login)} {
		if err := lp.counters.Delete(ctx, key); err != nil {
			slog.WarnContext(ctx, "failed to clear login counter", "key", key, "error", err)
		}
	}
	slog.DebugContext(ctx, "login attempts cleared", "login", login)
}

// RemainingAttempts returns the number of remaining attempts before lockout.
func (lp *LoginProtection) RemainingAttempts(ctx context.Context, login string) (int, error) {
	count, err := lp.counters.Get(ctx, failKey(login))
	if err != nil {
		return 0, err
	}
	return max(lp.maxFailedAttempts-int(count), 0), nil
}

// cleanupLimiters drops the IP limiter table when it grows too large.
func (lp *LoginProtection) cleanupLimiters() {
	if lp.ipLimiters.clearIfExceeds(10000) {
		slog.Info("cleared IP rate limiters due to size")
	}
}

// RunCleanup clears oversized limiter tables every interval until ctx is done.
func (lp *LoginProtection) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lp.cleanupLimiters()
		}
	}
}

// Middleware returns HTTP middleware for IP rate limiting on sign-in.
// This should be applied to the sign-in POST route.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only rate limit POST requests
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)

			if !lp.CheckIPRateLimit(ip) {
				slog.WarnContext(r.Context(), "login rate limit exceeded", "category", "auth", "ip", ip)
				WriteAPIError(w, apperr.TooManyRequests("Too many sign-in attempts. Please wait a moment and try again."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr. chi's RealIP middleware has
// already replaced it with the proxy-reported address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
