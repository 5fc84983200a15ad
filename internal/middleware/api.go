// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// rate limiting, and request context handling on the admin API.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/olegiv/ocourse/internal/apperr"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// errorEnvelope mirrors the API error body so middleware can reject a
// request before any handler runs.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteAPIError writes err as a JSON error envelope with the status of its kind.
func WriteAPIError(w http.ResponseWriter, err *apperr.Error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(err.Kind.Status())
	_ = json.NewEncoder(w).Encode(errorEnvelope{Success: false, Message: err.Message})
}

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// newLimiterCache creates a new limiter cache.
func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
// Returns true if the cache was cleared.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// size returns the number of tracked keys.
func (lc *limiterCache[K]) size() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.limiters)
}

// PrincipalRateLimit limits requests per authenticated admin with a token
// bucket. It must run after AdminAuth; requests without a principal pass.
func PrincipalRateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	cache := newLimiterCache[int64](rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipal(r)
			if principal == nil {
				next.ServeHTTP(w, r)
				return
			}

			if !cache.get(principal.ID).Allow() {
				slog.WarnContext(r.Context(), "admin rate limit exceeded", "admin_id", principal.ID)
				WriteAPIError(w, apperr.TooManyRequests("Rate limit exceeded. Please slow down."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
