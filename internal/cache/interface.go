// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides expiring counters used for login throttling.
// Counters live in process memory or, when configured, in Redis so that
// several instances share one view of failed attempts.
package cache

import (
	"context"
	"time"
)

// Counter is an expiring integer store. All implementations must be
// thread-safe.
type Counter interface {
	// Incr adds one to key and returns the new value. The window starts with
	// the first increment and is not extended by later ones.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)

	// Get returns the current value of key, or 0 when absent or expired.
	Get(ctx context.Context, key string) (int64, error)

	// SetUntil stores value under key until the given time.
	SetUntil(ctx context.Context, key string, value int64, until time.Time) error

	// TTL returns the remaining lifetime of key, or 0 when absent.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the counter.
	Close() error
}

// Error represents an error type for counter operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

// ErrClosed indicates the counter has been closed.
const ErrClosed Error = "cache closed"
