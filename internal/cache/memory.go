// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCounter is an in-process Counter.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
	stopCh  chan struct{}
	closed  atomic.Bool
}

type memoryEntry struct {
	value     int64
	expiresAt time.Time
}

// NewMemoryCounter creates a MemoryCounter. When cleanupInterval is positive
// a goroutine periodically drops expired keys until Close is called.
func NewMemoryCounter(cleanupInterval time.Duration) *MemoryCounter {
	c := &MemoryCounter{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.cleanupLoop(cleanupInterval)
	}
	return c
}

// Incr implements Counter.
func (c *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = &memoryEntry{expiresAt: now.Add(window)}
		c.entries[key] = e
	}
	e.value++
	return e.value, nil
}

// Get implements Counter.
func (c *MemoryCounter) Get(_ context.Context, key string) (int64, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(key)
	if !ok {
		return 0, nil
	}
	return e.value, nil
}

// SetUntil implements Counter.
func (c *MemoryCounter) SetUntil(_ context.Context, key string, value int64, until time.Time) error {
	if c.closed.Load() {
		return ErrClosed
	}

	c.mu.Lock()
	c.entries[key] = &memoryEntry{value: value, expiresAt: until}
	c.mu.Unlock()
	return nil
}

// TTL implements Counter.
func (c *MemoryCounter) TTL(_ context.Context, key string) (time.Duration, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(key)
	if !ok {
		return 0, nil
	}
	return e.expiresAt.Sub(c.now()), nil
}

// Delete implements Counter.
func (c *MemoryCounter) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrClosed
	}

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine.
func (c *MemoryCounter) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	return nil
}

// Len returns the number of stored keys, including expired ones not yet swept.
func (c *MemoryCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// live returns the entry for key if it has not expired. c.mu must be held.
func (c *MemoryCounter) live(key string) (*memoryEntry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e, true
}

func (c *MemoryCounter) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// cleanupLoop periodically removes expired entries.
func (c *MemoryCounter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

var _ Counter = (*MemoryCounter)(nil)
