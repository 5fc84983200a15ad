// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that tags records with request
// context and copies WARN and ERROR records into the admin audit log.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/ocourse/internal/model"
)

// EventSink persists audit events.
type EventSink interface {
	Create(ctx context.Context, e model.Event) error
}

// EventLogHandler is a slog.Handler that wraps another handler, adds
// request_id and admin_id attributes from the context, and writes records at
// or above level to an EventSink.
type EventLogHandler struct {
	inner slog.Handler
	sink  EventSink
	level slog.Level
}

// NewEventLogHandler creates a handler forwarding WARN and above to sink.
// A nil sink only enriches records.
func NewEventLogHandler(inner slog.Handler, sink EventSink) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, sink, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, sink EventSink, level slog.Level) *EventLogHandler {
	return &EventLogHandler{inner: inner, sink: sink, level: level}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id := RequestID(ctx); id != "" {
			r.AddAttrs(slog.String("request_id", id))
		}
		if id, ok := AdminID(ctx); ok {
			r.AddAttrs(slog.Int64("admin_id", id))
		}
	}

	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if h.sink != nil && r.Level >= h.level {
		h.writeEvent(ctx, r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithAttrs(attrs), sink: h.sink, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithGroup(name), sink: h.sink, level: h.level}
}

func (h *EventLogHandler) writeEvent(ctx context.Context, r slog.Record) {
	e := model.Event{
		Level:     eventLevel(r.Level),
		Category:  eventCategory(r),
		Message:   r.Message,
		Metadata:  eventMetadata(r),
		CreatedAt: r.Time,
	}
	if ctx != nil {
		e.RequestID = RequestID(ctx)
		if id, ok := AdminID(ctx); ok {
			e.AdminID = sql.NullInt64{Int64: id, Valid: true}
		}
	}

	// The event must be stored even if the request context was cancelled.
	writeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = h.sink.Create(writeCtx, e)
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// eventCategory uses an explicit "category" attribute or infers one from
// the message.
func eventCategory(r slog.Record) string {
	var category string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})
	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "token"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "user"):
		return model.EventCategoryUser
	case strings.Contains(msg, "setting") || strings.Contains(msg, "config"):
		return model.EventCategoryConfig
	case strings.Contains(msg, "article") || strings.Contains(msg, "course") ||
		strings.Contains(msg, "chapter") || strings.Contains(msg, "category"):
		return model.EventCategoryContent
	default:
		return model.EventCategorySystem
	}
}

func eventMetadata(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}

	m := make(map[string]string, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != "category" {
			m[a.Key] = a.Value.String()
		}
		return true
	})

	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}
