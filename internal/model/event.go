// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth    = "auth"
	EventCategoryContent = "content"
	EventCategoryUser    = "user"
	EventCategoryConfig  = "config"
	EventCategorySystem  = "system"
)

// Event is an audit log entry recorded for admin activity.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	AdminID   sql.NullInt64
	RequestID string
	Metadata  string // JSON object
	CreatedAt time.Time
}
