// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/ocourse/internal/model"
)

// EventRepo persists audit events.
type EventRepo struct {
	conn
}

// Create inserts an audit event.
func (r *EventRepo) Create(ctx context.Context, e model.Event) error {
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_events (level, category, message, admin_id, request_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Level, e.Category, e.Message, e.AdminID, e.RequestID, e.Metadata, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("creating event: %w", err)
	}
	return nil
}

// Recent returns the newest events, newest first.
func (r *EventRepo) Recent(ctx context.Context, limit int) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, level, category, message, admin_id, request_id, metadata, created_at
		FROM admin_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.AdminID,
			&e.RequestID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteBefore removes events created before cutoff and returns how many
// were deleted.
func (r *EventRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM admin_events WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning events: %w", err)
	}
	return res.RowsAffected()
}
