// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/model"
)

// ErrSettingsMissing is returned when the settings singleton was never seeded.
var ErrSettingsMissing = apperr.NotFound("Initial settings not found; run the seed step")

// SettingRepo persists the settings singleton.
type SettingRepo struct {
	conn
}

// Get returns the settings row.
func (r *SettingRepo) Get(ctx context.Context) (model.Setting, error) {
	var s model.Setting
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, icp, copyright, created_at, updated_at FROM settings ORDER BY id LIMIT 1`,
	).Scan(&s.ID, &s.Name, &s.ICP, &s.Copyright, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, ErrSettingsMissing
		}
		return s, fmt.Errorf("loading settings: %w", err)
	}
	return s, nil
}

// Update writes the mutable fields of s.
func (r *SettingRepo) Update(ctx context.Context, s *model.Setting) error {
	s.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE settings SET name = ?, icp = ?, copyright = ?, updated_at = ? WHERE id = ?`,
		s.Name, s.ICP, s.Copyright, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}
	return nil
}

// Init inserts the singleton row when none exists.
func (r *SettingRepo) Init(ctx context.Context, s model.Setting) (bool, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM settings").Scan(&n); err != nil {
		return false, fmt.Errorf("counting settings: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (name, icp, copyright, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		s.Name, s.ICP, s.Copyright, now, now)
	if err != nil {
		return false, fmt.Errorf("creating settings: %w", err)
	}
	return true, nil
}
