// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olegiv/ocourse/internal/apperr"
)

// Dependent names a child table whose rows block deletion of a parent.
type Dependent struct {
	Table   string
	Column  string
	Message string
}

// Guard deletes parent rows only when no dependents reference them. The
// existence check, the dependent counts and the DELETE share one transaction,
// and the schema's ON DELETE RESTRICT backs the check up.
type Guard struct {
	Table      string
	Entity     string
	Dependents []Dependent
}

// Delete removes the row with id from g.Table.
// It returns NotFound when the row is missing and Conflict when any dependent
// references it; in both cases nothing is deleted.
func (g Guard) Delete(ctx context.Context, c conn, id int64, before func(tx *sql.Tx) error) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, g.Table, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFoundf("%s ID %d not found", g.Entity, id)
		}

		if err := g.Check(ctx, tx, id); err != nil {
			return err
		}

		if before != nil {
			if err := before(tx); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM "+g.Table+" WHERE id = ?", id); err != nil {
			return translateErr(fmt.Errorf("deleting %s: %w", g.Table, err),
				g.Entity+" is still referenced and cannot be deleted")
		}
		return nil
	})
}

// Check returns a Conflict error for the first dependent that still
// references id.
func (g Guard) Check(ctx context.Context, q querier, id int64) error {
	for _, d := range g.Dependents {
		n, err := count(ctx, q, d.Table, d.Column, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict(d.Message, nil)
		}
	}
	return nil
}
