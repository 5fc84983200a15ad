// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/query"
)

// CategorySchema lists the category filters and ordering.
var CategorySchema = query.Schema{
	Fields: []query.Field{
		{Param: "name", Column: "name", Op: query.OpContains},
		{Param: "rank", Column: "`rank`", Type: query.TypeInt},
	},
	Order: []string{"`rank` ASC", "id ASC"},
}

// categoryGuard blocks deleting categories that still have courses.
var categoryGuard = Guard{
	Table:  "categories",
	Entity: "Category",
	Dependents: []Dependent{
		{Table: "courses", Column: "category_id", Message: "Category has courses and cannot be deleted"},
	},
}

const categoryColumns = "id, name, `rank`, created_at, updated_at"

// CategoryRepo persists categories.
type CategoryRepo struct {
	conn
}

func scanCategory(row rowScanner) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Rank, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// List returns one page of categories matching spec and the total count.
func (r *CategoryRepo) List(ctx context.Context, spec query.Spec) ([]model.Category, int64, error) {
	return listAndCount(ctx, r.db, categoryColumns, "categories", spec, scanCategory)
}

// Get returns the category with id.
func (r *CategoryRepo) Get(ctx context.Context, id int64) (model.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
	if err != nil {
		return c, apperr.FromNoRows(err, fmt.Sprintf("Category ID %d not found", id))
	}
	return c, nil
}

// Exists reports whether a category with id exists.
func (r *CategoryRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, "categories", id)
}

// Create inserts c and sets its ID and timestamps.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, `rank`, created_at, updated_at) VALUES (?, ?, ?, ?)",
		c.Name, c.Rank, now, now)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading category id: %w", err)
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

// Update writes the mutable fields of c.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	c.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, `rank` = ?, updated_at = ? WHERE id = ?",
		c.Name, c.Rank, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	return nil
}

// Delete removes the category with id unless courses reference it.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	return categoryGuard.Delete(ctx, r.conn, id, nil)
}
