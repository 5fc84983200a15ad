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

// ArticleSchema lists the article filters and ordering.
var ArticleSchema = query.Schema{
	Fields: []query.Field{
		{Param: "title", Column: "title", Op: query.OpContains},
	},
	Order: []string{"id ASC"},
}

const articleColumns = "id, title, content, created_at, updated_at"

// ArticleRepo persists articles.
type ArticleRepo struct {
	conn
}

func scanArticle(row rowScanner) (model.Article, error) {
	var a model.Article
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// List returns one page of articles matching spec and the total count.
func (r *ArticleRepo) List(ctx context.Context, spec query.Spec) ([]model.Article, int64, error) {
	return listAndCount(ctx, r.db, articleColumns, "articles", spec, scanArticle)
}

// Get returns the article with id.
func (r *ArticleRepo) Get(ctx context.Context, id int64) (model.Article, error) {
	a, err := scanArticle(r.db.QueryRowContext(ctx,
		"SELECT "+articleColumns+" FROM articles WHERE id = ?", id))
	if err != nil {
		return a, apperr.FromNoRows(err, fmt.Sprintf("Article ID %d not found", id))
	}
	return a, nil
}

// Create inserts a and sets its ID and timestamps.
func (r *ArticleRepo) Create(ctx context.Context, a *model.Article) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (title, content, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		a.Title, a.Content, now, now)
	if err != nil {
		return fmt.Errorf("creating article: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading article id: %w", err)
	}
	a.CreatedAt, a.UpdatedAt = now, now
	return nil
}

// Update writes the mutable fields of a.
func (r *ArticleRepo) Update(ctx context.Context, a *model.Article) error {
	a.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE articles SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		a.Title, a.Content, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("updating article: %w", err)
	}
	return nil
}

// Delete removes the article with id.
func (r *ArticleRepo) Delete(ctx context.Context, id int64) error {
	return Guard{Table: "articles", Entity: "Article"}.Delete(ctx, r.conn, id, nil)
}
