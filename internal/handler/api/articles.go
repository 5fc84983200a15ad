// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/query"
	"github.com/olegiv/ocourse/internal/store"
)

// CreateArticleRequest represents the request body for creating an article.
type CreateArticleRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// UpdateArticleRequest represents the request body for updating an article.
// Absent fields keep their stored value.
type UpdateArticleRequest struct {
	Title   *string `json:"title" validate:"omitnil,min=1,max=255"`
	Content *string `json:"content" validate:"omitnil,min=1"`
}

// ListArticles handles GET /admin/articles
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	spec, err := query.Parse(r.URL.Query(), store.ArticleSchema)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	articles, total, err := h.Articles.List(r.Context(), spec)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Articles retrieved successfully.", list(articles, spec, total))
}

// GetArticle handles GET /admin/articles/{id}
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	article, err := h.Articles.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Article retrieved successfully.", map[string]any{"article": article})
}

// CreateArticle handles POST /admin/articles
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req CreateArticleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	article := model.Article{
		Title:   req.Title,
		Content: h.sanitize(req.Content),
	}
	if err := h.Articles.Create(r.Context(), &article); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteCreated(w, "Article created successfully.", map[string]any{"article": article})
}

// UpdateArticle handles PUT /admin/articles/{id}
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req UpdateArticleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	article, err := h.Articles.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.Title != nil {
		article.Title = *req.Title
	}
	if req.Content != nil {
		article.Content = h.sanitize(*req.Content)
	}

	if err := h.Articles.Update(r.Context(), &article); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Article updated successfully.", map[string]any{"article": article})
}

// DeleteArticle handles DELETE /admin/articles/{id}
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Articles.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Article deleted successfully.", nil)
}
