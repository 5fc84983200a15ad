// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/query"
	"github.com/olegiv/ocourse/internal/store"
)

// CreateCategoryRequest represents the request body for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Rank *int   `json:"rank" validate:"required,gte=0"`
}

// UpdateCategoryRequest represents the request body for updating a category.
type UpdateCategoryRequest struct {
	Name *string `json:"name" validate:"omitnil,min=1,max=255"`
	Rank *int    `json:"rank" validate:"omitnil,gte=0"`
}

// ListCategories handles GET /admin/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	spec, err := query.Parse(r.URL.Query(), store.CategorySchema)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	categories, total, err := h.Categories.List(r.Context(), spec)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Categories retrieved successfully.", list(categories, spec, total))
}

// GetCategory handles GET /admin/categories/{id}
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := h.Categories.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Category retrieved successfully.", map[string]any{"category": category})
}

// CreateCategory handles POST /admin/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	category := model.Category{Name: req.Name, Rank: *req.Rank}
	if err := h.Categories.Create(r.Context(), &category); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteCreated(w, "Category created successfully.", map[string]any{"category": category})
}

// UpdateCategory handles PUT /admin/categories/{id}
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req UpdateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := h.Categories.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Rank != nil {
		category.Rank = *req.Rank
	}

	if err := h.Categories.Update(r.Context(), &category); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Category updated successfully.", map[string]any{"category": category})
}

// DeleteCategory handles DELETE /admin/categories/{id}
// Categories that still own courses are rejected with 409.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Categories.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Category deleted successfully.", nil)
}
