// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/query"
	"github.com/olegiv/ocourse/internal/store"
)

// CreateChapterRequest represents the request body for creating a chapter.
type CreateChapterRequest struct {
	CourseID int64  `json:"courseId" validate:"required,gt=0"`
	Title    string `json:"title" validate:"required,max=255"`
	Content  string `json:"content"`
	Video    string `json:"video" validate:"omitempty,max=2048"`
	Rank     int    `json:"rank" validate:"gte=0"`
}

// UpdateChapterRequest represents the request body for updating a chapter.
type UpdateChapterRequest struct {
	CourseID *int64  `json:"courseId" validate:"omitnil,gt=0"`
	Title    *string `json:"title" validate:"omitnil,min=1,max=255"`
	Content  *string `json:"content"`
	Video    *string `json:"video" validate:"omitnil,max=2048"`
	Rank     *int    `json:"rank" validate:"omitnil,gte=0"`
}

// ListChapters handles GET /admin/chapters?courseId=...
// Chapters are always listed within a course; courseId is mandatory.
func (h *Handler) ListChapters(w http.ResponseWriter, r *http.Request) {
	spec, err := query.Parse(r.URL.Query(), store.ChapterSchema)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	chapters, total, err := h.Chapters.List(r.Context(), spec)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Chapters retrieved successfully.", list(chapters, spec, total))
}

// GetChapter handles GET /admin/chapters/{id}
func (h *Handler) GetChapter(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	chapter, err := h.Chapters.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Chapter retrieved successfully.", map[string]any{"chapter": chapter})
}

// CreateChapter handles POST /admin/chapters
func (h *Handler) CreateChapter(w http.ResponseWriter, r *http.Request) {
	var req CreateChapterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.checkChapterCourse(r.Context(), req.CourseID); err != nil {
		h.fail(w, r, err)
		return
	}

	chapter := model.Chapter{
		CourseID: req.CourseID,
		Title:    req.Title,
		Content:  h.sanitize(req.Content),
		Video:    req.Video,
		Rank:     req.Rank,
	}
	if err := h.Chapters.Create(r.Context(), &chapter); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteCreated(w, "Chapter created successfully.", map[string]any{"chapter": chapter})
}

// UpdateChapter handles PUT /admin/chapters/{id}
func (h *Handler) UpdateChapter(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req UpdateChapterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	chapter, err := h.Chapters.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.CourseID != nil && *req.CourseID != chapter.CourseID {
		if err := h.checkChapterCourse(r.Context(), *req.CourseID); err != nil {
			h.fail(w, r, err)
			return
		}
		chapter.CourseID = *req.CourseID
	}
	if req.Title != nil {
		chapter.Title = *req.Title
	}
	if req.Content != nil {
		chapter.Content = h.sanitize(*req.Content)
	}
	if req.Video != nil {
		chapter.Video = *req.Video
	}
	if req.Rank != nil {
		chapter.Rank = *req.Rank
	}

	if err := h.Chapters.Update(r.Context(), &chapter); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Chapter updated successfully.", map[string]any{"chapter": chapter})
}

// DeleteChapter handles DELETE /admin/chapters/{id}
func (h *Handler) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Chapters.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Chapter deleted successfully.", nil)
}

func (h *Handler) checkChapterCourse(ctx context.Context, courseID int64) error {
	ok, err := h.Courses.Exists(ctx, courseID)
	return requireParent(ok, err, "courseId", "Course", courseID)
}
