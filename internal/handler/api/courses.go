// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/olegiv/ocourse/internal/middleware"
	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/query"
	"github.com/olegiv/ocourse/internal/store"
)

// CreateCourseRequest represents the request body for creating a course.
// UserID defaults to the signed-in admin.
type CreateCourseRequest struct {
	CategoryID   int64  `json:"categoryId" validate:"required,gt=0"`
	UserID       int64  `json:"userId" validate:"omitempty,gt=0"`
	Name         string `json:"name" validate:"required,max=255"`
	Image        string `json:"image" validate:"omitempty,max=2048"`
	Recommended  bool   `json:"recommended"`
	Introductory bool   `json:"introductory"`
	Content      string `json:"content"`
}

// UpdateCourseRequest represents the request body for updating a course.
type UpdateCourseRequest struct {
	CategoryID   *int64  `json:"categoryId" validate:"omitnil,gt=0"`
	UserID       *int64  `json:"userId" validate:"omitnil,gt=0"`
	Name         *string `json:"name" validate:"omitnil,min=1,max=255"`
	Image        *string `json:"image" validate:"omitnil,max=2048"`
	Recommended  *bool   `json:"recommended"`
	Introductory *bool   `json:"introductory"`
	Content      *string `json:"content"`
}

// ListCourses handles GET /admin/courses
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	spec, err := query.Parse(r.URL.Query(), store.CourseSchema)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	courses, total, err := h.Courses.List(r.Context(), spec)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Courses retrieved successfully.", list(courses, spec, total))
}

// GetCourse handles GET /admin/courses/{id}
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	course, err := h.Courses.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Course retrieved successfully.", map[string]any{"course": course})
}

// CreateCourse handles POST /admin/courses
func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	if req.UserID == 0 {
		if p := middleware.GetPrincipal(r); p != nil {
			req.UserID = p.ID
		}
	}

	course := model.Course{
		CategoryID:   req.CategoryID,
		UserID:       req.UserID,
		Name:         req.Name,
		Image:        req.Image,
		Recommended:  req.Recommended,
		Introductory: req.Introductory,
		Content:      h.sanitize(req.Content),
	}
	if err := h.checkCourseParents(r.Context(), course); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Courses.Create(r.Context(), &course); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteCreated(w, "Course created successfully.", map[string]any{"course": course})
}

// UpdateCourse handles PUT /admin/courses/{id}
func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req UpdateCourseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	course, err := h.Courses.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.CategoryID != nil {
		course.CategoryID = *req.CategoryID
	}
	if req.UserID != nil {
		course.UserID = *req.UserID
	}
	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Image != nil {
		course.Image = *req.Image
	}
	if req.Recommended != nil {
		course.Recommended = *req.Recommended
	}
	if req.Introductory != nil {
		course.Introductory = *req.Introductory
	}
	if req.Content != nil {
		course.Content = h.sanitize(*req.Content)
	}

	if err := h.checkCourseParents(r.Context(), course); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Courses.Update(r.Context(), &course); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Course updated successfully.", map[string]any{"course": course})
}

// DeleteCourse handles DELETE /admin/courses/{id}
// Courses that still own chapters are rejected with 409.
func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Courses.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Course deleted successfully.", nil)
}

// checkCourseParents verifies the category and author exist.
func (h *Handler) checkCourseParents(ctx context.Context, c model.Course) error {
	ok, err := h.Categories.Exists(ctx, c.CategoryID)
	if err := requireParent(ok, err, "categoryId", "Category", c.CategoryID); err != nil {
		return err
	}
	ok, err = h.Users.Exists(ctx, c.UserID)
	return requireParent(ok, err, "userId", "User", c.UserID)
}
