// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/auth"
	"github.com/olegiv/ocourse/internal/middleware"
	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/query"
	"github.com/olegiv/ocourse/internal/store"
)

// CreateUserRequest represents the request body for creating a user.
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Username  string `json:"username" validate:"required,min=2,max=45"`
	Password  string `json:"password" validate:"required,min=6,max=128"`
	Nickname  string `json:"nickname" validate:"required,max=45"`
	Sex       *int   `json:"sex" validate:"required,oneof=0 1 2"`
	Role      *int   `json:"role" validate:"required,gte=0"`
	Company   string `json:"company" validate:"max=255"`
	Introduce string `json:"introduce"`
	Avatar    string `json:"avatar" validate:"omitempty,max=2048"`
}

// UpdateUserRequest represents the request body for updating a user.
// A password, when given, replaces the stored hash.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitnil,email,max=255"`
	Username  *string `json:"username" validate:"omitnil,min=2,max=45"`
	Password  *string `json:"password" validate:"omitnil,min=6,max=128"`
	Nickname  *string `json:"nickname" validate:"omitnil,min=1,max=45"`
	Sex       *int    `json:"sex" validate:"omitnil,oneof=0 1 2"`
	Role      *int    `json:"role" validate:"omitnil,gte=0"`
	Company   *string `json:"company" validate:"omitnil,max=255"`
	Introduce *string `json:"introduce"`
	Avatar    *string `json:"avatar" validate:"omitnil,max=2048"`
}

// ListUsers handles GET /admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	spec, err := query.Parse(r.URL.Query(), store.UserSchema)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	users, total, err := h.Users.List(r.Context(), spec)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Users retrieved successfully.", list(users, spec, total))
}

// GetUser handles GET /admin/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.Users.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "User retrieved successfully.", map[string]any{"user": user})
}

// Me handles GET /admin/users/me and returns the principal resolved by the
// auth gate.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)
	if principal == nil {
		h.fail(w, r, apperr.Unauthorized("Unauthorized", nil))
		return
	}

	WriteSuccess(w, "Current user retrieved successfully.", map[string]any{"user": principal})
}

// CreateUser handles POST /admin/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(w, r, apperr.Internal("Failed to hash password", err))
		return
	}

	user := model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     strings.TrimSpace(req.Username),
		Nickname:     req.Nickname,
		PasswordHash: hash,
		Avatar:       req.Avatar,
		Sex:          *req.Sex,
		Company:      req.Company,
		Introduce:    h.sanitize(req.Introduce),
		Role:         *req.Role,
	}
	if err := h.Users.Create(r.Context(), &user); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteCreated(w, "User created successfully.", map[string]any{"user": user})
}

// UpdateUser handles PUT /admin/users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.Users.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.fail(w, r, apperr.Internal("Failed to hash password", err))
			return
		}
		user.PasswordHash = hash
	}
	if req.Nickname != nil {
		user.Nickname = *req.Nickname
	}
	if req.Sex != nil {
		user.Sex = *req.Sex
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Company != nil {
		user.Company = *req.Company
	}
	if req.Introduce != nil {
		user.Introduce = h.sanitize(*req.Introduce)
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := h.Users.Update(r.Context(), &user); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "User updated successfully.", map[string]any{"user": user})
}

// DeleteUser handles DELETE /admin/users/{id}
// Users who authored courses are rejected with 409.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Users.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "User deleted successfully.", nil)
}
