// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocourse/internal/auth"
	"github.com/olegiv/ocourse/internal/model"
)

func TestUsers_CreateHashesPassword(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/admin/users", map[string]any{
		"email":    "Ada@Example.com",
		"username": "ada",
		"password": "lovelace-1815",
		"nickname": "Ada",
		"sex":      1,
		"role":     0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "lovelace-1815")
	assert.NotContains(t, rec.Body.String(), "password")

	var created struct {
		User model.User `json:"user"`
	}
	decodeData(t, rec, &created)
	assert.Equal(t, "ada@example.com", created.User.Email)

	stored, err := env.store.Users.Get(context.Background(), created.User.ID)
	require.NoError(t, err)
	ok, err := auth.CheckPassword("lovelace-1815", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUsers_CreateValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/admin/users", map[string]any{
		"email":    "not-an-email",
		"username": "ada",
		"password": "123",
		"nickname": "Ada",
		"sex":      7,
		"role":     0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeEnvelope(t, rec)
	assert.Equal(t, "email must be a valid email address", got.Message)
	assert.ElementsMatch(t, []string{
		"email must be a valid email address",
		"password must be at least 6 characters",
		"sex has an invalid value",
	}, got.Errors)

	rec = env.do(http.MethodPost, "/admin/users", map[string]any{
		"email":    "root@example.com",
		"username": "another",
		"password": "secret-pass",
		"nickname": "Dup",
		"sex":      0,
		"role":     0,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Record already exists", decodeEnvelope(t, rec).Message)
}

func TestUsers_UpdateKeepsPasswordUnlessGiven(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	path := fmt.Sprintf("/admin/users/%d", env.admin.ID)
	rec := env.do(http.MethodPut, path, map[string]any{"nickname": "Root", "company": "oCourse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := env.store.Users.Get(ctx, env.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Root", stored.Nickname)
	assert.Equal(t, "oCourse", stored.Company)
	assert.Equal(t, env.admin.PasswordHash, stored.PasswordHash)

	rec = env.do(http.MethodPut, path, map[string]any{"password": "brand-new-pass"})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err = env.store.Users.Get(ctx, env.admin.ID)
	require.NoError(t, err)
	ok, err := auth.CheckPassword("brand-new-pass", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUsers_Me(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/admin/users/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		User model.User `json:"user"`
	}
	decodeData(t, rec, &got)
	assert.Equal(t, env.admin.ID, got.User.ID)
	assert.Equal(t, "root", got.User.Username)
}

func TestUsers_DeleteAuthorConflicts(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category("Backend", 1)
	env.course(cat.ID, "Go basics")

	rec := env.do(http.MethodDelete, fmt.Sprintf("/admin/users/%d", env.admin.ID), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User has authored courses and cannot be deleted", decodeEnvelope(t, rec).Message)
}

func TestUsers_ListFilters(t *testing.T) {
	env := newTestEnv(t)
	for _, u := range []map[string]any{
		{"email": "a@example.com", "username": "alpha", "password": "secret-1", "nickname": "Alpha Dev", "sex": 0, "role": 0},
		{"email": "b@example.com", "username": "bravo", "password": "secret-2", "nickname": "Bravo Dev", "sex": 1, "role": 100},
	} {
		rec := env.do(http.MethodPost, "/admin/users", u)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.do(http.MethodGet, "/admin/users?nickname=dev&role=100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page listPayload[model.User]
	decodeData(t, rec, &page)
	require.Len(t, page.List, 1)
	assert.Equal(t, "bravo", page.List[0].Username)

	rec = env.do(http.MethodGet, "/admin/users?email=a@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &page)
	require.Len(t, page.List, 1)
	assert.Equal(t, "alpha", page.List[0].Username)
}
