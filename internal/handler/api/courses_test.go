// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/testutil"
)

func TestCourses_CreateDefaultsAuthorToPrincipal(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category("Backend", 1)

	rec := env.do(http.MethodPost, "/admin/courses", map[string]any{
		"categoryId":  cat.ID,
		"name":        "Go in production",
		"recommended": true,
		"content":     `<a href="https://go.dev" onclick="x()">go</a>`,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Course model.Course `json:"course"`
	}
	decodeData(t, rec, &created)
	assert.Equal(t, env.admin.ID, created.Course.UserID)
	assert.True(t, created.Course.Recommended)
	assert.Equal(t, 0, created.Course.ChaptersCount)
	assert.NotContains(t, created.Course.Content, "onclick")
	require.NotNil(t, created.Course.Category)
	assert.Equal(t, "Backend", created.Course.Category.Name)
	require.NotNil(t, created.Course.User)
	assert.Equal(t, "root", created.Course.User.Username)
}

func TestCourses_ParentsMustExist(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category("Backend", 1)

	rec := env.do(http.MethodPost, "/admin/courses", map[string]any{"categoryId": 42, "name": "Orphan"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Category ID 42 does not exist", decodeEnvelope(t, rec).Message)

	rec = env.do(http.MethodPost, "/admin/courses", map[string]any{"categoryId": cat.ID, "userId": 42, "name": "Orphan"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User ID 42 does not exist", decodeEnvelope(t, rec).Message)

	course := env.course(cat.ID, "Go basics")
	rec = env.do(http.MethodPut, fmt.Sprintf("/admin/courses/%d", course.ID), map[string]any{"categoryId": 42})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Category ID 42 does not exist", decodeEnvelope(t, rec).Message)
}

func TestCourses_ListFiltersAreCombined(t *testing.T) {
	env := newTestEnv(t)
	backend := env.category("Backend", 1)
	frontend := env.category("Frontend", 2)
	author := testutil.CreateUser(t, env.store, "teacher", model.RoleMember)

	for _, c := range []map[string]any{
		{"categoryId": backend.ID, "name": "Go basics", "recommended": true},
		{"categoryId": backend.ID, "name": "Go advanced", "recommended": false},
		{"categoryId": frontend.ID, "name": "Go for the web", "recommended": true},
		{"categoryId": backend.ID, "name": "Rust basics", "recommended": true, "userId": author.ID},
	} {
		rec := env.do(http.MethodPost, "/admin/courses", c)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.do(http.MethodGet, fmt.Sprintf("/admin/courses?categoryId=%d&recommended=true&name=Go", backend.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page listPayload[model.Course]
	decodeData(t, rec, &page)
	require.Len(t, page.List, 1)
	assert.Equal(t, "Go basics", page.List[0].Name)

	rec = env.do(http.MethodGet, fmt.Sprintf("/admin/courses?userId=%d", author.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &page)
	require.Len(t, page.List, 1)
	assert.Equal(t, "Rust basics", page.List[0].Name)

	rec = env.do(http.MethodGet, "/admin/courses?recommended=maybe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &page)
	assert.EqualValues(t, 4, page.Pagination.Total, "non-boolean flags are ignored")
}

func TestCourses_DeleteWithChaptersConflicts(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category("Backend", 1)
	course := env.course(cat.ID, "Go basics")
	ch := env.chapter(course.ID, "Intro", 1)

	path := fmt.Sprintf("/admin/courses/%d", course.ID)
	rec := env.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Course has chapters and cannot be deleted", decodeEnvelope(t, rec).Message)

	rec = env.do(http.MethodDelete, fmt.Sprintf("/admin/chapters/%d", ch.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
