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

	"github.com/olegiv/ocourse/internal/model"
)

func TestChapters_ListRequiresCourseID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/admin/chapters", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "courseId is required", decodeEnvelope(t, rec).Message)
}

func TestChapters_ListOrderedByRank(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category("Backend", 1)
	course := env.course(cat.ID, "Go basics")
	other := env.course(cat.ID, "Go advanced")
	env.chapter(course.ID, "Third", 3)
	env.chapter(course.ID, "First", 1)
	env.chapter(other.ID, "Elsewhere", 1)
	env.chapter(course.ID, "Second", 2)

	rec := env.do(http.MethodGet, fmt.Sprintf("/admin/chapters?courseId=%d", course.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page listPayload[model.Chapter]
	decodeData(t, rec, &page)
	require.Len(t, page.List, 3)
	assert.Equal(t, []string{"First", "Second", "Third"},
		[]string{page.List[0].Title, page.List[1].Title, page.List[2].Title})
	require.NotNil(t, page.List[0].Course)
	assert.Equal(t, "Go basics", page.List[0].Course.Name)
}

func TestChapters_MaintainCourseChapterCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cat := env.category("Backend", 1)
	first := env.course(cat.ID, "Go basics")
	second := env.course(cat.ID, "Go advanced")

	rec := env.do(http.MethodPost, "/admin/chapters", map[string]any{
		"courseId": first.ID,
		"title":    "Intro",
		"video":    "https://cdn.example.com/intro.mp4",
		"rank":     1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Chapter model.Chapter `json:"chapter"`
	}
	decodeData(t, rec, &created)

	c, err := env.store.Courses.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ChaptersCount)

	rec = env.do(http.MethodPut, fmt.Sprintf("/admin/chapters/%d", created.Chapter.ID), map[string]any{"courseId": second.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	c, err = env.store.Courses.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, c.ChaptersCount)
	c, err = env.store.Courses.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ChaptersCount)

	rec = env.do(http.MethodDelete, fmt.Sprintf("/admin/chapters/%d", created.Chapter.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c, err = env.store.Courses.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, c.ChaptersCount)
}

func TestChapters_CourseMustExist(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/admin/chapters", map[string]any{"courseId": 9, "title": "Lost"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Course ID 9 does not exist", decodeEnvelope(t, rec).Message)

	rec = env.do(http.MethodPost, "/admin/chapters", map[string]any{"title": "Lost"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "courseId is required", decodeEnvelope(t, rec).Message)
}
