// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocourse/internal/auth"
	"github.com/olegiv/ocourse/internal/cache"
	"github.com/olegiv/ocourse/internal/middleware"
	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/store"
	"github.com/olegiv/ocourse/internal/testutil"
)

const testSecret = "test-secret-key-for-handler-tests-0123456789"

// testEnv wires a Handler to an in-memory store behind the real auth gate.
type testEnv struct {
	t       *testing.T
	store   *store.Store
	handler *Handler
	router  http.Handler
	tokens  *auth.TokenIssuer
	logins  *middleware.LoginProtection
	admin   model.User
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := testutil.TestStore(t)
	tokens := auth.NewTokenIssuer(testSecret, time.Hour, "ocourse-test")

	counters := cache.NewMemoryCounter(time.Minute)
	t.Cleanup(func() { _ = counters.Close() })
	logins := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
	}, counters)

	h := NewHandler(Deps{
		Articles:   st.Articles,
		Categories: st.Categories,
		Courses:    st.Courses,
		Chapters:   st.Chapters,
		Users:      st.Users,
		Settings:   st.Settings,
		Tokens:     tokens,
		Logins:     logins,
	})

	gate := middleware.AdminAuth(middleware.AdminAuthConfig{
		Tokens: tokens,
		Users:  st.Users,
		Role:   model.RoleAdmin,
	})

	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.Mount("/admin", h.Routes(gate, nil))

	admin := testutil.CreateUser(t, st, "root", model.RoleAdmin)
	token, _, err := tokens.Issue(admin.ID)
	require.NoError(t, err)

	return &testEnv{
		t:       t,
		store:   st,
		handler: h,
		router:  r,
		tokens:  tokens,
		logins:  logins,
		admin:   admin,
		token:   token,
	}
}

// do sends a request as the admin.
func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.doWithToken(method, path, body, e.token)
}

func (e *testEnv) doWithToken(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.DefaultTokenHeader, token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) category(name string, rank int) model.Category {
	e.t.Helper()
	c := model.Category{Name: name, Rank: rank}
	require.NoError(e.t, e.store.Categories.Create(context.Background(), &c))
	return c
}

func (e *testEnv) course(categoryID int64, name string) model.Course {
	e.t.Helper()
	c := model.Course{CategoryID: categoryID, UserID: e.admin.ID, Name: name}
	require.NoError(e.t, e.store.Courses.Create(context.Background(), &c))
	return c
}

func (e *testEnv) chapter(courseID int64, title string, rank int) model.Chapter {
	e.t.Helper()
	ch := model.Chapter{CourseID: courseID, Title: title, Rank: rank}
	require.NoError(e.t, e.store.Chapters.Create(context.Background(), &ch))
	return ch
}

// envelope mirrors both the success and error response shapes.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"),
		"unexpected content type %q", rec.Header().Get("Content-Type"))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// decodeData unmarshals the data member of a success envelope into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst), string(env.Data))
}

type listPayload[T any] struct {
	List       []T `json:"list"`
	Pagination struct {
		PageNum   int   `json:"pageNum"`
		PageSize  int   `json:"pageSize"`
		Total     int64 `json:"total"`
		TotalPage int   `json:"totalPage"`
	} `json:"pagination"`
}

// withURLParam attaches a chi route context carrying id to r.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
