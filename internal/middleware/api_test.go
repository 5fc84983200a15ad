// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/model"
)

func TestWriteAPIError(t *testing.T) {
	tests := []struct {
		err        *apperr.Error
		wantStatus int
	}{
		{apperr.Unauthorized("Unauthorized", nil), http.StatusUnauthorized},
		{apperr.Forbidden("Unauthorized"), http.StatusUnauthorized},
		{apperr.TooManyRequests("slow down"), http.StatusTooManyRequests},
		{apperr.Internal("Internal server error", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteAPIError(rr, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.err.Message, body["message"])
			assert.NotContains(t, body, "errors")
		})
	}
}

func TestLimiterCacheReturnsSameLimiter(t *testing.T) {
	lc := newLimiterCache[string](1, 1)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lc.get("k")
		}()
	}
	wg.Wait()

	assert.Same(t, lc.get("k"), lc.get("k"))
	assert.Equal(t, 1, lc.size())
	assert.False(t, lc.clearIfExceeds(1))
	lc.get("other")
	assert.True(t, lc.clearIfExceeds(1))
	assert.Equal(t, 0, lc.size())
}

func TestPrincipalRateLimit(t *testing.T) {
	h := PrincipalRateLimit(0.001, 2)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(p *model.User) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if p != nil {
			req = req.WithContext(WithPrincipal(req.Context(), *p))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	admin := &model.User{ID: 1, Role: model.RoleAdmin}
	other := &model.User{ID: 2, Role: model.RoleAdmin}

	assert.Equal(t, http.StatusNoContent, send(admin))
	assert.Equal(t, http.StatusNoContent, send(admin))
	assert.Equal(t, http.StatusTooManyRequests, send(admin))
	assert.Equal(t, http.StatusNoContent, send(other), "buckets are per principal")
	assert.Equal(t, http.StatusNoContent, send(nil), "anonymous requests pass through")
}
