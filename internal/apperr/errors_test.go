// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusUnauthorized},
		{KindBadRequest, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindTooManyRequests, http.StatusTooManyRequests},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Status())
		})
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("deleting category: %w", Conflict("Category has courses", nil))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestErrorsIsSentinel(t *testing.T) {
	err := fmt.Errorf("get: %w", NotFound("Article 3 not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestFromNoRows(t *testing.T) {
	err := FromNoRows(fmt.Errorf("scan: %w", sql.ErrNoRows), "Course 9 not found")

	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, KindNotFound, appErr.Kind)
	assert.Equal(t, "Course 9 not found", appErr.Message)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	other := errors.New("disk I/O error")
	assert.Same(t, other, FromNoRows(other, "ignored"))
}

func TestFromWrapsUnknown(t *testing.T) {
	cause := errors.New("connection reset")
	e := From(cause)
	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, "Internal server error", e.Message)
	assert.ErrorIs(t, e, cause)

	known := Invalid("title", "title is required")
	assert.Same(t, known, From(known))
}

func TestValidation(t *testing.T) {
	e := Validation([]string{"title is required", "content is required"})
	assert.Equal(t, KindBadRequest, e.Kind)
	assert.Equal(t, "title is required", e.Message)
	assert.Len(t, e.Details, 2)

	empty := Validation(nil)
	assert.Equal(t, KindBadRequest, empty.Kind)
	assert.Equal(t, "Invalid request", empty.Message)
}
