// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/query"
)

// Response is the success envelope.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorResponse is the error envelope. Errors carries field problems and,
// outside production, the underlying error text.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// ListResult is the data payload of every list endpoint.
type ListResult[T any] struct {
	List       []T              `json:"list"`
	Pagination query.Pagination `json:"pagination"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 success envelope. A nil data is sent as null.
func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// WriteCreated writes a 201 success envelope.
func WriteCreated(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// WriteError maps err to a status code and error envelope. It is the only
// place errors become HTTP responses. When production is false the wrapped
// cause is included in errors for debugging.
func WriteError(w http.ResponseWriter, r *http.Request, err error, production bool) {
	appErr := apperr.From(err)

	resp := ErrorResponse{
		Success: false,
		Message: appErr.Message,
		Errors:  append([]string(nil), appErr.Details...),
	}
	if !production && appErr.Err != nil {
		resp.Errors = append(resp.Errors, appErr.Err.Error())
	}

	status := appErr.Kind.Status()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	} else {
		slog.DebugContext(r.Context(), "request rejected",
			"path", r.URL.Path,
			"kind", appErr.Kind.String(),
			"message", appErr.Message,
		)
	}

	WriteJSON(w, status, resp)
}

// NotFound answers unknown routes with a 404 envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, apperr.NotFound("Route "+r.URL.Path+" not found"), true)
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Success: false,
		Message: "Method " + r.Method + " not allowed",
	})
}

// list builds a ListResult for a page of items.
func list[T any](items []T, spec query.Spec, total int64) ListResult[T] {
	if items == nil {
		items = []T{}
	}
	return ListResult[T]{List: items, Pagination: spec.Paginate(total)}
}
