// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/olegiv/ocourse/internal/apperr"
)

// RateLimit limits requests per client IP to requests per window. Requests
// over the limit receive a 429 error envelope.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			slog.WarnContext(r.Context(), "rate limit exceeded", "ip", clientIP(r), "path", r.URL.Path)
			WriteAPIError(w, apperr.TooManyRequests("Rate limit exceeded. Please slow down."))
		}),
	)
}
