// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/mileusna/useragent"

	"github.com/olegiv/ocourse/internal/logging"
)

// RequestContext copies the chi request id into the logging context so every
// record written during the request carries it.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			r = r.WithContext(logging.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// clientSummary is the parsed user agent attached to access log records.
type clientSummary struct {
	Browser    string
	OS         string
	DeviceType string
}

func summarizeUserAgent(uaString string) clientSummary {
	ua := useragent.Parse(uaString)

	result := clientSummary{
		Browser: ua.Name,
		OS:      ua.OS,
	}

	if result.Browser == "" {
		result.Browser = "Unknown"
	}
	if result.OS == "" {
		result.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		result.DeviceType = "mobile"
	case ua.Tablet:
		result.DeviceType = "tablet"
	case ua.Bot:
		result.DeviceType = "bot"
	default:
		result.DeviceType = "desktop"
	}

	return result
}

// AccessLog logs one line per request with status, duration and client.
func AccessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			client := summarizeUserAgent(r.UserAgent())

			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"ip", clientIP(r),
				"browser", client.Browser,
				"os", client.OS,
				"device", client.DeviceType,
			)
		})
	}
}
