// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/unrolled/secure"

	"github.com/olegiv/ocourse/internal/apperr"
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment disables HSTS and the HTTPS redirect.
	IsDevelopment bool

	// HSTSMaxAge is the max-age for Strict-Transport-Security header in seconds.
	// Default is 31536000 (1 year). Set to 0 to disable HSTS.
	HSTSMaxAge int64

	// AllowedHosts restricts the Host header when non-empty.
	AllowedHosts []string
}

// DefaultSecurityHeadersConfig returns a SecurityHeadersConfig with sensible defaults.
func DefaultSecurityHeadersConfig(isDev bool) SecurityHeadersConfig {
	return SecurityHeadersConfig{
		IsDevelopment: isDev,
		HSTSMaxAge:    31536000, // 1 year
	}
}

// secureOptions builds the unrolled/secure options for a JSON-only API.
func secureOptions(cfg SecurityHeadersConfig) secure.Options {
	return secure.Options{
		AllowedHosts:          cfg.AllowedHosts,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		PermissionsPolicy:     "camera=(), geolocation=(), microphone=(), payment=(), usb=()",
		STSSeconds:            cfg.HSTSMaxAge,
		STSIncludeSubdomains:  true,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         cfg.IsDevelopment,
	}
}

// SecurityHeaders returns a middleware that adds security headers to responses.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	sm := secure.New(secureOptions(cfg))
	// The envelope is written below; keep the library's plain-text body out.
	sm.SetBadHostHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sm.Process(w, r); err != nil {
				slog.WarnContext(r.Context(), "secure headers blocked request", "error", err, "host", r.Host)
				WriteAPIError(w, apperr.BadRequest("Request rejected"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
