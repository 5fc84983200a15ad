// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/auth"
	"github.com/olegiv/ocourse/internal/logging"
	"github.com/olegiv/ocourse/internal/model"
)

// ContextKeyPrincipal is the context key for the authenticated admin.
const ContextKeyPrincipal ContextKey = "principal"

// DefaultTokenHeader is the header carrying the admin token.
const DefaultTokenHeader = "token"

// unauthorizedMessage is shared by every rejection so callers cannot tell a
// bad token from a missing or under-privileged account.
const unauthorizedMessage = "Unauthorized"

// TokenParser verifies a raw token and returns its claims.
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// PrincipalLoader loads a user by id.
type PrincipalLoader interface {
	Get(ctx context.Context, id int64) (model.User, error)
}

// AdminAuthConfig configures the admin auth gate.
type AdminAuthConfig struct {
	Tokens TokenParser
	Users  PrincipalLoader
	// Header is the request header holding the token. An
	// "Authorization: Bearer" header is accepted as a fallback.
	Header string
	// Role is the role the principal must hold.
	Role int
}

// AdminAuth creates middleware that authenticates the request token, loads
// the principal and requires cfg.Role. The principal is looked up on every
// request. All authentication and authorization failures are answered with
// the same 401 envelope.
func AdminAuth(cfg AdminAuthConfig) func(http.Handler) http.Handler {
	if cfg.Header == "" {
		cfg.Header = DefaultTokenHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticate(r, cfg)
			if err != nil {
				appErr := apperr.From(err)
				if appErr.Kind == apperr.KindInternal {
					slog.ErrorContext(r.Context(), "failed to load principal", "error", err)
				} else {
					slog.DebugContext(r.Context(), "admin auth rejected", "reason", err.Error(), "path", r.URL.Path)
				}
				WriteAPIError(w, appErr)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
		})
	}
}

// IsAdmin reports whether r carries a token of an admin principal. It lets
// public endpoints reveal more detail to admins without rejecting others.
func (cfg AdminAuthConfig) IsAdmin(r *http.Request) bool {
	if cfg.Header == "" {
		cfg.Header = DefaultTokenHeader
	}
	_, err := authenticate(r, cfg)
	return err == nil
}

func authenticate(r *http.Request, cfg AdminAuthConfig) (model.User, error) {
	raw := extractToken(r, cfg.Header)
	if raw == "" {
		return model.User{}, apperr.Unauthorized(unauthorizedMessage, auth.ErrTokenMissing)
	}

	claims, err := cfg.Tokens.Parse(raw)
	if err != nil {
		return model.User{}, apperr.Unauthorized(unauthorizedMessage, err)
	}

	user, err := cfg.Users.Get(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return model.User{}, apperr.Unauthorized(unauthorizedMessage, err)
		}
		return model.User{}, err
	}

	if !user.HasRole(cfg.Role) {
		return model.User{}, &apperr.Error{Kind: apperr.KindForbidden, Message: unauthorizedMessage}
	}

	return user, nil
}

// extractToken reads the token header, falling back to a Bearer
// Authorization header.
func extractToken(r *http.Request, header string) string {
	if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
		return v
	}

	authz := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetPrincipal retrieves the authenticated admin from the request context.
// Returns nil if no principal is in context.
func GetPrincipal(r *http.Request) *model.User {
	return PrincipalFromContext(r.Context())
}

// PrincipalFromContext retrieves the authenticated admin from ctx.
func PrincipalFromContext(ctx context.Context) *model.User {
	user, ok := ctx.Value(ContextKeyPrincipal).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// WithPrincipal returns a context carrying user as the authenticated admin.
func WithPrincipal(ctx context.Context, user model.User) context.Context {
	ctx = context.WithValue(ctx, ContextKeyPrincipal, user)
	return logging.WithAdminID(ctx, user.ID)
}
