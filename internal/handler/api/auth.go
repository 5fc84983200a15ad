// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/auth"
)

const invalidCredentialsMessage = "Invalid login or password"

// SignInRequest represents the request body for admin sign-in.
// Login is matched against both username and email.
type SignInRequest struct {
	Login    string `json:"login" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// SignInResponse carries the issued token.
type SignInResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SignIn handles POST /admin/auth/sign_in
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx := r.Context()
	login := strings.TrimSpace(req.Login)

	if h.Logins != nil {
		locked, remaining, err := h.Logins.IsAccountLocked(ctx, login)
		if err != nil {
			h.fail(w, r, apperr.Internal("Failed to check login lock", err))
			return
		}
		if locked {
			slog.WarnContext(ctx, "sign-in attempt on locked account", "category", "auth", "login", login)
			h.fail(w, r, lockedError(remaining))
			return
		}
	}

	user, err := h.Users.GetByLogin(ctx, login)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		h.fail(w, r, err)
		return
	}

	ok := false
	if err == nil {
		ok, err = auth.CheckPassword(req.Password, user.PasswordHash)
		if err != nil {
			slog.ErrorContext(ctx, "failed to verify password", "user_id", user.ID, "error", err)
			ok = false
		}
	}
	if ok && !user.HasRole(h.AdminRole) {
		slog.WarnContext(ctx, "sign-in by non-admin user", "category", "auth", "user_id", user.ID)
		ok = false
	}

	if !ok {
		h.rejectSignIn(w, r, login)
		return
	}

	if h.Logins != nil {
		h.Logins.RecordSuccessfulLogin(ctx, login)
	}

	token, claims, err := h.Tokens.Issue(user.ID)
	if err != nil {
		h.fail(w, r, apperr.Internal("Failed to issue token", err))
		return
	}

	slog.InfoContext(ctx, "admin signed in", "category", "auth", "user_id", user.ID)
	WriteSuccess(w, "Signed in successfully.", SignInResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

func (h *Handler) rejectSignIn(w http.ResponseWriter, r *http.Request, login string) {
	ctx := r.Context()
	if h.Logins != nil {
		locked, duration, err := h.Logins.RecordFailedAttempt(ctx, login)
		if err != nil {
			slog.ErrorContext(ctx, "failed to record sign-in attempt", "login", login, "error", err)
		} else if locked {
			h.fail(w, r, lockedError(duration))
			return
		}
	}

	slog.WarnContext(ctx, "sign-in failed", "category", "auth", "login", login)
	h.fail(w, r, apperr.Unauthorized(invalidCredentialsMessage, nil))
}

func lockedError(remaining time.Duration) *apperr.Error {
	if remaining < time.Second {
		remaining = time.Second
	}
	return apperr.TooManyRequests(fmt.Sprintf(
		"Account temporarily locked. Try again in %s", remaining.Round(time.Second)))
}
