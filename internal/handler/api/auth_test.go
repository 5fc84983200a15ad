// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/testutil"
)

func TestSignIn_IssuesWorkingToken(t *testing.T) {
	env := newTestEnv(t)

	for _, login := range []string{"root", "root@example.com"} {
		rec := env.doWithToken(http.MethodPost, "/admin/auth/sign_in",
			map[string]any{"login": login, "password": "root-pass"}, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got SignInResponse
		decodeData(t, rec, &got)
		require.NotEmpty(t, got.Token)

		claims, err := env.tokens.Parse(got.Token)
		require.NoError(t, err)
		assert.Equal(t, env.admin.ID, claims.UserID)

		rec = env.doWithToken(http.MethodGet, "/admin/users/me", nil, got.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestSignIn_RejectsWithSameMessage(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.store, "member", model.RoleMember)

	cases := []struct {
		name  string
		login string
		pass  string
	}{
		{"wrong password", "root", "nope"},
		{"unknown login", "ghost", "ghost-pass"},
		{"not an admin", "member", "member-pass"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.doWithToken(http.MethodPost, "/admin/auth/sign_in",
				map[string]any{"login": tc.login, "password": tc.pass}, "")
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, invalidCredentialsMessage, decodeEnvelope(t, rec).Message)
		})
	}
}

func TestSignIn_LocksAfterRepeatedFailures(t *testing.T) {
	env := newTestEnv(t)

	signIn := func(pass string) int {
		return env.doWithToken(http.MethodPost, "/admin/auth/sign_in",
			map[string]any{"login": "root", "password": pass}, "").Code
	}

	assert.Equal(t, http.StatusUnauthorized, signIn("bad-1"))
	assert.Equal(t, http.StatusUnauthorized, signIn("bad-2"))
	assert.Equal(t, http.StatusTooManyRequests, signIn("bad-3"))

	rec := env.doWithToken(http.MethodPost, "/admin/auth/sign_in",
		map[string]any{"login": "root", "password": "root-pass"}, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code, "correct password is refused while locked")
	assert.Contains(t, decodeEnvelope(t, rec).Message, "Account temporarily locked")
}

func TestSignIn_SuccessResetsFailures(t *testing.T) {
	env := newTestEnv(t)

	signIn := func(pass string) int {
		return env.doWithToken(http.MethodPost, "/admin/auth/sign_in",
			map[string]any{"login": "root", "password": pass}, "").Code
	}

	assert.Equal(t, http.StatusUnauthorized, signIn("bad-1"))
	assert.Equal(t, http.StatusUnauthorized, signIn("bad-2"))
	assert.Equal(t, http.StatusOK, signIn("root-pass"))
	assert.Equal(t, http.StatusUnauthorized, signIn("bad-3"))
	assert.Equal(t, http.StatusUnauthorized, signIn("bad-4"))
}

func TestSignIn_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doWithToken(http.MethodPost, "/admin/auth/sign_in", map[string]any{"login": "root"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password is required", decodeEnvelope(t, rec).Message)
}

func TestAdminGate(t *testing.T) {
	env := newTestEnv(t)
	member := testutil.CreateUser(t, env.store, "member", model.RoleMember)
	memberToken, _, err := env.tokens.Issue(member.ID)
	require.NoError(t, err)
	ghostToken, _, err := env.tokens.Issue(9999)
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not.a.jwt"},
		{"non-admin principal", memberToken},
		{"deleted principal", ghostToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.doWithToken(http.MethodGet, "/admin/articles", nil, tc.token)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			got := decodeEnvelope(t, rec)
			assert.False(t, got.Success)
			assert.Equal(t, "Unauthorized", got.Message)
		})
	}
}
