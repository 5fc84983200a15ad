// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdefABCDEF!@#$%^&*()"

func TestIssueAndParse(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour, "ocourse")

	raw, issued, err := ti.Issue(42)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.Equal(t, "42", issued.Subject)

	claims, err := ti.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestParse_Missing(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour, "ocourse")
	_, err := ti.Parse("")
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestParse_Expired(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Minute, "ocourse")
	ti.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := ti.Issue(1)
	require.NoError(t, err)

	ti.now = time.Now
	_, err = ti.Parse(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParse_WrongSecret(t *testing.T) {
	raw, _, err := NewTokenIssuer(testSecret, time.Hour, "ocourse").Issue(1)
	require.NoError(t, err)

	_, err = NewTokenIssuer(strings.Repeat("x", 32), time.Hour, "ocourse").Parse(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParse_Tampered(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour, "ocourse")
	raw, _, err := ti.Issue(1)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	forged, _, err := NewTokenIssuer(testSecret, time.Hour, "ocourse").Issue(99)
	require.NoError(t, err)
	// Splice the payload of another token under the original signature.
	parts[1] = strings.Split(forged, ".")[1]

	_, err = ti.Parse(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ocourse",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer(testSecret, time.Hour, "ocourse").Parse(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParse_WrongIssuer(t *testing.T) {
	raw, _, err := NewTokenIssuer(testSecret, time.Hour, "someone-else").Issue(1)
	require.NoError(t, err)

	_, err = NewTokenIssuer(testSecret, time.Hour, "ocourse").Parse(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParse_Malformed(t *testing.T) {
	_, err := NewTokenIssuer(testSecret, time.Hour, "ocourse").Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
