// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/sec"
)

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService("access-secret-for-tests", "refresh-secret-for-tests", "vidora.test")
	require.NoError(t, err)
	return service
}

/*
TestTokenService_AccessRoundTrip verifies that an access token verifies back
into the claims it was issued with.
*/
func TestTokenService_AccessRoundTrip(t *testing.T) {
	service := newTokenService(t)

	token, err := service.GenerateAccessToken("user-1", "alice", 15*time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token, sec.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, string(sec.TokenKindAccess), claims.Kind)
}

/*
TestTokenService_RefreshRoundTrip verifies refresh tokens carry the account ID only.
*/
func TestTokenService_RefreshRoundTrip(t *testing.T) {
	service := newTokenService(t)

	token, err := service.GenerateRefreshToken("user-1", 30*24*time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token, sec.TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Empty(t, claims.Username)
}

/*
TestTokenService_Expired verifies that an elapsed expiry window yields ErrTokenExpired.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newTokenService(t)

	token, err := service.GenerateAccessToken("user-1", "alice", -1*time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token, sec.TokenKindAccess)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokenService_KindIsolation verifies the two token classes are not
interchangeable: a refresh token never verifies as an access token because
the signing secrets are independent.
*/
func TestTokenService_KindIsolation(t *testing.T) {
	service := newTokenService(t)

	refreshToken, err := service.GenerateRefreshToken("user-1", time.Hour)
	require.NoError(t, err)

	_, err = service.VerifyToken(refreshToken, sec.TokenKindAccess)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	accessToken, err := service.GenerateAccessToken("user-1", "alice", time.Hour)
	require.NoError(t, err)

	_, err = service.VerifyToken(accessToken, sec.TokenKindRefresh)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_ForeignSignature verifies tokens signed elsewhere are rejected.
*/
func TestTokenService_ForeignSignature(t *testing.T) {
	service := newTokenService(t)

	other, err := sec.NewTokenService("other-access-secret", "other-refresh-secret", "vidora.test")
	require.NoError(t, err)

	token, err := other.GenerateAccessToken("user-1", "alice", time.Hour)
	require.NoError(t, err)

	_, err = service.VerifyToken(token, sec.TokenKindAccess)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	_, err = service.VerifyToken("not-even-a-jwt", sec.TokenKindAccess)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestNewTokenService_Guards verifies constructor validation of the secrets.
*/
func TestNewTokenService_Guards(t *testing.T) {
	_, err := sec.NewTokenService("", "refresh", "vidora.test")
	assert.Error(t, err)

	_, err = sec.NewTokenService("same", "same", "vidora.test")
	assert.Error(t, err)
}
