// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the auth package's TokenProvider interface.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// # Token Classes

// TokenKind distinguishes the two credential classes issued by the codec.
type TokenKind string

const (
	// TokenKindAccess is the short-lived bearer credential for protected operations.
	TokenKindAccess TokenKind = "access"

	// TokenKindRefresh is the long-lived credential used solely to obtain a
	// new access token. Its current value is also stored on the account row
	// so it can be revoked server-side before its signature expires.
	TokenKindRefresh TokenKind = "refresh"
)

// # Verification Failures

var (
	// ErrTokenExpired indicates a structurally valid token past its expiry.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid indicates a malformed token, a bad signature, or a
	// token of the wrong kind.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// AuthClaims represents the payload embedded inside a Vidora JWT.
//
// # Why custom claims?
//
// By embedding the UserID and Username directly inside the access token,
// handlers can identify the caller without an extra lookup. Claim names are
// abbreviated to keep the JWT payload small.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID   string `json:"uid"`
	Username string `json:"unm,omitempty"`
	Kind     string `json:"tkn"`
}

// AuthUser is the authenticated account view attached to request contexts.
// It never carries the password hash or the stored refresh token.
type AuthUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// # Token Service

// TokenService handles generation and verification of JWT tokens using HS256.
//
// Access and refresh tokens are signed with independent secrets so that a
// compromise of one class cannot forge the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
}

// NewTokenService creates a new TokenService from the two signing secrets.
func NewTokenService(accessSecret, refreshSecret, issuer string) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("sec: both token secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}

	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
	}, nil
}

// GenerateAccessToken creates a new short-lived access token for a user.
func (service *TokenService) GenerateAccessToken(userID, username string, timeToLive time.Duration) (string, error) {
	return service.sign(TokenKindAccess, userID, username, timeToLive)
}

// GenerateRefreshToken creates a new long-lived refresh token for a user.
// Refresh claims carry the account ID only.
func (service *TokenService) GenerateRefreshToken(userID string, timeToLive time.Duration) (string, error) {
	return service.sign(TokenKindRefresh, userID, "", timeToLive)
}

// sign builds and signs the claim set for the given kind.
func (service *TokenService) sign(kind TokenKind, userID, username string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique jti guarantees two tokens for the same account are
			// never byte-identical, even when issued within the same second.
			// Refresh rotation depends on exact string comparison.
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID:   userID,
		Username: username,
		Kind:     string(kind),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secretFor(kind))
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign %s token: %w", kind, err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature, expiry, and kind of a JWT string.
//
// # Failure Modes
//   - [ErrTokenExpired]: signature fine, expiry in the past.
//   - [ErrTokenInvalid]: anything else (malformed, wrong secret, wrong kind).
func (service *TokenService) VerifyToken(tokenString string, expectedKind TokenKind) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secretFor(expectedKind), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	// A refresh token presented where an access token is expected (or the
	// reverse) fails even though the signature check above might pass.
	if claims.Kind != string(expectedKind) {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// secretFor selects the signing secret for a token kind.
func (service *TokenService) secretFor(kind TokenKind) []byte {
	if kind == TokenKindRefresh {
		return service.refreshSecret
	}
	return service.accessSecret
}
