// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a refresh token remains valid.
	// Long-lived (30 days) to provide a good user experience; rotation on
	// every refresh keeps the effective exposure window much smaller.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// MinPasswordLength is the minimum accepted password length at
	// registration. Single source of truth: the "length > 6" rule lives
	// here and nowhere else. Password changes carry no length floor.
	MinPasswordLength = 7

	// AuthUserCacheTTL bounds staleness of the cached account view consulted
	// by the request authenticator.
	AuthUserCacheTTL = 60 * time.Second
)
