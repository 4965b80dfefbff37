// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vidora/vidora/internal/platform/constants"
	"github.com/vidora/vidora/internal/platform/ctxutil"
	"github.com/vidora/vidora/internal/platform/sec"
)

// # Request Authentication

// TokenVerifier validates access tokens presented by clients.
type TokenVerifier interface {
	VerifyToken(tokenString string, expectedKind sec.TokenKind) (*sec.AuthClaims, error)
}

// AccountSource resolves the account view behind a verified token claim.
// The returned view never includes the password hash or stored refresh token.
type AccountSource interface {
	FindAuthUser(ctx context.Context, userID string) (*sec.AuthUser, error)
}

// Authenticate resolves the caller's identity and attaches it to the context.
//
// The access token is read from the accessToken cookie first, then from the
// Authorization: Bearer header. A missing, invalid, or expired token leaves
// the request anonymous; RequireAuth decides whether that is fatal. The token
// proves possession, the AccountSource lookup proves the account still exists.
func Authenticate(verifier TokenVerifier, accounts AccountSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Extract the raw token from cookie or header
			tokenString := extractAccessToken(request)
			if tokenString == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Verify signature, expiry, and token class
			claims, err := verifier.VerifyToken(tokenString, sec.TokenKindAccess)
			if err != nil {
				next.ServeHTTP(writer, request)
				return
			}

			// 3. Resolve the live account view (deleted accounts stay anonymous)
			authUser, err := accounts.FindAuthUser(request.Context(), claims.UserID)
			if err != nil || authUser == nil {
				next.ServeHTTP(writer, request)
				return
			}

			// 4. Attach the identity to the request context
			ctx := ctxutil.WithAuthUser(request.Context(), authUser)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
// It must be mounted after Authenticate.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if ctxutil.GetAuthUser(request.Context()) == nil {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// extractAccessToken reads the bearer credential from its two carriers.
// The cookie wins because browser clients rely on it exclusively.
func extractAccessToken(request *http.Request) string {
	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authorization := request.Header.Get("Authorization")
	if strings.HasPrefix(authorization, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))
	}

	return ""
}
