// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and cookie configuration.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "vidora-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Generous because registration and video publishing carry multipart bodies.
	DefaultReadTimeout = 30 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 60 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "vidora.app"

	// AccessTokenCookieName is the name of the cookie carrying the access token.
	AccessTokenCookieName = "accessToken"

	// RefreshTokenCookieName is the name of the cookie carrying the refresh token.
	RefreshTokenCookieName = "refreshToken"

	// CookiePath scopes both credential cookies to the whole API.
	CookiePath = "/"
)

// # Uploads

const (
	// MaxMultipartMemory is the in-memory buffer for multipart parsing;
	// larger parts spill to temporary files managed by net/http.
	MaxMultipartMemory = 32 << 20 // 32 MiB

	// UploadTimeout bounds a single object-storage upload. A hanging upload
	// must fail the request instead of blocking it indefinitely.
	UploadTimeout = 20 * time.Second
)

// # HTTP Headers

const (
	// HeaderXRequestID carries the request correlation ID.
	HeaderXRequestID = "X-Request-ID"

	// HeaderOrigin is the CORS origin header.
	HeaderOrigin = "Origin"

	// HeaderXRealIP is set by reverse proxies to the client IP.
	HeaderXRealIP = "X-Real-IP"

	// HeaderXForwardedFor lists the proxy chain; the first entry is the client.
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # JSON Field Identifiers

const (
	FieldStatusCode = "status_code"
	FieldData       = "data"
	FieldMessage    = "message"
	FieldCode       = "code"
	FieldDetails    = "details"
	FieldStatus     = "status"
	FieldApp        = "app"
	FieldVersion    = "version"
	FieldChecks     = "checks"
)

// # Database Schemas

const (
	SchemaCore  = "core"
	SchemaUsers = "users"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixAuthUser = "auth:user:"
)
