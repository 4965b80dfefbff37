// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vidora/vidora/internal/platform/constants"
	"github.com/vidora/vidora/internal/platform/sec"
)

// # Account View Cache

// CachedAccountSource resolves the context-safe account view for the request
// authenticator, caching it in Redis to keep the hot authentication path off
// PostgreSQL.
//
// # Staleness
//
// Entries live for [AuthUserCacheTTL]; profile mutations call Invalidate so
// a changed avatar or email shows up on the next request.
type CachedAccountSource struct {
	users  UserRepository
	client *redis.Client
}

// NewCachedAccountSource creates a Redis-backed AccountSource over the
// user repository.
func NewCachedAccountSource(users UserRepository, client *redis.Client) *CachedAccountSource {
	return &CachedAccountSource{users: users, client: client}
}

/*
FindAuthUser returns the account view for the given user ID.

Description: Cache-aside lookup. A Redis miss (or any Redis failure) falls
through to PostgreSQL; the view is then written back with a TTL. Cache
write failures are swallowed — authentication must not depend on Redis
being healthy.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *sec.AuthUser: Credential-free account view
  - error: apperr.NotFound or wrapped retrieval failures
*/
func (source *CachedAccountSource) FindAuthUser(context context.Context, userID string) (*sec.AuthUser, error) {
	key := constants.RedisPrefixAuthUser + userID

	// Fast path: serve from cache.
	payload, err := source.client.Get(context, key).Bytes()
	if err == nil {
		view := &sec.AuthUser{}
		if unmarshalErr := json.Unmarshal(payload, view); unmarshalErr == nil {
			return view, nil
		}
		// Corrupt entry: drop it and fall through to the database.
		_ = source.client.Del(context, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down must not lock users out. Fall through.
		err = nil
	}

	// Slow path: hydrate from the authoritative store.
	user, err := source.users.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	view := user.AuthView()
	if payload, marshalErr := json.Marshal(view); marshalErr == nil {
		_ = source.client.Set(context, key, payload, AuthUserCacheTTL).Err()
	}

	return view, nil
}

/*
Invalidate evicts the cached account view for the given user ID.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Eviction failures
*/
func (source *CachedAccountSource) Invalidate(context context.Context, userID string) error {
	key := constants.RedisPrefixAuthUser + userID
	if err := source.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("auth_cache_invalidate_failed: %w", err)
	}
	return nil
}
