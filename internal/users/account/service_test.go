// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package account_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/users/account"
	"github.com/vidora/vidora/internal/users/auth"
)

// # Test Doubles

type memoryUserRepository struct {
	users map[string]*auth.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]*auth.User)}
}

func (repo *memoryUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := repo.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepository) Create(_ context.Context, user *auth.User) error {
	copied := *user
	repo.users[user.ID] = &copied
	return nil
}

func (repo *memoryUserRepository) Update(_ context.Context, user *auth.User) error {
	stored, ok := repo.users[user.ID]
	if !ok {
		return apperr.NotFound("User")
	}
	for id, other := range repo.users {
		if id != user.ID && other.Email == user.Email {
			return apperr.Conflict("Email already registered.")
		}
	}
	stored.FullName = user.FullName
	stored.Email = user.Email
	return nil
}

func (repo *memoryUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	stored, ok := repo.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	stored.PasswordHash = newHash
	return nil
}

func (repo *memoryUserRepository) UpdateAvatar(_ context.Context, userID, avatarURL string) error {
	stored, ok := repo.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	stored.AvatarURL = avatarURL
	return nil
}

func (repo *memoryUserRepository) SetRefreshToken(_ context.Context, userID, refreshToken string) error {
	repo.users[userID].RefreshToken = refreshToken
	return nil
}

func (repo *memoryUserRepository) ClearRefreshToken(_ context.Context, userID string) error {
	repo.users[userID].RefreshToken = ""
	return nil
}

type fakeUploader struct {
	uploadErr error
	lastKey   string
}

func (uploader *fakeUploader) Upload(_ context.Context, _ *multipart.FileHeader, key string) (string, error) {
	if uploader.uploadErr != nil {
		return "", uploader.uploadErr
	}
	uploader.lastKey = key
	return "https://cdn.vidora.app/" + key, nil
}

// recordingCache records which account views were evicted.
type recordingCache struct {
	invalidated []string
}

func (cache *recordingCache) Invalidate(_ context.Context, userID string) error {
	cache.invalidated = append(cache.invalidated, userID)
	return nil
}

// # Fixtures

type fixture struct {
	repo     *memoryUserRepository
	uploader *fakeUploader
	cache    *recordingCache
	service  *account.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemoryUserRepository()
	uploader := &fakeUploader{}
	cache := &recordingCache{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		repo:     repo,
		uploader: uploader,
		cache:    cache,
		service:  account.NewService(repo, uploader, cache, logger),
	}
}

func (f *fixture) seedUser(t *testing.T, id, username, email string) *auth.User {
	t.Helper()
	user := &auth.User{
		ID:        id,
		Username:  username,
		Email:     email,
		FullName:  "Seeded User",
		AvatarURL: "https://cdn.vidora.app/avatars/seed.png",
	}
	require.NoError(t, f.repo.Create(context.Background(), user))
	return user
}

// # Profile Reads

func TestService_GetProfile(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", "chaiaroma", "chai@vidora.app")

	user, err := f.service.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "chaiaroma", user.Username)

	_, err = f.service.GetProfile(context.Background(), "missing")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

func TestService_GetChannel(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", "chaiaroma", "chai@vidora.app")

	channel, err := f.service.GetChannel(context.Background(), "chaiaroma")
	require.NoError(t, err)
	assert.Equal(t, "u1", channel.ID)
	assert.Equal(t, "chaiaroma", channel.Username)

	_, err = f.service.GetChannel(context.Background(), "ghost")
	assert.NotNil(t, apperr.As(err))
}

// # Profile Writes

func TestService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", "chaiaroma", "chai@vidora.app")

	t.Run("empty_field_keeps_stored_value", func(t *testing.T) {
		updated, err := f.service.UpdateProfile(context.Background(), "u1", account.UpdateProfileInput{
			FullName: "Chai A. Roma",
			// Email deliberately empty.
		})
		require.NoError(t, err)
		assert.Equal(t, "Chai A. Roma", updated.FullName)
		assert.Equal(t, "chai@vidora.app", updated.Email)
	})

	t.Run("cache_evicted", func(t *testing.T) {
		assert.Contains(t, f.cache.invalidated, "u1")
	})

	t.Run("email_conflict", func(t *testing.T) {
		f.seedUser(t, "u2", "other", "other@vidora.app")

		_, err := f.service.UpdateProfile(context.Background(), "u1", account.UpdateProfileInput{
			Email: "other@vidora.app",
		})
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CONFLICT", ae.Code)
	})
}

func TestService_ChangeAvatar(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", "chaiaroma", "chai@vidora.app")

	t.Run("missing_file", func(t *testing.T) {
		_, err := f.service.ChangeAvatar(context.Background(), "u1", nil)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "MISSING_AVATAR", ae.Code)
	})

	fileHeader := &multipart.FileHeader{Filename: "new-face.png"}

	t.Run("upload_failure", func(t *testing.T) {
		f.uploader.uploadErr = errors.New("bucket unreachable")
		_, err := f.service.ChangeAvatar(context.Background(), "u1", fileHeader)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "UPLOAD_FAILED", ae.Code)
		f.uploader.uploadErr = nil
	})

	t.Run("success_swaps_url_and_evicts", func(t *testing.T) {
		updated, err := f.service.ChangeAvatar(context.Background(), "u1", fileHeader)
		require.NoError(t, err)
		assert.Contains(t, updated.AvatarURL, "avatars/chaiaroma-")
		assert.Contains(t, f.uploader.lastKey, ".png")
		assert.Contains(t, f.cache.invalidated, "u1")

		stored, err := f.repo.FindByID(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, updated.AvatarURL, stored.AvatarURL)
	})
}
