// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

/*
Package account provides profile management for authenticated users.

It covers the read side (own profile, public channel pages) and the write
side (partial profile edits, avatar replacement). Identity and session
concerns stay in the auth package; this package only touches profile data.
*/
package account

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/users/auth"
	"github.com/vidora/vidora/pkg/slug"
	"github.com/vidora/vidora/pkg/uuid"
)

// # Contracts & Types

// ProfileCache invalidates the cached account view after a profile mutation.
type ProfileCache interface {
	Invalidate(ctx context.Context, userID string) error
}

// ChannelProfile is the public-facing projection of an account.
// It exposes nothing beyond what a channel page renders.
type ChannelProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Service orchestrates business logic for user profiles.
type Service struct {
	userRepository auth.UserRepository
	avatarStorage  auth.AvatarStorage
	profileCache   ProfileCache
	logger         *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	userRepo auth.UserRepository,
	avatars auth.AvatarStorage,
	cache ProfileCache,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepo,
		avatarStorage:  avatars,
		profileCache:   cache,
		logger:         logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private profile of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput defines the mutable subset of profile fields.
// An empty string means "no change" for that field.
type UpdateProfileInput struct {
	FullName string
	Email    string
}

/*
UpdateProfile applies a partial set of changes to a user's profile.

Description: Fetches the existing state, overlays the provided non-empty
fields, persists, and evicts the cached account view so the authenticator
sees the change on the next request. An updated email still goes through
the unique index, so stealing another account's address fails with Conflict.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Conflict, not found, or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	// Overlay: empty fields keep their stored value.
	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Email != "" {
		user.Email = input.Email
	}

	if err := service.userRepository.Update(context, user); err != nil {
		return nil, err
	}

	if err := service.profileCache.Invalidate(context, userID); err != nil {
		service.logger.Warn("profile_cache_invalidate_failed", slog.String("user_id", userID), slog.Any("error", err))
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

/*
ChangeAvatar uploads a new avatar and swaps the stored URL.

Description: Mirrors the registration upload path: the file goes to object
storage first, and only a successful upload mutates the account row.

Parameters:
  - context: context.Context
  - userID: string
  - avatar: *multipart.FileHeader

Returns:
  - *auth.User: The updated user profile
  - error: MISSING_AVATAR, UPLOAD_FAILED, or storage failures
*/
func (service *Service) ChangeAvatar(context context.Context, userID string, avatar *multipart.FileHeader) (*auth.User, error) {
	if avatar == nil {
		return nil, apperr.MissingFile("MISSING_AVATAR", "Avatar file is required")
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	key := "avatars/" + slug.From(user.Username) + "-" + uuid.New() + filepath.Ext(avatar.Filename)
	avatarURL, err := service.avatarStorage.Upload(context, avatar, key)
	if err != nil {
		return nil, apperr.UploadFailed("Failed to upload avatar", err)
	}

	if err := service.userRepository.UpdateAvatar(context, userID, avatarURL); err != nil {
		return nil, fmt.Errorf("account_service_change_avatar_failed: %w", err)
	}

	if err := service.profileCache.Invalidate(context, userID); err != nil {
		service.logger.Warn("profile_cache_invalidate_failed", slog.String("user_id", userID), slog.Any("error", err))
	}

	user.AvatarURL = avatarURL
	return user, nil
}

// # Channel Discovery

/*
GetChannel resolves the public channel profile behind a username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *ChannelProfile: Public projection of the account
  - error: apperr.NotFound or retrieval failures
*/
func (service *Service) GetChannel(context context.Context, username string) (*ChannelProfile, error) {
	user, err := service.userRepository.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	return &ChannelProfile{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}, nil
}
