// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package auth

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/sec"
	"github.com/vidora/vidora/pkg/slug"
	"github.com/vidora/vidora/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and verifying security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed short-lived JWT for the given user.
	GenerateAccessToken(userID, username string, timeToLive time.Duration) (string, error)

	// GenerateRefreshToken creates a signed long-lived JWT carrying the user ID only.
	GenerateRefreshToken(userID string, timeToLive time.Duration) (string, error)

	// VerifyToken checks signature, expiry, and token class.
	VerifyToken(tokenString string, expectedKind sec.TokenKind) (*sec.AuthClaims, error)
}

// AvatarStorage is the slice of object storage the auth flow needs.
type AvatarStorage interface {
	// Upload stores the file under the given key and returns its public URL.
	Upload(ctx context.Context, fileHeader *multipart.FileHeader, key string) (string, error)
}

// Service implements the user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or session rotation logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	avatarStorage  AvatarStorage
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokenProv TokenProvider, avatars AvatarStorage) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		avatarStorage:  avatars,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   *multipart.FileHeader
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Enrolls a new member. Uniqueness is pre-checked per field for
friendly messages; the database unique indexes remain authoritative and a
racing duplicate surfaces as the same Conflict. The avatar is mandatory and
is uploaded to object storage before the row is written.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity, read back from storage
  - error: Conflict, MISSING_AVATAR, UPLOAD_FAILED, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Verify username uniqueness. Return a client-safe Conflict error.
	// Only "no such row" means the name is available; any other lookup
	// failure aborts before the avatar upload is paid for.
	if _, err := service.userRepository.FindByUsername(context, input.Username); err == nil {
		return nil, apperr.Conflict("Username already registered.")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	// Verify email uniqueness. Return a client-safe Conflict error.
	if _, err := service.userRepository.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email already registered.")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	// The avatar is a hard requirement of registration.
	if input.Avatar == nil {
		return nil, apperr.MissingFile("MISSING_AVATAR", "Avatar file is required")
	}

	// Upload before persisting so a failed upload never leaves an account
	// without its avatar.
	avatarKey := avatarObjectKey(input.Username, input.Avatar.Filename)
	avatarURL, err := service.avatarStorage.Upload(context, input.Avatar, avatarKey)
	if err != nil {
		return nil, apperr.UploadFailed("Failed to upload avatar", err)
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FullName:     input.FullName,
		AvatarURL:    avatarURL,
	}

	// Persist the user. A racing duplicate maps to the same Conflict kinds
	// as the pre-checks via the named unique constraints.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	// Defensive read-back: the row we just wrote must be retrievable.
	created, err := service.userRepository.FindByID(context, user.ID)
	if err != nil {
		return nil, &apperr.AppError{
			Code:       "INTERNAL_ERROR",
			Message:    "Something went wrong while registering the user",
			HTTPStatus: http.StatusInternalServerError,
			Cause:      err,
		}
	}

	return created, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
// At least one of Username or Email must be provided.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

/*
Login validates user credentials and issues a fresh token pair.

Description: Looks the account up by username or email, performs a
constant-time password comparison, then persists the new refresh token on
the account row — replacing any previous session.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session credentials
  - error: NotFound, InvalidCredentials, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	var user *User

	// Flexible login: resolve by username first, then by email. A missing
	// row falls through to the next lookup; a storage failure propagates.
	if input.Username != "" {
		found, err := service.userRepository.FindByUsername(context, input.Username)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
		user = found
	}
	if user == nil && input.Email != "" {
		found, err := service.userRepository.FindByEmail(context, input.Email)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
		user = found
	}

	if user == nil {
		return nil, apperr.NotFound("User")
	}

	// Verify password hash using bcrypt's constant-time comparison.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials("Invalid user credentials")
	}

	return service.issueSession(context, user)
}

/*
Logout revokes the account's active session.

Description: Clears the stored refresh token so no previously issued refresh
token can ever rotate again. Logging out an account with no stored token
succeeds (idempotent operation).

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(context context.Context, userID string) error {
	if err := service.userRepository.ClearRefreshToken(context, userID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Rotation

/*
RefreshAccess implements the refresh-token rotation mechanism.

Description: Verifies the presented refresh token cryptographically, then
checks exact string equality against the token stored on the account row.
A mismatch means the token was already rotated or revoked — signature
validity alone is never enough. On success a brand-new token pair is issued
and the new refresh token replaces the stored one, invalidating the token
that was just used.

Parameters:
  - context: context.Context
  - presentedToken: string

Returns:
  - *LoginSession: Rotated session credentials
  - error: Unauthorized for every verification failure
*/
func (service *Service) RefreshAccess(context context.Context, presentedToken string) (*LoginSession, error) {

	// Cryptographic check: signature, expiry, and token class.
	claims, err := service.tokenProvider.VerifyToken(presentedToken, sec.TokenKindRefresh)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// The account behind the claim must still exist.
	user, err := service.userRepository.FindByID(context, claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// Store check: only the exact stored value is acceptable. A signed but
	// superseded token fails here — this is what makes rotation single-use.
	if user.RefreshToken == "" || user.RefreshToken != presentedToken {
		return nil, apperr.Unauthorized("Refresh token is expired or used")
	}

	return service.issueSession(context, user)
}

// issueSession generates a fresh token pair and persists the refresh token
// on the account row. The persisted value and the returned value are the
// same string.
func (service *Service) issueSession(context context.Context, user *User) (*LoginSession, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenProvider.GenerateRefreshToken(user.ID, RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	if err := service.userRepository.SetRefreshToken(context, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_store_refresh_token_failed: %w", err)
	}
	user.RefreshToken = refreshToken

	return &LoginSession{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// # Password Management

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password before applying the new one.
Outstanding tokens stay valid — a password change is not a session
revocation (use Logout for that).

Parameters:
  - context: context.Context
  - userID: string
  - oldPassword: string
  - newPassword: string

Returns:
  - error: InvalidCredentials or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, oldPassword, newPassword string) error {

	// Fetch user by ID
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing the change
	if !sec.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return apperr.InvalidCredentials("Invalid old password")
	}

	// Hash the brand new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	// Update the database with the new hash
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	return nil
}

// avatarObjectKey builds a collision-free object-storage key for an avatar.
func avatarObjectKey(username, filename string) string {
	return "avatars/" + slug.From(username) + "-" + uuid.New() + filepath.Ext(filename)
}
