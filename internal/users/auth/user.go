// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

/*
Package auth implements the user identity and session-token lifecycle.

It defines the core domain entity (User) and the logic for registration,
login, logout, refresh-token rotation, and password changes.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
external dependencies and encapsulates all business rules related to user
identity. The single currently-valid refresh token lives on the account row
itself, so revocation is a one-field overwrite.
*/
package auth

import (
	"time"

	"github.com/vidora/vidora/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Vidora platform.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	FullName     string    `json:"full_name"`
	AvatarURL    string    `json:"avatar_url"`
	RefreshToken string    `json:"-"` // The stored session credential. Omitted for security.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthView converts the entity into the context-safe account view.
// The view carries no credentials of any kind.
func (user *User) AuthView() *sec.AuthUser {
	return &sec.AuthUser{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldFullName     = "fullName"
	FieldAvatar       = "avatar"
	FieldOldPassword  = "oldPassword"
	FieldNewPassword  = "newPassword"
	FieldAccessToken  = "accessToken"
	FieldRefreshToken = "refreshToken"
	FieldUser         = "user"
)
