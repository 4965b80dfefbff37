// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

// HTTP delivery layer for profile management.
//
// # Security
//
// Every endpoint in this package requires an authenticated session; the
// routes are mounted inside a RequireAuth group.
package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidora/vidora/internal/platform/middleware"
	requestutil "github.com/vidora/vidora/internal/platform/request"
	"github.com/vidora/vidora/internal/platform/respond"
	"github.com/vidora/vidora/internal/platform/validate"
	"github.com/vidora/vidora/internal/users/auth"
)

// Handler implements the HTTP layer for user profile management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// RegisterRoutes attaches the profile endpoints to the users router.
//
// # Endpoints
//   - GET   /me                  : Own profile.
//   - PATCH /profile             : Partial profile edit.
//   - PATCH /avatar              : Avatar replacement (multipart).
//   - GET   /channel/{username}  : Public channel profile.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Get("/me", handler.getMe)
		r.Patch("/profile", handler.updateProfile)
		r.Patch("/avatar", handler.changeAvatar)
		r.Get("/channel/{username}", handler.getChannel)
	})
}

// # Profile Endpoints

/*
GetMe returns the authenticated user's own profile.

GET /api/v1/users/me

Response:
  - 200: User: Fully hydrated profile (no credentials)
  - 401: UNAUTHORIZED: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user, "Current user fetched successfully")
}

// updateProfileRequest defines the JSON payload for partial profile edits.
// Absent or empty fields are left unchanged.
type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

/*
UpdateProfile applies partial updates to the authenticated user's profile.

PATCH /api/v1/users/profile

Request:
  - Body: updateProfileRequest (FullName, Email — empty means "no change")

Response:
  - 200: User: The updated profile
  - 400: VALIDATION_ERROR: Both fields empty, or malformed email
  - 409: CONFLICT: Email already registered to another account
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Custom(auth.FieldFullName, input.FullName == "" && input.Email == "", "At least one field is required")
	if input.Email != "" {
		validator.Email(auth.FieldEmail, input.Email)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		FullName: input.FullName,
		Email:    input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user, "Profile updated successfully")
}

/*
ChangeAvatar replaces the authenticated user's avatar.

PATCH /api/v1/users/avatar

Request:
  - Multipart file: avatar

Response:
  - 200: User: Profile with the new avatar URL
  - 400: MISSING_AVATAR / UPLOAD_FAILED
*/
func (handler *Handler) changeAvatar(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	avatar, err := requestutil.FormFile(request, auth.FieldAvatar)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.ChangeAvatar(request.Context(), userID, avatar)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user, "Avatar updated successfully")
}

/*
GetChannel returns the public channel profile for a username.

GET /api/v1/users/channel/{username}

Response:
  - 200: ChannelProfile: Public projection
  - 404: NOT_FOUND: No such channel
*/
func (handler *Handler) getChannel(writer http.ResponseWriter, request *http.Request) {
	username := requestutil.Param(request, "username")
	if username == "" {
		respond.Error(writer, request, validate.RequiredError(auth.FieldUsername, "Username is required"))
		return
	}

	channel, err := handler.accountService.GetChannel(request.Context(), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, channel, "Channel fetched successfully")
}
