// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

// HTTP delivery layer for the authentication lifecycle.
//
// # Architecture
//
// The handler acts as a thin mediation layer between the web and domain services:
//   - Protocol: RESTful JSON, multipart for registration.
//   - Security: Sets and clears the accessToken/refreshToken cookie pair.
//   - Verification: Enforces strict input validation before passing to [Service].
//
// This layer is strictly responsible for transport concerns (status codes,
// headers, cookies, JSON).
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/constants"
	"github.com/vidora/vidora/internal/platform/middleware"
	requestutil "github.com/vidora/vidora/internal/platform/request"
	"github.com/vidora/vidora/internal/platform/respond"
	"github.com/vidora/vidora/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService  *Service
	cookieSecure bool
}

// NewHandler constructs a new [Handler].
//
// cookieSecure controls the Secure attribute on both credential cookies;
// it is disabled only for plain-HTTP local development.
func NewHandler(service *Service, cookieSecure bool) *Handler {
	return &Handler{authService: service, cookieSecure: cookieSecure}
}

// RegisterRoutes attaches the authentication endpoints to the users router.
//
// # Endpoints
//   - POST  /register        : Creates a new account (multipart).
//   - POST  /login           : Authenticates and sets the cookie pair.
//   - POST  /refresh         : Rotates the refresh token.
//   - POST  /logout          : Revokes the session (protected).
//   - PATCH /change-password : Updates the password (protected).
func (handler *Handler) RegisterRoutes(router chi.Router) {

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Post("/logout", handler.logout)
		r.Patch("/change-password", handler.changePassword)
	})
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/users/register

Description: Accepts a multipart form with the profile fields and a single
avatar file, validates input, checks identity conflicts, and persists a new
account.

Request:
  - Multipart fields: username, email, fullName, password
  - Multipart file: avatar

Response:
  - 201: User: Created user profile (no credentials)
  - 400: VALIDATION_ERROR / MISSING_AVATAR / UPLOAD_FAILED
  - 409: CONFLICT: Username or Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {

	// FormFile triggers multipart parsing for the text fields as well.
	avatar, err := requestutil.FormFile(request, FieldAvatar)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := RegisterInput{
		Username: request.FormValue(FieldUsername),
		Email:    request.FormValue(FieldEmail),
		FullName: request.FormValue(FieldFullName),
		Password: request.FormValue(FieldPassword),
		Avatar:   avatar,
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldFullName, input.FullName).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user, "User registered successfully")
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/users/login

Description: Verifies credentials against the account resolved by username
or email, then sets the accessToken/refreshToken cookie pair and returns
both tokens in the body for non-browser clients.

Request:
  - Body: loginRequest (Username or Email, Password)

Response:
  - 200: Session: User profile plus both tokens
  - 401: INVALID_CREDENTIALS: Password mismatch
  - 404: NOT_FOUND: No account with that username/email
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldPassword, input.Password).
		Custom(FieldUsername, input.Username == "" && input.Email == "", "Username or email is required")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldUser:         session.User,
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	}, "User logged in successfully")
}

/*
Logout terminates the current user session.

POST /api/v1/users/logout

Description: Clears the stored refresh token for the authenticated account
and expires both credential cookies on the client.

Response:
  - 200: Success: Session terminated
  - 401: UNAUTHORIZED: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookies(writer)

	respond.OK(writer, nil, "User logged out successfully")
}

/*
Refresh rotates the session using a valid refresh token.

POST /api/v1/users/refresh

Description: Reads the refresh token from the refreshToken cookie, falling
back to the JSON body for non-browser clients, and issues a brand-new token
pair. The token just used can never rotate again.

Request:
  - Cookie refreshToken, or Body: refreshRequest (RefreshToken)

Response:
  - 200: Tokens: New access and refresh tokens
  - 401: UNAUTHORIZED: Missing, invalid, expired, or already-used token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	presentedToken := ""

	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		presentedToken = cookie.Value
	} else {
		// Body fallback. A missing or unreadable body just leaves the token empty.
		var input refreshRequest
		if err := requestutil.DecodeJSON(request, &input); err == nil {
			presentedToken = input.RefreshToken
		}
	}

	if presentedToken == "" {
		respond.Error(writer, request, apperr.Unauthorized("Unauthorized request"))
		return
	}

	session, err := handler.authService.RefreshAccess(request.Context(), presentedToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	}, "Access token refreshed")
}

/*
ChangePassword updates the authenticated user's password.

PATCH /api/v1/users/change-password

Description: Verifies the current password before applying a new one.
Existing sessions remain valid.

Request:
  - Body: changePasswordRequest (OldPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 400: VALIDATION_ERROR: Missing fields
  - 401: INVALID_CREDENTIALS: Old password incorrect
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// The length floor applies at registration only; an authenticated user
	// may set a new password of any length.
	validator := &validate.Validator{}
	validator.Required(FieldOldPassword, input.OldPassword).
		Required(FieldNewPassword, input.NewPassword)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ChangePassword(request.Context(), userID, input.OldPassword, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, nil, "Password changed successfully")
}

// # Cookie Helpers

// setSessionCookies writes the HTTP-only credential cookie pair.
func (handler *Handler) setSessionCookies(writer http.ResponseWriter, session *LoginSession) {
	now := time.Now()

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    session.AccessToken,
		Path:     constants.CookiePath,
		Expires:  now.Add(AccessTokenTTL),
		Secure:   handler.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.CookiePath,
		Expires:  now.Add(RefreshTokenTTL),
		Secure:   handler.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookies expires both credential cookies on the client.
func (handler *Handler) clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     constants.CookiePath,
			MaxAge:   -1,
			Secure:   handler.cookieSecure,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
