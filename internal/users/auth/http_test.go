// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/middleware"
	"github.com/vidora/vidora/internal/platform/sec"
	"github.com/vidora/vidora/internal/users/auth"
)

// repoAccountSource adapts the in-memory repository for the authenticator.
type repoAccountSource struct {
	repo *memoryUserRepository
}

func (source repoAccountSource) FindAuthUser(ctx context.Context, userID string) (*sec.AuthUser, error) {
	user, err := source.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.AuthView(), nil
}

// newTestServer wires the full HTTP stack: authenticator plus auth routes.
func newTestServer(t *testing.T) (*fixture, http.Handler) {
	t.Helper()
	f := newFixture(t)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(f.tokens, repoAccountSource{repo: f.repo}))
	router.Route("/users", func(r chi.Router) {
		auth.NewHandler(f.service, false).RegisterRoutes(r)
	})

	return f, router
}

// registerForm builds a multipart registration request body.
func registerForm(t *testing.T, fields map[string]string, withAvatar bool) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for field, value := range fields {
		require.NoError(t, writer.WriteField(field, value))
	}
	if withAvatar {
		part, err := writer.CreateFormFile("avatar", "avatar.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	envelope := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

func cookieByName(recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// doLogin performs a login request and returns the recorder.
func doLogin(t *testing.T, server http.Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)
	return recorder
}

// # Registration Endpoint

func TestHandler_Register(t *testing.T) {
	_, server := newTestServer(t)

	t.Run("created", func(t *testing.T) {
		body, contentType := registerForm(t, map[string]string{
			"username": "chaiaroma",
			"email":    "chai@vidora.app",
			"fullName": "Chai Aroma",
			"password": "secret1",
		}, true)

		request := httptest.NewRequest(http.MethodPost, "/users/register", body)
		request.Header.Set("Content-Type", contentType)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusCreated, recorder.Code)
		envelope := decodeEnvelope(t, recorder)
		assert.Equal(t, float64(http.StatusCreated), envelope["status_code"])
		assert.Equal(t, "User registered successfully", envelope["message"])

		data := envelope["data"].(map[string]any)
		assert.Equal(t, "chaiaroma", data["username"])
		assert.NotEmpty(t, data["avatar_url"])
		// Credentials never appear in any payload.
		assert.NotContains(t, recorder.Body.String(), "secret1")
		assert.NotContains(t, recorder.Body.String(), "passwordhash")
	})

	t.Run("password_too_short", func(t *testing.T) {
		body, contentType := registerForm(t, map[string]string{
			"username": "shortpass",
			"email":    "short@vidora.app",
			"fullName": "Short Pass",
			"password": "secret", // 6 chars, minimum is 7
		}, true)

		request := httptest.NewRequest(http.MethodPost, "/users/register", body)
		request.Header.Set("Content-Type", contentType)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		envelope := decodeEnvelope(t, recorder)
		assert.Equal(t, "VALIDATION_ERROR", envelope["code"])
	})

	t.Run("missing_avatar", func(t *testing.T) {
		body, contentType := registerForm(t, map[string]string{
			"username": "noavatar",
			"email":    "noavatar@vidora.app",
			"fullName": "No Avatar",
			"password": "secret1",
		}, false)

		request := httptest.NewRequest(http.MethodPost, "/users/register", body)
		request.Header.Set("Content-Type", contentType)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		envelope := decodeEnvelope(t, recorder)
		assert.Equal(t, "MISSING_AVATAR", envelope["code"])
	})

	t.Run("duplicate_username", func(t *testing.T) {
		body, contentType := registerForm(t, map[string]string{
			"username": "chaiaroma",
			"email":    "fresh@vidora.app",
			"fullName": "Dup",
			"password": "secret1",
		}, true)

		request := httptest.NewRequest(http.MethodPost, "/users/register", body)
		request.Header.Set("Content-Type", contentType)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusConflict, recorder.Code)
		envelope := decodeEnvelope(t, recorder)
		assert.Equal(t, "CONFLICT", envelope["code"])
		assert.Equal(t, "Username already registered.", envelope["message"])
	})
}

// # Login Endpoint

func TestHandler_Login(t *testing.T) {
	f, server := newTestServer(t)
	f.registerUser(t, "chaiaroma", "chai@vidora.app", "secret1")

	t.Run("success_sets_cookie_pair", func(t *testing.T) {
		recorder := doLogin(t, server, `{"username":"chaiaroma","password":"secret1"}`)
		require.Equal(t, http.StatusOK, recorder.Code)

		accessCookie := cookieByName(recorder, "accessToken")
		refreshCookie := cookieByName(recorder, "refreshToken")
		require.NotNil(t, accessCookie)
		require.NotNil(t, refreshCookie)
		assert.True(t, accessCookie.HttpOnly)
		assert.True(t, refreshCookie.HttpOnly)

		envelope := decodeEnvelope(t, recorder)
		data := envelope["data"].(map[string]any)
		assert.Equal(t, accessCookie.Value, data["accessToken"])
		assert.Equal(t, refreshCookie.Value, data["refreshToken"])
		user := data["user"].(map[string]any)
		assert.Equal(t, "chaiaroma", user["username"])
	})

	t.Run("by_email", func(t *testing.T) {
		recorder := doLogin(t, server, `{"email":"chai@vidora.app","password":"secret1"}`)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("unknown_user_is_404", func(t *testing.T) {
		recorder := doLogin(t, server, `{"username":"ghost","password":"secret1"}`)
		require.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, recorder)["code"])
	})

	t.Run("wrong_password_is_401", func(t *testing.T) {
		recorder := doLogin(t, server, `{"username":"chaiaroma","password":"nope-wrong"}`)
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope(t, recorder)["code"])
	})

	t.Run("missing_identifier_is_400", func(t *testing.T) {
		recorder := doLogin(t, server, `{"password":"secret1"}`)
		require.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, recorder)["code"])
	})
}

// # Refresh Endpoint

func TestHandler_Refresh(t *testing.T) {
	f, server := newTestServer(t)
	f.registerUser(t, "chaiaroma", "chai@vidora.app", "secret1")

	login := doLogin(t, server, `{"username":"chaiaroma","password":"secret1"}`)
	require.Equal(t, http.StatusOK, login.Code)
	oldRefresh := cookieByName(login, "refreshToken")
	require.NotNil(t, oldRefresh)

	t.Run("cookie_rotation", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/users/refresh", nil)
		request.AddCookie(oldRefresh)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)
		rotated := cookieByName(recorder, "refreshToken")
		require.NotNil(t, rotated)
		assert.NotEqual(t, oldRefresh.Value, rotated.Value)

		// The cookie that performed the rotation is single-use.
		replay := httptest.NewRequest(http.MethodPost, "/users/refresh", nil)
		replay.AddCookie(oldRefresh)
		replayRecorder := httptest.NewRecorder()
		server.ServeHTTP(replayRecorder, replay)
		assert.Equal(t, http.StatusUnauthorized, replayRecorder.Code)
	})

	t.Run("body_fallback", func(t *testing.T) {
		// Fetch the currently stored token via a fresh login.
		login := doLogin(t, server, `{"username":"chaiaroma","password":"secret1"}`)
		data := decodeEnvelope(t, login)["data"].(map[string]any)
		payload, err := json.Marshal(map[string]string{"refreshToken": data["refreshToken"].(string)})
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodPost, "/users/refresh", bytes.NewReader(payload))
		request.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("missing_token", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/users/refresh", nil)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeEnvelope(t, recorder)["code"])
	})
}

// # Protected Endpoints

func TestHandler_LogoutFlow(t *testing.T) {
	f, server := newTestServer(t)
	f.registerUser(t, "chaiaroma", "chai@vidora.app", "secret1")

	t.Run("anonymous_is_401", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	login := doLogin(t, server, `{"username":"chaiaroma","password":"secret1"}`)
	accessCookie := cookieByName(login, "accessToken")
	refreshCookie := cookieByName(login, "refreshToken")
	require.NotNil(t, accessCookie)
	require.NotNil(t, refreshCookie)

	t.Run("logout_clears_cookies_and_revokes", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
		request.AddCookie(accessCookie)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)
		cleared := cookieByName(recorder, "refreshToken")
		require.NotNil(t, cleared)
		assert.Less(t, cleared.MaxAge, 0)

		// The refresh token issued at login is dead after logout.
		refresh := httptest.NewRequest(http.MethodPost, "/users/refresh", nil)
		refresh.AddCookie(refreshCookie)
		refreshRecorder := httptest.NewRecorder()
		server.ServeHTTP(refreshRecorder, refresh)
		assert.Equal(t, http.StatusUnauthorized, refreshRecorder.Code)
	})
}

func TestHandler_ChangePassword(t *testing.T) {
	f, server := newTestServer(t)
	f.registerUser(t, "chaiaroma", "chai@vidora.app", "secret1")

	login := doLogin(t, server, `{"username":"chaiaroma","password":"secret1"}`)
	data := decodeEnvelope(t, login)["data"].(map[string]any)
	accessToken := data["accessToken"].(string)

	doChange := func(t *testing.T, payload string) *httptest.ResponseRecorder {
		t.Helper()
		request := httptest.NewRequest(http.MethodPatch, "/users/change-password", strings.NewReader(payload))
		request.Header.Set("Content-Type", "application/json")
		// Bearer header auth: the cookie is not the only carrier.
		request.Header.Set("Authorization", "Bearer "+accessToken)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, request)
		return recorder
	}

	t.Run("wrong_old_password", func(t *testing.T) {
		recorder := doChange(t, `{"oldPassword":"wrong","newPassword":"brand-new-pass"}`)
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope(t, recorder)["code"])
	})

	t.Run("missing_new_password", func(t *testing.T) {
		recorder := doChange(t, `{"oldPassword":"secret1"}`)
		require.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, recorder)["code"])
	})

	t.Run("success", func(t *testing.T) {
		recorder := doChange(t, `{"oldPassword":"secret1","newPassword":"brand-new-pass"}`)
		require.Equal(t, http.StatusOK, recorder.Code)

		// Login flips to the new password.
		assert.Equal(t, http.StatusUnauthorized,
			doLogin(t, server, `{"username":"chaiaroma","password":"secret1"}`).Code)
		assert.Equal(t, http.StatusOK,
			doLogin(t, server, `{"username":"chaiaroma","password":"brand-new-pass"}`).Code)
	})

	t.Run("short_new_password_accepted", func(t *testing.T) {
		// The registration length floor does not apply here.
		recorder := doChange(t, `{"oldPassword":"brand-new-pass","newPassword":"abc"}`)
		require.Equal(t, http.StatusOK, recorder.Code)

		assert.Equal(t, http.StatusOK,
			doLogin(t, server, `{"username":"chaiaroma","password":"abc"}`).Code)
	})
}
