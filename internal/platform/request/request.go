// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/constants"
	"github.com/vidora/vidora/internal/platform/ctxutil"
	"github.com/vidora/vidora/internal/platform/sec"
	"github.com/vidora/vidora/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
FormFile parses the multipart form (if not already parsed) and returns the
header of the single file uploaded under the given field name.

Returns:
  - *multipart.FileHeader: The uploaded file, or nil if the field is absent
  - error: validate.ErrInvalidJSON-equivalent for an unparsable form
*/
func FormFile(request *http.Request, field string) (*multipart.FileHeader, error) {
	if request.MultipartForm == nil {
		if err := request.ParseMultipartForm(constants.MaxMultipartMemory); err != nil {
			return nil, apperr.ValidationError("Invalid multipart form")
		}
	}

	files := request.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}

/*
User extracts the authenticated account view from the request context.

Returns nil if the request is not authenticated.
*/
func User(request *http.Request) *sec.AuthUser {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredUser ensures the request is authenticated and returns the account view.

Returns:
  - *sec.AuthUser: The authenticated account
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredUser(request *http.Request) (*sec.AuthUser, error) {
	user := ctxutil.GetAuthUser(request.Context())
	if user == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return user, nil
}

/*
RequiredUserID returns the account ID of the currently logged-in user.

Returns:
  - string: User UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {
	user, err := RequiredUser(request)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
