// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Every response (Success or Error) across the entire application follows
// one JSON envelope: status_code, data, message. Errors additionally carry
// a machine-readable code and optional field details, and never a data
// payload. This consistency is crucial for mobile apps and frontend SPAs
// to parse responses robustly.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/ctxutil"
)

// SuccessEnvelope is the JSON envelope for successful responses.
type SuccessEnvelope struct {
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
}

// ErrorEnvelope is the JSON envelope for error responses. It carries no data.
type ErrorEnvelope struct {
	StatusCode int                 `json:"status_code"`
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Details    []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response wrapped in the standard success envelope.
func OK(writer http.ResponseWriter, data interface{}, message string) {
	JSON(writer, http.StatusOK, SuccessEnvelope{
		StatusCode: http.StatusOK,
		Data:       data,
		Message:    message,
	})
}

// Created writes a 201 Created response wrapped in the standard success envelope.
func Created(writer http.ResponseWriter, data interface{}, message string) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{
		StatusCode: http.StatusCreated,
		Data:       data,
		Message:    message,
	})
}

// Error converts any Go error into a standardized JSON API error response.
//
// Non-[apperr.AppError] values are logged server-side and surface as a
// generic 500 so internal details (driver errors, stack traces) never
// reach the client.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		StatusCode: appError.HTTPStatus,
		Code:       appError.Code,
		Message:    appError.Message,
		Details:    appError.Details,
	})
}
