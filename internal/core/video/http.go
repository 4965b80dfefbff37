// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

// HTTP delivery layer for the video catalogue.
package video

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vidora/vidora/internal/platform/middleware"
	requestutil "github.com/vidora/vidora/internal/platform/request"
	"github.com/vidora/vidora/internal/platform/respond"
	"github.com/vidora/vidora/internal/platform/validate"
	"github.com/vidora/vidora/pkg/pagination"
)

// Handler implements video-related HTTP endpoints.
type Handler struct {
	videoService *Service
}

// NewHandler constructs a new video [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{videoService: service}
}

// RegisterRoutes attaches the video endpoints to the videos router.
//
// # Endpoints (all protected)
//   - POST  /                     : Publish a new video (multipart).
//   - GET   /{id}                 : Fetch a video (counts the view).
//   - GET   /channel/{ownerID}    : Page through a channel's videos.
//   - PATCH /{id}/toggle-publish  : Flip the publication flag (owner only).
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Post("/", handler.publish)
		r.Get("/{id}", handler.get)
		r.Get("/channel/{ownerID}", handler.listByChannel)
		r.Patch("/{id}/toggle-publish", handler.togglePublish)
	})
}

/*
Publish uploads and registers a new video.

POST /api/v1/videos

Request:
  - Multipart fields: title, description, duration (seconds)
  - Multipart files: videoFile, thumbnail

Response:
  - 201: Video: Created catalogue entry
  - 400: VALIDATION_ERROR / MISSING_VIDEO / MISSING_THUMBNAIL / UPLOAD_FAILED
*/
func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	videoFile, err := requestutil.FormFile(request, FieldVideoFile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	thumbnail, err := requestutil.FormFile(request, FieldThumbnail)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	title := request.FormValue(FieldTitle)
	duration, _ := strconv.ParseFloat(request.FormValue(FieldDuration), 64)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, title).
		MaxLen(FieldTitle, title, 200).
		Custom(FieldDuration, duration < 0, "Duration must not be negative")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	video, err := handler.videoService.Publish(request.Context(), userID, PublishInput{
		Title:       title,
		Description: request.FormValue(FieldDescription),
		Duration:    duration,
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, video, "Video published successfully")
}

/*
Get fetches one video and counts the view.

GET /api/v1/videos/{id}

Response:
  - 200: Video: Hydrated entity
  - 404: NOT_FOUND
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	videoID := requestutil.Param(request, FieldVideoID)

	video, err := handler.videoService.Get(request.Context(), videoID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, video, "Video fetched successfully")
}

/*
ListByChannel pages through a channel's videos, newest first.

GET /api/v1/videos/channel/{ownerID}?limit=&offset=

Response:
  - 200: []Video: Page of videos
*/
func (handler *Handler) listByChannel(writer http.ResponseWriter, request *http.Request) {
	ownerID := requestutil.Param(request, "ownerID")
	page := pagination.FromRequest(request)

	videos, err := handler.videoService.ListByChannel(request.Context(), ownerID, page.Limit, page.Offset)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, videos, "Channel videos fetched successfully")
}

/*
TogglePublish flips the publication flag of an owned video.

PATCH /api/v1/videos/{id}/toggle-publish

Response:
  - 200: Video: Entity with the flipped flag
  - 403: FORBIDDEN: Caller does not own the video
  - 404: NOT_FOUND
*/
func (handler *Handler) togglePublish(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	videoID := requestutil.Param(request, FieldVideoID)

	video, err := handler.videoService.TogglePublish(request.Context(), userID, videoID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, video, "Publish status toggled successfully")
}
