// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package video

import (
	"context"
	"mime/multipart"
	"path/filepath"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/pkg/slug"
	"github.com/vidora/vidora/pkg/uuid"
)

// # Contracts & Types

// MediaStorage is the slice of object storage the video flow needs.
type MediaStorage interface {
	// Upload stores the file under the given key and returns its public URL.
	Upload(ctx context.Context, fileHeader *multipart.FileHeader, key string) (string, error)
}

// Service orchestrates the business logic for the video catalogue.
type Service struct {
	videoRepository VideoRepository
	mediaStorage    MediaStorage
}

// NewService constructs a new [Service] with its dependencies.
func NewService(videoRepo VideoRepository, media MediaStorage) *Service {
	return &Service{
		videoRepository: videoRepo,
		mediaStorage:    media,
	}
}

// # Publishing

// PublishInput holds the data required to publish a new video.
type PublishInput struct {
	Title       string
	Description string
	Duration    float64
	VideoFile   *multipart.FileHeader
	Thumbnail   *multipart.FileHeader
}

/*
Publish uploads the media pair and persists a new published video.

Description: Both files are mandatory. Uploads happen before the row is
written, so a failed upload never leaves a catalogue entry pointing at
nothing.

Parameters:
  - context: context.Context
  - ownerID: string
  - input: PublishInput

Returns:
  - *Video: Created entity
  - error: MISSING_VIDEO, MISSING_THUMBNAIL, UPLOAD_FAILED, or storage errors
*/
func (service *Service) Publish(context context.Context, ownerID string, input PublishInput) (*Video, error) {
	if input.VideoFile == nil {
		return nil, apperr.MissingFile("MISSING_VIDEO", "Video file is required")
	}
	if input.Thumbnail == nil {
		return nil, apperr.MissingFile("MISSING_THUMBNAIL", "Thumbnail file is required")
	}

	titleSlug := slug.From(input.Title)

	videoURL, err := service.mediaStorage.Upload(context, input.VideoFile,
		"videos/"+titleSlug+"-"+uuid.New()+filepath.Ext(input.VideoFile.Filename))
	if err != nil {
		return nil, apperr.UploadFailed("Failed to upload video", err)
	}

	thumbnailURL, err := service.mediaStorage.Upload(context, input.Thumbnail,
		"thumbnails/"+titleSlug+"-"+uuid.New()+filepath.Ext(input.Thumbnail.Filename))
	if err != nil {
		return nil, apperr.UploadFailed("Failed to upload thumbnail", err)
	}

	video := &Video{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Title:        input.Title,
		Description:  input.Description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		Duration:     input.Duration,
		IsPublished:  true,
	}

	if err := service.videoRepository.Create(context, video); err != nil {
		return nil, err
	}

	return video, nil
}

// # Lookups

/*
Get fetches a video by ID and counts the view.

Description: The view-count increment is best effort: a failed bump never
fails the read. The returned entity reflects the incremented count.

Parameters:
  - context: context.Context
  - videoID: string

Returns:
  - *Video: Hydrated entity
  - error: apperr.NotFound or retrieval failures
*/
func (service *Service) Get(context context.Context, videoID string) (*Video, error) {
	video, err := service.videoRepository.FindByID(context, videoID)
	if err != nil {
		return nil, err
	}

	if err := service.videoRepository.IncrementViews(context, videoID); err == nil {
		video.Views++
	}

	return video, nil
}

/*
ListByChannel returns a page of a channel's videos, newest first.

Parameters:
  - context: context.Context
  - ownerID: string
  - limit: int (clamped to [1, MaxPageSize]; 0 means DefaultPageSize)
  - offset: int

Returns:
  - []*Video: Page of videos
  - error: Retrieval failures
*/
func (service *Service) ListByChannel(context context.Context, ownerID string, limit, offset int) ([]*Video, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return service.videoRepository.ListByOwner(context, ownerID, limit, offset)
}

// # Publication Control

/*
TogglePublish flips a video's publication flag, enforcing ownership.

Parameters:
  - context: context.Context
  - ownerID: string (the caller)
  - videoID: string

Returns:
  - *Video: Entity with the flipped flag
  - error: Forbidden when the caller does not own the video
*/
func (service *Service) TogglePublish(context context.Context, ownerID, videoID string) (*Video, error) {
	video, err := service.videoRepository.FindByID(context, videoID)
	if err != nil {
		return nil, err
	}

	if video.OwnerID != ownerID {
		return nil, apperr.Forbidden("You do not own this video")
	}

	if err := service.videoRepository.SetPublished(context, videoID, !video.IsPublished); err != nil {
		return nil, err
	}

	video.IsPublished = !video.IsPublished
	return video, nil
}
