// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

/*
Package video defines the core domain entities for the Vidora catalogue.

It manages the lifecycle of uploaded videos: publishing (media + thumbnail
upload), discovery by channel, and view accounting.

Core Responsibility:

  - Catalogue: Owns the Video entity and its publication state.
  - Media: Coordinates object-storage uploads for the video and thumbnail.
  - Analytics: Tracks view counts for ranking.

This package acts as the source of truth for all content-related data models.
*/
package video

import "time"

// # Domain Entities

// Video represents a single uploaded video on the platform.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Duration     float64   `json:"duration"` // seconds
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Field Identifiers

// Global field names for validation and payload mapping in the video domain.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldVideoFile   = "videoFile"
	FieldThumbnail   = "thumbnail"
	FieldDuration    = "duration"
	FieldVideoID     = "id"
)

// # Listing Defaults

const (
	// DefaultPageSize is the listing page size when the client sends none.
	DefaultPageSize = 20

	// MaxPageSize caps the listing page size.
	MaxPageSize = 100
)
