// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package video

import "context"

// # Video Data Access

// VideoRepository defines the data access contract for the video catalogue.
type VideoRepository interface {

	/*
		Create persists a brand-new video record.

		Parameters:
		  - context: context.Context
		  - video: *Video

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, video *Video) error

	/*
		FindByID returns the video with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Video: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Video, error)

	/*
		ListByOwner returns a page of videos belonging to one channel,
		newest first.

		Parameters:
		  - context: context.Context
		  - ownerID: string
		  - limit: int
		  - offset: int

		Returns:
		  - []*Video: Page of videos
		  - error: Retrieval failures
	*/
	ListByOwner(context context.Context, ownerID string, limit, offset int) ([]*Video, error)

	/*
		IncrementViews bumps the view counter by one.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	IncrementViews(context context.Context, id string) error

	/*
		SetPublished flips the publication flag.

		Parameters:
		  - context: context.Context
		  - id: string
		  - published: bool

		Returns:
		  - error: Persistence failures
	*/
	SetPublished(context context.Context, id string, published bool) error
}
