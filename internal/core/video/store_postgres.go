// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package video

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidora/vidora/internal/platform/dberr"
)

// # Video Repository

// PostgresVideoRepository implements the VideoRepository interface using pgx.
type PostgresVideoRepository struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new PostgreSQL implementation of the VideoRepository.
func NewVideoRepository(pool *pgxpool.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

const videoColumns = `
	id, ownerid, title, description, videourl, thumbnailurl,
	duration, views, ispublished, createdat, updatedat`

func scanVideo(row interface{ Scan(dest ...any) error }) (*Video, error) {
	video := &Video{}
	err := row.Scan(
		&video.ID,
		&video.OwnerID,
		&video.Title,
		&video.Description,
		&video.VideoURL,
		&video.ThumbnailURL,
		&video.Duration,
		&video.Views,
		&video.IsPublished,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err)
	}
	return video, nil
}

/*
Create persists a new video record into the core.video table.

Parameters:
  - context: context.Context
  - video: *Video

Returns:
  - error: Wrapped persistence failures
*/
func (repository *PostgresVideoRepository) Create(context context.Context, video *Video) error {
	const query = `
		INSERT INTO core.video (
			id, ownerid, title, description, videourl, thumbnailurl,
			duration, views, ispublished, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	now := time.Now()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	video.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		video.ID,
		video.OwnerID,
		video.Title,
		video.Description,
		video.VideoURL,
		video.ThumbnailURL,
		video.Duration,
		video.Views,
		video.IsPublished,
		video.CreatedAt,
		video.UpdatedAt,
	)

	return dberr.Wrap(err)
}

/*
FindByID retrieves a video by its unique ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Video: Hydrated entity
  - error: apperr.NotFound or wrapped execution errors
*/
func (repository *PostgresVideoRepository) FindByID(context context.Context, id string) (*Video, error) {
	const query = `SELECT ` + videoColumns + ` FROM core.video WHERE id = $1`
	return scanVideo(repository.pool.QueryRow(context, query, id))
}

/*
ListByOwner retrieves a page of a channel's videos, newest first.

Parameters:
  - context: context.Context
  - ownerID: string
  - limit: int
  - offset: int

Returns:
  - []*Video: Page of videos
  - error: Wrapped retrieval failures
*/
func (repository *PostgresVideoRepository) ListByOwner(context context.Context, ownerID string, limit, offset int) ([]*Video, error) {
	const query = `
		SELECT ` + videoColumns + `
		FROM core.video
		WHERE ownerid = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, ownerID, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(err)
	}
	defer rows.Close()

	videos := []*Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}

	return videos, dberr.Wrap(rows.Err())
}

/*
IncrementViews bumps the view counter atomically.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Wrapped execution errors
*/
func (repository *PostgresVideoRepository) IncrementViews(context context.Context, id string) error {
	const query = "UPDATE core.video SET views = views + 1 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id)
	return dberr.Wrap(err)
}

/*
SetPublished flips the publication flag.

Parameters:
  - context: context.Context
  - id: string
  - published: bool

Returns:
  - error: Wrapped execution errors
*/
func (repository *PostgresVideoRepository) SetPublished(context context.Context, id string, published bool) error {
	const query = "UPDATE core.video SET ispublished = $2, updatedat = $3 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id, published, time.Now())
	return dberr.Wrap(err)
}
