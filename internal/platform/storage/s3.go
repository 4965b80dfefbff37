// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

/*
Package storage provides object storage for user-uploaded media.

It speaks the S3 API, which keeps the implementation portable across AWS S3
and S3-compatible services (MinIO, Cloudflare R2, DigitalOcean Spaces). The
rest of the application only sees the Uploader interface and public URLs.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vidora/vidora/internal/platform/constants"
)

// Uploader stores multipart uploads and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, fileHeader *multipart.FileHeader, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// S3Client is the subset of the AWS SDK client used by S3Storage.
// Narrowing the surface keeps tests free of network access.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config carries the connection settings for the object store.
type S3Config struct {
	Bucket      string
	Region      string
	AccessKeyID string
	SecretKey   string

	// Endpoint overrides the AWS endpoint for S3-compatible services.
	Endpoint string

	// PublicBaseURL is the base under which stored objects are reachable.
	// Derived from Bucket/Region (or Endpoint) when empty.
	PublicBaseURL string
}

// S3Storage implements Uploader on top of an S3-compatible bucket.
// It is safe for concurrent use.
type S3Storage struct {
	client  S3Client
	bucket  string
	baseURL string
}

// NewS3Storage builds an S3Storage from configuration.
//
// # Parameters
//   - ctx: Context for loading the AWS configuration chain.
//   - cfg: Bucket, region, credentials, and optional custom endpoint.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, errors.New("storage: bucket and region are required")
	}

	awsOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	// Static credentials for self-hosted S3-compatible stores; the default
	// chain (env, instance profile) applies when they are absent.
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		awsOptions = append(awsOptions,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretKey,
				"",
			)),
		)
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing is what MinIO and friends expect.
			options.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: resolveBaseURL(cfg),
	}, nil
}

// NewS3StorageWithClient wires a pre-built client. Used by tests.
func NewS3StorageWithClient(client S3Client, cfg S3Config) *S3Storage {
	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: resolveBaseURL(cfg),
	}
}

// Upload streams a multipart file to the bucket under the given key and
// returns the object's public URL.
//
// The call is bounded by UploadTimeout so a stalled object store fails the
// request instead of holding it open.
func (storage *S3Storage) Upload(ctx context.Context, fileHeader *multipart.FileHeader, key string) (string, error) {
	if fileHeader == nil {
		return "", errors.New("storage: nil file header")
	}

	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("storage: invalid object key %q", key)
	}

	source, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("storage: failed to open upload: %w", err)
	}
	defer func() { _ = source.Close() }()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploadCtx, cancel := context.WithTimeout(ctx, constants.UploadTimeout)
	defer cancel()

	_, err = storage.client.PutObject(uploadCtx, &s3.PutObjectInput{
		Bucket:        aws.String(storage.bucket),
		Key:           aws.String(key),
		Body:          source,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(fileHeader.Size),
	})
	if err != nil {
		return "", fmt.Errorf("storage: failed to store object %q: %w", key, err)
	}

	return storage.baseURL + key, nil
}

// Delete removes an object from the bucket. Missing objects are not an error.
func (storage *S3Storage) Delete(ctx context.Context, key string) error {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("storage: invalid object key %q", key)
	}

	deleteCtx, cancel := context.WithTimeout(ctx, constants.UploadTimeout)
	defer cancel()

	_, err := storage.client.DeleteObject(deleteCtx, &s3.DeleteObjectInput{
		Bucket: aws.String(storage.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: failed to delete object %q: %w", key, err)
	}

	return nil
}

// resolveBaseURL derives the public serving root for stored objects.
func resolveBaseURL(cfg S3Config) string {
	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return baseURL
}
