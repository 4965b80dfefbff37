// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/storage"
)

// fakeS3Client records PutObject calls without touching the network.
type fakeS3Client struct {
	putKey      string
	putBody     []byte
	putErr      error
	deletedKeys []string
}

func (fake *fakeS3Client) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if fake.putErr != nil {
		return nil, fake.putErr
	}

	fake.putKey = *params.Key
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	fake.putBody = body

	return &s3.PutObjectOutput{}, nil
}

func (fake *fakeS3Client) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	fake.deletedKeys = append(fake.deletedKeys, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

// newFileHeader builds a real multipart.FileHeader from raw bytes.
func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)

	part, err := writer.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buffer, writer.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["avatar"]
	require.Len(t, files, 1)

	return files[0]
}

func TestS3Storage_Upload(t *testing.T) {
	fake := &fakeS3Client{}
	store := storage.NewS3StorageWithClient(fake, storage.S3Config{
		Bucket:        "vidora-media",
		Region:        "us-east-1",
		PublicBaseURL: "https://cdn.vidora.app",
	})

	fileHeader := newFileHeader(t, "avatar.png", []byte("png-bytes"))

	url, err := store.Upload(context.Background(), fileHeader, "avatars/abc.png")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.vidora.app/avatars/abc.png", url)
	assert.Equal(t, "avatars/abc.png", fake.putKey)
	assert.Equal(t, []byte("png-bytes"), fake.putBody)
}

func TestS3Storage_Upload_Failures(t *testing.T) {
	fileHeader := newFileHeader(t, "avatar.png", []byte("png-bytes"))

	t.Run("nil_header", func(t *testing.T) {
		store := storage.NewS3StorageWithClient(&fakeS3Client{}, storage.S3Config{Bucket: "b", Region: "r"})
		_, err := store.Upload(context.Background(), nil, "avatars/abc.png")
		assert.Error(t, err)
	})

	t.Run("path_traversal_key", func(t *testing.T) {
		store := storage.NewS3StorageWithClient(&fakeS3Client{}, storage.S3Config{Bucket: "b", Region: "r"})
		_, err := store.Upload(context.Background(), fileHeader, "avatars/../secrets")
		assert.Error(t, err)
	})

	t.Run("client_error", func(t *testing.T) {
		fake := &fakeS3Client{putErr: errors.New("bucket unreachable")}
		store := storage.NewS3StorageWithClient(fake, storage.S3Config{Bucket: "b", Region: "r"})
		_, err := store.Upload(context.Background(), fileHeader, "avatars/abc.png")
		assert.Error(t, err)
	})
}

func TestS3Storage_PublicURLDerivation(t *testing.T) {
	fake := &fakeS3Client{}
	fileHeader := newFileHeader(t, "a.png", []byte("x"))

	t.Run("aws_virtual_host", func(t *testing.T) {
		store := storage.NewS3StorageWithClient(fake, storage.S3Config{
			Bucket: "vidora-media",
			Region: "eu-west-1",
		})
		url, err := store.Upload(context.Background(), fileHeader, "k.png")
		require.NoError(t, err)
		assert.Equal(t, "https://vidora-media.s3.eu-west-1.amazonaws.com/k.png", url)
	})

	t.Run("custom_endpoint_path_style", func(t *testing.T) {
		store := storage.NewS3StorageWithClient(fake, storage.S3Config{
			Bucket:   "vidora-media",
			Region:   "us-east-1",
			Endpoint: "https://minio.internal:9000/",
		})
		url, err := store.Upload(context.Background(), fileHeader, "k.png")
		require.NoError(t, err)
		assert.Equal(t, "https://minio.internal:9000/vidora-media/k.png", url)
	})
}

func TestS3Storage_Delete(t *testing.T) {
	fake := &fakeS3Client{}
	store := storage.NewS3StorageWithClient(fake, storage.S3Config{Bucket: "b", Region: "r"})

	require.NoError(t, store.Delete(context.Background(), "avatars/abc.png"))
	assert.Equal(t, []string{"avatars/abc.png"}, fake.deletedKeys)

	assert.Error(t, store.Delete(context.Background(), "../escape"))
}
