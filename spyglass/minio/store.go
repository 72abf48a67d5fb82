// Package minio provides a MinIO storage backend for spyglass, using the
// native MinIO client rather than the AWS SDK.
//
// Prefer this adapter when the rest of an application already speaks
// minio-go; functionally it is interchangeable with the s3 adapter pointed
// at a MinIO endpoint.
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/justapithecus/spyglass/spyglass"
)

// Store implements spyglass.Store using a MinIO client.
type Store struct {
	client *minio.Client
}

var _ spyglass.Store = (*Store)(nil)

// New creates a MinIO store with the given client.
//
// The client must be pre-configured with endpoint and credentials via
// minio.New.
func New(client *minio.Client) (*Store, error) {
	if client == nil {
		return nil, errors.New("minio: client is required")
	}
	return &Store{client: client}, nil
}

// Head implements spyglass.Store.
func (s *Store) Head(ctx context.Context, bucket, key string) (spyglass.ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if mapped := mapError(err); mapped != nil {
			return spyglass.ObjectInfo{}, mapped
		}
		return spyglass.ObjectInfo{}, fmt.Errorf("minio: stat object: %w", err)
	}

	return spyglass.ObjectInfo{
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

// GetRange implements spyglass.Store.
//
// The half-open interval [start, end) is mapped onto MinIO's inclusive range
// option. The interval must be non-empty and within the object.
func (s *Store) GetRange(ctx context.Context, bucket, key string, start, end int64) (io.ReadCloser, error) {
	if start < 0 || end <= start {
		return nil, fmt.Errorf("minio: invalid range [%d,%d)", start, end)
	}

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(start, end-1); err != nil {
		return nil, fmt.Errorf("minio: setting range: %w", err)
	}

	// GetObject defers the request until the first Read on the returned
	// object, so missing keys and denied access on this path surface as
	// errors while draining the stream rather than as mapped sentinels.
	obj, err := s.client.GetObject(ctx, bucket, key, opts)
	if err != nil {
		if mapped := mapError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("minio: get object: %w", err)
	}

	return obj, nil
}

// mapError translates MinIO failures onto the spyglass sentinels.
// Returns nil for errors that should pass through as transport failures.
func mapError(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return spyglass.ErrNotFound
	case "AccessDenied":
		return spyglass.ErrAccessDenied
	}
	return nil
}
