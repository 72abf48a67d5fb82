// Package spyglass presents remote, immutable objects in object storage as
// seekable byte streams.
//
// A Reader implements io.Reader, io.Seeker, io.ReaderAt, and io.WriterTo over
// a single remote object, translating each read into one ranged fetch. It
// never downloads more than a read asks for and keeps no cache between calls.
package spyglass

import (
	"context"
	"errors"
	"io"
	"time"
)

// -----------------------------------------------------------------------------
// Store interface
// -----------------------------------------------------------------------------

// ObjectInfo describes a remote object as reported by the store.
type ObjectInfo struct {
	// Size is the object's total length in bytes.
	Size int64

	// ETag is the backend's entity tag, if provided.
	ETag string

	// ContentType is the backend's reported media type, if provided.
	ContentType string

	// LastModified is the backend's modification timestamp, if provided.
	LastModified time.Time
}

// Store abstracts the object-store client a Reader fetches through.
//
// Implementations may target AWS S3, MinIO, the local filesystem, or memory.
// A single Store is safe to share across many Readers; connection and
// credential reuse is the implementation's concern.
type Store interface {
	// Head returns metadata about an object without fetching its content.
	// Returns ErrNotFound if the object does not exist and ErrAccessDenied
	// on an authorization failure.
	Head(ctx context.Context, bucket, key string) (ObjectInfo, error)

	// GetRange fetches the half-open byte interval [start, end) of an object.
	// The returned stream carries exactly that interval and must be drained
	// and closed by the caller. Returns ErrNotFound if the object does not
	// exist and ErrAccessDenied on an authorization failure.
	GetRange(ctx context.Context, bucket, key string, start, end int64) (io.ReadCloser, error)
}

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

// Error sentinel values for common conditions.
var (
	// ErrMalformedURI indicates an object address that is not of the form
	// s3://bucket/key.
	ErrMalformedURI = errors.New("malformed object URI")

	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrAccessDenied indicates the store rejected the request for
	// authorization reasons.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidSeek indicates a seek to a position that cannot be
	// represented, such as a negative offset.
	ErrInvalidSeek = errors.New("invalid seek")
)
