package spyglass

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/justapithecus/spyglass/internal/byterange"
)

// Reader is a synchronous, seekable view of one remote object.
//
// Each Read issues exactly one ranged fetch against the store for the bytes
// the caller asked for; nothing is cached or prefetched. The object's total
// size is resolved once at Open and treated as immutable — remote mutation of
// the object during the Reader's lifetime is not supported.
//
// A Reader is not safe for concurrent use; callers must serialize access to
// a single instance (one Reader per goroutine). ReadAt is the exception: it
// does not touch the cursor and may be called concurrently. The underlying
// Store may be shared freely across Readers.
//
// There is nothing to close: each fetch is a self-contained request whose
// response stream is drained and released before the call returns.
type Reader struct {
	store Store
	uri   ObjectURI
	info  ObjectInfo
	pos   int64
	ctx   context.Context
}

var _ io.Reader = (*Reader)(nil)
var _ io.Seeker = (*Reader)(nil)
var _ io.ReaderAt = (*Reader)(nil)
var _ io.WriterTo = (*Reader)(nil)

// Open parses an s3://bucket/key address and opens a Reader for it.
//
// Opening performs a single metadata request to resolve and cache the
// object's size, so a bad address or missing object fails here rather than
// on the first read. Check errors with errors.Is against ErrMalformedURI,
// ErrNotFound, and ErrAccessDenied.
//
// The context is retained and used for every subsequent fetch made through
// the returned Reader.
func Open(ctx context.Context, store Store, address string) (*Reader, error) {
	uri, err := ParseURI(address)
	if err != nil {
		return nil, err
	}
	return OpenURI(ctx, store, uri)
}

// OpenURI opens a Reader for an already-parsed object URI.
func OpenURI(ctx context.Context, store Store, uri ObjectURI) (*Reader, error) {
	if store == nil {
		return nil, errors.New("spyglass: store is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	info, err := store.Head(ctx, uri.Bucket(), uri.Key())
	if err != nil {
		return nil, fmt.Errorf("spyglass: open %s: %w", uri, err)
	}

	return &Reader{
		store: store,
		uri:   uri,
		info:  info,
		ctx:   ctx,
	}, nil
}

// URI returns the object's parsed address.
func (r *Reader) URI() ObjectURI {
	return r.uri
}

// Size returns the object's total length in bytes, cached at Open.
// It performs no I/O and is stable for the Reader's lifetime.
func (r *Reader) Size() int64 {
	return r.info.Size
}

// Position returns the current cursor, in bytes from the start of the object.
func (r *Reader) Position() int64 {
	return r.pos
}

// Info returns the object metadata cached at Open.
func (r *Reader) Info() ObjectInfo {
	return r.info
}

// Read fetches up to len(p) bytes from the current cursor and advances it by
// the number of bytes read.
//
// A read at or past end-of-object returns (0, io.EOF). A read near the end
// returns fewer bytes than requested; that is the only partial-read case —
// within the object, the fetched range is fully drained before returning.
// On failure the cursor is left exactly where it was, so retrying the same
// Read is safe and re-fetches the same range.
func (r *Reader) Read(p []byte) (int, error) {
	if r.pos >= r.info.Size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := r.pos + int64(len(p))
	if end > r.info.Size {
		end = r.info.Size
	}

	n, err := r.fetch(p[:end-r.pos], r.pos)
	if err != nil {
		return 0, err
	}
	r.pos += int64(n)
	return n, nil
}

// Seek sets the cursor per io.Seeker semantics and returns its new value.
//
// Seeking past end-of-object is legal, as with local files; a subsequent
// Read simply returns io.EOF. Negative or unrepresentable targets fail with
// an error wrapping ErrInvalidSeek, leaving the cursor unchanged. Seek
// performs no I/O.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	target, err := byterange.Position(r.info.Size, r.pos, offset, whence)
	if err != nil {
		return 0, fmt.Errorf("spyglass: %w: %v", ErrInvalidSeek, err)
	}
	r.pos = target
	return target, nil
}

// ReadAt fetches len(p) bytes starting at off, without touching the cursor.
//
// Per the io.ReaderAt contract it returns io.EOF when fewer than len(p)
// bytes are available. ReadAt is safe for concurrent use.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("spyglass: %w: negative offset %d", ErrInvalidSeek, off)
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= r.info.Size {
		return 0, io.EOF
	}

	end := off + int64(len(p))
	if end > r.info.Size {
		end = r.info.Size
	}

	n, err := r.fetch(p[:end-off], off)
	if err != nil {
		return 0, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteTo copies everything from the cursor to end-of-object into w using a
// single ranged fetch, then advances the cursor by the bytes written.
//
// This makes io.Copy and io.ReadAll issue one request for the remainder
// instead of a sequence of small ranged reads; remote round trips dominate
// cost here, not buffer sizes. If the copy fails partway, the cursor still
// advances by the bytes already delivered to w.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	if r.pos >= r.info.Size {
		return 0, nil
	}

	rc, err := r.store.GetRange(r.ctx, r.uri.bucket, r.uri.key, r.pos, r.info.Size)
	if err != nil {
		return 0, fmt.Errorf("spyglass: range [%d,%d) of %s: %w", r.pos, r.info.Size, r.uri, err)
	}
	defer func() { _ = rc.Close() }()

	want := r.info.Size - r.pos
	n, err := io.Copy(w, rc)
	r.pos += n
	if err != nil {
		return n, fmt.Errorf("spyglass: draining %s: %w", r.uri, err)
	}
	if n < want {
		// A stream that ends before the in-bounds range is fully delivered
		// is a transport failure, not a partial copy.
		return n, fmt.Errorf("spyglass: draining range [%d,%d) of %s: %w", r.pos-n, r.info.Size, r.uri, io.ErrUnexpectedEOF)
	}
	return n, nil
}

// fetch fills p with the bytes at [off, off+len(p)) of the object,
// fully draining the response stream before returning.
func (r *Reader) fetch(p []byte, off int64) (int, error) {
	end := off + int64(len(p))

	rc, err := r.store.GetRange(r.ctx, r.uri.bucket, r.uri.key, off, end)
	if err != nil {
		return 0, fmt.Errorf("spyglass: range [%d,%d) of %s: %w", off, end, r.uri, err)
	}
	defer func() { _ = rc.Close() }()

	n, err := io.ReadFull(rc, p)
	if err != nil {
		// A short response for an in-bounds range is a transport failure,
		// not a partial read.
		return 0, fmt.Errorf("spyglass: draining range [%d,%d) of %s: %w", off, end, r.uri, err)
	}
	return n, nil
}
