package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/justapithecus/spyglass/spyglass"
)

// -----------------------------------------------------------------------------
// Unit tests for the S3 store adapter.
// These use the mock client and don't require real S3/LocalStack/MinIO.
// -----------------------------------------------------------------------------

func TestNew_RequiresClient(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil client")
	}
}

func TestStore_Head(t *testing.T) {
	mock := NewMockS3Client()
	mock.PutObject("bucket", "path/to/file", []byte("hello world"))
	store, _ := New(mock)

	info, err := store.Head(context.Background(), "bucket", "path/to/file")
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if info.Size != 11 {
		t.Errorf("Size: expected 11, got %d", info.Size)
	}
	if info.ETag == "" {
		t.Error("ETag: expected non-empty")
	}
	if info.ContentType != "application/octet-stream" {
		t.Errorf("ContentType: got %q", info.ContentType)
	}
	if !info.LastModified.Equal(mockModTime) {
		t.Errorf("LastModified: got %v", info.LastModified)
	}
}

func TestStore_Head_NotFound(t *testing.T) {
	store, _ := New(NewMockS3Client())

	_, err := store.Head(context.Background(), "bucket", "missing")
	if !errors.Is(err, spyglass.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Head_AccessDenied(t *testing.T) {
	mock := NewMockS3Client()
	mock.PutObject("bucket", "secret", []byte("x"))
	mock.DenyAccess("bucket", "secret")
	store, _ := New(mock)

	_, err := store.Head(context.Background(), "bucket", "secret")
	if !errors.Is(err, spyglass.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
}

func TestStore_GetRange(t *testing.T) {
	mock := NewMockS3Client()
	mock.PutObject("bucket", "data", []byte("0123456789"))
	store, _ := New(mock)

	rc, err := store.GetRange(context.Background(), "bucket", "data", 2, 7)
	if err != nil {
		t.Fatalf("GetRange failed: %v", err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("reading range: %v", err)
	}
	if !bytes.Equal(data, []byte("23456")) {
		t.Errorf("range content: expected %q, got %q", "23456", data)
	}
}

func TestStore_GetRange_InvalidArgs(t *testing.T) {
	mock := NewMockS3Client()
	mock.PutObject("bucket", "data", []byte("0123456789"))
	store, _ := New(mock)

	if _, err := store.GetRange(context.Background(), "bucket", "data", -1, 5); err == nil {
		t.Error("expected error for negative start")
	}
	if _, err := store.GetRange(context.Background(), "bucket", "data", 5, 5); err == nil {
		t.Error("expected error for empty interval")
	}
}

func TestStore_GetRange_NotFound(t *testing.T) {
	store, _ := New(NewMockS3Client())

	_, err := store.GetRange(context.Background(), "bucket", "missing", 0, 1)
	if !errors.Is(err, spyglass.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// -----------------------------------------------------------------------------
// Reader over the S3 adapter
// -----------------------------------------------------------------------------

func seedReader(t *testing.T, n int) (*spyglass.Reader, *MockS3Client, []byte) {
	t.Helper()
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}

	mock := NewMockS3Client()
	mock.PutObject("bucket", "data.bin", data)
	store, err := New(mock)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	r, err := spyglass.Open(context.Background(), store, "s3://bucket/data.bin")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return r, mock, data
}

func TestReader_EndToEnd(t *testing.T) {
	r, mock, data := seedReader(t, 1000)

	if r.Size() != 1000 {
		t.Errorf("Size: expected 1000, got %d", r.Size())
	}
	if mock.HeadObjectCalls != 1 {
		t.Errorf("HeadObject calls at open: expected 1, got %d", mock.HeadObjectCalls)
	}

	if _, err := r.Seek(10, io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	buf := make([]byte, 100)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 100 || !bytes.Equal(buf, data[10:110]) {
		t.Error("Read: content mismatch for bytes 10..110")
	}

	// One ranged fetch per Read, none for Seek.
	if mock.GetObjectCalls != 1 {
		t.Errorf("GetObject calls: expected 1, got %d", mock.GetObjectCalls)
	}

	// Tail read through SeekEnd.
	if _, err := r.Seek(-5, io.SeekEnd); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	n, err = r.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 5 || !bytes.Equal(buf[:5], data[995:]) {
		t.Error("tail read: content mismatch")
	}

	if n, err := r.Read(buf); n != 0 || err != io.EOF {
		t.Errorf("read at end: expected (0, EOF), got (%d, %v)", n, err)
	}
	// The end-of-object read makes no network call.
	if mock.GetObjectCalls != 2 {
		t.Errorf("GetObject calls: expected 2, got %d", mock.GetObjectCalls)
	}
}

func TestReader_ReadAtThroughAdapter(t *testing.T) {
	r, _, data := seedReader(t, 1000)

	buf := make([]byte, 64)
	n, err := r.ReadAt(buf, 500)
	if err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if n != 64 || !bytes.Equal(buf, data[500:564]) {
		t.Error("ReadAt: content mismatch")
	}
	if r.Position() != 0 {
		t.Errorf("cursor after ReadAt: expected 0, got %d", r.Position())
	}
}

func TestReader_RetryAfterTransportFailure(t *testing.T) {
	r, mock, data := seedReader(t, 1000)

	if _, err := r.Seek(200, io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	mock.GetObjectFailOnCall = 1
	buf := make([]byte, 50)
	if _, err := r.Read(buf); err == nil {
		t.Fatal("expected read to fail")
	}
	if r.Position() != 200 {
		t.Errorf("cursor after failed read: expected 200, got %d", r.Position())
	}

	mock.GetObjectFailOnCall = 0
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if n != 50 || !bytes.Equal(buf, data[200:250]) {
		t.Error("retry: content mismatch")
	}
}

func TestOpen_NotFoundThroughAdapter(t *testing.T) {
	store, _ := New(NewMockS3Client())

	_, err := spyglass.Open(context.Background(), store, "s3://bucket/missing")
	if !errors.Is(err, spyglass.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpen_AccessDeniedThroughAdapter(t *testing.T) {
	mock := NewMockS3Client()
	mock.PutObject("bucket", "secret", []byte("x"))
	mock.DenyAccess("bucket", "secret")
	store, _ := New(mock)

	_, err := spyglass.Open(context.Background(), store, "s3://bucket/secret")
	if !errors.Is(err, spyglass.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
}
