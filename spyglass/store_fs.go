package spyglass

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// -----------------------------------------------------------------------------
// Filesystem Store
// -----------------------------------------------------------------------------

// errEscapesRoot indicates a bucket/key that would resolve outside the
// store's root directory.
var errEscapesRoot = errors.New("fs: path escapes store root")

// fsStore implements Store over the local filesystem.
// A bucket maps to a directory under the root; keys are relative paths.
type fsStore struct {
	root string
}

// NewFSStore creates a filesystem-backed Store rooted at the given directory.
// The directory must exist. Useful for development and tests; the semantics
// match the remote backends (ranged reads, ErrNotFound on missing files).
func NewFSStore(root string) (Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, os.ErrNotExist
	}
	return &fsStore{root: root}, nil
}

// Head implements Store.
func (f *fsStore) Head(_ context.Context, bucket, key string) (ObjectInfo, error) {
	fullPath, err := f.safePath(bucket, key)
	if err != nil {
		return ObjectInfo{}, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return ObjectInfo{}, mapFSError(err)
	}
	if info.IsDir() {
		return ObjectInfo{}, ErrNotFound
	}

	return ObjectInfo{
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, nil
}

// GetRange implements Store.
func (f *fsStore) GetRange(_ context.Context, bucket, key string, start, end int64) (io.ReadCloser, error) {
	fullPath, err := f.safePath(bucket, key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, mapFSError(err)
	}

	return &sectionReadCloser{
		SectionReader: io.NewSectionReader(file, start, end-start),
		file:          file,
	}, nil
}

// safePath resolves bucket/key under the root, rejecting escapes.
func (f *fsStore) safePath(bucket, key string) (string, error) {
	root := filepath.Clean(f.root)
	full := filepath.Join(root, bucket, filepath.FromSlash(key))

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", errEscapesRoot
	}
	return full, nil
}

func mapFSError(err error) error {
	switch {
	case os.IsNotExist(err):
		return ErrNotFound
	case os.IsPermission(err):
		return ErrAccessDenied
	default:
		return err
	}
}

// sectionReadCloser bundles a section view of a file with the file's Close.
type sectionReadCloser struct {
	*io.SectionReader
	file *os.File
}

func (s *sectionReadCloser) Close() error {
	return s.file.Close()
}
