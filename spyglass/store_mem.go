package spyglass

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// -----------------------------------------------------------------------------
// Memory Store
// -----------------------------------------------------------------------------

// MemStore is an in-memory Store for tests and experimentation.
// It is safe for concurrent use.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	data     []byte
	modified time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[string]memObject),
	}
}

// Put stores an object, replacing any previous content.
// The data is copied, so the caller may reuse the slice.
func (m *MemStore) Put(bucket, key string, data []byte) {
	copied := make([]byte, len(data))
	copy(copied, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = memObject{data: copied, modified: time.Now()}
}

// Head implements Store.
func (m *MemStore) Head(_ context.Context, bucket, key string) (ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[bucket+"/"+key]
	if !ok {
		return ObjectInfo{}, ErrNotFound
	}
	return ObjectInfo{
		Size:         int64(len(obj.data)),
		ETag:         fmt.Sprintf("\"mem-%d\"", len(obj.data)),
		LastModified: obj.modified,
	}, nil
}

// GetRange implements Store. The requested interval must lie within the
// object; out-of-bounds ranges fail rather than clamp, mirroring S3's
// InvalidRange behavior.
func (m *MemStore) GetRange(_ context.Context, bucket, key string, start, end int64) (io.ReadCloser, error) {
	if start < 0 || end <= start {
		return nil, fmt.Errorf("mem: invalid range [%d,%d)", start, end)
	}

	m.mu.RLock()
	obj, ok := m.objects[bucket+"/"+key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if end > int64(len(obj.data)) {
		return nil, fmt.Errorf("mem: range [%d,%d) exceeds object size %d", start, end, len(obj.data))
	}

	// obj.data is never mutated in place, so slicing is safe without a copy.
	return io.NopCloser(bytes.NewReader(obj.data[start:end])), nil
}
