package spyglass

import (
	"compress/gzip"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Decompressor wraps a byte stream with stream decompression.
//
// Decompressors are for sequential consumption of compressed remote objects
// through a Reader; seeking within compressed payloads is not supported.
type Decompressor interface {
	// Name returns the decompressor identifier (for example, "gzip", "zstd").
	Name() string

	// Extension returns the file extension (for example, ".gz", ".zst", "").
	Extension() string

	// Decompress wraps a reader with decompression.
	Decompress(r io.Reader) (io.ReadCloser, error)
}

// DecompressorFor returns the decompressor matching the key's extension.
// Keys without a recognized extension get the noop decompressor.
func DecompressorFor(key string) Decompressor {
	switch {
	case strings.HasSuffix(key, ".gz"):
		return NewGzipDecompressor()
	case strings.HasSuffix(key, ".zst"):
		return NewZstdDecompressor()
	default:
		return NewNoOpDecompressor()
	}
}

// -----------------------------------------------------------------------------
// Gzip
// -----------------------------------------------------------------------------

type gzipDecompressor struct{}

// NewGzipDecompressor creates a gzip decompressor for .gz objects.
func NewGzipDecompressor() Decompressor {
	return &gzipDecompressor{}
}

func (g *gzipDecompressor) Name() string {
	return "gzip"
}

func (g *gzipDecompressor) Extension() string {
	return ".gz"
}

func (g *gzipDecompressor) Decompress(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// -----------------------------------------------------------------------------
// Zstd
// -----------------------------------------------------------------------------

type zstdDecompressor struct{}

// NewZstdDecompressor creates a zstd decompressor for .zst objects.
func NewZstdDecompressor() Decompressor {
	return &zstdDecompressor{}
}

func (z *zstdDecompressor) Name() string {
	return "zstd"
}

func (z *zstdDecompressor) Extension() string {
	return ".zst"
}

func (z *zstdDecompressor) Decompress(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

// -----------------------------------------------------------------------------
// NoOp
// -----------------------------------------------------------------------------

type noopDecompressor struct{}

// NewNoOpDecompressor creates a decompressor that passes data through
// unchanged, for uncompressed objects.
func NewNoOpDecompressor() Decompressor {
	return &noopDecompressor{}
}

func (n *noopDecompressor) Name() string {
	return "noop"
}

func (n *noopDecompressor) Extension() string {
	return ""
}

func (n *noopDecompressor) Decompress(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}
