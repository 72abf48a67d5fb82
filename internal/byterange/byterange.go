// Package byterange provides pure helpers for cursor arithmetic and HTTP
// range rendering.
//
// These are split out of the Reader so seek edge cases can be unit-tested
// without any store behind them.
package byterange

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNegative indicates a seek target before the start of the object.
	ErrNegative = errors.New("position is negative")

	// ErrOverflow indicates a seek target that overflows int64.
	ErrOverflow = errors.New("position overflows int64")

	// ErrWhence indicates an unrecognized whence value.
	ErrWhence = errors.New("unrecognized whence")
)

// Position computes the absolute cursor for a seek of (offset, whence)
// against an object of the given size, starting from pos.
//
// Targets beyond size are legal, matching local-file seek semantics; a read
// at such a cursor simply hits end-of-object. Negative and unrepresentable
// targets are rejected.
func Position(size, pos, offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = pos
	case io.SeekEnd:
		base = size
	default:
		return 0, fmt.Errorf("%w: %d", ErrWhence, whence)
	}

	target := base + offset
	if offset > 0 && target < base {
		return 0, ErrOverflow
	}
	if target < 0 {
		return 0, ErrNegative
	}
	return target, nil
}

// Header renders the half-open interval [start, end) as an HTTP Range header
// value. S3-style range requests are inclusive on both ends, so the last
// requested byte is end-1. The interval must be non-empty.
func Header(start, end int64) string {
	return fmt.Sprintf("bytes=%d-%d", start, end-1)
}
