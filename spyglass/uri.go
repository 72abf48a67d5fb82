package spyglass

import (
	"fmt"
	"strings"
)

// Scheme is the address scheme recognized by ParseURI.
const Scheme = "s3://"

// ObjectURI identifies a remote object by bucket and key.
//
// An ObjectURI carries no resources and is freely copyable.
type ObjectURI struct {
	bucket string
	key    string
}

// ParseURI parses an address of the form s3://bucket/key into an ObjectURI.
//
// The bucket is everything between the scheme and the first slash; the key is
// the remainder and may itself contain slashes. Both must be non-empty. The
// substrings are taken exactly as written, with no normalization or decoding.
//
// Returns an error wrapping ErrMalformedURI if the scheme is missing, the
// bucket/key separator is missing, or either part is empty.
func ParseURI(raw string) (ObjectURI, error) {
	rest, ok := strings.CutPrefix(raw, Scheme)
	if !ok {
		return ObjectURI{}, fmt.Errorf("%w: missing %q scheme in %q", ErrMalformedURI, Scheme, raw)
	}

	bucket, key, ok := strings.Cut(rest, "/")
	if !ok {
		return ObjectURI{}, fmt.Errorf("%w: missing bucket/key separator in %q", ErrMalformedURI, raw)
	}
	if bucket == "" {
		return ObjectURI{}, fmt.Errorf("%w: empty bucket in %q", ErrMalformedURI, raw)
	}
	if key == "" {
		return ObjectURI{}, fmt.Errorf("%w: empty key in %q", ErrMalformedURI, raw)
	}

	return ObjectURI{bucket: bucket, key: key}, nil
}

// Bucket returns the bucket name.
func (u ObjectURI) Bucket() string {
	return u.bucket
}

// Key returns the object key.
func (u ObjectURI) Key() string {
	return u.key
}

// String returns the URI in s3://bucket/key form.
func (u ObjectURI) String() string {
	return Scheme + u.bucket + "/" + u.key
}
