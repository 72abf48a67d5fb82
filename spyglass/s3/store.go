// Package s3 provides an AWS S3 storage backend for spyglass.
//
// This adapter works against AWS S3, MinIO, LocalStack, Cloudflare R2, and
// other S3-compatible object stores (via a custom endpoint).
//
// The adapter is read-only by design: it exposes exactly the metadata lookup
// and ranged fetch a spyglass.Reader needs, using the HTTP Range header for
// true range reads.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3api "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/justapithecus/spyglass/internal/byterange"
	"github.com/justapithecus/spyglass/spyglass"
)

// API defines the subset of the S3 client interface used by the store.
// This enables testing with mock implementations.
type API interface {
	HeadObject(ctx context.Context, params *s3api.HeadObjectInput, optFns ...func(*s3api.Options)) (*s3api.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3api.GetObjectInput, optFns ...func(*s3api.Options)) (*s3api.GetObjectOutput, error)
}

// Store implements spyglass.Store using an S3-compatible backend.
//
// A single Store wraps one shared client and serves any number of Readers
// across any buckets the credentials can reach.
type Store struct {
	client API
}

var _ spyglass.Store = (*Store)(nil)

// New creates an S3 store with the given client.
//
// The client must be pre-configured with credentials, region, and endpoint.
// Use NewFromConfig for the common construction paths.
func New(client API) (*Store, error) {
	if client == nil {
		return nil, errors.New("s3: client is required")
	}
	return &Store{client: client}, nil
}

// Config holds options for building an S3 client from the environment.
//
// The zero value uses the default AWS credential chain and region resolution.
type Config struct {
	// Region overrides the resolved AWS region.
	Region string

	// Endpoint points at an S3-compatible service (e.g. http://localhost:9000
	// for MinIO). Leave empty for AWS S3.
	Endpoint string

	// AccessKey and SecretKey configure static credentials. Leave empty to
	// use the default credential chain.
	AccessKey string
	SecretKey string

	// UsePathStyle forces path-style addressing, required by most
	// S3-compatible services.
	UsePathStyle bool
}

// NewFromConfig creates an S3 store backed by a client built from the
// default AWS configuration, with any overrides from cfg applied.
func NewFromConfig(ctx context.Context, cfg Config) (*Store, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: loading aws config: %w", err)
	}

	client := s3api.NewFromConfig(awsCfg, func(o *s3api.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return New(client)
}

// Head implements spyglass.Store.
func (s *Store) Head(ctx context.Context, bucket, key string) (spyglass.ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3api.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if mapped := mapAPIError(err); mapped != nil {
			return spyglass.ObjectInfo{}, mapped
		}
		return spyglass.ObjectInfo{}, fmt.Errorf("s3: head object: %w", err)
	}

	return spyglass.ObjectInfo{
		Size:         aws.ToInt64(out.ContentLength),
		ETag:         aws.ToString(out.ETag),
		ContentType:  aws.ToString(out.ContentType),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// GetRange implements spyglass.Store.
//
// The half-open interval [start, end) is mapped onto S3's inclusive Range
// header. The interval must be non-empty and within the object.
func (s *Store) GetRange(ctx context.Context, bucket, key string, start, end int64) (io.ReadCloser, error) {
	if start < 0 || end <= start {
		return nil, fmt.Errorf("s3: invalid range [%d,%d)", start, end)
	}

	out, err := s.client.GetObject(ctx, &s3api.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(byterange.Header(start, end)),
	})
	if err != nil {
		if mapped := mapAPIError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("s3: range read: %w", err)
	}

	return out.Body, nil
}

// mapAPIError translates backend failures onto the spyglass sentinels.
// Returns nil for errors that should pass through as transport failures.
func mapAPIError(err error) error {
	if isNotFound(err) {
		return spyglass.ErrNotFound
	}
	if isAccessDenied(err) {
		return spyglass.ErrAccessDenied
	}
	return nil
}

// isNotFound checks if an error indicates the object was not found.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey" || code == "404"
	}
	return false
}

// isAccessDenied checks if an error indicates an authorization failure.
func isAccessDenied(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "AccessDenied" || code == "Forbidden" || code == "403"
	}
	return false
}

// -----------------------------------------------------------------------------
// Mock S3 Client for Testing
// -----------------------------------------------------------------------------

// MockS3Client is a test double for API.
type MockS3Client struct {
	mu      sync.RWMutex
	objects map[string][]byte
	denied  map[string]bool

	// Call counters for test assertions
	HeadObjectCalls int
	GetObjectCalls  int

	// GetObjectFailOnCall causes GetObject to fail on the Nth call onward.
	// Set to 0 to disable (default). Set to 1 to fail on the first call.
	GetObjectFailOnCall int
}

// NewMockS3Client creates a new mock S3 client for testing.
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		objects: make(map[string][]byte),
		denied:  make(map[string]bool),
	}
}

// PutObject seeds the mock with an object.
func (m *MockS3Client) PutObject(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = data
}

// DenyAccess makes all requests for the given object fail with AccessDenied.
func (m *MockS3Client) DenyAccess(bucket, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied[bucket+"/"+key] = true
}

// mockModTime is the fixed LastModified reported for every mock object.
var mockModTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// HeadObject implements API.HeadObject for testing.
func (m *MockS3Client) HeadObject(_ context.Context, params *s3api.HeadObjectInput, _ ...func(*s3api.Options)) (*s3api.HeadObjectOutput, error) {
	full := aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)

	m.mu.Lock()
	m.HeadObjectCalls++
	denied := m.denied[full]
	data, exists := m.objects[full]
	m.mu.Unlock()

	if denied {
		return nil, &smithyAPIError{code: "AccessDenied", message: "access denied"}
	}
	if !exists {
		return nil, &types.NotFound{}
	}

	return &s3api.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(data))),
		ETag:          aws.String(fmt.Sprintf("\"mock-%d\"", len(data))),
		ContentType:   aws.String("application/octet-stream"),
		LastModified:  aws.Time(mockModTime),
	}, nil
}

// GetObject implements API.GetObject for testing.
func (m *MockS3Client) GetObject(_ context.Context, params *s3api.GetObjectInput, _ ...func(*s3api.Options)) (*s3api.GetObjectOutput, error) {
	full := aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)

	m.mu.Lock()
	m.GetObjectCalls++
	failing := m.GetObjectFailOnCall > 0 && m.GetObjectCalls >= m.GetObjectFailOnCall
	denied := m.denied[full]
	data, exists := m.objects[full]
	m.mu.Unlock()

	if failing {
		return nil, &smithyAPIError{code: "InternalError", message: "simulated get object failure"}
	}
	if denied {
		return nil, &smithyAPIError{code: "AccessDenied", message: "access denied"}
	}
	if !exists {
		return nil, &types.NoSuchKey{}
	}

	// Handle range requests
	if params.Range != nil {
		var start, end int64
		_, _ = fmt.Sscanf(aws.ToString(params.Range), "bytes=%d-%d", &start, &end)

		if start >= int64(len(data)) {
			return nil, &smithyAPIError{code: "InvalidRange"}
		}
		if end >= int64(len(data)) {
			end = int64(len(data)) - 1
		}

		data = data[start : end+1]
	}

	return &s3api.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

// smithyAPIError implements smithy.APIError for testing.
type smithyAPIError struct {
	code    string
	message string
}

func (e *smithyAPIError) Error() string {
	return e.message
}

func (e *smithyAPIError) ErrorCode() string {
	return e.code
}

func (e *smithyAPIError) ErrorMessage() string {
	return e.message
}

func (e *smithyAPIError) ErrorFault() smithy.ErrorFault {
	return smithy.FaultUnknown
}
