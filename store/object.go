package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tadweer/tadweer-site/types"
)

// Ensure ObjectStore implements SuggestionStore
var _ SuggestionStore = (*ObjectStore)(nil)

// objectAPI is the subset of the S3 client the store uses.
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// ObjectStore keeps the collection as one JSON object in an S3-compatible bucket (R2, S3, MinIO).
type ObjectStore struct {
	client objectAPI
	bucket string
	key    string
}

// ObjectStoreConfig holds the connection settings for NewObjectStore.
type ObjectStoreConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	Key             string
	AccessKeyID     string
	SecretAccessKey string
}

// NewObjectStore creates an S3-backed store with static credentials.
func NewObjectStore(cfg ObjectStoreConfig) (*ObjectStore, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("object store: bucket and credentials are required: %w", ErrNotConfigured)
	}
	if err := validateKey(cfg.Key); err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	opts := s3.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return newObjectStore(s3.New(opts), cfg.Bucket, cfg.Key), nil
}

func newObjectStore(client objectAPI, bucket, key string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, key: key}
}

// validateKey rejects storage keys containing path traversal segments.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("object store: key is required")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return fmt.Errorf("path traversal detected in storage key")
		}
	}
	return nil
}

func (s *ObjectStore) Get(ctx context.Context) ([]types.Suggestion, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return []types.Suggestion{}, nil
		}
		return nil, fmt.Errorf("object get %s: %w", s.key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w", s.key, err)
	}

	suggestions := []types.Suggestion{}
	if len(raw) == 0 {
		return suggestions, nil
	}
	if err := json.Unmarshal(raw, &suggestions); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}
	return suggestions, nil
}

func (s *ObjectStore) Set(ctx context.Context, suggestions []types.Suggestion) error {
	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}
	raw, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("object put %s: %w", s.key, err)
	}
	return nil
}

func (s *ObjectStore) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

func (s *ObjectStore) Type() string {
	return TypeObject
}
