// Package storage provides screenshot storage implementations.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	apppayment "github.com/minimart/backend/internal/application/payment"
	infraconfig "github.com/minimart/backend/internal/infrastructure/config"
)

// Ensure S3ScreenshotStorage implements ScreenshotStorage
var _ apppayment.ScreenshotStorage = (*S3ScreenshotStorage)(nil)

// S3ScreenshotStorage stores payment screenshots in an S3-compatible bucket
// (AWS S3, MinIO, etc.)
type S3ScreenshotStorage struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// S3Option is a functional option for configuring S3ScreenshotStorage
type S3Option func(*S3ScreenshotStorage)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3ScreenshotStorage) {
		s.logger = logger
	}
}

// WithClient overrides the S3 client (used in tests)
func WithClient(client *s3.Client) S3Option {
	return func(s *S3ScreenshotStorage) {
		s.client = client
	}
}

// NewS3ScreenshotStorage creates a new S3ScreenshotStorage from configuration
func NewS3ScreenshotStorage(cfg *infraconfig.StorageConfig, opts ...S3Option) (*S3ScreenshotStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// Custom endpoints (MinIO and friends) need path-style addressing
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	storage := &S3ScreenshotStorage{
		client: client,
		bucket: cfg.Bucket,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}
	return storage, nil
}

// Put uploads a screenshot and returns its storage path
func (s *S3ScreenshotStorage) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := strings.TrimPrefix(name, "/")
	if key == "" {
		return "", errors.New("storage key is required")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload screenshot: %w", err)
	}

	s.logger.Debug("screenshot uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key))
	return key, nil
}

// Delete removes a stored screenshot
func (s *S3ScreenshotStorage) Delete(ctx context.Context, path string) error {
	key := strings.TrimPrefix(path, "/")
	if key == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete screenshot: %w", err)
	}
	return nil
}
