// Package backup snapshots the archive database and ships it to object storage.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrUploadFailed wraps any failure to store a snapshot.
var ErrUploadFailed = errors.New("upload failed")

// ObjectStorage stores snapshot files under an object path.
type ObjectStorage interface {
	Upload(ctx context.Context, localPath, objectPath string) error
}

// LocalStorage stores objects as files under a base directory.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates basePath if needed and returns a LocalStorage rooted there.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Upload copies localPath to basePath/objectPath.
func (l *LocalStorage) Upload(ctx context.Context, localPath, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	destPath := filepath.Join(l.basePath, filepath.FromSlash(objectPath))
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return nil
}

// S3Config holds configuration for S3 storage.
type S3Config struct {
	// Region is the AWS region for the S3 bucket.
	Region string
	// Endpoint is an optional custom endpoint (for MinIO, LocalStack, etc.).
	Endpoint string
	// UsePathStyle enables path-style addressing (required for MinIO).
	UsePathStyle bool
}

// S3Storage stores objects in an S3 bucket under a key prefix.
type S3Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Storage creates an S3 client from the default AWS credential chain.
func NewS3Storage(ctx context.Context, bucket, prefix string, cfg S3Config) (*S3Storage, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Storage{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Upload puts localPath at prefix/objectPath in the bucket.
func (s *S3Storage) Upload(ctx context.Context, localPath, objectPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer file.Close()

	key := objectPath
	if s.prefix != "" {
		key = s.prefix + "/" + objectPath
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("%w: s3://%s/%s: %v", ErrUploadFailed, s.bucket, key, err)
	}
	return nil
}

// ParseS3URL splits s3://bucket/prefix into its bucket and prefix.
func ParseS3URL(dest string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(dest, "s3://")
	if !found || rest == "" {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, strings.Trim(prefix, "/"), true
}

// OpenDestination returns S3 storage for s3:// destinations and local
// storage for anything else.
func OpenDestination(ctx context.Context, dest string, cfg S3Config) (ObjectStorage, error) {
	if strings.HasPrefix(dest, "s3://") {
		bucket, prefix, ok := ParseS3URL(dest)
		if !ok {
			return nil, fmt.Errorf("invalid s3 destination %q", dest)
		}
		return NewS3Storage(ctx, bucket, prefix, cfg)
	}
	return NewLocalStorage(dest)
}
