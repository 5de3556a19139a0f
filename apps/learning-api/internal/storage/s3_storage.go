package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/retry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Storage
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3 connection settings. Endpoint is set for
// S3-compatible stores such as MinIO.
type S3Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Storage implements ObjectStorage on an S3 bucket
type S3Storage struct {
	client  S3API
	bucket  string
	baseURL string
	retry   *retry.Config
}

// NewS3Client builds an S3 client from static credentials, or from the
// default AWS credential chain when no keys are set
func NewS3Client(ctx context.Context, cfg *S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Storage creates a new S3Storage
func NewS3Storage(client S3API, cfg *S3Config) *S3Storage {
	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = publicURL(cfg.Endpoint, cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		retry:   retry.DefaultConfig(),
	}
}

// Upload puts the object under a generated key in its folder
func (s *S3Storage) Upload(ctx context.Context, obj *Object) (*StoredObject, error) {
	key := objectKey(obj.Folder, obj.OriginalName)

	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(obj.Data),
			ContentType:   aws.String(obj.ContentType),
			ContentLength: aws.Int64(int64(len(obj.Data))),
		})
		return err
	})
	if err != nil {
		return nil, domain.WrapError(domain.KindUpstream, "File storage is unavailable", err)
	}

	return &StoredObject{
		StorageID: key,
		URL:       publicURL(s.baseURL, key),
	}, nil
}

// Delete removes an object. Deleting a missing key succeeds.
func (s *S3Storage) Delete(ctx context.Context, storageID string) error {
	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(storageID),
		})
		return err
	})
	if err != nil {
		return domain.WrapError(domain.KindUpstream, "File storage is unavailable", err)
	}
	return nil
}
