package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	// Endpoint switches to path-style addressing against an S3-compatible
	// service such as MinIO.
	Endpoint string
}

var _ Store = (*S3Store)(nil)

// S3Store implements Store on AWS S3.
type S3Store struct {
	client   *s3.Client
	creds    aws.CredentialsProvider
	credsErr error
	bucket   string
	region   string
	endpoint string
}

// NewS3Store builds an S3 client. Static credentials are used when both keys
// are configured; otherwise the SDK default chain is consulted lazily.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	credsErr := checkStatic(cfg.AccessKeyID, cfg.SecretAccessKey)
	if credsErr == nil && cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:   client,
		creds:    awsCfg.Credentials,
		credsErr: credsErr,
		bucket:   cfg.Bucket,
		region:   awsCfg.Region,
		endpoint: endpoint,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, span := tracer.Start(ctx, "blobstore.put",
		trace.WithAttributes(
			attribute.String("object_key", key),
			attribute.Int("size_bytes", len(data)),
		),
	)
	defer span.End()

	if err := s.checkCredentials(ctx); err != nil {
		span.RecordError(err)
		return "", err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentTypeOrDefault(contentType)),
	})
	if err != nil {
		span.RecordError(err)
		return "", &StorageError{Op: "put", Key: key, Err: err}
	}

	return s.URL(key), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "blobstore.delete",
		trace.WithAttributes(attribute.String("object_key", key)),
	)
	defer span.End()

	if err := s.checkCredentials(ctx); err != nil {
		span.RecordError(err)
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		span.RecordError(err)
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// URL is the public address of key in the bucket.
func (s *S3Store) URL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, escapeKey(key))
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escapeKey(key))
}

func (s *S3Store) checkCredentials(ctx context.Context) error {
	if s.credsErr != nil {
		return s.credsErr
	}
	if s.creds == nil {
		return &CredentialsError{}
	}
	creds, err := s.creds.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return &CredentialsError{}
	}
	return nil
}
