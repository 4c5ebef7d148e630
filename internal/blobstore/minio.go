package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var _ Store = (*MinioStore)(nil)

// MinioStore implements Store on a MinIO server.
type MinioStore struct {
	client   *minio.Client
	credsErr error
	bucket   string
	baseURL  string
}

// NewMinioStore connects to MinIO and creates the bucket when it is missing.
// With incomplete credentials the bucket check is skipped and every
// operation fails with a CredentialsError.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	endpoint = strings.TrimRight(endpoint, "/")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	ms := &MinioStore{
		client:   client,
		credsErr: minioCredentials(cfg.AccessKey, cfg.SecretKey),
		bucket:   cfg.Bucket,
		baseURL:  fmt.Sprintf("%s://%s", scheme, endpoint),
	}
	if ms.credsErr != nil {
		return ms, nil
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		log.Printf("Creating bucket: %s", cfg.Bucket)
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return ms, nil
}

func minioCredentials(accessKey, secretKey string) error {
	if accessKey == "" && secretKey == "" {
		return &CredentialsError{}
	}
	return checkStatic(accessKey, secretKey)
}

func (ms *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, span := tracer.Start(ctx, "blobstore.put",
		trace.WithAttributes(
			attribute.String("object_key", key),
			attribute.Int("size_bytes", len(data)),
		),
	)
	defer span.End()

	if ms.credsErr != nil {
		span.RecordError(ms.credsErr)
		return "", ms.credsErr
	}

	_, err := ms.client.PutObject(ctx, ms.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeOrDefault(contentType),
	})
	if err != nil {
		span.RecordError(err)
		return "", &StorageError{Op: "put", Key: key, Err: err}
	}

	return ms.URL(key), nil
}

func (ms *MinioStore) Delete(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "blobstore.delete",
		trace.WithAttributes(attribute.String("object_key", key)),
	)
	defer span.End()

	if ms.credsErr != nil {
		span.RecordError(ms.credsErr)
		return ms.credsErr
	}

	if err := ms.client.RemoveObject(ctx, ms.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		span.RecordError(err)
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (ms *MinioStore) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", ms.baseURL, ms.bucket, escapeKey(key))
}
