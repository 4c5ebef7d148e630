package main

import (
	"context"
	"testing"

	glog "github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-uploader/internal/blobstore"
	"video-uploader/internal/config"
)

func TestLogLevel(t *testing.T) {
	assert.Equal(t, glog.DEBUG, logLevel("debug"))
	assert.Equal(t, glog.WARN, logLevel("warn"))
	assert.Equal(t, glog.ERROR, logLevel("error"))
	assert.Equal(t, glog.OFF, logLevel("off"))
	assert.Equal(t, glog.INFO, logLevel("info"))
	assert.Equal(t, glog.INFO, logLevel(""))
}

func TestNewBlobStore_SelectsBackend(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	s3Store, err := newBlobStore(context.Background(), config.Config{
		BlobBackend:  "s3",
		S3BucketName: "videos",
		AWSRegion:    "us-east-1",
	})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.S3Store{}, s3Store)

	// Without credentials the MinIO store skips its bucket check.
	minioStore, err := newBlobStore(context.Background(), config.Config{
		BlobBackend:  "minio",
		S3Endpoint:   "localhost:9000",
		S3BucketName: "videos",
	})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.MinioStore{}, minioStore)
}
