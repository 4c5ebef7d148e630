package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "videos.db", cfg.DBPath)
	assert.Equal(t, "s3", cfg.BlobBackend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.OTelEndpoint)
}

func TestLoadConfig_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "AWS_ACCESS_KEY_ID=AKIA123\n" +
		"AWS_SECRET_ACCESS_KEY=secret\n" +
		"S3_BUCKET_NAME=clips\n" +
		"AWS_REGION=eu-west-1\n" +
		"CACHE_TTL=30s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "AKIA123", cfg.AWSAccessKeyID)
	assert.Equal(t, "secret", cfg.AWSSecretKey)
	assert.Equal(t, "clips", cfg.S3BucketName)
	assert.Equal(t, "eu-west-1", cfg.AWSRegion)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte("S3_BUCKET_NAME=from-file\n"), 0o600))
	t.Setenv("S3_BUCKET_NAME", "from-env")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("S3_USE_SSL", "true")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.S3BucketName)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.True(t, cfg.S3UseSSL)
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"s3 default", Config{DBDriver: "sqlite", BlobBackend: "s3"}, false},
		{"postgres", Config{DBDriver: "postgres", BlobBackend: "s3"}, false},
		{"minio without endpoint", Config{DBDriver: "sqlite", BlobBackend: "minio"}, true},
		{"minio with endpoint", Config{DBDriver: "mysql", BlobBackend: "minio", S3Endpoint: "localhost:9000"}, false},
		{"unknown backend", Config{DBDriver: "sqlite", BlobBackend: "gcs"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
