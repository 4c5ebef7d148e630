package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort      string `mapstructure:"SERVER_PORT"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	UploadBodyLimit string `mapstructure:"UPLOAD_BODY_LIMIT"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBPath     string `mapstructure:"DB_PATH"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBPort     string `mapstructure:"DB_PORT"`

	BlobBackend    string `mapstructure:"BLOB_BACKEND"`
	AWSAccessKeyID string `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	S3BucketName   string `mapstructure:"S3_BUCKET_NAME"`
	AWSRegion      string `mapstructure:"AWS_REGION"`
	S3Endpoint     string `mapstructure:"S3_ENDPOINT"`
	S3UseSSL       bool   `mapstructure:"S3_USE_SSL"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	OTelEndpoint string `mapstructure:"OTEL_ENDPOINT"`
	ServiceName  string `mapstructure:"SERVICE_NAME"`
}

var defaults = map[string]any{
	"SERVER_PORT":       "8080",
	"LOG_LEVEL":         "info",
	"UPLOAD_BODY_LIMIT": "",

	"DB_DRIVER":   "sqlite",
	"DB_PATH":     "videos.db",
	"DB_HOST":     "localhost",
	"DB_USER":     "postgres",
	"DB_PASSWORD": "postgres",
	"DB_NAME":     "videos",
	"DB_PORT":     "",

	"BLOB_BACKEND":          "s3",
	"AWS_ACCESS_KEY_ID":     "",
	"AWS_SECRET_ACCESS_KEY": "",
	"S3_BUCKET_NAME":        "",
	"AWS_REGION":            "",
	"S3_ENDPOINT":           "",
	"S3_USE_SSL":            false,

	"REDIS_ADDR":     "",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,
	"CACHE_TTL":      5 * time.Minute,

	"OTEL_ENDPOINT": "",
	"SERVICE_NAME":  "video-uploader",
}

// LoadConfig reads app.env from the given directories (the working directory
// when none are given) and overlays the process environment.
func LoadConfig(paths ...string) (config Config, err error) {
	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("app") // Name of our config file (without extension)
	v.SetConfigType("env") // Look for .env extension

	// AutomaticEnv only reaches Unmarshal for keys viper already knows about.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using environment variables or defaults.")
		} else {
			return
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	err = config.Validate()
	return
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.BlobBackend {
	case "s3":
	case "minio":
		if c.S3Endpoint == "" {
			return fmt.Errorf("S3_ENDPOINT is required for the minio backend")
		}
	default:
		return fmt.Errorf("unsupported BLOB_BACKEND %q", c.BlobBackend)
	}
	return nil
}
